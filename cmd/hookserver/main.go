// Command hookserver is a minimal standalone HookServer binary: it wires up
// the same Collection/router as the root binary but takes its configuration
// entirely from CATALYST_INGEST_ environment variables plus a -port flag,
// for deployments that run the ingest surface as its own sidecar process.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/catalyst-ingest/catalyst-ingest/admission"
	"github.com/catalyst-ingest/catalyst-ingest/catalog"
	"github.com/catalyst-ingest/catalyst-ingest/config"
	"github.com/catalyst-ingest/catalyst-ingest/episodejob"
	"github.com/catalyst-ingest/catalyst-ingest/handlers"
	"github.com/catalyst-ingest/catalyst-ingest/pipeline"
	"github.com/catalyst-ingest/catalyst-ingest/queue"
	"github.com/catalyst-ingest/catalyst-ingest/video"
	_ "github.com/lib/pq"
	"github.com/peterbourgon/ff/v3"
)

func main() {
	port := flag.Int("port", 8989, "Port to listen on")
	fs := flag.NewFlagSet("hookserver", flag.ExitOnError)
	cli := config.Cli{}
	fs.StringVar(&cli.BlobStoreURL, "blob-store-url", "", "Blob store URL")
	fs.StringVar(&cli.CDNBase, "cdn-base", "", "Public CDN base URL")
	fs.StringVar(&cli.AWSRegion, "aws-region", "us-east-1", "AWS region")
	fs.StringVar(&cli.QueueURL, "queue-url", "", "SQS queue URL")
	fs.StringVar(&cli.PostgresConnectionString, "postgres-connection-string", "", "Postgres connection string")
	fs.StringVar(&cli.MasterAccountID, "master-account-id", "", "Platform account every asset is filed under")
	fs.StringVar(&cli.DefaultThumbnailURL, "default-thumbnail-url", "", "Default thumbnail URL")
	fs.StringVar(&cli.PlatformAdminEmail, "platform-admin-email", "", "Admin Episode API email")
	fs.StringVar(&cli.TranscriptionAPIURL, "transcription-api-url", "", "External transcription API endpoint")
	fs.StringVar(&cli.TranscriptionAPIKey, "transcription-api-key", "", "External transcription API key")
	fs.StringVar(&cli.LLMAPIURL, "llm-api-url", "", "External LLM API endpoint")
	fs.StringVar(&cli.LLMAPIKey, "llm-api-key", "", "External LLM API key")
	fs.StringVar(&cli.LLMModel, "llm-model", "gpt-4o-mini", "LLM model name used for episode detection")
	flag.Parse()

	if err := ff.Parse(fs, []string{}, ff.WithEnvVarPrefix("CATALYST_INGEST")); err != nil {
		log.Fatalf("error parsing env config: %s", err)
	}

	router, err := buildRouter(cli)
	if err != nil {
		log.Fatal(err)
	}

	listen := fmt.Sprintf(":%d", *port)
	log.Println("hookserver listening on", listen)
	log.Fatal(http.ListenAndServe(listen, router))
}

func buildRouter(cli config.Cli) (http.Handler, error) {
	if cli.PostgresConnectionString == "" {
		return nil, fmt.Errorf("CATALYST_INGEST_POSTGRES_CONNECTION_STRING is required")
	}
	db, err := sql.Open("postgres", cli.PostgresConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)

	store := catalog.NewStore(db)
	metadataStore := catalog.NewMetadataStore(store)
	writer := catalog.NewWriter(store, metadataStore)

	var publisher *queue.Publisher
	if cli.QueueURL != "" {
		publisher, err = queue.NewPublisher(cli.AWSRegion, cli.QueueURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create queue publisher: %w", err)
		}
	}

	p := pipeline.New(admission.New(), writer, metadataStore, video.Probe{}, cli.MasterAccountID, cli.DefaultThumbnailURL)
	if cli.TranscriptionAPIURL != "" && cli.LLMAPIURL != "" {
		p.EpisodeJob = episodejob.New(store,
			episodejob.NewTranscriptionClient(cli.TranscriptionAPIURL, cli.TranscriptionAPIKey),
			episodejob.NewLLMClient(cli.LLMAPIURL, cli.LLMAPIKey, cli.LLMModel))
	}
	collection := handlers.New(p, store, publisher, cli.BlobStoreURL, cli.CDNBase, cli.PlatformAdminEmail, cli.MasterAccountID, cli.DefaultThumbnailURL)
	return handlers.NewRouter(collection), nil
}
