package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/catalyst-ingest/catalyst-ingest/admission"
	"github.com/catalyst-ingest/catalyst-ingest/catalog"
	"github.com/catalyst-ingest/catalyst-ingest/config"
	"github.com/catalyst-ingest/catalyst-ingest/episodejob"
	"github.com/catalyst-ingest/catalyst-ingest/handlers"
	"github.com/catalyst-ingest/catalyst-ingest/pipeline"
	"github.com/catalyst-ingest/catalyst-ingest/queue"
	"github.com/catalyst-ingest/catalyst-ingest/video"
	"github.com/golang/glog"
	_ "github.com/lib/pq"
	"github.com/peterbourgon/ff/v3"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := flag.Set("logtostderr", "true"); err != nil {
		glog.Fatal(err)
	}
	vFlag := flag.Lookup("v")

	fs := flag.NewFlagSet("catalyst-ingest", flag.ExitOnError)
	cli := config.Cli{}

	fs.IntVar(&cli.Port, "port", 8989, "Address to bind the external HTTP surface to")
	fs.StringVar(&cli.RecordingDir, "recording-dir", config.PathRecordingDir, "Directory the RTMP front-end drops finished recordings into, and uploads are staged under")
	fs.StringVar(&cli.BlobStoreURL, "blob-store-url", "", "Blob store URL, e.g. s3://bucket (passed to livepeer/go-tools/drivers)")
	fs.StringVar(&cli.CDNBase, "cdn-base", "", "Public CDN base URL prefixed onto object keys")
	fs.StringVar(&cli.AWSRegion, "aws-region", "us-east-1", "AWS region for the blob store and outbound queue")
	fs.StringVar(&cli.QueueURL, "queue-url", "", "SQS queue URL for outbound lifecycle messages")
	fs.StringVar(&cli.PostgresConnectionString, "postgres-connection-string", "", "Postgres connection string for the catalog/metadata store")
	fs.StringVar(&cli.MasterAccountID, "master-account-id", "", "Platform account every asset is filed under")
	fs.StringVar(&cli.DefaultThumbnailURL, "default-thumbnail-url", "", "Thumbnail URL substituted when none is ready or valid")
	fs.StringVar(&cli.PlatformAdminEmail, "platform-admin-email", "", "Email allowed to call the Admin Episode API")
	fs.StringVar(&cli.RTMPBaseURL, "rtmp-base-url", "", "Base address of the RTMP front-end")
	fs.StringVar(&cli.TranscriptionAPIURL, "transcription-api-url", "", "External transcription API endpoint")
	fs.StringVar(&cli.TranscriptionAPIKey, "transcription-api-key", "", "External transcription API key")
	fs.StringVar(&cli.LLMAPIURL, "llm-api-url", "", "External LLM API endpoint")
	fs.StringVar(&cli.LLMAPIKey, "llm-api-key", "", "External LLM API key")
	fs.StringVar(&cli.LLMModel, "llm-model", "gpt-4o-mini", "LLM model name used for episode detection")

	version := fs.Bool("version", false, "print application version")
	verbosity := fs.String("v", "", "log verbosity")
	_ = fs.String("config", "", "config file (optional)")

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
		ff.WithEnvVarPrefix("CATALYST_INGEST"),
	); err != nil {
		glog.Fatalf("error parsing cli: %s", err)
	}
	if len(fs.Args()) > 0 {
		glog.Fatalf("unexpected extra arguments on command line: %v", fs.Args())
	}

	if *version {
		fmt.Printf("catalyst-ingest version: %s", config.Version)
		return
	}
	if *verbosity != "" {
		if err := vFlag.Value.Set(*verbosity); err != nil {
			glog.Fatal(err)
		}
	}

	config.PathRecordingDir = cli.RecordingDir

	if err := run(cli); err != nil {
		glog.Fatal(err)
	}
}

func run(cli config.Cli) error {
	if cli.PostgresConnectionString == "" {
		return fmt.Errorf("postgres-connection-string is required")
	}
	db, err := sql.Open("postgres", cli.PostgresConnectionString)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
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
			return fmt.Errorf("failed to create queue publisher: %w", err)
		}
	}

	p := pipeline.New(admission.New(), writer, metadataStore, video.Probe{}, cli.MasterAccountID, cli.DefaultThumbnailURL)
	if cli.TranscriptionAPIURL != "" && cli.LLMAPIURL != "" {
		p.EpisodeJob = episodejob.New(store,
			episodejob.NewTranscriptionClient(cli.TranscriptionAPIURL, cli.TranscriptionAPIKey),
			episodejob.NewLLMClient(cli.LLMAPIURL, cli.LLMAPIKey, cli.LLMModel))
	}
	handlerCollection := handlers.New(p, store, publisher, cli.BlobStoreURL, cli.CDNBase, cli.PlatformAdminEmail, cli.MasterAccountID, cli.DefaultThumbnailURL)
	router := handlers.NewRouter(handlerCollection)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cli.Port),
		Handler: router,
	}

	group, ctx := errgroup.WithContext(context.Background())
	group.Go(func() error {
		glog.Infof("listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		return handleSignals(ctx)
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

func handleSignals(ctx context.Context) error {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGINT)
	select {
	case s := <-c:
		glog.Errorf("caught signal=%v, attempting clean shutdown", s)
		return fmt.Errorf("caught signal=%v", s)
	case <-ctx.Done():
		return nil
	}
}
