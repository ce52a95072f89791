package config

// Cli holds the service's flag/env configuration, parsed in main.go with
// peterbourgon/ff against the CATALYST_INGEST_ environment prefix.
type Cli struct {
	Port         int
	RecordingDir string

	// Blob store (spec §6 "Blob-store path conventions").
	BlobStoreURL string // e.g. s3://bucket, passed to livepeer/go-tools/drivers
	CDNBase      string
	AWSRegion    string

	// Outbound queue (spec §6 "Outbound queue message").
	QueueURL string

	// Catalog + metadata store (spec §3 CatalogEntry/StreamKeyMapping/UploadMetadata).
	PostgresConnectionString string

	// Platform constants (spec §4.6, §6).
	MasterAccountID     string
	DefaultThumbnailURL string
	PlatformAdminEmail  string

	// RTMP front-end (spec §6).
	RTMPBaseURL string

	// Transcription + LLM APIs (spec §4.11, §6).
	TranscriptionAPIURL string
	TranscriptionAPIKey string
	LLMAPIURL           string
	LLMAPIKey           string
	LLMModel            string
}
