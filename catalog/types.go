// Package catalog implements CatalogWriter, MetadataStore and the
// StreamKeyMapping lookup (spec §4.6/§4.7), backed by Postgres.
package catalog

import "time"

// StreamKeyMapping is the pre-existing authoritative record keyed by
// streamKey (spec §3). The Pipeline must consult it and prefer its fields
// over anything the HTTP request asserted.
type StreamKeyMapping struct {
	StreamKey         string
	OwnerEmail        string
	CollaboratorEmail string
	IsCollaboratorKey bool
	ChannelName       string
	SeriesName        string
	CreatorID         string
}

// UploadMetadata is the transient per-upload record MetadataStore persists
// before processing begins (spec §3, §4.7).
type UploadMetadata struct {
	UploadID    string
	Title       string
	Description string
	Price       string
}

// CatalogEntry is the record a viewer app reads (spec §3).
type CatalogEntry struct {
	OwnerID             string
	FileID              string
	UploadID            string
	HLSMasterURL        string
	ThumbnailURL        string
	ChannelName         string
	CreatorID           string
	IsCollaboratorVideo bool
	IsVisible           bool
	Title               string
	Description         string
	Price               string
}

// EpisodeEntry is one entry produced by EpisodeJob (spec §4.11), keyed by
// (ownerId, "EPISODE#<streamKey>#<n>").
type EpisodeEntry struct {
	OwnerID         string
	StreamKey       string
	EpisodeNumber   int
	Title           string
	Description     string
	HLSURL          string
	ThumbnailURL    string
	StartTimeSecs   float64
	EndTimeSecs     float64
	DurationSecs    float64
	ChannelName     string
	CreatedAt       time.Time
	EditedBy        string
	EditedAt        *time.Time
}
