package catalog

import (
	"context"
	"fmt"

	"github.com/catalyst-ingest/catalyst-ingest/clients"
	catalysterrors "github.com/catalyst-ingest/catalyst-ingest/errors"
	"github.com/catalyst-ingest/catalyst-ingest/log"
)

// RegisterAssetInput is CatalogWriter's public contract (spec §4.6): stream
// key, upload id, optional requester email and advisory channel name, plus
// the ready URLs below. It carries no rendition prefix.
type RegisterAssetInput struct {
	StreamKey           string
	UploadID            string
	RequesterEmail      string
	ChannelNameAdvisory string

	// HLSMasterURL and ThumbnailURL are supplied by the Pipeline once ready;
	// either may be empty on a given call (spec: callers invoke registerAsset
	// multiple times as each becomes available).
	HLSMasterURL string
	ThumbnailURL string

	MasterAccountID     string
	DefaultThumbnailURL string
}

type Writer struct {
	store          *Store
	metadataStore  *MetadataStore
}

func NewWriter(store *Store, metadataStore *MetadataStore) *Writer {
	return &Writer{store: store, metadataStore: metadataStore}
}

// RegisterAsset implements the 8-step algorithm from spec §4.6. It is
// idempotent: a second call for the same (streamKey, uploadId) updates only
// fields whose incoming value is strictly better than what's stored.
func (w *Writer) RegisterAsset(ctx context.Context, in RegisterAssetInput) (CatalogEntry, error) {
	fileID := "file-" + in.UploadID

	mapping, err := w.store.GetStreamKeyMapping(ctx, in.StreamKey)
	found := err == nil
	if err != nil && err != ErrNotFound {
		return CatalogEntry{}, fmt.Errorf("failed to resolve stream key mapping: %w", err)
	}

	resolvedIdentity := ""
	if found {
		if mapping.IsCollaboratorKey && mapping.CollaboratorEmail != "" {
			resolvedIdentity = mapping.CollaboratorEmail
		} else {
			resolvedIdentity = mapping.OwnerEmail
		}
	}
	if resolvedIdentity == "" {
		resolvedIdentity = in.RequesterEmail
	}
	if resolvedIdentity == "" && in.ChannelNameAdvisory != "" {
		if ownerID, lookupErr := w.store.GetOwnerIDByChannelName(ctx, in.ChannelNameAdvisory); lookupErr == nil {
			resolvedIdentity = ownerID
		}
	}
	if resolvedIdentity == "" {
		return CatalogEntry{}, catalysterrors.OwnershipUnresolvedError{StreamKey: in.StreamKey}
	}

	// The asset is always filed under the platform's MASTER_ACCOUNT regardless
	// of who streamed it; creatorId carries the true streamer's identity
	// (spec §4.6 step 3).
	ownerID := in.MasterAccountID
	creatorID := resolvedIdentity
	if found && mapping.CreatorID != "" {
		creatorID = mapping.CreatorID
	}

	channelName := in.ChannelNameAdvisory
	if found && mapping.ChannelName != "" {
		channelName = mapping.ChannelName
	}

	meta, err := w.metadataStore.Get(ctx, in.UploadID)
	if err != nil {
		log.LogError("", "metadata store read failed, treating as absent", err, "upload_id", in.UploadID)
		meta = nil
	}

	thumbnailURL := in.DefaultThumbnailURL
	if in.ThumbnailURL != "" {
		if headErr := clients.HeadCheck(in.ThumbnailURL); headErr == nil {
			thumbnailURL = in.ThumbnailURL
		}
	}

	postAutomatically, err := w.store.GetPostAutomatically(ctx, resolvedIdentity)
	if err != nil {
		log.LogError("", "post_automatically lookup failed, defaulting to false", err, "owner", resolvedIdentity)
		postAutomatically = false
	}
	isVisible := postAutomatically && thumbnailURL != ""

	incoming := CatalogEntry{
		OwnerID:             ownerID,
		FileID:              fileID,
		UploadID:            in.UploadID,
		HLSMasterURL:        in.HLSMasterURL,
		ThumbnailURL:        thumbnailURL,
		ChannelName:         channelName,
		CreatorID:           creatorID,
		IsCollaboratorVideo: found && mapping.IsCollaboratorKey,
		IsVisible:           isVisible,
	}
	if meta != nil {
		incoming.Title, incoming.Description, incoming.Price = meta.Title, meta.Description, meta.Price
	}

	existing, err := w.store.GetCatalogEntry(ctx, ownerID, fileID)
	if err != nil {
		return CatalogEntry{}, fmt.Errorf("failed to read existing catalog entry: %w", err)
	}
	if existing == nil {
		if err := w.store.InsertCatalogEntry(ctx, incoming); err != nil {
			return CatalogEntry{}, err
		}
		return incoming, nil
	}

	merged := mergeCatalogEntry(*existing, incoming, in.DefaultThumbnailURL)
	if err := w.store.UpdateCatalogEntry(ctx, merged); err != nil {
		return CatalogEntry{}, err
	}
	return merged, nil
}

// mergeCatalogEntry implements the partial-update semantics from spec §9's
// design note: nullable-fill for HLS URL and title/description/price,
// strict-improve for thumbnail URL (a real URL is never replaced by the
// default placeholder), overwrite-with-value for flags.
func mergeCatalogEntry(existing, incoming CatalogEntry, defaultThumbnailURL string) CatalogEntry {
	merged := existing

	if merged.HLSMasterURL == "" && incoming.HLSMasterURL != "" {
		merged.HLSMasterURL = incoming.HLSMasterURL
	}
	if incoming.ThumbnailURL != "" && (merged.ThumbnailURL == "" || merged.ThumbnailURL == defaultThumbnailURL) {
		merged.ThumbnailURL = incoming.ThumbnailURL
	}
	if merged.Title == "" && incoming.Title != "" {
		merged.Title = incoming.Title
	}
	if merged.Description == "" && incoming.Description != "" {
		merged.Description = incoming.Description
	}
	if merged.Price == "" && incoming.Price != "" {
		merged.Price = incoming.Price
	}

	merged.ChannelName = incoming.ChannelName
	merged.CreatorID = incoming.CreatorID
	merged.IsCollaboratorVideo = incoming.IsCollaboratorVideo
	merged.IsVisible = incoming.IsVisible

	return merged
}
