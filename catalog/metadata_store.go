package catalog

import (
	"context"
	"time"

	"github.com/catalyst-ingest/catalyst-ingest/config"
)

// MetadataStore persists per-upload title/description/price before any
// transcode work starts (spec §4.7). The post-write sleep is a genuine
// consistency wait belonging to this store (Open Question #2, resolved in
// SPEC_FULL.md), tunable via config.MetadataConvergeWait for tests.
type MetadataStore struct {
	store *Store
}

func NewMetadataStore(store *Store) *MetadataStore {
	return &MetadataStore{store: store}
}

func (m *MetadataStore) Put(ctx context.Context, uploadID, title, description, price string) error {
	if err := m.store.PutUploadMetadata(ctx, UploadMetadata{
		UploadID:    uploadID,
		Title:       title,
		Description: description,
		Price:       price,
	}); err != nil {
		return err
	}
	time.Sleep(config.MetadataConvergeWait)
	return nil
}

// Get reads UploadMetadata written by Put. Absence is not an error (spec
// §4.6 step 5: "best-effort; absence is fine").
func (m *MetadataStore) Get(ctx context.Context, uploadID string) (*UploadMetadata, error) {
	return m.store.GetUploadMetadata(ctx, uploadID)
}
