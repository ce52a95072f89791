package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Store is the Postgres-backed persistence layer behind CatalogWriter,
// MetadataStore and StreamKeyMapping lookups. Grounded on the teacher's
// raw database/sql + lib/pq idiom (no ORM, $N placeholders, one statement
// per call).
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

var ErrNotFound = errors.New("not found")

func (s *Store) GetStreamKeyMapping(ctx context.Context, streamKey string) (StreamKeyMapping, error) {
	var m StreamKeyMapping
	var collaboratorEmail, seriesName sql.NullString
	row := s.db.QueryRowContext(ctx, `
		select stream_key, owner_email, collaborator_email, is_collaborator_key, channel_name, series_name, creator_id
		from stream_key_mappings where stream_key = $1`, streamKey)
	err := row.Scan(&m.StreamKey, &m.OwnerEmail, &collaboratorEmail, &m.IsCollaboratorKey, &m.ChannelName, &seriesName, &m.CreatorID)
	if errors.Is(err, sql.ErrNoRows) {
		return StreamKeyMapping{}, ErrNotFound
	}
	if err != nil {
		return StreamKeyMapping{}, fmt.Errorf("failed to query stream_key_mappings: %w", err)
	}
	m.CollaboratorEmail = collaboratorEmail.String
	m.SeriesName = seriesName.String
	return m, nil
}

func (s *Store) GetOwnerIDByChannelName(ctx context.Context, channelName string) (string, error) {
	var ownerID string
	row := s.db.QueryRowContext(ctx, `select owner_id from channels where channel_name = $1`, channelName)
	err := row.Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query channels: %w", err)
	}
	return ownerID, nil
}

func (s *Store) GetPostAutomatically(ctx context.Context, ownerID string) (bool, error) {
	var postAutomatically bool
	row := s.db.QueryRowContext(ctx, `select post_automatically from owner_settings where owner_id = $1`, ownerID)
	err := row.Scan(&postAutomatically)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query owner_settings: %w", err)
	}
	return postAutomatically, nil
}

func (s *Store) GetCatalogEntry(ctx context.Context, ownerID, fileID string) (*CatalogEntry, error) {
	var e CatalogEntry
	var hlsURL, thumbnailURL, title, description, price sql.NullString
	row := s.db.QueryRowContext(ctx, `
		select owner_id, file_id, upload_id, hls_master_url, thumbnail_url, channel_name, creator_id,
		       is_collaborator_video, is_visible, title, description, price
		from catalog_entries where owner_id = $1 and file_id = $2`, ownerID, fileID)
	err := row.Scan(&e.OwnerID, &e.FileID, &e.UploadID, &hlsURL, &thumbnailURL, &e.ChannelName, &e.CreatorID,
		&e.IsCollaboratorVideo, &e.IsVisible, &title, &description, &price)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog_entries: %w", err)
	}
	e.HLSMasterURL, e.ThumbnailURL, e.Title, e.Description, e.Price = hlsURL.String, thumbnailURL.String, title.String, description.String, price.String
	return &e, nil
}

func (s *Store) InsertCatalogEntry(ctx context.Context, e CatalogEntry) error {
	_, err := s.db.ExecContext(ctx, `
		insert into catalog_entries
			(owner_id, file_id, upload_id, hls_master_url, thumbnail_url, channel_name, creator_id,
			 is_collaborator_video, is_visible, title, description, price)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		e.OwnerID, e.FileID, e.UploadID, nullable(e.HLSMasterURL), nullable(e.ThumbnailURL), e.ChannelName, e.CreatorID,
		e.IsCollaboratorVideo, e.IsVisible, nullable(e.Title), nullable(e.Description), nullable(e.Price))
	if err != nil {
		return fmt.Errorf("failed to insert catalog_entries: %w", err)
	}
	return nil
}

func (s *Store) UpdateCatalogEntry(ctx context.Context, e CatalogEntry) error {
	_, err := s.db.ExecContext(ctx, `
		update catalog_entries set
			hls_master_url = $3, thumbnail_url = $4, channel_name = $5, creator_id = $6,
			is_collaborator_video = $7, is_visible = $8, title = $9, description = $10, price = $11
		where owner_id = $1 and file_id = $2`,
		e.OwnerID, e.FileID, nullable(e.HLSMasterURL), nullable(e.ThumbnailURL), e.ChannelName, e.CreatorID,
		e.IsCollaboratorVideo, e.IsVisible, nullable(e.Title), nullable(e.Description), nullable(e.Price))
	if err != nil {
		return fmt.Errorf("failed to update catalog_entries: %w", err)
	}
	return nil
}

func (s *Store) PutUploadMetadata(ctx context.Context, m UploadMetadata) error {
	_, err := s.db.ExecContext(ctx, `
		insert into upload_metadata (upload_id, title, description, price)
		values ($1, $2, $3, $4)
		on conflict (upload_id) do update set title = $2, description = $3, price = $4`,
		m.UploadID, nullable(m.Title), nullable(m.Description), nullable(m.Price))
	if err != nil {
		return fmt.Errorf("failed to write upload_metadata: %w", err)
	}
	return nil
}

func (s *Store) GetUploadMetadata(ctx context.Context, uploadID string) (*UploadMetadata, error) {
	var m UploadMetadata
	var title, description, price sql.NullString
	row := s.db.QueryRowContext(ctx, `select upload_id, title, description, price from upload_metadata where upload_id = $1`, uploadID)
	err := row.Scan(&m.UploadID, &title, &description, &price)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query upload_metadata: %w", err)
	}
	m.Title, m.Description, m.Price = title.String, description.String, price.String
	return &m, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
