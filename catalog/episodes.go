package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// InsertEpisode writes a new EpisodeEntry keyed by (ownerId,
// "EPISODE#<streamKey>#<n>") (spec §4.11).
func (s *Store) InsertEpisode(ctx context.Context, e EpisodeEntry) error {
	_, err := s.db.ExecContext(ctx, `
		insert into episode_entries
			(owner_id, stream_key, episode_number, title, description, hls_url, thumbnail_url,
			 start_time_secs, end_time_secs, duration_secs, channel_name, created_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		e.OwnerID, e.StreamKey, e.EpisodeNumber, nullable(e.Title), nullable(e.Description), e.HLSURL, e.ThumbnailURL,
		e.StartTimeSecs, e.EndTimeSecs, e.DurationSecs, e.ChannelName, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert episode_entries: %w", err)
	}
	return nil
}

// ListEpisodes returns every EpisodeEntry for a stream, ordered by episode
// number, for the Admin Episode API's GET endpoint (spec §6).
func (s *Store) ListEpisodes(ctx context.Context, streamKey string) ([]EpisodeEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		select owner_id, stream_key, episode_number, title, description, hls_url, thumbnail_url,
		       start_time_secs, end_time_secs, duration_secs, channel_name, created_at, edited_by, edited_at
		from episode_entries where stream_key = $1 order by episode_number asc`, streamKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query episode_entries: %w", err)
	}
	defer rows.Close()

	var episodes []EpisodeEntry
	for rows.Next() {
		var e EpisodeEntry
		var title, description, editedBy sql.NullString
		var editedAt sql.NullTime
		if err := rows.Scan(&e.OwnerID, &e.StreamKey, &e.EpisodeNumber, &title, &description, &e.HLSURL, &e.ThumbnailURL,
			&e.StartTimeSecs, &e.EndTimeSecs, &e.DurationSecs, &e.ChannelName, &e.CreatedAt, &editedBy, &editedAt); err != nil {
			return nil, fmt.Errorf("failed to scan episode_entries row: %w", err)
		}
		e.Title, e.Description, e.EditedBy = title.String, description.String, editedBy.String
		if editedAt.Valid {
			t := editedAt.Time
			e.EditedAt = &t
		}
		episodes = append(episodes, e)
	}
	return episodes, rows.Err()
}

// UpdateEpisode implements the Admin Episode API's edit endpoint (spec §6
// POST /api/episodes/edit): title/description are replaced, editedBy/
// editedAt are stamped.
func (s *Store) UpdateEpisode(ctx context.Context, ownerID, streamKey string, episodeNumber int, title, description, editedBy string, editedAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		update episode_entries set title = $4, description = $5, edited_by = $6, edited_at = $7
		where owner_id = $1 and stream_key = $2 and episode_number = $3`,
		ownerID, streamKey, episodeNumber, nullable(title), nullable(description), editedBy, editedAt)
	if err != nil {
		return fmt.Errorf("failed to update episode_entries: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

var errNoOwnerForStreamKey = errors.New("no owner resolved for stream key")

// OwnerIDForStreamKey resolves the owner the Admin Episode API should scope
// queries to. This must agree with the OwnerID EpisodeJob writes
// (mapping.OwnerEmail, via the same StreamKeyMapping lookup CatalogWriter
// uses) or UpdateEpisode's owner_id filter never matches an inserted row.
func (s *Store) OwnerIDForStreamKey(ctx context.Context, streamKey string) (string, error) {
	mapping, err := s.GetStreamKeyMapping(ctx, streamKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", errNoOwnerForStreamKey
		}
		return "", err
	}
	return mapping.OwnerEmail, nil
}
