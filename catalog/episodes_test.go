package catalog

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestInsertEpisode(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("insert into episode_entries").WithArgs(
		"owner1", "sk1", 1, "Intro", "First episode", "https://cdn/ep1.m3u8", "https://cdn/ep1_thumb.jpg",
		0.0, 600.0, 600.0, "channel1", sqlmock.AnyArg(),
	).WillReturnResult(sqlmock.NewResult(1, 1))

	store := NewStore(db)
	err = store.InsertEpisode(context.Background(), EpisodeEntry{
		OwnerID: "owner1", StreamKey: "sk1", EpisodeNumber: 1,
		Title: "Intro", Description: "First episode",
		HLSURL: "https://cdn/ep1.m3u8", ThumbnailURL: "https://cdn/ep1_thumb.jpg",
		StartTimeSecs: 0, EndTimeSecs: 600, DurationSecs: 600,
		ChannelName: "channel1", CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEpisodeReturnsNotFoundWhenNoRowsAffected(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("update episode_entries").WillReturnResult(sqlmock.NewResult(0, 0))

	store := NewStore(db)
	err = store.UpdateEpisode(context.Background(), "owner1", "sk1", 1, "t", "d", "admin@example.com", time.Now())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestOwnerIDForStreamKeyMatchesInsertEpisodeOwnerID(t *testing.T) {
	// OwnerIDForStreamKey must resolve to the same value InsertEpisode writes
	// as OwnerID, or UpdateEpisode's "where owner_id = $1" filter never
	// matches the row the Admin Episode API is trying to edit.
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{
		"stream_key", "owner_email", "collaborator_email", "is_collaborator_key", "channel_name", "series_name", "creator_id",
	}).AddRow("sk1", "streamer@example.com", nil, false, "channel1", nil, "creator1")
	mock.ExpectQuery("select .* from stream_key_mappings").WithArgs("sk1").WillReturnRows(rows)

	store := NewStore(db)
	ownerID, err := store.OwnerIDForStreamKey(context.Background(), "sk1")
	require.NoError(t, err)
	require.Equal(t, "streamer@example.com", ownerID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOwnerIDForStreamKeyReturnsErrorWhenMappingMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("select .* from stream_key_mappings").WithArgs("sk1").WillReturnError(sql.ErrNoRows)

	store := NewStore(db)
	_, err = store.OwnerIDForStreamKey(context.Background(), "sk1")
	require.Error(t, err)
}

func TestListEpisodesOrdersByEpisodeNumber(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{
		"owner_id", "stream_key", "episode_number", "title", "description", "hls_url", "thumbnail_url",
		"start_time_secs", "end_time_secs", "duration_secs", "channel_name", "created_at", "edited_by", "edited_at",
	}).AddRow("owner1", "sk1", 1, "Intro", "", "https://cdn/ep1.m3u8", "https://cdn/ep1_thumb.jpg", 0.0, 600.0, 600.0, "channel1", time.Now(), nil, nil)

	mock.ExpectQuery("select .* from episode_entries").WithArgs("sk1").WillReturnRows(rows)

	store := NewStore(db)
	episodes, err := store.ListEpisodes(context.Background(), "sk1")
	require.NoError(t, err)
	require.Len(t, episodes, 1)
	require.Equal(t, "Intro", episodes[0].Title)
}
