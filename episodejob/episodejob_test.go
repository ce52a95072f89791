package episodejob

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/catalyst-ingest/catalyst-ingest/catalog"
	"github.com/stretchr/testify/require"
)

func TestRunReturnsErrorWhenStreamKeyHasNoOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{
		"stream_key", "owner_email", "collaborator_email", "is_collaborator_key", "channel_name", "series_name", "creator_id",
	}).AddRow("sk1", "", nil, false, "channel1", nil, "creator1")
	mock.ExpectQuery("select .* from stream_key_mappings").WithArgs("sk1").WillReturnRows(rows)

	store := catalog.NewStore(db)
	job := New(store, NewTranscriptionClient("http://example.invalid", ""), NewLLMClient("http://example.invalid", "", "gpt-4o-mini"))

	err = job.Run(context.Background(), Input{StreamKey: "sk1", SourcePath: "/tmp/does-not-matter.mp4"})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunStopsAfterEmptyTranscriptWithoutCallingLLM(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{
		"stream_key", "owner_email", "collaborator_email", "is_collaborator_key", "channel_name", "series_name", "creator_id",
	}).AddRow("sk1", "owner1", nil, false, "channel1", nil, "creator1")
	mock.ExpectQuery("select .* from stream_key_mappings").WithArgs("sk1").WillReturnRows(rows)

	transcriptionServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(transcriptionResponse{Segments: nil})
	}))
	defer transcriptionServer.Close()

	llmCalled := false
	llmServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		llmCalled = true
	}))
	defer llmServer.Close()

	store := catalog.NewStore(db)
	job := New(store, NewTranscriptionClient(transcriptionServer.URL, ""), NewLLMClient(llmServer.URL, "", "gpt-4o-mini"))

	f, err := os.CreateTemp(t.TempDir(), "source-*.mp4")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	err = job.Run(context.Background(), Input{StreamKey: "sk1", SourcePath: f.Name()})
	require.NoError(t, err)
	require.False(t, llmCalled, "LLM must not be called when transcription returns no segments")
	require.NoError(t, mock.ExpectationsWereMet())
}
