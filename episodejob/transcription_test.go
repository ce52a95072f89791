package episodejob

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTranscribePostsMultipartAndParsesSegments(t *testing.T) {
	var gotAuth, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, _, err := r.FormFile("video")
		require.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(transcriptionResponse{
			Segments: []TranscriptSegment{{Start: 0, End: 1.5, Text: "hi"}},
		})
	}))
	defer server.Close()

	f, err := os.CreateTemp(t.TempDir(), "source-*.mp4")
	require.NoError(t, err)
	_, err = f.WriteString("not-really-a-video")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	client := NewTranscriptionClient(server.URL, "secret-key")
	segments, err := client.Transcribe(f.Name())
	require.NoError(t, err)
	require.Equal(t, "Bearer secret-key", gotAuth)
	require.Contains(t, gotContentType, "multipart/form-data")
	require.Equal(t, []TranscriptSegment{{Start: 0, End: 1.5, Text: "hi"}}, segments)
}

func TestTranscribeReturnsErrorOnNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer server.Close()

	f, err := os.CreateTemp(t.TempDir(), "source-*.mp4")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	client := NewTranscriptionClient(server.URL, "")
	_, err = client.Transcribe(f.Name())
	require.Error(t, err)
}

func TestTranscribeMissingSourceFileReturnsError(t *testing.T) {
	client := NewTranscriptionClient("http://example.invalid", "")
	_, err := client.Transcribe("/tmp/this/does/not/exist-source.mp4")
	require.Error(t, err)
}
