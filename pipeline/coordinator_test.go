package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlaceSourceFileWritesUnderPrefix(t *testing.T) {
	// The configured recording dir is typically unwritable in a test
	// sandbox, exercising the fall-back-to-temp-dir path (spec §4.9 step 1).
	path, err := placeSourceFile("sk1_up1", strings.NewReader("video-bytes"))
	require.NoError(t, err)
	defer os.Remove(path)

	require.True(t, strings.HasSuffix(path, "sk1_up1_source"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "video-bytes", string(data))
}

func TestUploadThumbnailURLIsConcurrencySafe(t *testing.T) {
	up := &Upload{RequestID: "r1"}
	require.Equal(t, "", up.ThumbnailURL())

	done := make(chan struct{})
	go func() {
		up.setThumbnailURL("https://cdn.example.com/thumb.jpg")
		close(done)
	}()
	<-done
	require.Equal(t, "https://cdn.example.com/thumb.jpg", up.ThumbnailURL())
}

func TestCleanupRemovesScratchFiles(t *testing.T) {
	dir := t.TempDir()
	outputDir := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(outputDir, 0o755))
	sourcePath := filepath.Join(dir, "source")
	require.NoError(t, os.WriteFile(sourcePath, []byte("x"), 0o644))

	up := &Upload{RequestID: "r1", OutputDir: outputDir, SourcePath: sourcePath}
	cleanup(up)

	_, err := os.Stat(outputDir)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(sourcePath)
	require.True(t, os.IsNotExist(err))
}
