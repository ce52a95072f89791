package thumbnails

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSafeOffsetSecs(t *testing.T) {
	require.Equal(t, 0.0, safeOffsetSecs(0.5))
	require.Equal(t, 1.0, safeOffsetSecs(1.2))
	require.Equal(t, 1.0, safeOffsetSecs(120))
}

func TestWaitForStableFileSizeReturnsOnceWritesStop(t *testing.T) {
	f, err := os.CreateTemp(os.TempDir(), "thumb-stability-*")
	require.NoError(t, err)
	defer os.Remove(f.Name())

	_, err = f.WriteString("not yet complete")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	err = waitForStableFileSize(f.Name())
	require.NoError(t, err)
}

func TestWaitForStableFileSizeErrorsOnMissingFile(t *testing.T) {
	err := waitForStableFileSize("/tmp/this/does/not/exist-thumb-source")
	require.Error(t, err)
}

func TestWaitForStableFileSizeObservesGrowingFile(t *testing.T) {
	f, err := os.CreateTemp(os.TempDir(), "thumb-growing-*")
	require.NoError(t, err)
	defer os.Remove(f.Name())
	path := f.Name()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 3; i++ {
			time.Sleep(50 * time.Millisecond)
			_, _ = f.WriteString("more-bytes")
		}
		f.Close()
		close(done)
	}()

	err = waitForStableFileSize(path)
	<-done
	require.NoError(t, err)
}
