package clients

import (
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const exampleFileContents = "زن, زندگی, آزادی "

func TestItCanDownloadAnOSURL(t *testing.T) {
	f, err := os.CreateTemp(os.TempDir(), "manifest*.m3u8")
	require.NoError(t, err)

	_, err = f.WriteString(exampleFileContents)
	require.NoError(t, err)

	rc, err := DownloadOSURL(f.Name())
	require.NoError(t, err)

	buf := new(strings.Builder)
	_, err = io.Copy(buf, rc)
	require.NoError(t, err)

	require.Equal(t, exampleFileContents, buf.String())
}

func TestItFailsWithInvalidURLs(t *testing.T) {
	_, err := DownloadOSURL("s4+htps://123/456.m3u8")
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to parse OS URL")
}

func TestItFailsWithMissingFile(t *testing.T) {
	_, err := DownloadOSURL("/tmp/this/should/not/exist.m3u8")
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to read from OS URL")
}

func TestItCanUploadAndDownloadAnOSURL(t *testing.T) {
	dir, err := os.MkdirTemp(os.TempDir(), "object-store-client-test-*")
	require.NoError(t, err)

	err = UploadToOSURL(dir, "rendition_1080p_000.ts", strings.NewReader("segment-bytes"), 1*time.Second)
	require.NoError(t, err)

	rc, err := DownloadOSURL(dir + "/rendition_1080p_000.ts")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "segment-bytes", string(data))
}
