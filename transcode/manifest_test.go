package transcode

import (
	"strings"
	"testing"

	"github.com/catalyst-ingest/catalyst-ingest/config"
	"github.com/stretchr/testify/require"
)

func TestBuildMasterPlaylistOrdersHighestBandwidthFirst(t *testing.T) {
	variants := []VariantRef{
		{Rendition: config.RenditionLadder[3], URL: "https://cdn.example.com/key_360p.m3u8"},
		{Rendition: config.RenditionLadder[0], URL: "https://cdn.example.com/key_1080p.m3u8"},
		{Rendition: config.RenditionLadder[1], URL: "https://cdn.example.com/key_720p.m3u8"},
	}

	out := string(BuildMasterPlaylist(variants))

	require.True(t, strings.HasPrefix(out, "#EXTM3U"))
	require.Contains(t, out, "#EXT-X-VERSION:3")

	idx1080 := strings.Index(out, "key_1080p.m3u8")
	idx720 := strings.Index(out, "key_720p.m3u8")
	idx360 := strings.Index(out, "key_360p.m3u8")
	require.True(t, idx1080 < idx720)
	require.True(t, idx720 < idx360)
}

func TestBuildMasterPlaylistUsesPortraitResolution(t *testing.T) {
	r := config.RenditionLadder[0]
	variants := []VariantRef{
		{Rendition: r, IsPortrait: true, URL: "https://cdn.example.com/key_1080p.m3u8"},
	}

	out := string(BuildMasterPlaylist(variants))
	require.Contains(t, out, "RESOLUTION=")
	require.NotContains(t, out, fmtResolution(r.LandscapeW, r.LandscapeH))
	require.Contains(t, out, fmtResolution(r.PortraitW, r.PortraitH))
}

func fmtResolution(w, h int) string {
	return strings.Join([]string{
		"RESOLUTION=",
	}, "") + itoa(w) + "x" + itoa(h)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := ""
	for n > 0 {
		digits = string(rune('0'+n%10)) + digits
		n /= 10
	}
	return digits
}
