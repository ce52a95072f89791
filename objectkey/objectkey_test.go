package objectkey

import (
	"testing"

	"github.com/catalyst-ingest/catalyst-ingest/config"
	"github.com/stretchr/testify/require"
)

func TestKeyLayout(t *testing.T) {
	require.Equal(t, "sk_A_u1", Prefix("sk_A", "u1"))
	require.Equal(t, "clips/sk_A/u1/sk_A_u1_1080p.m3u8", Key("sk_A", "u1", "sk_A_u1_1080p.m3u8"))
}

func TestEpisodeKeyNestsUnderEpisodeNumber(t *testing.T) {
	got := EpisodeKey("sk_A", "u1", 3, "sk_A_u1_ep3_1080p.m3u8")
	require.Equal(t, "clips/sk_A/u1/episodes/episode_3/sk_A_u1_ep3_1080p.m3u8", got)
}

func TestVariantAndSegmentNames(t *testing.T) {
	require.Equal(t, "sk_A_u1_master.m3u8", MasterPlaylistName("sk_A", "u1"))
	require.Equal(t, "sk_A_u1_1080p.m3u8", VariantPlaylistName("sk_A", "u1", config.RenditionLadder[0].Name))
	require.Equal(t, "sk_A_u1_1080p_007.ts", SegmentName("sk_A", "u1", config.RenditionLadder[0].Name, 7))
	require.Equal(t, "sk_A_u1_thumb.jpg", ThumbnailName("sk_A", "u1"))
}

func TestCDNURLTrimsTrailingSlashOnBase(t *testing.T) {
	require.Equal(t, "https://cdn.example.com/clips/sk_A/u1/x.m3u8", CDNURL("https://cdn.example.com/", "clips/sk_A/u1/x.m3u8"))
	require.Equal(t, "https://cdn.example.com/clips/sk_A/u1/x.m3u8", CDNURL("https://cdn.example.com", "clips/sk_A/u1/x.m3u8"))
}
