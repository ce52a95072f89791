package segmenter

import (
	"strings"
	"testing"

	"github.com/catalyst-ingest/catalyst-ingest/config"
	"github.com/catalyst-ingest/catalyst-ingest/video"
	"github.com/stretchr/testify/require"
)

func TestBuildArgsLandscapeIgnoresRotationFilter(t *testing.T) {
	job := Job{
		Prefix:      "sk_A_u1",
		Rendition:   config.RenditionLadder[0],
		Orientation: video.Orientation{IsPortrait: false, FFmpegFilter: "transpose=1"},
		HasAudio:    true,
	}
	args := buildArgs(job, "sk_A_u1_1080p_%03d.ts", "sk_A_u1_1080p.m3u8")
	joined := strings.Join(args, " ")

	require.Contains(t, joined, "scale=1920:1080")
	require.NotContains(t, joined, "transpose")
	require.Contains(t, joined, "-crf 20")
	require.Contains(t, joined, "-b:a 192k")
}

func TestBuildArgsPortraitAppliesRotationFilter(t *testing.T) {
	job := Job{
		Prefix:      "sk_A_u1",
		Rendition:   config.RenditionLadder[1],
		Orientation: video.Orientation{IsPortrait: true, FFmpegFilter: "transpose=1"},
		HasAudio:    true,
	}
	args := buildArgs(job, "sk_A_u1_720p_%03d.ts", "sk_A_u1_720p.m3u8")
	joined := strings.Join(args, " ")

	require.Contains(t, joined, "transpose=1,scale=720:1280")
}

func TestBuildArgsNoAudioOmitsAudioCodec(t *testing.T) {
	job := Job{
		Prefix:      "sk_A_u1",
		Rendition:   config.RenditionLadder[3],
		Orientation: video.Orientation{},
		HasAudio:    false,
	}
	args := buildArgs(job, "sk_A_u1_360p_%03d.ts", "sk_A_u1_360p.m3u8")
	joined := strings.Join(args, " ")

	require.Contains(t, joined, "-an")
	require.NotContains(t, joined, "-c:a")
}

func TestThreadCountNeverBelowOne(t *testing.T) {
	require.GreaterOrEqual(t, threadCount(), 1)
}

func TestBuildArgsClipWindowInsertsSeekAndDurationAroundInput(t *testing.T) {
	job := Job{
		Prefix:           "sk_A_u1_ep1",
		SourcePath:       "/tmp/source.mp4",
		Rendition:        config.RenditionLadder[0],
		Orientation:      video.Orientation{},
		HasAudio:         true,
		ClipStartSecs:    125.5,
		ClipDurationSecs: 600,
	}
	args := buildArgs(job, "sk_A_u1_ep1_1080p_%03d.ts", "sk_A_u1_ep1_1080p.m3u8")
	joined := strings.Join(args, " ")

	require.Contains(t, joined, "-ss 125.500 -i /tmp/source.mp4 -t 600.000")
}

func TestBuildArgsNoClipWindowOmitsSeekAndDurationFlags(t *testing.T) {
	job := Job{
		Prefix:      "sk_A_u1",
		SourcePath:  "/tmp/source.mp4",
		Rendition:   config.RenditionLadder[0],
		Orientation: video.Orientation{},
		HasAudio:    true,
	}
	args := buildArgs(job, "sk_A_u1_1080p_%03d.ts", "sk_A_u1_1080p.m3u8")
	joined := strings.Join(args, " ")

	require.NotContains(t, joined, "-ss")
	require.NotContains(t, joined, "-t ")
}
