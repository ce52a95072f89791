package video

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/vansante/go-ffprobe.v2"
)

func TestItRejectsWhenNoVideoTrackPresent(t *testing.T) {
	_, err := parseProbeOutput(&ffprobe.ProbeData{
		Streams: []*ffprobe.Stream{
			{CodecType: "audio"},
		},
	})
	require.ErrorContains(t, err, "no video stream found")
}

func TestLandscapeNoRotation(t *testing.T) {
	result, err := parseProbeOutput(&ffprobe.ProbeData{
		Streams: []*ffprobe.Stream{
			{CodecType: "video", Width: 1280, Height: 720, Duration: "10.0"},
		},
		Format: &ffprobe.Format{DurationSeconds: 10.0},
	})
	require.NoError(t, err)
	require.False(t, result.IsPortrait)
	require.Equal(t, 1280, result.DisplayWidth)
	require.Equal(t, 720, result.DisplayHeight)
	require.False(t, result.HasAudio)
}

func TestAudioTrackDetected(t *testing.T) {
	result, err := parseProbeOutput(&ffprobe.ProbeData{
		Streams: []*ffprobe.Stream{
			{CodecType: "video", Width: 640, Height: 360, Duration: "1.2"},
			{CodecType: "audio"},
		},
		Format: &ffprobe.Format{DurationSeconds: 1.2},
	})
	require.NoError(t, err)
	require.True(t, result.HasAudio)
	require.Equal(t, 1.2, result.Duration)
}

func TestNormalizeRotation(t *testing.T) {
	require.Equal(t, int64(270), normalizeRotation(-90))
	require.Equal(t, int64(90), normalizeRotation(90))
	require.Equal(t, int64(0), normalizeRotation(0))
	require.Equal(t, int64(180), normalizeRotation(180))
}
