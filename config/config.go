package config

import (
	"time"
)

var Version string

// Used so that tests can generate fixed timestamps instead of relying on time.Now
var Clock TimestampGenerator = RealTimestampGenerator{}

// Recording directory that the external RTMP front-end drops finished files
// into, and that the HTTP upload handler writes uploaded bytes under.
var PathRecordingDir = "/var/lib/catalyst-ingest/recordings"

// Maximum accepted multipart upload size (spec §6): 2 GiB.
const MaxInputFileSizeBytes = 2 * 1024 * 1024 * 1024

// Fixed HLS segment duration (spec §4.2).
const SegmentDurationSecs = 6

// Per-Segmenter-invocation wall clock cap (spec §5).
const SegmenterTimeout = 30 * time.Minute

// Per blob-upload-attempt budget and retry count (spec §4.4/§4.5/§7).
const BlobUploadAttemptTimeout = 5 * time.Second
const BlobUploadMaxAttempts = 3

var BlobUploadBackoffSchedule = []time.Duration{
	500 * time.Millisecond,
	1000 * time.Millisecond,
	2000 * time.Millisecond,
}

// How long Admission waits between a deferred admission retry before giving
// up and dropping the Upload from the ProcessingQueue (spec §4.8).
const AdmissionRetryWait = 30 * time.Second
const AdmissionMaxDeferredAttempts = 2

// Delay MetadataStore waits after writing so other eventually-consistent
// readers converge (spec §4.7, Open Question #2 resolved in SPEC_FULL.md).
var MetadataConvergeWait = 2 * time.Second

// RenditionName identifies one rung of the fixed adaptive ladder (spec §3).
type RenditionName string

const (
	Rendition1080p RenditionName = "1080p"
	Rendition720p  RenditionName = "720p"
	Rendition480p  RenditionName = "480p"
	Rendition360p  RenditionName = "360p"
)

// RenditionSpec is the declarative, fixed ladder from spec §3/§4.2/§6.
// Ordering is highest-to-lowest, matching the order the initial pass and the
// master playlist both require.
type RenditionSpec struct {
	Name              RenditionName
	LandscapeW        int
	LandscapeH        int
	PortraitW         int
	PortraitH         int
	CRF               int
	AudioBitrateKbps  int
	MasterBandwidthBps int
}

var RenditionLadder = []RenditionSpec{
	{Name: Rendition1080p, LandscapeW: 1920, LandscapeH: 1080, PortraitW: 1080, PortraitH: 1920, CRF: 20, AudioBitrateKbps: 192, MasterBandwidthBps: 2_500_000},
	{Name: Rendition720p, LandscapeW: 1280, LandscapeH: 720, PortraitW: 720, PortraitH: 1280, CRF: 22, AudioBitrateKbps: 128, MasterBandwidthBps: 1_300_000},
	{Name: Rendition480p, LandscapeW: 854, LandscapeH: 480, PortraitW: 480, PortraitH: 854, CRF: 24, AudioBitrateKbps: 96, MasterBandwidthBps: 700_000},
	{Name: Rendition360p, LandscapeW: 640, LandscapeH: 360, PortraitW: 360, PortraitH: 640, CRF: 26, AudioBitrateKbps: 64, MasterBandwidthBps: 400_000},
}

// PrimaryRendition is segmented and published before the HTTP response
// returns (spec §4.9 step 4); the rest follow in the background.
func PrimaryRendition() RenditionSpec { return RenditionLadder[0] }

func BackgroundRenditions() []RenditionSpec { return RenditionLadder[1:] }

// Admission concurrency ceiling derived from installed memory (spec §4.8).
func MaxProcessesForMemory(totalMemBytes uint64) int {
	const gib = 1024 * 1024 * 1024
	switch {
	case totalMemBytes >= 8*gib:
		return 6
	case totalMemBytes >= 4*gib:
		return 4
	case totalMemBytes >= 2*gib:
		return 2
	default:
		return 1
	}
}

// Admission denies new work once used memory crosses this percentage.
const MaxMemoryUsedPercent = 85.0

// Thumbnailer box dimensions (spec §4.4) and safe-offset rule.
const ThumbnailLandscapeW = 640
const ThumbnailLandscapeH = 360
const ThumbnailPortraitW = 360
const ThumbnailPortraitH = 640
const ThumbnailSafeOffsetSecs = 1.0

// File-size-stability wait before the Thumbnailer invokes FFmpeg (spec §4.4).
const FileStablePollInterval = 100 * time.Millisecond
const FileStableRequiredQuiet = 200 * time.Millisecond
const FileStableMaxWait = 2 * time.Second

// EpisodeJob preferred duration window (spec §4.11).
const EpisodeMinDurationSecs = 5 * 60
const EpisodeMaxDurationSecs = 30 * 60
