// Package segmenter implements the Segmenter component (spec §4.2): invoke
// a local FFmpeg subprocess to produce one HLS rendition (variant playlist
// plus ordered segment files) from an input file.
package segmenter

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/catalyst-ingest/catalyst-ingest/config"
	"github.com/catalyst-ingest/catalyst-ingest/log"
	"github.com/catalyst-ingest/catalyst-ingest/subprocess"
	"github.com/catalyst-ingest/catalyst-ingest/video"
)

// Job describes one Segmenter invocation: one rendition, from one source,
// into one output directory, under a shared filename prefix.
type Job struct {
	RequestID   string
	SourcePath  string
	OutputDir   string
	Prefix      string
	Rendition   config.RenditionSpec
	Orientation video.Orientation
	HasAudio    bool

	// ClipStartSecs/ClipDurationSecs cut a sub-range of SourcePath instead of
	// segmenting the whole file; used by EpisodeJob (spec §4.11). Zero
	// ClipDurationSecs segments to the end of the file.
	ClipStartSecs    float64
	ClipDurationSecs float64
}

// Result names the variant playlist Segment produced, relative to OutputDir.
type Result struct {
	PlaylistFilename string
	SegmentCount     int
}

// Run invokes FFmpeg to emit one HLS variant. Each invocation is bounded by
// config.SegmenterTimeout; on expiry the subprocess is killed and an error
// returned. The caller is responsible for counting this against Admission.
func Run(job Job) (Result, error) {
	playlistFilename := fmt.Sprintf("%s_%s.m3u8", job.Prefix, job.Rendition.Name)
	segmentPattern := fmt.Sprintf("%s_%s_%%03d.ts", job.Prefix, job.Rendition.Name)

	ctx, cancel := context.WithTimeout(context.Background(), config.SegmenterTimeout)
	defer cancel()

	args := buildArgs(job, segmentPattern, playlistFilename)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Dir = job.OutputDir
	if err := subprocess.LogOutputs(cmd); err != nil {
		return Result{}, fmt.Errorf("failed to attach ffmpeg output pipes: %w", err)
	}

	start := time.Now()
	err := cmd.Run()
	log.Log(job.RequestID, "segmenter invocation finished", "rendition", job.Rendition.Name, "took", time.Since(start).String())

	if ctx.Err() == context.DeadlineExceeded {
		return Result{}, fmt.Errorf("segmenter timed out after %s for rendition %s", config.SegmenterTimeout, job.Rendition.Name)
	}
	if err != nil {
		return Result{}, fmt.Errorf("ffmpeg exited with error for rendition %s: %w", job.Rendition.Name, err)
	}

	playlistPath := filepath.Join(job.OutputDir, playlistFilename)
	if _, statErr := os.Stat(playlistPath); statErr != nil {
		return Result{}, fmt.Errorf("segmenter did not produce a playlist for rendition %s: %w", job.Rendition.Name, statErr)
	}

	segmentCount, err := countSegments(job.OutputDir, job.Prefix, job.Rendition.Name)
	if err != nil {
		return Result{}, err
	}
	if segmentCount == 0 {
		return Result{}, fmt.Errorf("segmenter produced a playlist with no segments for rendition %s", job.Rendition.Name)
	}

	return Result{PlaylistFilename: playlistFilename, SegmentCount: segmentCount}, nil
}

func buildArgs(job Job, segmentPattern, playlistFilename string) []string {
	w, h := job.Rendition.LandscapeW, job.Rendition.LandscapeH
	if job.Orientation.IsPortrait {
		w, h = job.Rendition.PortraitW, job.Rendition.PortraitH
	}

	vf := fmt.Sprintf("scale=%d:%d", w, h)
	// Rotation is only corrected for portrait video (spec §4.2): a landscape
	// source's displayed orientation is already correct regardless of its
	// rotation metadata.
	if job.Orientation.IsPortrait && job.Orientation.FFmpegFilter != "" {
		vf = job.Orientation.FFmpegFilter + "," + vf
	}

	args := []string{"-y"}
	if job.ClipStartSecs > 0 {
		args = append(args, "-ss", fmt.Sprintf("%.3f", job.ClipStartSecs))
	}
	args = append(args, "-i", job.SourcePath)
	if job.ClipDurationSecs > 0 {
		args = append(args, "-t", fmt.Sprintf("%.3f", job.ClipDurationSecs))
	}
	args = append(args,
		"-vf", vf,
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", fmt.Sprintf("%d", job.Rendition.CRF),
		"-threads", fmt.Sprintf("%d", threadCount()),
		// Rotation metadata is stripped so players do not double-rotate
		// output that has already been rotated by the filter above.
		"-metadata:s:v:0", "rotate=0",
	}

	if job.HasAudio {
		args = append(args,
			"-c:a", "aac",
			"-b:a", fmt.Sprintf("%dk", job.Rendition.AudioBitrateKbps),
		)
	} else {
		args = append(args, "-an")
	}

	args = append(args,
		"-f", "hls",
		"-hls_time", fmt.Sprintf("%d", config.SegmentDurationSecs),
		"-hls_playlist_type", "vod",
		"-hls_segment_filename", segmentPattern,
		playlistFilename,
	)
	return args
}

// threadCount targets roughly 95% of host CPUs (spec §4.2), never less than one.
func threadCount() int {
	n := int(float64(runtime.NumCPU()) * 0.95)
	if n < 1 {
		return 1
	}
	return n
}

func countSegments(dir, prefix string, rendition config.RenditionName) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, fmt.Sprintf("%s_%s_*.ts", prefix, rendition)))
	if err != nil {
		return 0, fmt.Errorf("failed to count segments for rendition %s: %w", rendition, err)
	}
	return len(matches), nil
}
