package video

import (
	"context"
	"strconv"
	"time"

	"github.com/catalyst-ingest/catalyst-ingest/log"
	"github.com/cenkalti/backoff/v4"
	"gopkg.in/vansante/go-ffprobe.v2"
)

// DefaultResult is substituted whenever probing fails for any reason (spec
// §4.1): the pipeline must proceed with best-effort defaults rather than
// fail the upload over an unreadable input.
var DefaultResult = Result{
	Width: 1280, Height: 720,
	DisplayWidth: 1280, DisplayHeight: 720,
	Rotation: 0, IsPortrait: false,
	Duration: 0, HasAudio: true,
}

// Result is Probe's tagged output record (spec §9 design note: "model
// Probe's result as a tagged record with explicit fields"). Width/Height are
// the raw container frame dimensions; DisplayWidth/DisplayHeight are the
// dimensions after rotation is applied, which is what every downstream
// transform (Thumbnailer, Segmenter, PlaylistBuilder) must use.
type Result struct {
	Width, Height               int
	DisplayWidth, DisplayHeight int
	Rotation                    int64
	IsPortrait                  bool
	Duration                    float64
	HasAudio                    bool
}

type Prober interface {
	ProbeFile(requestID, path string) Result
}

type Probe struct{}

// ProbeFile never returns an error: on any probe failure it logs and returns
// DefaultResult, per spec §4.1.
func (p Probe) ProbeFile(requestID, path string) Result {
	result, err := p.runProbeWithRetry(path)
	if err != nil {
		log.LogError(requestID, "probe failed, falling back to defaults", err, "path", path)
		return DefaultResult
	}
	return result
}

func (p Probe) runProbeWithRetry(path string) (Result, error) {
	var data *ffprobe.ProbeData
	operation := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		d, err := ffprobe.ProbeURL(ctx, path, "-loglevel", "error")
		if err != nil {
			return err
		}
		data = d
		return nil
	}

	backOff := backoff.NewExponentialBackOff()
	backOff.InitialInterval = 500 * time.Millisecond
	backOff.MaxInterval = 2 * time.Second
	backOff.MaxElapsedTime = 0
	if err := backoff.Retry(operation, backoff.WithMaxRetries(backOff, 3)); err != nil {
		return Result{}, err
	}
	return parseProbeOutput(data)
}

func parseProbeOutput(probeData *ffprobe.ProbeData) (Result, error) {
	videoStream := probeData.FirstVideoStream()
	if videoStream == nil {
		return Result{}, errNoVideoStream
	}

	width, height := videoStream.Width, videoStream.Height

	var rotation int64
	if displaySideData, err := videoStream.SideDataList.GetSideData("Display Matrix"); err == nil {
		if r, err := displaySideData.GetInt("rotation"); err == nil {
			rotation = r
		}
	}

	displayWidth, displayHeight := width, height
	if norm := normalizeRotation(rotation); norm == 90 || norm == 270 {
		displayWidth, displayHeight = height, width
	}
	isPortrait := displayHeight > displayWidth

	var duration float64
	if d, err := strconv.ParseFloat(videoStream.Duration, 64); err == nil && d > 0 {
		duration = d
	} else if probeData.Format != nil {
		duration = probeData.Format.DurationSeconds
	}

	return Result{
		Width: width, Height: height,
		DisplayWidth: displayWidth, DisplayHeight: displayHeight,
		Rotation:   rotation,
		IsPortrait: isPortrait,
		Duration:   duration,
		HasAudio:   probeData.FirstAudioStream() != nil,
	}, nil
}

func normalizeRotation(r int64) int64 {
	r = r % 360
	if r < 0 {
		r += 360
	}
	return r
}

var errNoVideoStream = &probeError{"no video stream found"}

type probeError struct{ msg string }

func (e *probeError) Error() string { return e.msg }
