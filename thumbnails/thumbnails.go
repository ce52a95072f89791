// Package thumbnails implements the Thumbnailer component (spec §4.4):
// extract a single frame at a safe offset, center-crop/scale it to a fixed
// box, and upload it with retry-with-backoff and a post-upload HEAD check.
package thumbnails

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/catalyst-ingest/catalyst-ingest/clients"
	"github.com/catalyst-ingest/catalyst-ingest/config"
	"github.com/catalyst-ingest/catalyst-ingest/log"
	"github.com/catalyst-ingest/catalyst-ingest/video"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Generate extracts, crops and uploads the thumbnail for one upload,
// returning the CDN-facing URL on success. On any failure the caller is
// expected to fall back to the platform default placeholder; Generate never
// returns a partially-valid URL.
func Generate(requestID, sourcePath string, orientation video.Orientation, durationSecs float64, destOSURL, filename, cdnURL string) (string, error) {
	return GenerateAt(requestID, sourcePath, orientation, safeOffsetSecs(durationSecs), destOSURL, filename, cdnURL)
}

// GenerateAt is Generate with an explicit frame offset, rather than one
// derived from the whole file's duration. EpisodeJob uses this to take a
// thumbnail from inside a cut episode's own safe offset, not the upload's.
func GenerateAt(requestID, sourcePath string, orientation video.Orientation, offsetSecs float64, destOSURL, filename, cdnURL string) (string, error) {
	if err := waitForStableFileSize(sourcePath); err != nil {
		return "", fmt.Errorf("source file never stabilized: %w", err)
	}

	localPath, err := extractFrame(requestID, sourcePath, orientation, offsetSecs)
	if err != nil {
		return "", fmt.Errorf("failed to extract thumbnail frame: %w", err)
	}
	defer os.Remove(localPath)

	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to read extracted thumbnail: %w", err)
	}

	err = clients.RetryWithSchedule(config.BlobUploadBackoffSchedule, func(attempt int) error {
		uploadErr := clients.UploadToOSURL(destOSURL, filename, bytes.NewReader(data), config.BlobUploadAttemptTimeout)
		if uploadErr != nil {
			log.Log(requestID, "thumbnail upload attempt failed", "attempt", attempt, "err", uploadErr)
		}
		return uploadErr
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload thumbnail after retries: %w", err)
	}

	if err := clients.HeadCheck(cdnURL); err != nil {
		return "", fmt.Errorf("thumbnail HEAD check failed: %w", err)
	}

	return cdnURL, nil
}

func safeOffsetSecs(durationSecs float64) float64 {
	if durationSecs < 1 {
		return 0
	}
	return config.ThumbnailSafeOffsetSecs
}

func extractFrame(requestID, sourcePath string, orientation video.Orientation, offsetSecs float64) (string, error) {
	out, err := os.CreateTemp(os.TempDir(), "thumb-*.jpg")
	if err != nil {
		return "", err
	}
	outPath := out.Name()
	out.Close()

	w, h := config.ThumbnailLandscapeW, config.ThumbnailLandscapeH
	if orientation.IsPortrait {
		w, h = config.ThumbnailPortraitW, config.ThumbnailPortraitH
	}

	vf := fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d", w, h, w, h)
	if orientation.FFmpegFilter != "" {
		vf = orientation.FFmpegFilter + "," + vf
	}

	offset := fmt.Sprintf("%.3f", offsetSecs)

	var ffmpegErr bytes.Buffer
	err = ffmpeg.
		Input(sourcePath, ffmpeg.KwArgs{"ss": offset}).
		Output(outPath, ffmpeg.KwArgs{
			"vframes": "1",
			"vf":      vf,
		}).
		OverWriteOutput().WithErrorOutput(&ffmpegErr).Run()
	if err != nil {
		os.Remove(outPath)
		log.Log(requestID, "ffmpeg thumbnail extraction failed", "err", err, "stderr", ffmpegErr.String())
		return "", fmt.Errorf("ffmpeg: %w", err)
	}
	return outPath, nil
}

// waitForStableFileSize polls the source file's size until it stops
// changing for FileStableRequiredQuiet, defeating a race where the upload
// handler has not finished flushing the multipart body to disk.
func waitForStableFileSize(path string) error {
	deadline := time.Now().Add(config.FileStableMaxWait)
	var lastSize int64 = -1
	var stableSince time.Time

	for {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		size := info.Size()

		if size == lastSize {
			if stableSince.IsZero() {
				stableSince = time.Now()
			}
			if time.Since(stableSince) >= config.FileStableRequiredQuiet {
				return nil
			}
		} else {
			lastSize = size
			stableSince = time.Time{}
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("timed out after %s waiting for file size to stabilize", config.FileStableMaxWait)
		}
		time.Sleep(config.FileStablePollInterval)
	}
}
