package clients

import (
	"fmt"
	"time"
)

// RetryWithSchedule runs op once per entry in schedule, sleeping the named
// duration between attempts. This backs BlobUploader and Thumbnailer's fixed
// 3-attempt, 500/1000/2000ms upload retry contract, as distinct from the
// exponential backoff Probe uses for transient reads.
func RetryWithSchedule(schedule []time.Duration, op func(attempt int) error) error {
	var lastErr error
	for attempt, wait := range schedule {
		lastErr = op(attempt)
		if lastErr == nil {
			return nil
		}
		if attempt < len(schedule)-1 {
			time.Sleep(wait)
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", len(schedule), lastErr)
}

// HeadCheck confirms an object is readable, satisfying the "HEAD before the
// URL is considered valid" requirement on thumbnail and variant-playlist
// uploads.
func HeadCheck(osURL string) error {
	rc, err := GetOSURL(osURL, "bytes=0-0")
	if err != nil {
		return err
	}
	return rc.Body.Close()
}
