// Package blobuploader implements BlobUploader (spec §4.5): upload a set of
// local files, picking a content type per extension, under the canonical
// per-upload object-key prefix.
package blobuploader

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/catalyst-ingest/catalyst-ingest/clients"
	"github.com/catalyst-ingest/catalyst-ingest/config"
	"github.com/catalyst-ingest/catalyst-ingest/log"
	"github.com/catalyst-ingest/catalyst-ingest/objectkey"
	"github.com/livepeer/go-tools/drivers"
)

// contentType picks the MIME type for an object key's extension (spec §4.5);
// everything unrecognized falls back to a generic binary stream.
func contentType(filename string) string {
	switch filepath.Ext(filename) {
	case ".m3u8":
		return "application/vnd.apple.mpegurl"
	case ".ts":
		return "video/mp2t"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}

// UploadDir uploads every file in localDir matching one of patterns (exact
// names or "*" globs) to destOSURL, under clips/<streamKey>/<uploadId>/. Not
// transactional: callers must themselves order calls so a playlist is
// uploaded only once its referenced segments already are (spec §4.5).
func UploadDir(requestID, localDir, destOSURL, cdnBase, streamKey, uploadID string, patterns []string) error {
	seen := map[string]bool{}
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(localDir, pattern))
		if err != nil {
			return fmt.Errorf("invalid upload pattern %q: %w", pattern, err)
		}
		for _, match := range matches {
			if seen[match] {
				continue
			}
			seen[match] = true
			basename := filepath.Base(match)
			key := objectkey.Key(streamKey, uploadID, basename)
			if err := uploadFile(requestID, match, destOSURL, key, objectkey.CDNURL(cdnBase, key)); err != nil {
				return err
			}
		}
	}
	return nil
}

// uploadFile uploads one local file to key under destOSURL, retrying per
// config.BlobUploadBackoffSchedule (spec §5: "5-second per-attempt budget
// with up to 3 attempts") and HEAD-verifying the object at cdnURL once
// uploaded (spec §4.5 "verify existence", §7 "HEAD-verified") — the same
// retry-then-verify contract thumbnails.GenerateAt already applies to
// thumbnail uploads.
func uploadFile(requestID, localPath, destOSURL, key, cdnURL string) error {
	basename := filepath.Base(localPath)
	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("failed to read %q for upload: %w", localPath, err)
	}

	err = clients.RetryWithSchedule(config.BlobUploadBackoffSchedule, func(attempt int) error {
		uploadErr := clients.UploadToOSURLFields(destOSURL, key, bytes.NewReader(data), config.BlobUploadAttemptTimeout, &drivers.FileProperties{
			ContentType: contentType(basename),
		})
		if uploadErr != nil {
			log.Log(requestID, "object upload attempt failed", "key", key, "attempt", attempt, "err", uploadErr)
		}
		return uploadErr
	})
	if err != nil {
		return fmt.Errorf("failed to upload %q after retries: %w", basename, err)
	}

	if err := clients.HeadCheck(cdnURL); err != nil {
		return fmt.Errorf("HEAD check failed for %q: %w", basename, err)
	}

	log.Log(requestID, "uploaded object", "key", key)
	return nil
}

// UploadEpisodeFile uploads a single local file under an episode's object
// key prefix (clips/<streamKey>/<uploadId>/episodes/episode_<n>/), for
// EpisodeJob (spec §4.11, §6).
func UploadEpisodeFile(requestID, localPath, destOSURL, cdnBase, streamKey, uploadID string, episodeNumber int) error {
	basename := filepath.Base(localPath)
	key := objectkey.EpisodeKey(streamKey, uploadID, episodeNumber, basename)
	return uploadFile(requestID, localPath, destOSURL, key, objectkey.CDNURL(cdnBase, key))
}

// UploadOne uploads a single local file under its canonical object key and
// returns the key it was written to.
func UploadOne(requestID, localPath, destOSURL, cdnBase, streamKey, uploadID string) (string, error) {
	basename := filepath.Base(localPath)
	key := objectkey.Key(streamKey, uploadID, basename)
	if err := uploadFile(requestID, localPath, destOSURL, key, objectkey.CDNURL(cdnBase, key)); err != nil {
		return "", err
	}
	return key, nil
}
