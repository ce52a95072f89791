package clients

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	xerrors "github.com/catalyst-ingest/catalyst-ingest/errors"
	"github.com/catalyst-ingest/catalyst-ingest/log"

	"github.com/cenkalti/backoff/v4"
	"github.com/livepeer/go-tools/drivers"
)

var maxRetryInterval = 5 * time.Second

// DownloadOSURL fetches the full contents of an object-store URL.
func DownloadOSURL(osURL string) (io.ReadCloser, error) {
	fileInfoReader, err := GetOSURL(osURL, "")
	if err != nil {
		return nil, err
	}
	return fileInfoReader.Body, nil
}

func GetOSURL(osURL, byteRange string) (*drivers.FileInfoReader, error) {
	storageDriver, err := drivers.ParseOSURL(osURL, true)
	if err != nil {
		return nil, xerrors.Unretriable(fmt.Errorf("failed to parse OS URL %q: %w", log.RedactURL(osURL), err))
	}

	sess := storageDriver.NewSession("")

	var fileInfoReader *drivers.FileInfoReader
	if byteRange == "" {
		fileInfoReader, err = sess.ReadData(context.Background(), "")
	} else {
		fileInfoReader, err = sess.ReadDataRange(context.Background(), "", byteRange)
	}
	if err != nil {
		if errors.Is(err, drivers.ErrNotExist) {
			return nil, xerrors.NewObjectNotFoundError("not found in OS", err)
		}
		return nil, fmt.Errorf("failed to read from OS URL %q: %w", log.RedactURL(osURL), err)
	}
	return fileInfoReader, nil
}

// UploadToOSURL writes data to an object key under osURL in a single attempt;
// it does not retry. The Thumbnailer calls it inside its own retry loop;
// BlobUploader calls UploadToOSURLFields directly.
func UploadToOSURL(osURL, filename string, data io.Reader, timeout time.Duration) error {
	return UploadToOSURLFields(osURL, filename, data, timeout, nil)
}

func UploadToOSURLFields(osURL, filename string, data io.Reader, timeout time.Duration, fields *drivers.FileProperties) error {
	storageDriver, err := drivers.ParseOSURL(osURL, true)
	if err != nil {
		return fmt.Errorf("failed to parse OS URL %q: %s", log.RedactURL(osURL), err)
	}

	sess := storageDriver.NewSession("")
	_, err = sess.SaveData(context.Background(), filename, data, fields, timeout)
	if err != nil {
		return fmt.Errorf("failed to write to OS URL %q: %s", log.RedactURL(filepath.Join(osURL, filename)), err)
	}
	return nil
}

func ListOSURL(ctx context.Context, osURL string) (drivers.PageInfo, error) {
	osDriver, err := drivers.ParseOSURL(osURL, true)
	if err != nil {
		return nil, fmt.Errorf("unexpected error parsing internal driver URL: %w", err)
	}
	sess := osDriver.NewSession("")

	page, err := sess.ListFiles(ctx, "", "")
	if err != nil {
		return nil, fmt.Errorf("error listing files: %w", err)
	}
	return page, nil
}

func newExponentialBackOffExecutor() *backoff.ExponentialBackOff {
	backOff := backoff.NewExponentialBackOff()
	backOff.InitialInterval = 200 * time.Millisecond
	backOff.MaxInterval = maxRetryInterval
	backOff.MaxElapsedTime = 0
	backOff.Reset()
	return backOff
}

// UploadRetryBackoff is an exponential backoff capped at 5 retries. BlobUploader
// does not use it; its uploads follow RetryWithSchedule.
func UploadRetryBackoff() backoff.BackOff {
	return backoff.WithMaxRetries(newExponentialBackOffExecutor(), 5)
}
