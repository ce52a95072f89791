// Package pipeline implements the Pipeline (spec §4.9): the per-Upload
// orchestration that ties Admission, Segmenter, BlobUploader, Thumbnailer,
// PlaylistBuilder and CatalogWriter together.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/catalyst-ingest/catalyst-ingest/admission"
	"github.com/catalyst-ingest/catalyst-ingest/blobuploader"
	"github.com/catalyst-ingest/catalyst-ingest/catalog"
	"github.com/catalyst-ingest/catalyst-ingest/clients"
	"github.com/catalyst-ingest/catalyst-ingest/config"
	"github.com/catalyst-ingest/catalyst-ingest/episodejob"
	pipelineerrors "github.com/catalyst-ingest/catalyst-ingest/errors"
	"github.com/catalyst-ingest/catalyst-ingest/log"
	"github.com/catalyst-ingest/catalyst-ingest/objectkey"
	"github.com/catalyst-ingest/catalyst-ingest/segmenter"
	"github.com/catalyst-ingest/catalyst-ingest/thumbnails"
	"github.com/catalyst-ingest/catalyst-ingest/transcode"
	"github.com/catalyst-ingest/catalyst-ingest/video"
	"golang.org/x/sync/errgroup"
)

// Upload is the per-request value threaded through every Pipeline step,
// replacing a process-global "current upload" context (spec §9 design
// note). It accumulates state (probe result, thumbnail URL) as steps
// complete.
type Upload struct {
	RequestID           string
	StreamKey           string
	UploadID            string
	Prefix              string
	SourcePath          string
	OutputDir           string
	RequesterEmail      string
	ChannelNameAdvisory string

	mu           sync.Mutex
	thumbnailURL string
	probe        video.Result
	orientation  video.Orientation
}

func (u *Upload) setThumbnailURL(url string) {
	u.mu.Lock()
	u.thumbnailURL = url
	u.mu.Unlock()
}

func (u *Upload) ThumbnailURL() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.thumbnailURL
}

// RunInput is what the HTTP upload handler hands the Pipeline to start one
// Upload.
type RunInput struct {
	RequestID           string
	StreamKey           string
	UploadID            string
	Source              io.Reader
	RequesterEmail      string
	ChannelNameAdvisory string
	Title               string
	Description         string
	Price               string
	DestOSURL           string
	CDNBase             string
}

// Outcome is returned once step 6 (HTTP response) is reached; background
// work (step 7/8) continues after Run returns.
type Outcome struct {
	StreamKey         string
	UploadID          string
	ThumbnailURL      string
	MasterPlaylistURL string
	CatalogEntry      catalog.CatalogEntry
}

// Error carries the spec §7 error Kind alongside the underlying cause, so an
// HTTP handler can map it to the right status/body without re-classifying.
type Error struct {
	Kind pipelineerrors.Kind
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

type Pipeline struct {
	Admission           *admission.Admission
	Writer              *catalog.Writer
	MetadataStore       *catalog.MetadataStore
	Prober              video.Prober
	MasterAccountID     string
	DefaultThumbnailURL string

	// EpisodeJob is optional (spec §4.11); when set, it runs once the
	// background renditions (step 7) finish following a successful primary
	// upload, before the step 8 cleanup (Open Question decision: never
	// scheduled after a failed primary).
	EpisodeJob *episodejob.Job
}

func New(a *admission.Admission, w *catalog.Writer, ms *catalog.MetadataStore, prober video.Prober, masterAccountID, defaultThumbnailURL string) *Pipeline {
	return &Pipeline{
		Admission:           a,
		Writer:              w,
		MetadataStore:       ms,
		Prober:              prober,
		MasterAccountID:     masterAccountID,
		DefaultThumbnailURL: defaultThumbnailURL,
	}
}

// Run executes spec §4.9 steps 1 through 6 synchronously and returns once
// the caller's HTTP response is ready to send. Steps 7 and 8 continue in a
// background goroutine after Run returns.
func (p *Pipeline) Run(ctx context.Context, in RunInput) (Outcome, error) {
	prefix := objectkey.Prefix(in.StreamKey, in.UploadID)
	requestID := in.RequestID

	// Step 1: pre-flight.
	sourcePath, err := placeSourceFile(prefix, in.Source)
	if err != nil {
		return Outcome{}, &Error{Kind: pipelineerrors.KindStorageUnavailable, Err: fmt.Errorf("failed to place upload: %w", err)}
	}
	outputDir, err := os.MkdirTemp("", "catalyst-ingest-"+prefix+"-")
	if err != nil {
		return Outcome{}, &Error{Kind: pipelineerrors.KindStorageUnavailable, Err: fmt.Errorf("failed to create scratch dir: %w", err)}
	}

	if err := p.MetadataStore.Put(ctx, in.UploadID, in.Title, in.Description, in.Price); err != nil {
		log.LogError(requestID, "failed to write upload metadata, continuing without it", err)
	}

	up := &Upload{
		RequestID:           requestID,
		StreamKey:           in.StreamKey,
		UploadID:            in.UploadID,
		Prefix:              prefix,
		SourcePath:          sourcePath,
		OutputDir:           outputDir,
		RequesterEmail:      in.RequesterEmail,
		ChannelNameAdvisory: in.ChannelNameAdvisory,
	}
	up.probe = p.Prober.ProbeFile(requestID, sourcePath)
	up.orientation = video.DeriveOrientation(up.probe)

	// Step 2 (early thumbnail) runs concurrently with step 3/4 (admission +
	// primary segment).
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		p.runEarlyThumbnail(up, in.DestOSURL, in.CDNBase)
		return nil
	})

	var primaryResult segmenter.Result
	var acquired bool
	g.Go(func() error {
		var segErr error
		acquired, primaryResult, segErr = p.runPrimarySegment(ctx, up)
		return segErr
	})

	if err := g.Wait(); err != nil {
		cleanup(up)
		if acquired {
			p.Admission.Release()
		}
		return Outcome{}, &Error{Kind: pipelineerrors.KindTranscodeFailed, Err: err}
	}

	masterName := objectkey.MasterPlaylistName(in.StreamKey, in.UploadID)
	masterPath := filepath.Join(up.OutputDir, masterName)
	primaryVariant := transcode.VariantRef{
		Rendition:  config.PrimaryRendition(),
		IsPortrait: up.orientation.IsPortrait,
		URL:        objectkey.CDNURL(in.CDNBase, objectkey.Key(in.StreamKey, in.UploadID, objectkey.VariantPlaylistName(in.StreamKey, in.UploadID, config.PrimaryRendition().Name))),
	}
	if err := os.WriteFile(masterPath, transcode.BuildMasterPlaylist([]transcode.VariantRef{primaryVariant}), 0o644); err != nil {
		cleanup(up)
		p.Admission.Release()
		return Outcome{}, &Error{Kind: pipelineerrors.KindStorageUnavailable, Err: fmt.Errorf("failed to write master playlist: %w", err)}
	}

	uploadPatterns := []string{
		fmt.Sprintf("%s_%s_*.ts", prefix, config.PrimaryRendition().Name),
		objectkey.VariantPlaylistName(in.StreamKey, in.UploadID, config.PrimaryRendition().Name),
		masterName,
	}
	if err := blobuploader.UploadDir(requestID, up.OutputDir, in.DestOSURL, in.CDNBase, in.StreamKey, in.UploadID, uploadPatterns); err != nil {
		cleanup(up)
		p.Admission.Release()
		return Outcome{}, &Error{Kind: pipelineerrors.KindStorageUnavailable, Err: fmt.Errorf("failed to upload primary rendition: %w", err)}
	}
	masterURL := objectkey.CDNURL(in.CDNBase, objectkey.Key(in.StreamKey, in.UploadID, masterName))

	// Step 5: register catalog entry.
	entry, err := p.Writer.RegisterAsset(ctx, catalog.RegisterAssetInput{
		StreamKey:           in.StreamKey,
		UploadID:            in.UploadID,
		RequesterEmail:      in.RequesterEmail,
		ChannelNameAdvisory: in.ChannelNameAdvisory,
		HLSMasterURL:        masterURL,
		ThumbnailURL:        up.ThumbnailURL(),
		MasterAccountID:     p.MasterAccountID,
		DefaultThumbnailURL: p.DefaultThumbnailURL,
	})
	if err != nil {
		cleanup(up)
		p.Admission.Release()
		kind := pipelineerrors.KindCatalogWriteFailed
		if pipelineerrors.IsOwnershipUnresolved(err) {
			kind = pipelineerrors.KindOwnershipUnresolved
		}
		return Outcome{}, &Error{Kind: kind, Err: err}
	}

	outcome := Outcome{
		StreamKey:         in.StreamKey,
		UploadID:          in.UploadID,
		ThumbnailURL:      up.ThumbnailURL(),
		MasterPlaylistURL: masterURL,
		CatalogEntry:      entry,
	}

	// Step 6: the HTTP response is ready. Steps 7/8 continue in background;
	// the Admission slot acquired above is only released once they finish.
	go p.runBackgroundRenditions(ctx, up, in)

	return outcome, nil
}

func (p *Pipeline) runEarlyThumbnail(up *Upload, destOSURL, cdnBase string) {
	filename := objectkey.ThumbnailName(up.StreamKey, up.UploadID)
	cdnURL := objectkey.CDNURL(cdnBase, objectkey.Key(up.StreamKey, up.UploadID, filename))
	url, err := thumbnails.Generate(up.RequestID, up.SourcePath, up.orientation, up.probe.Duration, destOSURL, objectkey.Key(up.StreamKey, up.UploadID, filename), cdnURL)
	if err != nil {
		log.LogError(up.RequestID, "early thumbnail generation failed, catalog entry will use the default placeholder", err)
		return
	}
	up.setThumbnailURL(url)
}

// runPrimarySegment performs spec §4.9 steps 3 and 4: acquire an Admission
// slot (queueing if denied) then segment the primary rendition. The bool
// return reports whether a slot was acquired, so the caller knows whether it
// owes a Release.
func (p *Pipeline) runPrimarySegment(ctx context.Context, up *Upload) (bool, segmenter.Result, error) {
	if !p.Admission.TryAcquire() {
		wait := make(chan struct{})
		p.Admission.Enqueue(admission.QueuedItem{RequestID: up.RequestID, Resume: func() { close(wait) }})
		select {
		case <-wait:
		case <-ctx.Done():
			return false, segmenter.Result{}, ctx.Err()
		}
	}

	result, err := segmenter.Run(segmenter.Job{
		RequestID:   up.RequestID,
		SourcePath:  up.SourcePath,
		OutputDir:   up.OutputDir,
		Prefix:      up.Prefix,
		Rendition:   config.PrimaryRendition(),
		Orientation: up.orientation,
		HasAudio:    up.probe.HasAudio,
	})
	if err != nil {
		return true, segmenter.Result{}, err
	}
	return true, result, nil
}

// runBackgroundRenditions implements spec §4.9 steps 7 and 8: the remaining
// renditions, a master-playlist rewrite advertising all of them, then
// cleanup, Admission release and ProcessingQueue drain.
func (p *Pipeline) runBackgroundRenditions(ctx context.Context, up *Upload, in RunInput) {
	defer cleanup(up)
	defer p.Admission.Release()

	variants := []transcode.VariantRef{{
		Rendition:  config.PrimaryRendition(),
		IsPortrait: up.orientation.IsPortrait,
		URL:        objectkey.CDNURL(in.CDNBase, objectkey.Key(in.StreamKey, in.UploadID, objectkey.VariantPlaylistName(in.StreamKey, in.UploadID, config.PrimaryRendition().Name))),
	}}

	for _, rendition := range config.BackgroundRenditions() {
		result, err := segmenter.Run(segmenter.Job{
			RequestID:   up.RequestID,
			SourcePath:  up.SourcePath,
			OutputDir:   up.OutputDir,
			Prefix:      up.Prefix,
			Rendition:   rendition,
			Orientation: up.orientation,
			HasAudio:    up.probe.HasAudio,
		})
		if err != nil {
			log.LogError(up.RequestID, "background rendition failed, leaving the existing master playlist in place", err, "rendition", rendition.Name)
			continue
		}
		_ = result
		variants = append(variants, transcode.VariantRef{
			Rendition:  rendition,
			IsPortrait: up.orientation.IsPortrait,
			URL:        objectkey.CDNURL(in.CDNBase, objectkey.Key(in.StreamKey, in.UploadID, objectkey.VariantPlaylistName(in.StreamKey, in.UploadID, rendition.Name))),
		})

		masterName := objectkey.MasterPlaylistName(in.StreamKey, in.UploadID)
		masterPath := filepath.Join(up.OutputDir, masterName)
		if err := os.WriteFile(masterPath, transcode.BuildMasterPlaylist(variants), 0o644); err != nil {
			log.LogError(up.RequestID, "failed to rewrite master playlist", err)
			continue
		}

		patterns := []string{
			fmt.Sprintf("%s_%s_*.ts", up.Prefix, rendition.Name),
			objectkey.VariantPlaylistName(in.StreamKey, in.UploadID, rendition.Name),
			masterName,
		}
		if err := blobuploader.UploadDir(up.RequestID, up.OutputDir, in.DestOSURL, in.CDNBase, in.StreamKey, in.UploadID, patterns); err != nil {
			log.LogError(up.RequestID, "failed to upload background rendition", err, "rendition", rendition.Name)
		}
	}

	// EpisodeJob runs last, while up.SourcePath still exists: the deferred
	// cleanup above only fires once this function returns.
	if p.EpisodeJob != nil {
		if err := p.EpisodeJob.Run(ctx, episodejob.Input{
			RequestID:   up.RequestID,
			StreamKey:   in.StreamKey,
			UploadID:    in.UploadID,
			ChannelName: in.ChannelNameAdvisory,
			SourcePath:  up.SourcePath,
			Orientation: up.orientation,
			HasAudio:    up.probe.HasAudio,
			DestOSURL:   in.DestOSURL,
			CDNBase:     in.CDNBase,
		}); err != nil {
			log.LogError(up.RequestID, "episode job failed, primary upload is unaffected", err)
		}
	}
}

func placeSourceFile(prefix string, r io.Reader) (string, error) {
	dir := config.PathRecordingDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, prefix+"_source")
	f, err := os.Create(path)
	if err != nil {
		path = filepath.Join(os.TempDir(), prefix+"_source")
		f, err = os.Create(path)
		if err != nil {
			return "", err
		}
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write upload to %q: %w", path, err)
	}
	return path, nil
}

func cleanup(up *Upload) {
	if err := os.RemoveAll(up.OutputDir); err != nil {
		log.LogError(up.RequestID, "failed to remove scratch output dir", err, "dir", up.OutputDir)
	}
	if err := os.Remove(up.SourcePath); err != nil {
		log.LogError(up.RequestID, "failed to remove scratch source file", err, "path", up.SourcePath)
	}
}

// HeadCheckThumbnail exposes clients.HeadCheck, the readability check
// CatalogWriter applies to a thumbnail URL. Nothing in this repository calls
// it.
func HeadCheckThumbnail(url string) error {
	return clients.HeadCheck(url)
}
