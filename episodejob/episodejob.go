package episodejob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/catalyst-ingest/catalyst-ingest/blobuploader"
	"github.com/catalyst-ingest/catalyst-ingest/catalog"
	"github.com/catalyst-ingest/catalyst-ingest/config"
	"github.com/catalyst-ingest/catalyst-ingest/log"
	"github.com/catalyst-ingest/catalyst-ingest/objectkey"
	"github.com/catalyst-ingest/catalyst-ingest/segmenter"
	"github.com/catalyst-ingest/catalyst-ingest/thumbnails"
	"github.com/catalyst-ingest/catalyst-ingest/transcode"
	"github.com/catalyst-ingest/catalyst-ingest/video"
)

const (
	minEpisodeDurationSecs = 5 * 60
	maxEpisodeDurationSecs = 30 * 60
)

// Input describes one EpisodeJob invocation: the same upload the Pipeline
// already ran to success.
type Input struct {
	RequestID           string
	StreamKey, UploadID string
	ChannelName         string
	SourcePath          string
	Orientation         video.Orientation
	HasAudio            bool
	DestOSURL, CDNBase  string
}

// Job wires together the external transcription/LLM clients and the store
// EpisodeJob writes into.
type Job struct {
	Store         *catalog.Store
	Transcription *TranscriptionClient
	LLM           *LLMClient
}

func New(store *catalog.Store, transcription *TranscriptionClient, llm *LLMClient) *Job {
	return &Job{Store: store, Transcription: transcription, LLM: llm}
}

// Run executes EpisodeJob to completion (spec §4.11). Its own failure, or
// the failure of any single proposed episode, never affects the primary
// upload that already succeeded — callers run this detached from the HTTP
// response path and only log its outcome.
func (j *Job) Run(ctx context.Context, in Input) error {
	mapping, err := j.Store.GetStreamKeyMapping(ctx, in.StreamKey)
	if err != nil {
		return fmt.Errorf("failed to resolve stream key mapping for episode job: %w", err)
	}
	ownerID := mapping.OwnerEmail
	if ownerID == "" {
		return fmt.Errorf("stream key mapping has no owner to file episodes under")
	}

	segments, err := j.Transcription.Transcribe(in.SourcePath)
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}
	if len(segments) == 0 {
		log.LogNoRequestID("episode job: transcription returned no segments, nothing to propose", "stream_key", in.StreamKey)
		return nil
	}

	episodes, err := j.LLM.ProposeEpisodes(ctx, segments)
	if err != nil {
		return fmt.Errorf("episode proposal failed: %w", err)
	}

	for n, ep := range episodes {
		episodeNumber := n + 1
		if err := j.processEpisode(ctx, in, ownerID, episodeNumber, ep); err != nil {
			log.LogNoRequestID("episode job: episode failed, continuing with remaining episodes", "stream_key", in.StreamKey, "episode", episodeNumber, "error", err.Error())
		}
	}
	return nil
}

func (j *Job) processEpisode(ctx context.Context, in Input, ownerID string, episodeNumber int, ep ProposedEpisode) error {
	duration := ep.EndTime - ep.StartTime
	if duration < minEpisodeDurationSecs || duration > maxEpisodeDurationSecs {
		log.LogNoRequestID("episode job: proposed episode outside preferred duration, keeping it anyway", "episode", episodeNumber, "duration_secs", duration)
	}

	outputDir, err := os.MkdirTemp("", fmt.Sprintf("catalyst-ingest-ep-%s-%s-%d-", in.StreamKey, in.UploadID, episodeNumber))
	if err != nil {
		return fmt.Errorf("failed to create episode scratch dir: %w", err)
	}
	defer os.RemoveAll(outputDir)

	prefix := fmt.Sprintf("%s_ep%d", objectkey.Prefix(in.StreamKey, in.UploadID), episodeNumber)
	rendition := config.PrimaryRendition()

	result, err := segmenter.Run(segmenter.Job{
		RequestID:        in.RequestID,
		SourcePath:       in.SourcePath,
		OutputDir:        outputDir,
		Prefix:           prefix,
		Rendition:        rendition,
		Orientation:      in.Orientation,
		HasAudio:         in.HasAudio,
		ClipStartSecs:    ep.StartTime,
		ClipDurationSecs: duration,
	})
	if err != nil {
		return fmt.Errorf("failed to segment episode: %w", err)
	}
	_ = result

	variantFilename := prefix + "_" + string(rendition.Name) + ".m3u8"
	variantKey := objectkey.EpisodeKey(in.StreamKey, in.UploadID, episodeNumber, variantFilename)
	variant := transcode.VariantRef{
		Rendition:  rendition,
		IsPortrait: in.Orientation.IsPortrait,
		URL:        objectkey.CDNURL(in.CDNBase, variantKey),
	}
	masterName := prefix + "_master.m3u8"
	masterPath := filepath.Join(outputDir, masterName)
	if err := os.WriteFile(masterPath, transcode.BuildMasterPlaylist([]transcode.VariantRef{variant}), 0o644); err != nil {
		return fmt.Errorf("failed to write episode playlist: %w", err)
	}

	thumbFilename := prefix + "_thumb.jpg"
	thumbKey := objectkey.EpisodeKey(in.StreamKey, in.UploadID, episodeNumber, thumbFilename)
	thumbCDNURL := objectkey.CDNURL(in.CDNBase, thumbKey)
	thumbnailURL, err := thumbnails.GenerateAt(in.RequestID, in.SourcePath, in.Orientation, ep.StartTime+config.ThumbnailSafeOffsetSecs, in.DestOSURL, thumbKey, thumbCDNURL)
	if err != nil {
		log.LogNoRequestID("episode job: thumbnail generation failed, episode will have no thumbnail", "episode", episodeNumber, "error", err.Error())
	}

	if err := uploadEpisodeArtifacts(in, episodeNumber, outputDir, prefix); err != nil {
		return fmt.Errorf("failed to upload episode artifacts: %w", err)
	}

	masterKey := objectkey.EpisodeKey(in.StreamKey, in.UploadID, episodeNumber, masterName)
	entry := catalog.EpisodeEntry{
		OwnerID:       ownerID,
		StreamKey:     in.StreamKey,
		EpisodeNumber: episodeNumber,
		Title:         ep.Title,
		Description:   ep.Description,
		HLSURL:        objectkey.CDNURL(in.CDNBase, masterKey),
		ThumbnailURL:  thumbnailURL,
		StartTimeSecs: ep.StartTime,
		EndTimeSecs:   ep.EndTime,
		DurationSecs:  duration,
		ChannelName:   in.ChannelName,
		CreatedAt:     config.Clock.GetTime(),
	}
	if err := j.Store.InsertEpisode(ctx, entry); err != nil {
		return fmt.Errorf("failed to write episode entry: %w", err)
	}
	return nil
}

// uploadEpisodeArtifacts uploads an episode's playlist and segments under
// its own episodes/episode_<n>/ prefix (spec §6 "Episode objects live
// under..."), rather than blobuploader.UploadDir's clips/<streamKey>/
// <uploadId>/ convention.
func uploadEpisodeArtifacts(in Input, episodeNumber int, outputDir, prefix string) error {
	matches, err := filepath.Glob(filepath.Join(outputDir, prefix+"*"))
	if err != nil {
		return fmt.Errorf("failed to list episode artifacts: %w", err)
	}
	for _, localPath := range matches {
		if err := blobuploader.UploadEpisodeFile(in.RequestID, localPath, in.DestOSURL, in.CDNBase, in.StreamKey, in.UploadID, episodeNumber); err != nil {
			return err
		}
	}
	return nil
}
