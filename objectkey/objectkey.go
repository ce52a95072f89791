// Package objectkey centralizes the canonical blob-store object key and
// local-file-prefix conventions (spec §6, §9 design note: "define a single
// helper... avoid ad-hoc string concatenation at call sites").
package objectkey

import (
	"fmt"

	"github.com/catalyst-ingest/catalyst-ingest/config"
)

// Prefix is the shared filename/basename prefix for every artifact produced
// from one upload: "<streamKey>_<uploadId>".
func Prefix(streamKey, uploadID string) string {
	return fmt.Sprintf("%s_%s", streamKey, uploadID)
}

// Key returns the canonical object key for a basename under an upload's
// namespace: clips/<streamKey>/<uploadId>/<basename>.
func Key(streamKey, uploadID, basename string) string {
	return fmt.Sprintf("clips/%s/%s/%s", streamKey, uploadID, basename)
}

// EpisodeKey returns the canonical object key for an episode artifact:
// clips/<streamKey>/<uploadId>/episodes/episode_<n>/<basename>.
func EpisodeKey(streamKey, uploadID string, episodeNumber int, basename string) string {
	return fmt.Sprintf("clips/%s/%s/episodes/episode_%d/%s", streamKey, uploadID, episodeNumber, basename)
}

func MasterPlaylistName(streamKey, uploadID string) string {
	return Prefix(streamKey, uploadID) + "_master.m3u8"
}

func VariantPlaylistName(streamKey, uploadID string, rendition config.RenditionName) string {
	return fmt.Sprintf("%s_%s.m3u8", Prefix(streamKey, uploadID), rendition)
}

func SegmentName(streamKey, uploadID string, rendition config.RenditionName, index int) string {
	return fmt.Sprintf("%s_%s_%03d.ts", Prefix(streamKey, uploadID), rendition, index)
}

func ThumbnailName(streamKey, uploadID string) string {
	return Prefix(streamKey, uploadID) + "_thumb.jpg"
}

// CDNURL builds the public playback URL for an object key.
func CDNURL(cdnBase, objectKey string) string {
	return fmt.Sprintf("%s/%s", trimSlash(cdnBase), objectKey)
}

func trimSlash(s string) string {
	if len(s) > 0 && s[len(s)-1] == '/' {
		return s[:len(s)-1]
	}
	return s
}
