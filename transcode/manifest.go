// Package transcode implements PlaylistBuilder (spec §4.3): a pure
// function from a list of renditions to master-playlist bytes.
package transcode

import (
	"fmt"
	"sort"

	"github.com/catalyst-ingest/catalyst-ingest/config"
	"github.com/grafov/m3u8"
)

// VariantRef is one entry PlaylistBuilder advertises: a rendition plus the
// absolute CDN URL of its already-uploaded variant playlist.
type VariantRef struct {
	Rendition  config.RenditionSpec
	IsPortrait bool
	URL        string
}

// BuildMasterPlaylist emits master-playlist text (spec §6 "Master playlist
// format"): one #EXT-X-STREAM-INF per variant, ordered highest-to-lowest
// bandwidth, each followed by its absolute URL. The builder takes a list and
// returns bytes; it performs no I/O.
func BuildMasterPlaylist(variants []VariantRef) []byte {
	sorted := make([]VariantRef, len(variants))
	copy(sorted, variants)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rendition.MasterBandwidthBps > sorted[j].Rendition.MasterBandwidthBps
	})

	master := m3u8.NewMasterPlaylist()
	for _, v := range sorted {
		w, h := v.Rendition.LandscapeW, v.Rendition.LandscapeH
		if v.IsPortrait {
			w, h = v.Rendition.PortraitW, v.Rendition.PortraitH
		}
		master.Append(v.URL, nil, m3u8.VariantParams{
			Bandwidth:  uint32(v.Rendition.MasterBandwidthBps),
			Resolution: fmt.Sprintf("%dx%d", w, h),
		})
	}
	return master.Encode().Bytes()
}
