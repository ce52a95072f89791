package video

// Orientation is the single typed descriptor that Thumbnailer and Segmenter
// both consume instead of each recomputing isPortrait/rotation-filter logic
// (spec §9 design note).
type Orientation struct {
	IsPortrait    bool
	DisplayWidth  int
	DisplayHeight int
	// FFmpegFilter is the -vf value to apply so the encoded/extracted output
	// is right-side-up, or "" if no correction is needed.
	FFmpegFilter string
}

// DeriveOrientation centralizes the rotation-filter decision from spec §4.2/
// §4.4: a correction filter is only emitted for a portrait video with
// non-zero rotation; a landscape video's displayed orientation is already
// correct regardless of its rotation metadata, so no filter is applied.
func DeriveOrientation(r Result) Orientation {
	o := Orientation{
		IsPortrait:    r.IsPortrait,
		DisplayWidth:  r.DisplayWidth,
		DisplayHeight: r.DisplayHeight,
	}
	if !r.IsPortrait || r.Rotation == 0 {
		return o
	}
	switch normalizeRotation(r.Rotation) {
	case 90:
		o.FFmpegFilter = "transpose=1"
	case 180:
		o.FFmpegFilter = "transpose=2,transpose=2"
	case 270:
		o.FFmpegFilter = "transpose=2"
	}
	return o
}
