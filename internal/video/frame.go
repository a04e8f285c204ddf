// Package video provides decoded frame access and frame comparison for
// activity scanning. Frames are streamed from an ffmpeg child process as
// raw interleaved BGR24 data, the same shape OpenCV-style tooling uses.
package video

import "fmt"

// Channels is the number of color channels per decoded pixel
const Channels = 3

// Frame is a single decoded video frame with three interleaved color
// channels of one byte each
type Frame struct {
	Width  int
	Height int
	Pix    []byte // len = Width * Height * Channels
}

// FramesDiffer reports whether any pixel in a and b differs by more than
// threshold in any color channel. It short-circuits on the first such
// pixel. Comparing frames of mismatched dimensions is a contract
// violation by the frame producer and panics.
func FramesDiffer(a, b *Frame, threshold uint8) bool {
	if a.Width != b.Width || a.Height != b.Height {
		panic(fmt.Sprintf("video: frame sizes do not match: %dx%d vs %dx%d",
			a.Width, a.Height, b.Width, b.Height))
	}
	if len(a.Pix) != len(b.Pix) {
		panic(fmt.Sprintf("video: frame buffer sizes do not match: %d vs %d",
			len(a.Pix), len(b.Pix)))
	}

	// The channels are interleaved, so a per-byte comparison is a
	// per-channel comparison.
	t := int(threshold)
	for i := range a.Pix {
		d := int(a.Pix[i]) - int(b.Pix[i])
		if d < 0 {
			d = -d
		}
		if d > t {
			return true
		}
	}

	return false
}
