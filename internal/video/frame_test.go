package video

import "testing"

func uniformFrame(w, h int, value byte) *Frame {
	pix := make([]byte, w*h*Channels)
	for i := range pix {
		pix[i] = value
	}
	return &Frame{Width: w, Height: h, Pix: pix}
}

func TestFramesDifferIdentical(t *testing.T) {
	t.Parallel()

	a := uniformFrame(8, 6, 128)
	b := uniformFrame(8, 6, 128)

	if FramesDiffer(a, b, 30) {
		t.Error("identical frames must not differ")
	}
	if FramesDiffer(a, a, 0) {
		t.Error("a frame must never differ from itself, even at threshold 0")
	}
}

func TestFramesDifferThresholdIsStrict(t *testing.T) {
	t.Parallel()

	a := uniformFrame(8, 6, 100)

	// Exactly at the threshold: not a difference.
	b := uniformFrame(8, 6, 130)
	if FramesDiffer(a, b, 30) {
		t.Error("difference of exactly 30 must not exceed threshold 30")
	}

	// One past the threshold.
	c := uniformFrame(8, 6, 131)
	if !FramesDiffer(a, c, 30) {
		t.Error("difference of 31 must exceed threshold 30")
	}
}

func TestFramesDifferSingleChannel(t *testing.T) {
	t.Parallel()

	a := uniformFrame(8, 6, 50)
	b := uniformFrame(8, 6, 50)

	// Bump one channel of one pixel past the threshold.
	b.Pix[17] = 90

	if !FramesDiffer(a, b, 30) {
		t.Error("a single out-of-threshold channel should count as a difference")
	}
	if FramesDiffer(a, b, 40) {
		t.Error("a 40-unit difference should not exceed threshold 40")
	}
}

func TestFramesDifferIsSymmetricOnNegativeDiffs(t *testing.T) {
	t.Parallel()

	a := uniformFrame(4, 4, 200)
	b := uniformFrame(4, 4, 10)

	if !FramesDiffer(a, b, 30) || !FramesDiffer(b, a, 30) {
		t.Error("difference detection must not depend on operand order")
	}
}

func TestFramesDifferDimensionMismatchPanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("expected panic for mismatched frame dimensions")
		}
	}()
	FramesDiffer(uniformFrame(8, 6, 0), uniformFrame(6, 8, 0), 30)
}
