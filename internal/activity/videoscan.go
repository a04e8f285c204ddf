package activity

import (
	"context"
	"fmt"

	"github.com/kivialho/avindex/internal/video"
)

// scanVideo compares the video's frames in pairs and marks a frame
// active when its color values differ notably from the preceding one.
// Exclusively owns videoStates for the duration of the scan.
func (x *Index) scanVideo(ctx context.Context) error {
	log := x.logger.With().Str("scan", "video").Logger()

	reader, err := x.opts.OpenReader(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// The decoding collaborator was validated upstream; failing to
		// open here is a contract violation, not a runtime condition.
		panic(fmt.Sprintf("activity: failed to open video for scanning: %v", err))
	}
	defer reader.Close()

	numFrames := len(x.videoStates)

	prev, err := x.nextFrame(ctx, reader)
	if err != nil {
		return err
	}

	// Frame 0 has no predecessor to compare against, so it can never be
	// classified as visually active.
	x.videoStates[0] = StateInactive

	for i := 1; i < numFrames; i++ {
		if i%stopCheckInterval == 0 && ctx.Err() != nil {
			log.Debug().Int("frame", i).Msg("video scan cancelled")
			return ctx.Err()
		}

		cur, err := x.nextFrame(ctx, reader)
		if err != nil {
			return err
		}

		if !video.FramesDiffer(cur, prev, x.cfg.PixelDiffThreshold) {
			x.videoStates[i] = StateInactive
			prev = cur
			continue
		}

		x.videoStates[i] = StateActive

		// Once motion starts, nearby frames are assumed active too.
		// Marking them without decoding trades a little accuracy for
		// skipping a per-pixel comparison on every frame.
		skip := x.granularity
		if i+skip > numFrames-1 {
			skip = numFrames - 1 - i
		}
		for p := 0; p < skip; p++ {
			i++
			x.videoStates[i] = StateActive
		}

		if i+1 < numFrames {
			// The frame after the skipped range is decoded fresh so the
			// next comparison runs against a real baseline, never two
			// untested frames.
			i++
			x.videoStates[i] = StateInactive
			if err := reader.Seek(i); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				panic(fmt.Sprintf("activity: failed to seek to frame %d: %v", i, err))
			}
			cur, err = x.nextFrame(ctx, reader)
			if err != nil {
				return err
			}
		}

		prev = cur
	}

	log.Info().Int("frames", numFrames).Msg("video activity scan complete")
	return nil
}

// nextFrame reads one frame, translating a read failure during
// cancellation into a clean early return. Any other failure means the
// source reported more frames than it can decode, which is a contract
// violation.
func (x *Index) nextFrame(ctx context.Context, reader FrameReader) (*video.Frame, error) {
	frame, err := reader.Next()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		panic(fmt.Sprintf("activity: failed to read video frame: %v", err))
	}
	return frame, nil
}
