package activity

import (
	"context"
	"math"

	"github.com/rs/zerolog"

	"github.com/kivialho/avindex/internal/audio"
	"github.com/kivialho/avindex/pkg/util"
)

// extractionFailedMessage is the single user-facing notification emitted
// when the audio track cannot be processed.
const extractionFailedMessage = "The audio track could not be processed."

// scanAudio extracts and decodes the video's audio, then marks every
// frame whose representative sample rises notably above the baseline.
// Exclusively owns audioStates for the duration of the scan. A failed
// extraction is a documented degraded mode, not an error: the whole
// track becomes NoData and the video scan is unaffected.
func (x *Index) scanAudio(ctx context.Context) error {
	log := x.logger.With().Str("scan", "audio").Logger()

	track := x.loadAudio(ctx, log)
	if track == nil {
		fill(x.audioStates, StateNoData)
		return nil
	}
	x.track.Store(track)

	stats := audio.Measure(track.Samples())

	// Threshold the gap between peak and mean. A crude heuristic kept
	// for parity with the reference behavior; note that a flat track
	// yields threshold 0, and the comparison below is a strict >, so
	// any nonzero sample still counts as loud.
	threshold := math.Abs((float64(stats.Peak) - stats.Mean) * x.cfg.AmplitudeThresholdScale)

	log.Debug().
		Float64("mean_amplitude", stats.Mean).
		Int("peak_amplitude", stats.Peak).
		Float64("threshold", threshold).
		Int("samples", track.NumSamples()).
		Msg("amplitude statistics computed")

	numFrames := len(x.audioStates)
	samplesPerFrame := float64(track.NumSamples()) / float64(numFrames)

	for i := 0; i < numFrames; i++ {
		if i%stopCheckInterval == 0 && ctx.Err() != nil {
			log.Debug().Int("frame", i).Msg("audio scan cancelled")
			return ctx.Err()
		}

		offs := int(samplesPerFrame * float64(i))
		loud := math.Abs(float64(track.SampleAt(offs))) > threshold

		if !loud {
			x.audioStates[i] = StateInactive
			continue
		}

		x.audioStates[i] = StateActive

		// Temporal smoothing: brief sounds would otherwise produce
		// segments only a frame or two wide, too small to be useful on
		// a timeline.
		for p := 0; p < x.granularity && i+1 < numFrames; p++ {
			i++
			x.audioStates[i] = StateActive
		}
	}

	log.Info().Int("frames", numFrames).Msg("audio activity scan complete")
	return nil
}

// loadAudio runs the extraction collaborator and decodes its output,
// returning nil when audio information is unavailable. The temporary
// extracted file never outlives this call.
func (x *Index) loadAudio(ctx context.Context, log zerolog.Logger) *audio.Track {
	if x.opts.Extractor == nil {
		log.Warn().Msg("no audio extractor configured; audio activity will not be available")
		x.notifyUser(extractionFailedMessage)
		return nil
	}

	wavPath, err := x.opts.Extractor.Extract(ctx, x.info.Path)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		log.Warn().Err(err).Msg("failed to extract the video's audio; audio activity will not be available")
		x.notifyUser(extractionFailedMessage)
		return nil
	}
	defer util.CleanupFiles(wavPath)

	track, err := audio.Load(wavPath)
	if err != nil {
		log.Warn().Err(err).Msg("failed to decode the extracted audio; audio activity will not be available")
		x.notifyUser(extractionFailedMessage)
		return nil
	}

	return track
}
