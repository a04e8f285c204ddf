// Package pipeline wires probing, audio extraction, and the activity
// scanners into a single analysis run consumed by the CLI.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/kivialho/avindex/internal/activity"
	"github.com/kivialho/avindex/internal/config"
	"github.com/kivialho/avindex/internal/ffmpeg"
	"github.com/kivialho/avindex/internal/video"
)

// Pipeline runs full-file activity analysis
type Pipeline struct {
	logger zerolog.Logger
	cfg    *config.Config
	ffmpeg *ffmpeg.Executor
}

// New creates a pipeline instance
func New(logger zerolog.Logger, cfg *config.Config) (*Pipeline, error) {
	exec, err := ffmpeg.New(logger, ffmpeg.Options{
		FFmpegPath:  cfg.FFmpeg.BinaryPath,
		FFprobePath: cfg.FFmpeg.ProbePath,
		Threads:     cfg.FFmpeg.Threads,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ffmpeg: %w", err)
	}

	return &Pipeline{
		logger: logger.With().Str("component", "pipeline").Logger(),
		cfg:    cfg,
		ffmpeg: exec,
	}, nil
}

// Probe extracts a video's metadata without scanning it
func (p *Pipeline) Probe(ctx context.Context, input string) (*ffmpeg.VideoInfo, error) {
	return p.ffmpeg.ProbeVideo(ctx, input)
}

// Report summarizes one completed analysis run
type Report struct {
	Info           video.Info
	HasUsableAudio bool
	VideoSegments  []activity.Segment
	AudioSegments  []activity.Segment
	Elapsed        time.Duration
}

// Analyze probes the input, builds an activity index over it, waits for
// both scans to complete, and assembles the per-track segments. The
// notifier, when non-nil, receives the user-facing message on audio
// extraction failure.
func (p *Pipeline) Analyze(ctx context.Context, input string, notifier activity.Notifier) (*Report, error) {
	start := time.Now()

	p.logger.Info().Str("input", input).Msg("starting activity analysis")

	probe, err := p.ffmpeg.ProbeVideo(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to probe video: %w", err)
	}

	info := video.Info{
		Path:       input,
		Width:      probe.Width,
		Height:     probe.Height,
		FPS:        probe.FPS,
		FrameCount: probe.FrameCount,
		HasAudio:   probe.HasAudio,
	}
	if !info.Valid() {
		return nil, fmt.Errorf("not a usable video: %s", input)
	}

	p.logger.Info().
		Int("frames", info.FrameCount).
		Int("width", info.Width).
		Int("height", info.Height).
		Float64("fps", info.FPS).
		Msg("video metadata extracted")

	source := video.NewSource(p.logger, p.ffmpeg.BinaryPath(), info)
	extractor := ffmpeg.NewExtractor(p.ffmpeg, p.cfg.TempDir, p.cfg.FFmpeg.SampleRate)

	idx := activity.NewIndex(p.logger, info, activity.Options{
		OpenReader: func(ctx context.Context) (activity.FrameReader, error) {
			return source.OpenReader(ctx)
		},
		Extractor: extractor,
		Notifier:  notifier,
		Config: activity.Config{
			PixelDiffThreshold:      p.cfg.Scan.PixelDiffThreshold,
			GranularityDivisor:      p.cfg.Scan.GranularityDivisor,
			AmplitudeThresholdScale: p.cfg.Scan.AmplitudeThresholdScale,
		},
	})
	defer idx.Close()

	// The index owns its scanners' lifetime; bridge the caller's
	// context so an interrupt tears the scans down cooperatively.
	done := make(chan struct{})
	go func() {
		idx.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		_ = idx.Close()
		return nil, ctx.Err()
	}

	report := &Report{
		Info:           info,
		HasUsableAudio: idx.HasUsableAudio(),
		VideoSegments:  idx.Segments(activity.TrackVideo),
		AudioSegments:  idx.Segments(activity.TrackAudio),
		Elapsed:        time.Since(start),
	}

	p.logger.Info().
		Int("video_segments", len(report.VideoSegments)).
		Int("audio_segments", len(report.AudioSegments)).
		Bool("has_usable_audio", report.HasUsableAudio).
		Dur("elapsed", report.Elapsed).
		Msg("activity analysis complete")

	return report, nil
}
