package ffmpeg

import (
	"context"
	"fmt"

	"github.com/kivialho/avindex/pkg/util"
)

// ExtractAudio extracts a video's audio track to a mono, 16-bit PCM WAV
// file with metadata stripped, which is what the sample loader expects.
// A sampleRate of 0 keeps the source rate.
func (e *Executor) ExtractAudio(ctx context.Context, input, output string, sampleRate int, progressFunc ProgressFunc) error {
	e.logger.Info().
		Str("input", input).
		Str("output", output).
		Msg("extracting audio")

	args := []string{
		"-i", input,
		"-vn",
		"-flags", "bitexact",
		"-map_metadata", "-1",
		"-acodec", "pcm_s16le",
		"-ac", "1",
	}

	if sampleRate > 0 {
		args = append(args, "-ar", fmt.Sprintf("%d", sampleRate))
	}

	args = append(args, output)

	opts := RunOptions{
		Args:            args,
		ProgressHandler: progressFunc,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("audio extraction")
		},
	}

	return e.Run(ctx, opts)
}

// Extractor adapts the executor to the activity scanner's audio
// extraction collaborator: one call turning a video path into a
// temporary WAV path. The caller owns the returned file and must
// remove it.
type Extractor struct {
	exec       *Executor
	tempDir    string
	sampleRate int
}

// NewExtractor creates an Extractor writing temp files under tempDir
// (empty means the system temp directory)
func NewExtractor(exec *Executor, tempDir string, sampleRate int) *Extractor {
	return &Extractor{
		exec:       exec,
		tempDir:    tempDir,
		sampleRate: sampleRate,
	}
}

// Extract produces a temporary WAV file from the video's audio track
func (x *Extractor) Extract(ctx context.Context, videoPath string) (string, error) {
	f, err := util.TempFile(x.tempDir, "avindex-audio", ".wav")
	if err != nil {
		return "", fmt.Errorf("failed to create temp audio file: %w", err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		util.CleanupFiles(path)
		return "", err
	}

	progress := func(p *Progress) {
		x.exec.logger.Debug().
			Str("out_time", p.OutTime).
			Str("speed", p.Speed).
			Msg("extraction progress")
	}

	if err := x.exec.ExtractAudio(ctx, videoPath, path, x.sampleRate, progress); err != nil {
		util.CleanupFiles(path)
		return "", fmt.Errorf("audio extraction failed: %w", err)
	}

	return path, nil
}
