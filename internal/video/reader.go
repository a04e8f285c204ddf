package video

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"

	"github.com/rs/zerolog"

	"github.com/kivialho/avindex/pkg/util"
)

// Info describes a video's decoded metadata, known before any frame is read
type Info struct {
	Path       string
	Width      int
	Height     int
	FPS        float64
	FrameCount int
	HasAudio   bool
}

// Valid reports whether the source describes a readable video
func (i Info) Valid() bool {
	return i.Path != "" && i.FrameCount > 0 && i.Width > 0 && i.Height > 0
}

// Source opens sequential frame readers over a single video file
type Source struct {
	logger     zerolog.Logger
	ffmpegPath string
	info       Info
}

// NewSource creates a frame source backed by the given ffmpeg binary
func NewSource(logger zerolog.Logger, ffmpegPath string, info Info) *Source {
	return &Source{
		logger:     logger.With().Str("component", "frame-source").Logger(),
		ffmpegPath: ffmpegPath,
		info:       info,
	}
}

// Info returns the source's metadata
func (s *Source) Info() Info {
	return s.info
}

// OpenReader starts a decoder positioned at frame 0. The reader is only
// valid while ctx is; cancelling ctx kills the decoder process.
func (s *Source) OpenReader(ctx context.Context) (*Reader, error) {
	r := &Reader{
		logger:     s.logger,
		ffmpegPath: s.ffmpegPath,
		info:       s.info,
		parentCtx:  ctx,
	}
	if err := r.start(0); err != nil {
		return nil, err
	}
	return r, nil
}

// Reader streams decoded BGR24 frames sequentially from an ffmpeg child
// process. It is not safe for concurrent use.
type Reader struct {
	logger     zerolog.Logger
	ffmpegPath string
	info       Info
	parentCtx  context.Context

	cancel context.CancelFunc
	cmd    *exec.Cmd
	out    *bufio.Reader
	pos    int // index of the frame the next call to Next returns
}

func (r *Reader) frameSize() int {
	return r.info.Width * r.info.Height * Channels
}

func (r *Reader) start(startFrame int) error {
	args := []string{"-hide_banner", "-loglevel", "error", "-nostdin"}

	// Input seeking decodes from the preceding keyframe and discards
	// frames up to the target, so the seek lands on the exact frame.
	if startFrame > 0 {
		args = append(args, "-ss", util.FormatDuration(util.FrameTime(startFrame, r.info.FPS)))
	}

	args = append(args,
		"-i", r.info.Path,
		"-an",
		"-f", "rawvideo",
		"-pix_fmt", "bgr24",
		"pipe:1",
	)

	ctx, cancel := context.WithCancel(r.parentCtx)

	cmd := exec.CommandContext(ctx, r.ffmpegPath, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("failed to start frame decoder: %w", err)
	}

	r.logger.Debug().
		Str("file", r.info.Path).
		Int("start_frame", startFrame).
		Msg("frame decoder started")

	r.cancel = cancel
	r.cmd = cmd
	r.out = bufio.NewReaderSize(stdout, r.frameSize())
	r.pos = startFrame
	return nil
}

func (r *Reader) stop() {
	if r.cancel != nil {
		r.cancel()
	}
	if r.cmd != nil {
		_ = r.cmd.Wait() // reap; the process was killed, errors are expected
	}
	r.cancel = nil
	r.cmd = nil
	r.out = nil
}

// Pos returns the index of the frame the next call to Next will return
func (r *Reader) Pos() int {
	return r.pos
}

// Next reads and returns the next frame. It returns io.EOF once the
// decoder runs out of frames.
func (r *Reader) Next() (*Frame, error) {
	if r.out == nil {
		return nil, fmt.Errorf("reader is closed")
	}

	buf := make([]byte, r.frameSize())
	if _, err := io.ReadFull(r.out, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to read frame %d: %w", r.pos, err)
	}

	frame := &Frame{Width: r.info.Width, Height: r.info.Height, Pix: buf}
	r.pos++
	return frame, nil
}

// Seek repositions the reader so the next call to Next returns frame
// idx, by restarting the decoder with an input seek
func (r *Reader) Seek(idx int) error {
	if idx == r.pos {
		return nil
	}
	r.stop()
	return r.start(idx)
}

// Close terminates the decoder process
func (r *Reader) Close() error {
	r.stop()
	return nil
}
