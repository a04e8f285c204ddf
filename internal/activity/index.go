package activity

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/kivialho/avindex/internal/audio"
	"github.com/kivialho/avindex/internal/video"
)

// stopCheckInterval is how many frames a scanner processes between
// cancellation checks. It bounds cancellation latency, not correctness.
const stopCheckInterval = 200

// FrameReader yields decoded frames in ascending index order and can be
// repositioned to an arbitrary frame.
type FrameReader interface {
	Next() (*video.Frame, error)
	Seek(idx int) error
	Close() error
}

// OpenReaderFunc opens a sequential frame reader over the source video,
// positioned at frame 0.
type OpenReaderFunc func(ctx context.Context) (FrameReader, error)

// AudioExtractor turns a video path into a temporary decodable WAV file.
// The caller owns the returned file and removes it after decoding.
type AudioExtractor interface {
	Extract(ctx context.Context, videoPath string) (string, error)
}

// Notifier receives the single user-facing message emitted when audio
// extraction fails. Fire and forget.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

// Config holds the scan heuristics. These are reference values carried
// over unchanged; the amplitude scale in particular is a crude
// placeholder that a percentile-based threshold should eventually
// replace.
type Config struct {
	// PixelDiffThreshold is the per-channel color difference (0-255)
	// above which two frames count as differing.
	PixelDiffThreshold uint8

	// GranularityDivisor derives the temporal smoothing width:
	// frameCount / GranularityDivisor frames following a detected
	// active frame are marked active too.
	GranularityDivisor int

	// AmplitudeThresholdScale scales (peak - mean) into the loudness
	// threshold.
	AmplitudeThresholdScale float64
}

// DefaultConfig returns the reference heuristics.
func DefaultConfig() Config {
	return Config{
		PixelDiffThreshold:      30,
		GranularityDivisor:      50,
		AmplitudeThresholdScale: 0.001,
	}
}

// Options wires an Index's collaborators.
type Options struct {
	// OpenReader opens the video decoding collaborator. Required for a
	// valid source.
	OpenReader OpenReaderFunc

	// Extractor is the audio extraction collaborator. A nil extractor
	// behaves like a failed extraction: the audio track degrades to
	// NoData.
	Extractor AudioExtractor

	// Notifier, when set, receives the extraction-failure message.
	Notifier Notifier

	// Config holds scan heuristics. Zero fields take the defaults.
	Config Config
}

// Index owns the two per-frame classification arrays and the scanner
// goroutines that fill them. Each array is written by exactly one
// goroutine; readers query only after completion, with the join in
// Wait/Close establishing the necessary happens-before.
type Index struct {
	logger      zerolog.Logger
	info        video.Info
	opts        Options
	cfg         Config
	granularity int

	videoStates []State
	audioStates []State

	track atomic.Pointer[audio.Track]

	cancel    context.CancelFunc
	group     *errgroup.Group
	videoDone atomic.Bool
	audioDone atomic.Bool
	closeOnce sync.Once
	valid     bool
}

// NewIndex allocates both classification arrays and starts the video and
// audio scanners concurrently. An unusable source (no frames) produces a
// degenerate index that scans nothing; check Valid before querying.
func NewIndex(logger zerolog.Logger, info video.Info, opts Options) *Index {
	cfg := opts.Config
	if cfg.PixelDiffThreshold == 0 {
		cfg.PixelDiffThreshold = DefaultConfig().PixelDiffThreshold
	}
	if cfg.GranularityDivisor <= 0 {
		cfg.GranularityDivisor = DefaultConfig().GranularityDivisor
	}
	if cfg.AmplitudeThresholdScale == 0 {
		cfg.AmplitudeThresholdScale = DefaultConfig().AmplitudeThresholdScale
	}

	x := &Index{
		logger: logger.With().Str("component", "activity-index").Logger(),
		info:   info,
		opts:   opts,
		cfg:    cfg,
	}

	if !info.Valid() {
		x.logger.Warn().Str("file", info.Path).Msg("source is not a usable video; nothing to scan")
		x.videoDone.Store(true)
		x.audioDone.Store(true)
		return x
	}

	x.valid = true
	x.videoStates = make([]State, info.FrameCount) // zero value is StateUninitialized
	x.audioStates = make([]State, info.FrameCount)
	x.granularity = info.FrameCount / cfg.GranularityDivisor

	ctx, cancel := context.WithCancel(context.Background())
	x.cancel = cancel
	x.group, ctx = errgroup.WithContext(ctx)

	x.group.Go(func() error {
		defer x.videoDone.Store(true)
		return x.scanVideo(ctx)
	})
	x.group.Go(func() error {
		defer x.audioDone.Store(true)
		return x.scanAudio(ctx)
	})

	return x
}

// Valid reports whether the source was usable and scanning was started.
func (x *Index) Valid() bool {
	return x.valid
}

// FrameCount returns the number of frames both arrays cover.
func (x *Index) FrameCount() int {
	return len(x.videoStates)
}

// Granularity returns the temporal smoothing width used by both scans.
func (x *Index) Granularity() int {
	return x.granularity
}

// IsActiveAt reports whether the frame is classified active on the
// requested track, with TrackEither meaning active on video or audio.
// An out-of-range index is a contract violation and panics.
func (x *Index) IsActiveAt(frameIdx int, track Track) bool {
	switch track {
	case TrackVideo:
		return x.stateAt(x.videoStates, frameIdx) == StateActive
	case TrackAudio:
		return x.stateAt(x.audioStates, frameIdx) == StateActive
	case TrackEither:
		return x.stateAt(x.videoStates, frameIdx) == StateActive ||
			x.stateAt(x.audioStates, frameIdx) == StateActive
	default:
		panic(fmt.Sprintf("activity: unknown track %d", int(track)))
	}
}

// HasUsableAudio reports whether the audio track was extracted and
// decoded, independent of whether classification has finished.
func (x *Index) HasUsableAudio() bool {
	return x.track.Load() != nil
}

// ScanComplete reports whether both scanners have finished, whether by
// success, degraded no-data completion, or cancellation.
func (x *Index) ScanComplete() bool {
	return x.videoDone.Load() && x.audioDone.Load()
}

// Wait blocks until both scanners have finished. It does not stop them.
func (x *Index) Wait() {
	if x.group != nil {
		_ = x.group.Wait()
	}
}

// SegmentStart walks backward from frameIdx, assumed active on the given
// single track, and returns the first frame of that contiguous active
// run. A run extending to the start of the video returns 0.
func (x *Index) SegmentStart(frameIdx int, track Track) int {
	arr := x.singleTrack(track)
	if frameIdx < 0 || frameIdx >= len(arr) {
		panic(fmt.Sprintf("activity: frame index %d out of range [0,%d)", frameIdx, len(arr)))
	}

	closest := frameIdx
	for arr[closest] == StateActive {
		if closest == 0 {
			return 0
		}
		closest--
	}

	return closest + 1
}

// Segment is a maximal contiguous run of active frames on one track.
// End is inclusive.
type Segment struct {
	Start int
	End   int
}

// Segments returns the maximal contiguous runs of active frames for the
// given track. Only meaningful once ScanComplete is true.
func (x *Index) Segments(track Track) []Segment {
	var segs []Segment
	start := -1

	for i := 0; i < x.FrameCount(); i++ {
		if x.IsActiveAt(i, track) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			segs = append(segs, Segment{Start: start, End: i - 1})
			start = -1
		}
	}
	if start >= 0 {
		segs = append(segs, Segment{Start: start, End: x.FrameCount() - 1})
	}

	return segs
}

// Close signals both scanners to stop, waits for them to actually
// return, and releases the decoded audio track. No scanner goroutine
// outlives the index.
func (x *Index) Close() error {
	x.closeOnce.Do(func() {
		if x.cancel != nil {
			x.cancel()
		}
		if x.group != nil {
			_ = x.group.Wait() // cancellation is deliberate, not an error
		}
		x.track.Store(nil)
	})
	return nil
}

func (x *Index) stateAt(arr []State, frameIdx int) State {
	if frameIdx < 0 || frameIdx >= len(arr) {
		panic(fmt.Sprintf("activity: frame index %d out of range [0,%d)", frameIdx, len(arr)))
	}
	return arr[frameIdx]
}

func (x *Index) singleTrack(track Track) []State {
	switch track {
	case TrackVideo:
		return x.videoStates
	case TrackAudio:
		return x.audioStates
	default:
		panic(fmt.Sprintf("activity: segment search requires a single track, got %s", track))
	}
}

func (x *Index) notifyUser(message string) {
	if x.opts.Notifier != nil {
		x.opts.Notifier.Notify(message)
	}
}

func fill(arr []State, s State) {
	for i := range arr {
		arr[i] = s
	}
}
