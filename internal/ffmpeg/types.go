package ffmpeg

import "time"

// VideoInfo contains metadata about a video file
type VideoInfo struct {
	FilePath   string
	Duration   time.Duration
	Width      int
	Height     int
	FPS        float64
	FrameCount int
	VideoCodec string
	HasAudio   bool
	AudioCodec string
}

// Progress represents ffmpeg progress data parsed from stderr. Frame and
// FPS stay zero for audio-only operations; OutTime is filled either way.
type Progress struct {
	Frame   int
	FPS     float64
	OutTime string
	Speed   string
}

// ProgressFunc is a callback invoked periodically with progress
// information while an ffmpeg operation executes
type ProgressFunc func(*Progress)

// RunOptions configures a single ffmpeg execution
type RunOptions struct {
	Args            []string
	ProgressHandler ProgressFunc
	LogHandler      func(line string)
}
