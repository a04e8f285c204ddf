// Package activity classifies every frame of a video as visually and/or
// acoustically active. Activity means notable change: movement between
// subsequent frames, or sound appreciably above the track's noise
// baseline. The two classifications are built concurrently and queried
// per frame, which is what a timeline UI needs to let a user jump to
// the interesting parts of a long recording.
package activity

// State is the per-frame, per-track classification outcome.
type State uint8

const (
	// StateUninitialized is the only initial value. It must never be
	// observed once a scan has completed.
	StateUninitialized State = iota

	// StateActive marks a frame with detected activity.
	StateActive

	// StateInactive marks a frame without detected activity.
	StateInactive

	// StateNoData marks every frame of a track that could not be
	// analyzed at all (e.g. audio extraction failed).
	StateNoData
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	case StateInactive:
		return "inactive"
	case StateNoData:
		return "no-data"
	default:
		return "unknown"
	}
}

// Track selects which classification a query reads.
type Track int

const (
	TrackVideo Track = iota
	TrackAudio
	// TrackEither is the union: active on video or audio.
	TrackEither
)

func (t Track) String() string {
	switch t {
	case TrackVideo:
		return "video"
	case TrackAudio:
		return "audio"
	case TrackEither:
		return "either"
	default:
		return "unknown"
	}
}
