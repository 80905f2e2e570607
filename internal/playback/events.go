package playback

import (
	"time"

	"github.com/llehouerou/novatone/internal/track"
)

// StateChange is emitted when playback state changes.
type StateChange struct {
	Previous State
	Current  State
}

// TrackChange is emitted when playback starts on a track, including a
// repeat of the same one.
//
// Listeners record play stats, now-playing and scrobbles from this event.
type TrackChange struct {
	Previous *track.Track
	Current  *track.Track
	Index    int
}

// QueueChange is emitted when the queue contents change.
type QueueChange struct {
	Tracks []track.Track
	Index  int
}

// ModeChange is emitted when repeat or shuffle mode changes.
type ModeChange struct {
	RepeatMode RepeatMode
	Shuffle    bool
}

// PositionChange is emitted when a seek occurs.
type PositionChange struct {
	Position time.Duration
}

// ErrorEvent is emitted when an operation fails, e.g. a track that cannot be started.
type ErrorEvent struct {
	Operation string // "play", "resume"
	TrackID   string
	Err       error
}
