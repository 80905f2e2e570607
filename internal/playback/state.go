package playback

import (
	"strings"
	"time"

	"github.com/llehouerou/novatone/internal/track"
)

// State represents the playback state.
type State int

const (
	StateStopped State = iota
	StatePlaying
	StatePaused
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsActive returns true if a track is loaded (playing or paused).
func (s State) IsActive() bool {
	return s == StatePlaying || s == StatePaused
}

// RepeatMode defines what happens when a track ends.
type RepeatMode int

const (
	RepeatNone RepeatMode = iota
	RepeatAll
	RepeatOne
)

// String returns the lowercase mode name used in config and the HTTP API.
func (m RepeatMode) String() string {
	switch m {
	case RepeatNone:
		return "none"
	case RepeatAll:
		return "all"
	case RepeatOne:
		return "one"
	default:
		return "unknown"
	}
}

// Next cycles none → all → one → none.
func (m RepeatMode) Next() RepeatMode {
	switch m {
	case RepeatNone:
		return RepeatAll
	case RepeatAll:
		return RepeatOne
	default:
		return RepeatNone
	}
}

// ParseRepeatMode parses "none", "one" or "all". Anything else is none.
func ParseRepeatMode(s string) RepeatMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all":
		return RepeatAll
	case "one":
		return RepeatOne
	default:
		return RepeatNone
	}
}

// Snapshot is a copy of the whole playback state.
type Snapshot struct {
	Current  *track.Track  `json:"current,omitempty"`
	Playing  bool          `json:"playing"`
	Elapsed  time.Duration `json:"elapsed"`
	Duration time.Duration `json:"duration"`
	Progress float64       `json:"progress"` // percent, 0..100
	Volume   float64       `json:"volume"`
	Repeat   RepeatMode    `json:"repeat"`
	Shuffle  bool          `json:"shuffle"`
	Queue    []track.Track `json:"queue"`
	History  []track.Track `json:"history"`
}

// Progress returns elapsed as a percentage of duration.
// An unknown duration counts as one second, so progress never divides by zero.
func Progress(elapsed, duration time.Duration) float64 {
	if duration <= 0 {
		duration = time.Second
	}
	p := float64(elapsed) / float64(duration) * 100
	return min(100, max(0, p))
}
