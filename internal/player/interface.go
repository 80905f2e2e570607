// internal/player/interface.go
package player

import (
	"context"
	"time"

	"github.com/gopxl/beep/v2"

	"github.com/llehouerou/novatone/internal/track"
)

// Interface defines the playable element contract for dependency injection and testing.
type Interface interface {
	Play(ctx context.Context, t track.Track) error
	Stop()
	Pause()
	Resume()
	Toggle()
	State() State
	Track() *track.Track
	Position() time.Duration
	Duration() time.Duration
	Seek(delta time.Duration)
	SetVolume(level float64)
	Volume() float64
	SetPlaybackRate(rate float64)
	PlaybackRate() float64
	SetPreservesPitch(preserve bool)
	PreservesPitch() bool
	Route(fn func(beep.Streamer) beep.Streamer) error
	OnEnded(fn func())
	EndedChan() <-chan struct{}
}

// Verify Player implements Interface at compile time.
var _ Interface = (*Player)(nil)
