// Package audio holds the real-time signal path applied to the player output:
// bass shelf, equalizer bands and a positional panner.
package audio

import (
	"errors"

	"github.com/gopxl/beep/v2"
)

// ContextState is the lifecycle state of an audio context.
type ContextState int

const (
	Suspended ContextState = iota
	Running
	Closed
)

func (s ContextState) String() string {
	switch s {
	case Suspended:
		return "suspended"
	case Running:
		return "running"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// ErrContextClosed is returned when resuming a closed context.
var ErrContextClosed = errors.New("audio context closed")

// Context is the output device the graph renders into.
// Lock and Unlock guard parameter writes against the audio callback.
type Context interface {
	State() ContextState
	Resume() error
	SampleRate() beep.SampleRate
	Lock()
	Unlock()
	Close() error
}

// ContextFactory creates the audio context when the graph is initialized.
type ContextFactory func() (Context, error)
