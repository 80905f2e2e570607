// internal/player/mock.go
package player

import (
	"context"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"

	"github.com/llehouerou/novatone/internal/track"
)

// Mock is a test double for Player.
type Mock struct {
	mu             sync.Mutex
	state          State
	track          *track.Track
	position       time.Duration
	duration       time.Duration
	volume         float64
	rate           float64
	preservesPitch bool
	routed         bool
	output         beep.Streamer
	playErr        error
	playCalls      []track.Track
	seekCalls      []time.Duration
	onEnded        func()
	endedCh        chan struct{}
}

// NewMock creates a new mock player for testing.
func NewMock() *Mock {
	return &Mock{
		state:          Stopped,
		volume:         1,
		rate:           1,
		preservesPitch: true,
		endedCh:        make(chan struct{}, 1),
	}
}

func (m *Mock) Play(_ context.Context, t track.Track) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.playCalls = append(m.playCalls, t)
	if m.playErr != nil {
		return m.playErr
	}
	m.track = &t
	m.state = Playing
	return nil
}

func (m *Mock) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = Stopped
	m.track = nil
}

func (m *Mock) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Playing {
		m.state = Paused
	}
}

func (m *Mock) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Paused {
		m.state = Playing
	}
}

func (m *Mock) Toggle() {
	switch m.State() {
	case Playing:
		m.Pause()
	case Paused:
		m.Resume()
	case Stopped:
		// Nothing to toggle when stopped
	}
}

func (m *Mock) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Mock) Track() *track.Track {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.track == nil {
		return nil
	}
	t := *m.track
	return &t
}

func (m *Mock) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *Mock) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *Mock) Seek(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekCalls = append(m.seekCalls, d)
}

func (m *Mock) SetVolume(level float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = level
}

func (m *Mock) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

func (m *Mock) SetPlaybackRate(rate float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rate = rate
}

func (m *Mock) PlaybackRate() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rate
}

func (m *Mock) SetPreservesPitch(preserve bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.preservesPitch = preserve
}

func (m *Mock) PreservesPitch() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.preservesPitch
}

func (m *Mock) Route(fn func(beep.Streamer) beep.Streamer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.routed {
		return ErrAlreadyRouted
	}
	m.routed = true
	m.output = fn(beep.Silence(-1))
	return nil
}

func (m *Mock) OnEnded(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEnded = fn
}

func (m *Mock) EndedChan() <-chan struct{} {
	return m.endedCh
}

// Test helpers

func (m *Mock) SetState(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}

func (m *Mock) SetPlayError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErr = err
}

func (m *Mock) PlayCalls() []track.Track {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]track.Track(nil), m.playCalls...)
}

func (m *Mock) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.seekCalls...)
}

func (m *Mock) SetDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = d
}

func (m *Mock) SetPosition(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = d
}

// Output returns the routed output streamer, or nil.
func (m *Mock) Output() beep.Streamer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.output
}

func (m *Mock) Routed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.routed
}

// SimulateEnded simulates a track playing to the end.
func (m *Mock) SimulateEnded() {
	m.mu.Lock()
	m.state = Stopped
	fn := m.onEnded
	m.mu.Unlock()

	select {
	case m.endedCh <- struct{}{}:
	default:
	}
	if fn != nil {
		fn()
	}
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
