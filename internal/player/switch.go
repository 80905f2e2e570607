package player

import (
	"sync"

	"github.com/gopxl/beep/v2"
)

var _ beep.Streamer = (*switchStreamer)(nil)

// switchStreamer plays whatever streamer is current and emits silence when
// there is none, so the device never drains between tracks.
type switchStreamer struct {
	mu      sync.Mutex
	current beep.Streamer
}

// Stream implements beep.Streamer. It always fills the buffer.
func (s *switchStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		n, ok = s.current.Stream(samples)

		// If current didn't fill the buffer, check if it's exhausted
		if n < len(samples) && ok {
			n2, ok2 := s.current.Stream(samples[n:])
			n += n2
			ok = ok2
		}
		if !ok {
			s.current = nil
		}
	}

	clear(samples[n:])
	return len(samples), true
}

// Err implements beep.Streamer.
func (s *switchStreamer) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		return s.current.Err()
	}
	return nil
}

// Set replaces the current streamer. nil means silence.
func (s *switchStreamer) Set(st beep.Streamer) {
	s.mu.Lock()
	s.current = st
	s.mu.Unlock()
}

// Active returns true if a streamer is playing.
func (s *switchStreamer) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}
