package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// Speaker is the process audio output backed by the beep speaker.
// It serves both as the player's sink and as the graph's Context.
type Speaker struct {
	mu          sync.Mutex
	sampleRate  beep.SampleRate
	initialized bool
	state       ContextState
}

// NewSpeaker returns an uninitialized speaker output. The device is opened lazily.
func NewSpeaker(sampleRate beep.SampleRate) *Speaker {
	return &Speaker{sampleRate: sampleRate, state: Suspended}
}

func (s *Speaker) ensureInit() error {
	if s.initialized {
		return nil
	}
	if err := speaker.Init(s.sampleRate, s.sampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	s.initialized = true
	s.state = Running
	return nil
}

// Open returns the speaker as a graph Context. A freshly opened device starts
// suspended and produces no sound until Resume.
func (s *Speaker) Open() (Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Closed {
		return nil, ErrContextClosed
	}
	if !s.initialized {
		if err := s.ensureInit(); err != nil {
			return nil, err
		}
		if err := speaker.Suspend(); err != nil {
			return nil, fmt.Errorf("suspend speaker: %w", err)
		}
		s.state = Suspended
	}
	return s, nil
}

// Play starts streaming s to the device, opening it if needed.
func (s *Speaker) Play(st beep.Streamer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Closed {
		return ErrContextClosed
	}
	if err := s.ensureInit(); err != nil {
		return err
	}
	speaker.Play(st)
	return nil
}

func (s *Speaker) State() ContextState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Resume resumes a suspended device. It is a no-op when already running.
func (s *Speaker) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case Closed:
		return ErrContextClosed
	case Running:
		return nil
	}
	if err := speaker.Resume(); err != nil {
		return fmt.Errorf("resume speaker: %w", err)
	}
	s.state = Running
	return nil
}

func (s *Speaker) SampleRate() beep.SampleRate { return s.sampleRate }

func (s *Speaker) Lock() { speaker.Lock() }

func (s *Speaker) Unlock() { speaker.Unlock() }

// Close releases the device.
func (s *Speaker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Closed {
		return nil
	}
	if s.initialized {
		speaker.Clear()
		speaker.Close()
	}
	s.state = Closed
	return nil
}
