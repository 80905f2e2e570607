package audio

import (
	"errors"
	"sync"

	"github.com/gopxl/beep/v2"
)

type fakeContext struct {
	mu       sync.Mutex
	audio    sync.Mutex
	state    ContextState
	resumes  int
	locks    int
	closes   int
	sr       beep.SampleRate
	resumeFn func() error
}

func newFakeContext() *fakeContext {
	return &fakeContext{state: Suspended, sr: 44100}
}

func (c *fakeContext) State() ContextState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *fakeContext) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resumeFn != nil {
		if err := c.resumeFn(); err != nil {
			return err
		}
	}
	c.resumes++
	c.state = Running
	return nil
}

func (c *fakeContext) SampleRate() beep.SampleRate { return c.sr }

func (c *fakeContext) Lock() {
	c.audio.Lock()
	c.mu.Lock()
	c.locks++
	c.mu.Unlock()
}

func (c *fakeContext) Unlock() { c.audio.Unlock() }

func (c *fakeContext) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closes++
	c.state = Closed
	return nil
}

func (c *fakeContext) resumeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resumes
}

func (c *fakeContext) lockCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locks
}

type fakeElement struct {
	src    beep.Streamer
	out    beep.Streamer
	routes int
	err    error
}

func (e *fakeElement) Route(fn func(beep.Streamer) beep.Streamer) error {
	e.routes++
	if e.err != nil {
		return e.err
	}
	e.out = fn(e.src)
	return nil
}

// constStreamer emits the same value on both channels forever.
type constStreamer struct{ v float64 }

func (c constStreamer) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		samples[i] = [2]float64{c.v, c.v}
	}
	return len(samples), true
}

func (constStreamer) Err() error { return nil }

func factoryFor(ctx Context) (ContextFactory, *int) {
	calls := 0
	return func() (Context, error) {
		calls++
		return ctx, nil
	}, &calls
}

var errDenied = errors.New("denied")
