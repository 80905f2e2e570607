// Package spatial rotates the panner around the listener ("8D" audio).
package spatial

import (
	"math"
	"sync"
	"time"
)

const (
	// Step is the angle advance per tick in radians.
	Step = 0.015
	// Radius is the orbit radius in panner units.
	Radius = 3.5
	// DefaultInterval ticks at 60 Hz.
	DefaultInterval = time.Second / 60
)

// Positioner receives the orbit position.
type Positioner interface {
	SetPannerPosition(x, y, z float64)
	PannerPosition() (x, y, z float64)
}

// Animator orbits a Positioner on the x/z plane while active.
// The loop keeps running while inactive and only stops on Stop.
type Animator struct {
	mu       sync.Mutex
	target   Positioner
	interval time.Duration
	active   bool
	angle    float64

	running bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// New creates an animator ticking at interval (DefaultInterval when <= 0).
func New(target Positioner, interval time.Duration) *Animator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Animator{target: target, interval: interval}
}

// Start launches the tick loop. Calling Start on a running animator is a no-op.
func (a *Animator) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		return
	}
	a.running = true
	a.done = make(chan struct{})
	a.wg.Add(1)
	go a.loop(a.done)
}

// Stop ends the tick loop and waits for it to exit.
func (a *Animator) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	close(a.done)
	a.mu.Unlock()

	a.wg.Wait()
}

func (a *Animator) loop(done <-chan struct{}) {
	defer a.wg.Done()

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.Tick()
		case <-done:
			return
		}
	}
}

// Tick advances one frame. Inactive ticks do not touch the target.
func (a *Animator) Tick() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.active {
		return
	}
	a.angle += Step
	_, y, _ := a.target.PannerPosition()
	a.target.SetPannerPosition(math.Sin(a.angle)*Radius, y, math.Cos(a.angle)*Radius)
}

// SetActive turns rotation on or off. Once it returns no further
// rotation write happens until reactivated.
func (a *Animator) SetActive(active bool) {
	a.mu.Lock()
	a.active = active
	a.mu.Unlock()
}

// Active reports whether rotation is on.
func (a *Animator) Active() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

// Angle returns the current orbit angle in radians.
func (a *Animator) Angle() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.angle
}

// Running reports whether the tick loop is alive.
func (a *Animator) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}
