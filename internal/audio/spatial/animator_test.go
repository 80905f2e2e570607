package spatial

import (
	"math"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakePositioner struct {
	mu     sync.Mutex
	pos    [3]float64
	writes int
}

func (f *fakePositioner) SetPannerPosition(x, y, z float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pos = [3]float64{x, y, z}
	f.writes++
}

func (f *fakePositioner) PannerPosition() (x, y, z float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pos[0], f.pos[1], f.pos[2]
}

func (f *fakePositioner) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func TestAnimator_InactiveTickDoesNothing(t *testing.T) {
	target := &fakePositioner{}
	a := New(target, 0)

	a.Tick()
	a.Tick()

	assert.Equal(t, 0, target.writeCount())
	assert.Equal(t, 0.0, a.Angle())
}

func TestAnimator_TickOrbits(t *testing.T) {
	target := &fakePositioner{pos: [3]float64{0, 0.4, 0}}
	a := New(target, 0)
	a.SetActive(true)

	for range 10 {
		a.Tick()
	}

	angle := 10 * Step
	assert.InDelta(t, angle, a.Angle(), 1e-12)
	x, y, z := target.PannerPosition()
	assert.InDelta(t, math.Sin(angle)*Radius, x, 1e-12)
	assert.Equal(t, 0.4, y, "y is preserved")
	assert.InDelta(t, math.Cos(angle)*Radius, z, 1e-12)
	assert.InDelta(t, Radius, math.Hypot(x, z), 1e-12)
}

func TestAnimator_AngleSurvivesDeactivation(t *testing.T) {
	a := New(&fakePositioner{}, 0)
	a.SetActive(true)
	a.Tick()
	a.SetActive(false)
	a.Tick()

	assert.InDelta(t, Step, a.Angle(), 1e-12)
	assert.False(t, a.Active())
}

func TestAnimator_LoopTicksAtInterval(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		target := &fakePositioner{}
		a := New(target, DefaultInterval)
		a.SetActive(true)
		a.Start()

		time.Sleep(time.Second + time.Millisecond)
		synctest.Wait()

		a.Stop()
		assert.Equal(t, 60, target.writeCount())
	})
}

func TestAnimator_LoopRunsWhileInactive(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		target := &fakePositioner{}
		a := New(target, DefaultInterval)
		a.Start()

		time.Sleep(500 * time.Millisecond)
		synctest.Wait()
		assert.True(t, a.Running())
		assert.Equal(t, 0, target.writeCount())

		a.SetActive(true)
		time.Sleep(100*time.Millisecond + time.Millisecond)
		synctest.Wait()
		assert.Positive(t, target.writeCount())

		a.Stop()
		assert.False(t, a.Running())
	})
}

func TestAnimator_StartStopIdempotent(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		a := New(&fakePositioner{}, DefaultInterval)
		a.Start()
		a.Start()
		a.Stop()
		a.Stop()
		assert.False(t, a.Running())

		a.Start()
		assert.True(t, a.Running())
		a.Stop()
	})
}
