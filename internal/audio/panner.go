package audio

import (
	"math"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
)

const (
	refDistance   = 1.0
	rolloffFactor = 1.0
)

// Panner positions the signal in space around a listener at the origin.
// Distance attenuation follows the inverse model; the x/z azimuth drives
// left/right balance.
type Panner struct {
	x, y, z float64
	gain    effects.Gain
	pan     effects.Pan
}

// NewPanner creates a panner at the origin reading from in.
func NewPanner(in beep.Streamer) *Panner {
	p := &Panner{}
	p.gain.Streamer = in
	p.pan.Streamer = &p.gain
	return p
}

// SetPosition moves the source. Must be called under the context lock.
func (p *Panner) SetPosition(x, y, z float64) {
	p.x, p.y, p.z = x, y, z
	p.gain.Gain = DistanceGain(math.Sqrt(x*x+y*y+z*z)) - 1
	p.pan.Pan = Azimuth(x, z)
}

// Position returns the current source position.
func (p *Panner) Position() (x, y, z float64) {
	return p.x, p.y, p.z
}

// Stream implements beep.Streamer.
func (p *Panner) Stream(samples [][2]float64) (n int, ok bool) {
	return p.pan.Stream(samples)
}

// Err implements beep.Streamer.
func (p *Panner) Err() error { return p.pan.Err() }

// DistanceGain returns the inverse distance model gain for d.
func DistanceGain(d float64) float64 {
	d = math.Max(d, refDistance)
	return refDistance / (refDistance + rolloffFactor*(d-refDistance))
}

// Azimuth maps a horizontal position to a pan value in [-1, 1].
func Azimuth(x, z float64) float64 {
	h := math.Hypot(x, z)
	if h == 0 {
		return 0
	}
	return x / h
}
