package player

import (
	"math"

	"github.com/gopxl/beep/v2"
)

const (
	pitchBufferSize = 4096
	pitchWindow     = 2048.0
)

// pitchShifter transposes by factor using two crossfaded read heads on a
// delay line. factor 1 passes samples through untouched.
type pitchShifter struct {
	in     beep.Streamer
	factor float64
	buf    [pitchBufferSize][2]float64
	w      int
	delay  float64
}

func newPitchShifter(in beep.Streamer, factor float64) *pitchShifter {
	return &pitchShifter{in: in, factor: factor}
}

// SetFactor changes the transposition ratio. Must be called under the device lock.
func (p *pitchShifter) SetFactor(f float64) {
	p.factor = f
}

// Stream implements beep.Streamer.
func (p *pitchShifter) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = p.in.Stream(samples)

	for i := range samples[:n] {
		p.buf[p.w] = samples[i]
		if p.factor != 1 {
			da := p.delay
			db := math.Mod(da+pitchWindow/2, pitchWindow)
			ga := math.Sin(math.Pi * da / pitchWindow)
			ga *= ga
			a, b := p.read(da), p.read(db)
			for ch := range 2 {
				samples[i][ch] = a[ch]*ga + b[ch]*(1-ga)
			}

			p.delay += 1 - p.factor
			p.delay = math.Mod(p.delay, pitchWindow)
			if p.delay < 0 {
				p.delay += pitchWindow
			}
		}
		p.w = (p.w + 1) % pitchBufferSize
	}
	return n, ok
}

// read returns the sample d positions behind the write head, linearly interpolated.
func (p *pitchShifter) read(d float64) [2]float64 {
	pos := float64(p.w) - d
	i0 := int(math.Floor(pos))
	frac := pos - float64(i0)
	a := p.buf[(i0+pitchBufferSize)%pitchBufferSize]
	b := p.buf[(i0+1+pitchBufferSize)%pitchBufferSize]
	return [2]float64{
		a[0]*(1-frac) + b[0]*frac,
		a[1]*(1-frac) + b[1]*frac,
	}
}

// Err implements beep.Streamer.
func (p *pitchShifter) Err() error { return p.in.Err() }
