package audio

import (
	"math"

	"github.com/gopxl/beep/v2"
)

// FilterKind selects the biquad response.
type FilterKind int

const (
	LowShelf FilterKind = iota
	Peaking
)

// biquad holds normalized coefficients (a0 == 1).
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
}

// design returns RBJ cookbook coefficients. Shelves use slope S = 1.
func design(kind FilterKind, sampleRate, freq, q, gainDB float64) biquad {
	a := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * freq / sampleRate
	cosw, sinw := math.Cos(w0), math.Sin(w0)

	var b0, b1, b2, a0, a1, a2 float64
	switch kind {
	case LowShelf:
		alpha := sinw / 2 * math.Sqrt2
		sqrtA2alpha := 2 * math.Sqrt(a) * alpha
		b0 = a * ((a + 1) - (a-1)*cosw + sqrtA2alpha)
		b1 = 2 * a * ((a - 1) - (a+1)*cosw)
		b2 = a * ((a + 1) - (a-1)*cosw - sqrtA2alpha)
		a0 = (a + 1) + (a-1)*cosw + sqrtA2alpha
		a1 = -2 * ((a - 1) + (a+1)*cosw)
		a2 = (a + 1) + (a-1)*cosw - sqrtA2alpha
	default:
		alpha := sinw / (2 * q)
		b0 = 1 + alpha*a
		b1 = -2 * cosw
		b2 = 1 - alpha*a
		a0 = 1 + alpha/a
		a1 = -2 * cosw
		a2 = 1 - alpha/a
	}

	return biquad{
		b0: b0 / a0,
		b1: b1 / a0,
		b2: b2 / a0,
		a1: a1 / a0,
		a2: a2 / a0,
	}
}

// Filter is a stereo biquad node (transposed direct form II).
// Gain changes must happen under the context lock.
type Filter struct {
	in         beep.Streamer
	kind       FilterKind
	sampleRate float64
	freq       float64
	q          float64
	gain       float64
	c          biquad
	z          [2][2]float64 // per channel z1, z2
}

// NewFilter creates a filter node reading from in.
func NewFilter(in beep.Streamer, kind FilterKind, sampleRate beep.SampleRate, freq, q, gainDB float64) *Filter {
	f := &Filter{
		in:         in,
		kind:       kind,
		sampleRate: float64(sampleRate),
		freq:       freq,
		q:          q,
	}
	f.SetGain(gainDB)
	return f
}

// SetGain updates the gain in dB and recomputes the coefficients.
func (f *Filter) SetGain(db float64) {
	f.gain = db
	f.c = design(f.kind, f.sampleRate, f.freq, f.q, db)
}

// Gain returns the current gain in dB.
func (f *Filter) Gain() float64 { return f.gain }

// Frequency returns the corner or center frequency in Hz.
func (f *Filter) Frequency() float64 { return f.freq }

// Stream implements beep.Streamer.
func (f *Filter) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = f.in.Stream(samples)
	c := f.c
	for i := range samples[:n] {
		for ch := range 2 {
			x := samples[i][ch]
			z := &f.z[ch]
			y := c.b0*x + z[0]
			z[0] = c.b1*x - c.a1*y + z[1]
			z[1] = c.b2*x - c.a2*y
			samples[i][ch] = y
		}
	}
	return n, ok
}

// Err implements beep.Streamer.
func (f *Filter) Err() error { return f.in.Err() }
