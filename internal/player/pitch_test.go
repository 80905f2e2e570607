package player

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

type sine struct {
	freq, rate float64
	n          int
}

func (s *sine) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		v := math.Sin(2 * math.Pi * s.freq * float64(s.n) / s.rate)
		samples[i] = [2]float64{v, v}
		s.n++
	}
	return len(samples), true
}

func (*sine) Err() error { return nil }

func zeroCrossings(buf [][2]float64) int {
	count := 0
	for i := 1; i < len(buf); i++ {
		if (buf[i-1][0] < 0) != (buf[i][0] < 0) {
			count++
		}
	}
	return count
}

func TestPitchShifter_UnityIsTransparent(t *testing.T) {
	in := &sine{freq: 440, rate: 44100}
	ref := &sine{freq: 440, rate: 44100}
	p := newPitchShifter(in, 1)

	got := make([][2]float64, 2048)
	want := make([][2]float64, 2048)
	p.Stream(got)
	ref.Stream(want)

	assert.Equal(t, want, got)
}

func TestPitchShifter_ShiftsFrequency(t *testing.T) {
	tests := []struct {
		name   string
		factor float64
	}{
		{"octave down", 0.5},
		{"down by nightcore ratio", 1 / 1.3},
		{"up", 1.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPitchShifter(&sine{freq: 1000, rate: 44100}, tt.factor)

			warmup := make([][2]float64, 8192)
			p.Stream(warmup)

			buf := make([][2]float64, 44100)
			p.Stream(buf)

			// 1000 Hz has 2000 crossings per second
			want := 2000 * tt.factor
			assert.InDelta(t, want, float64(zeroCrossings(buf)), want*0.1)
		})
	}
}

func TestPitchShifter_PassesEndOfStream(t *testing.T) {
	p := newPitchShifter(&fakeStream{value: 1, length: 10}, 0.8)

	buf := make([][2]float64, 32)
	n, ok := p.Stream(buf)
	assert.Equal(t, 10, n)
	assert.True(t, ok)

	n, ok = p.Stream(buf)
	assert.Equal(t, 0, n)
	assert.False(t, ok)
}
