package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_ZeroGainIsTransparent(t *testing.T) {
	for _, kind := range []FilterKind{LowShelf, Peaking} {
		f := NewFilter(constStreamer{v: 0.3}, kind, 44100, 150, 1, 0)
		buf := make([][2]float64, 256)
		f.Stream(buf)
		for i := range buf {
			assert.InDelta(t, 0.3, buf[i][0], 1e-12)
		}
	}
}

func TestFilter_LowShelfDCGain(t *testing.T) {
	tests := []struct {
		name string
		db   float64
	}{
		{"boost 6dB", 6},
		{"boost 15dB", 15},
		{"cut 10dB", -10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFilter(constStreamer{v: 1}, LowShelf, 44100, 150, 1, tt.db)
			buf := make([][2]float64, 1024)
			for range 20 {
				f.Stream(buf)
			}
			want := math.Pow(10, tt.db/20)
			assert.InDelta(t, want, buf[len(buf)-1][0], 1e-3)
			assert.InDelta(t, want, buf[len(buf)-1][1], 1e-3)
		})
	}
}

func TestFilter_PeakingLeavesDCAlone(t *testing.T) {
	f := NewFilter(constStreamer{v: 1}, Peaking, 44100, 3600, 1, 12)
	buf := make([][2]float64, 1024)
	for range 20 {
		f.Stream(buf)
	}
	assert.InDelta(t, 1, buf[len(buf)-1][0], 1e-3)
}

func TestFilter_PeakingBoostsCenter(t *testing.T) {
	const sr = 44100.0
	const freq = 910.0

	sine := &sineStreamer{freq: freq, sampleRate: sr}
	f := NewFilter(sine, Peaking, sr, freq, 1, 6)

	buf := make([][2]float64, 4096)
	for range 10 {
		f.Stream(buf)
	}
	peak := 0.0
	for i := range buf {
		peak = math.Max(peak, math.Abs(buf[i][0]))
	}
	assert.InDelta(t, math.Pow(10, 6.0/20), peak, 0.02)
}

func TestFilter_SetGainUpdatesGain(t *testing.T) {
	f := NewFilter(constStreamer{}, LowShelf, 44100, 150, 1, 0)
	f.SetGain(9)
	assert.Equal(t, 9.0, f.Gain())
	assert.Equal(t, 150.0, f.Frequency())
}

type sineStreamer struct {
	freq, sampleRate float64
	n                int
}

func (s *sineStreamer) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		v := math.Sin(2 * math.Pi * s.freq * float64(s.n) / s.sampleRate)
		samples[i] = [2]float64{v, v}
		s.n++
	}
	return len(samples), true
}

func (*sineStreamer) Err() error { return nil }
