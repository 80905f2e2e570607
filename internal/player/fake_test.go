package player

import (
	"sync"

	"github.com/gopxl/beep/v2"

	"github.com/llehouerou/novatone/internal/track"
)

// fakeSink records what the player streams without an audio device.
type fakeSink struct {
	mu      sync.Mutex
	rate    beep.SampleRate
	played  []beep.Streamer
	playErr error
}

func newFakeSink() *fakeSink { return &fakeSink{rate: 44100} }

func (s *fakeSink) SampleRate() beep.SampleRate { return s.rate }

func (s *fakeSink) Play(st beep.Streamer) error {
	if s.playErr != nil {
		return s.playErr
	}
	s.played = append(s.played, st)
	return nil
}

func (s *fakeSink) Lock()   { s.mu.Lock() }
func (s *fakeSink) Unlock() { s.mu.Unlock() }

// pull streams n samples from the device output like the audio goroutine would.
func (s *fakeSink) pull(n int) [][2]float64 {
	buf := make([][2]float64, n)
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.played) > 0 {
		s.played[len(s.played)-1].Stream(buf)
	}
	return buf
}

// fakeStream is a seekable in-memory stream of a constant value.
type fakeStream struct {
	value  float64
	length int
	pos    int
	closed bool
}

func (f *fakeStream) Stream(samples [][2]float64) (int, bool) {
	if f.pos >= f.length {
		return 0, false
	}
	n := min(len(samples), f.length-f.pos)
	for i := range n {
		samples[i] = [2]float64{f.value, f.value}
	}
	f.pos += n
	return n, true
}

func (f *fakeStream) Err() error    { return nil }
func (f *fakeStream) Len() int      { return f.length }
func (f *fakeStream) Position() int { return f.pos }

func (f *fakeStream) Seek(p int) error {
	f.pos = p
	return nil
}

func (f *fakeStream) Close() error {
	f.closed = true
	return nil
}

// unboundedStream reports an unknown length like a network MP3.
type unboundedStream struct{ fakeStream }

func (u *unboundedStream) Len() int { return -1 }

func testFormat(rate beep.SampleRate) beep.Format {
	return beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
}

func trackFixture() track.Track {
	return track.Track{ID: "jam-7", Title: "Fixture", URL: "https://example.com/a.mp3"}
}
