package lastfm

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/llehouerou/novatone/internal/playback"
	"github.com/llehouerou/novatone/internal/track"
)

type fakeSender struct {
	mu         sync.Mutex
	nowPlaying []ScrobbleTrack
	scrobbles  []ScrobbleTrack
	err        error
}

func (f *fakeSender) UpdateNowPlaying(t ScrobbleTrack) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nowPlaying = append(f.nowPlaying, t)
	return f.err
}

func (f *fakeSender) Scrobble(t ScrobbleTrack) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scrobbles = append(f.scrobbles, t)
	return f.err
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestScrobbler() (*Scrobbler, *fakeSender, *fakeClock) {
	sender := &fakeSender{}
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	s := NewScrobbler(sender, nil)
	s.now = clock.now
	return s, sender, clock
}

func song(id string, seconds int) track.Track {
	return track.Track{ID: id, Title: "Title " + id, Artist: "Artist", Album: "Album", Duration: seconds}
}

func TestShouldScrobble(t *testing.T) {
	tests := []struct {
		name     string
		played   time.Duration
		duration time.Duration
		want     bool
	}{
		{"too short track", 30 * time.Second, 30 * time.Second, false},
		{"half played", 60 * time.Second, 120 * time.Second, true},
		{"under half", 59 * time.Second, 120 * time.Second, false},
		{"long track four minutes", 4 * time.Minute, 20 * time.Minute, true},
		{"long track under four minutes", 3 * time.Minute, 20 * time.Minute, false},
		{"unknown duration", time.Hour, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldScrobble(tt.played, tt.duration); got != tt.want {
				t.Errorf("ShouldScrobble(%v, %v) = %v, want %v", tt.played, tt.duration, got, tt.want)
			}
		})
	}
}

func TestScrobbler_NowPlayingOnStart(t *testing.T) {
	s, sender, clock := newTestScrobbler()

	s.TrackStarted(song("a", 200))

	if len(sender.nowPlaying) != 1 {
		t.Fatalf("nowPlaying = %d, want 1", len(sender.nowPlaying))
	}
	got := sender.nowPlaying[0]
	if got.Track != "Title a" || got.Artist != "Artist" || got.Album != "Album" {
		t.Errorf("unexpected now playing %+v", got)
	}
	if !got.Timestamp.Equal(clock.t) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, clock.t)
	}
}

func TestScrobbler_ScrobblesPreviousWhenPlayedEnough(t *testing.T) {
	s, sender, clock := newTestScrobbler()
	start := clock.t

	s.TrackStarted(song("a", 200))
	clock.advance(150 * time.Second)
	s.TrackStarted(song("b", 200))

	if len(sender.scrobbles) != 1 {
		t.Fatalf("scrobbles = %d, want 1", len(sender.scrobbles))
	}
	if sender.scrobbles[0].Track != "Title a" {
		t.Errorf("scrobbled %q, want %q", sender.scrobbles[0].Track, "Title a")
	}
	if !sender.scrobbles[0].Timestamp.Equal(start) {
		t.Errorf("Timestamp = %v, want start time %v", sender.scrobbles[0].Timestamp, start)
	}
}

func TestScrobbler_SkipsShortListen(t *testing.T) {
	s, sender, clock := newTestScrobbler()

	s.TrackStarted(song("a", 200))
	clock.advance(20 * time.Second)
	s.TrackStarted(song("b", 200))

	if len(sender.scrobbles) != 0 {
		t.Errorf("scrobbles = %d, want 0", len(sender.scrobbles))
	}
}

func TestScrobbler_PausedTimeNotCounted(t *testing.T) {
	s, sender, clock := newTestScrobbler()

	s.TrackStarted(song("a", 200))
	clock.advance(60 * time.Second)
	s.StateChanged(playback.StatePaused)
	clock.advance(10 * time.Minute)
	s.StateChanged(playback.StatePlaying)
	clock.advance(30 * time.Second)
	s.Flush()

	if len(sender.scrobbles) != 0 {
		t.Fatalf("90s of a 200s track should not scrobble, got %d", len(sender.scrobbles))
	}

	s.TrackStarted(song("b", 200))
	clock.advance(60 * time.Second)
	s.StateChanged(playback.StatePaused)
	clock.advance(time.Minute)
	s.StateChanged(playback.StatePlaying)
	clock.advance(45 * time.Second)
	s.Flush()

	if len(sender.scrobbles) != 1 {
		t.Fatalf("105s of a 200s track should scrobble, got %d", len(sender.scrobbles))
	}
}

func TestScrobbler_FlushForgetsTrack(t *testing.T) {
	s, sender, clock := newTestScrobbler()

	s.TrackStarted(song("a", 100))
	clock.advance(time.Minute)
	s.Flush()
	s.Flush()

	if len(sender.scrobbles) != 1 {
		t.Errorf("scrobbles = %d, want 1", len(sender.scrobbles))
	}
}

func TestScrobbler_SenderErrorsAreSwallowed(t *testing.T) {
	s, sender, clock := newTestScrobbler()
	sender.err = errors.New("network down")

	s.TrackStarted(song("a", 100))
	clock.advance(time.Minute)
	s.Flush()

	if len(sender.scrobbles) != 1 {
		t.Errorf("scrobble attempts = %d, want 1", len(sender.scrobbles))
	}
}

func TestClient_RequiresSession(t *testing.T) {
	c := New("key", "secret", "")

	if err := c.UpdateNowPlaying(ScrobbleTrack{}); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("UpdateNowPlaying err = %v, want ErrNotAuthenticated", err)
	}
	if err := c.Scrobble(ScrobbleTrack{}); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Scrobble err = %v, want ErrNotAuthenticated", err)
	}
}

func TestScrobbleTrack_Params(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	st := FromTrack(song("a", 245), ts)

	p := st.params(true)
	if p["timestamp"] != int64(1700000000) {
		t.Errorf("timestamp = %v", p["timestamp"])
	}
	if p["duration"] != 245 {
		t.Errorf("duration = %v", p["duration"])
	}
	if p["album"] != "Album" {
		t.Errorf("album = %v", p["album"])
	}

	if _, ok := st.params(false)["timestamp"]; ok {
		t.Error("now playing params must not carry a timestamp")
	}
}
