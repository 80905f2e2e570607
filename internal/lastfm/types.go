package lastfm

import (
	"time"

	"github.com/llehouerou/novatone/internal/track"
)

// ScrobbleTrack contains track metadata for scrobbling.
type ScrobbleTrack struct {
	Artist    string
	Track     string
	Album     string
	Duration  time.Duration
	Timestamp time.Time // when playback started
}

// FromTrack builds scrobble metadata for a track that started at startedAt.
func FromTrack(t track.Track, startedAt time.Time) ScrobbleTrack {
	return ScrobbleTrack{
		Artist:    t.Artist,
		Track:     t.Title,
		Album:     t.Album,
		Duration:  time.Duration(t.Duration) * time.Second,
		Timestamp: startedAt,
	}
}

const (
	minScrobbleDuration = 30 * time.Second
	maxScrobbleWait     = 4 * time.Minute
)

// ShouldScrobble applies the Last.fm rule: the track is longer than 30s and
// was played for half its length or four minutes, whichever comes first.
func ShouldScrobble(played, duration time.Duration) bool {
	if duration <= minScrobbleDuration {
		return false
	}
	return played >= min(duration/2, maxScrobbleWait)
}
