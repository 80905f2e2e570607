// Package track defines the canonical playable unit shared by every provider.
package track

import (
	"fmt"
	"net/url"
	"strings"
)

// Source identifies the provider a track was mapped from.
type Source string

const (
	SourceLocal    Source = "local"
	SourceJamendo  Source = "jamendo"
	SourceAudius   Source = "audius"
	SourceHearThis Source = "hearthis"
	SourceArchive  Source = "archive"
)

// Prefix returns the ID prefix used for tracks from this source.
func (s Source) Prefix() string {
	switch s {
	case SourceLocal:
		return "loc-"
	case SourceJamendo:
		return "jam-"
	case SourceAudius:
		return "aud-"
	case SourceHearThis:
		return "ht-"
	case SourceArchive:
		return "arc-"
	default:
		return string(s) + "-"
	}
}

// Track is a single playable item.
// ID is the only equality key: two values with the same ID are the same track.
type Track struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Artist    string  `json:"artist"`
	Album     string  `json:"album"`
	Cover     string  `json:"cover"`
	URL       string  `json:"url"`
	Duration  int     `json:"duration"` // seconds
	Source    Source  `json:"source"`
	Mood      *string `json:"mood,omitempty"`
	Genre     *string `json:"genre,omitempty"`
	File      string  `json:"file,omitempty"`      // local path for imported tracks
	Timestamp int64   `json:"timestamp,omitempty"` // unix ms when added to history
}

// NewID builds a provider-prefixed ID from a provider's native ID.
func NewID(src Source, nativeID string) string {
	return src.Prefix() + nativeID
}

// Same reports whether a and b are the same track.
func Same(a, b Track) bool {
	return a.ID == b.ID
}

// WithMood returns a copy of t with Mood set. Identity is unchanged.
func (t Track) WithMood(mood string) Track {
	m := mood
	t.Mood = &m
	return t
}

// WithGenre returns a copy of t with Genre set.
func (t Track) WithGenre(genre string) Track {
	g := genre
	t.Genre = &g
	return t
}

// MoodOr returns the mood or fallback when unset.
func (t Track) MoodOr(fallback string) string {
	if t.Mood == nil || *t.Mood == "" {
		return fallback
	}
	return *t.Mood
}

// String returns "Artist - Title".
func (t Track) String() string {
	if t.Artist == "" {
		return t.Title
	}
	return fmt.Sprintf("%s - %s", t.Artist, t.Title)
}

// Dedupe returns tracks with duplicate IDs removed.
// The first occurrence wins and order is otherwise preserved.
func Dedupe(tracks []Track) []Track {
	seen := make(map[string]struct{}, len(tracks))
	result := make([]Track, 0, len(tracks))
	for _, t := range tracks {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		result = append(result, t)
	}
	return result
}

// IndexOf returns the index of the track with the given ID, or -1.
func IndexOf(tracks []Track, id string) int {
	for i := range tracks {
		if tracks[i].ID == id {
			return i
		}
	}
	return -1
}

// SecureURL upgrades an http:// URL to https://.
// Only the scheme is rewritten; "http://" appearing elsewhere in the URL is left alone.
func SecureURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || !strings.EqualFold(u.Scheme, "http") {
		return raw
	}
	// Rewrite via prefix rather than u.String() to keep the original encoding intact.
	return "https" + raw[len(u.Scheme):]
}

// PlaceholderCover returns a deterministic artwork URL seeded by a provider's native ID.
func PlaceholderCover(seed string) string {
	return fmt.Sprintf("https://picsum.photos/seed/%s/400/400", url.PathEscape(seed))
}
