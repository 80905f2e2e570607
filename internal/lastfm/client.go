// Package lastfm reports played tracks to Last.fm.
package lastfm

import (
	"errors"
	"fmt"

	"github.com/shkh/lastfm-go/lastfm"
)

// ErrNotAuthenticated is returned when an operation requires a session key.
var ErrNotAuthenticated = errors.New("not authenticated")

// Sender submits now-playing notifications and scrobbles.
type Sender interface {
	UpdateNowPlaying(t ScrobbleTrack) error
	Scrobble(t ScrobbleTrack) error
}

// Client wraps the Last.fm API.
type Client struct {
	api        *lastfm.Api
	sessionKey string
}

// New creates a client authenticated with an existing session key.
func New(apiKey, apiSecret, sessionKey string) *Client {
	api := lastfm.New(apiKey, apiSecret)
	if sessionKey != "" {
		api.SetSession(sessionKey)
	}
	return &Client{api: api, sessionKey: sessionKey}
}

// IsAuthenticated returns true if a session key is set.
func (c *Client) IsAuthenticated() bool {
	return c.sessionKey != ""
}

// UpdateNowPlaying sends a "now playing" notification.
func (c *Client) UpdateNowPlaying(t ScrobbleTrack) error {
	if !c.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if _, err := c.api.Track.UpdateNowPlaying(t.params(false)); err != nil {
		return fmt.Errorf("update now playing: %w", err)
	}
	return nil
}

// Scrobble submits a finished play.
func (c *Client) Scrobble(t ScrobbleTrack) error {
	if !c.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if _, err := c.api.Track.Scrobble(t.params(true)); err != nil {
		return fmt.Errorf("scrobble: %w", err)
	}
	return nil
}

func (t ScrobbleTrack) params(withTimestamp bool) lastfm.P {
	p := lastfm.P{
		"artist": t.Artist,
		"track":  t.Track,
	}
	if withTimestamp {
		p["timestamp"] = t.Timestamp.Unix()
	}
	if t.Album != "" {
		p["album"] = t.Album
	}
	if t.Duration > 0 {
		p["duration"] = int(t.Duration.Seconds())
	}
	return p
}
