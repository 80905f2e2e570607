// Package hearthis adapts the HearThis.at v2 API.
package hearthis

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/llehouerou/novatone/internal/source"
	"github.com/llehouerou/novatone/internal/track"
)

const (
	defaultBaseURL = "https://api-v2.hearthis.at"
	defaultLimit   = 40

	fallbackTitle  = "Untitled"
	fallbackArtist = "Unknown Artist"
	fallbackAlbum  = "HearThis.at"
)

// Config configures the HearThis client.
type Config struct {
	Limit   int
	BaseURL string // for tests
}

// Client implements source.Adapter for HearThis.at.
// The API pages by page number, so offsets are converted with Page.
type Client struct {
	fetcher *source.Fetcher
	limit   int
	baseURL string
}

// New creates a HearThis client on top of fetcher.
func New(fetcher *source.Fetcher, cfg Config) *Client {
	if cfg.Limit <= 0 {
		cfg.Limit = defaultLimit
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Client{
		fetcher: fetcher,
		limit:   cfg.Limit,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
	}
}

// Record is a track as returned by /feed and /search.
type Record struct {
	ID        json.RawMessage `json:"id"`
	Title     json.RawMessage `json:"title"`
	Genre     json.RawMessage `json:"genre"`
	Thumb     json.RawMessage `json:"thumb"`
	StreamURL json.RawMessage `json:"stream_url"`
	Duration  json.RawMessage `json:"duration"`
	User      json.RawMessage `json:"user"`
}

func (c *Client) Name() string         { return "HearThis" }
func (c *Client) Source() track.Source { return track.SourceHearThis }

// Page converts an item offset to the 1-based page number for limit-sized pages.
func Page(offset, limit int) int {
	if offset < 0 || limit <= 0 {
		return 1
	}
	return offset/limit + 1
}

// FetchTrending returns the trending feed.
func (c *Client) FetchTrending(ctx context.Context, offset int) ([]byte, error) {
	q := c.query(offset)
	q.Set("type", "trending")
	return c.get(ctx, "/feed/", q)
}

// FetchSearch returns tracks matching query.
func (c *Client) FetchSearch(ctx context.Context, query string, offset int) ([]byte, error) {
	q := c.query(offset)
	q.Set("t", query)
	return c.get(ctx, "/search", q)
}

func (c *Client) query(offset int) url.Values {
	q := url.Values{}
	q.Set("count", strconv.Itoa(c.limit))
	q.Set("page", strconv.Itoa(Page(offset, c.limit)))
	return q
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	body, err := c.fetcher.Get(ctx, c.baseURL+path+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("hearthis: %w", err)
	}
	return body, nil
}

// Parse maps a top-level array. Anything else yields no tracks.
func (c *Client) Parse(payload []byte) []track.Track {
	var tracks []track.Track
	for _, raw := range source.Elements(payload) {
		var r Record
		if err := json.Unmarshal(raw, &r); err != nil {
			continue
		}
		if t, ok := c.MapToTrack(r); ok {
			tracks = append(tracks, t)
		}
	}
	return tracks
}

// MapToTrack converts a record. Records without an id or stream URL are rejected.
func (c *Client) MapToTrack(r Record) (track.Track, bool) {
	id := source.Scalar(r.ID)
	stream := source.Scalar(r.StreamURL)
	if id == "" || stream == "" {
		return track.Track{}, false
	}

	genre := source.Scalar(r.Genre)
	cover := source.Scalar(r.Thumb)
	if cover == "" {
		cover = track.PlaceholderCover("ht" + id)
	}

	t := track.Track{
		ID:       track.NewID(track.SourceHearThis, id),
		Title:    orDefault(source.Scalar(r.Title), fallbackTitle),
		Artist:   orDefault(source.Field(r.User, "username"), fallbackArtist),
		Album:    orDefault(genre, fallbackAlbum),
		Cover:    track.SecureURL(cover),
		URL:      track.SecureURL(stream),
		Duration: source.Seconds(r.Duration),
		Source:   track.SourceHearThis,
	}
	if genre != "" {
		t = t.WithGenre(genre)
	}
	return t, true
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
