// Package jamendo adapts the Jamendo v3 tracks API.
package jamendo

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
	defaultBaseURL = "https://api.jamendo.com/v3.0"
	defaultLimit   = 40

	fallbackTitle  = "Untitled"
	fallbackArtist = "Unknown Artist"
	fallbackAlbum  = "Jamendo Mix"
)

// Config configures the Jamendo client.
type Config struct {
	ClientID string
	Limit    int
	BaseURL  string // for tests
}

// Client implements source.Adapter for Jamendo.
type Client struct {
	fetcher  *source.Fetcher
	clientID string
	limit    int
	baseURL  string
}

// New creates a Jamendo client on top of fetcher.
func New(fetcher *source.Fetcher, cfg Config) *Client {
	if cfg.Limit <= 0 {
		cfg.Limit = defaultLimit
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Client{
		fetcher:  fetcher,
		clientID: cfg.ClientID,
		limit:    cfg.Limit,
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
	}
}

// Record is a track as returned by /tracks.
type Record struct {
	ID         json.RawMessage `json:"id"`
	Name       json.RawMessage `json:"name"`
	ArtistName json.RawMessage `json:"artist_name"`
	AlbumName  json.RawMessage `json:"album_name"`
	AlbumImage json.RawMessage `json:"album_image"`
	Image      json.RawMessage `json:"image"`
	Audio      json.RawMessage `json:"audio"`
	Duration   json.RawMessage `json:"duration"`
}

type envelope struct {
	Results json.RawMessage `json:"results"`
}

func (c *Client) Name() string         { return "Jamendo" }
func (c *Client) Source() track.Source { return track.SourceJamendo }

// FetchTrending returns the month's most popular tracks.
func (c *Client) FetchTrending(ctx context.Context, offset int) ([]byte, error) {
	q := c.query(offset)
	q.Set("order", "popularity_month")
	return c.get(ctx, q)
}

// FetchSearch returns tracks matching query, most popular first.
func (c *Client) FetchSearch(ctx context.Context, query string, offset int) ([]byte, error) {
	q := c.query(offset)
	q.Set("search", query)
	q.Set("order", "popularity_total")
	return c.get(ctx, q)
}

func (c *Client) query(offset int) url.Values {
	q := url.Values{}
	q.Set("client_id", c.clientID)
	q.Set("format", "json")
	q.Set("limit", strconv.Itoa(c.limit))
	q.Set("offset", strconv.Itoa(max(0, offset)))
	return q
}

func (c *Client) get(ctx context.Context, q url.Values) ([]byte, error) {
	body, err := c.fetcher.Get(ctx, c.baseURL+"/tracks/?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("jamendo: %w", err)
	}
	return body, nil
}

// Parse maps the "results" array. Anything else yields no tracks.
func (c *Client) Parse(payload []byte) []track.Track {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil
	}

	var tracks []track.Track
	for _, raw := range source.Elements(env.Results) {
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

// MapToTrack converts a record. Records without an id or audio URL are rejected.
func (c *Client) MapToTrack(r Record) (track.Track, bool) {
	id := source.Scalar(r.ID)
	audio := source.Scalar(r.Audio)
	if id == "" || audio == "" {
		return track.Track{}, false
	}

	cover := firstNonEmpty(source.Scalar(r.AlbumImage), source.Scalar(r.Image))
	if cover == "" {
		cover = track.PlaceholderCover(id)
	}

	return track.Track{
		ID:       track.NewID(track.SourceJamendo, id),
		Title:    orDefault(source.Scalar(r.Name), fallbackTitle),
		Artist:   orDefault(source.Scalar(r.ArtistName), fallbackArtist),
		Album:    orDefault(source.Scalar(r.AlbumName), fallbackAlbum),
		Cover:    track.SecureURL(cover),
		URL:      track.SecureURL(audio),
		Duration: source.Seconds(r.Duration),
		Source:   track.SourceJamendo,
	}, true
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
