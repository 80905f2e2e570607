// Package audius adapts the Audius discovery-node API.
package audius

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/llehouerou/novatone/internal/source"
	"github.com/llehouerou/novatone/internal/track"
)

const (
	// FallbackHost is used when discovery fails or returns nothing.
	FallbackHost = "https://api.audius.co"

	defaultAppName = "NOVATONE"
	defaultLimit   = 50

	fallbackTitle  = "Untitled"
	fallbackArtist = "Unknown Artist"
	fallbackAlbum  = "Audius Wave"
	albumMaxRunes  = 30

	defaultFallbackTTL = 5 * time.Minute
)

// Config configures the Audius client.
type Config struct {
	AppName      string
	Limit        int
	DiscoveryURL string          // defaults to FallbackHost
	Pick         func(n int) int // host choice, defaults to rand.IntN
	FallbackTTL  time.Duration   // how long FallbackHost is kept before discovery is retried (default: 5m)
	Now          func() time.Time
	Logger       *zap.Logger
}

// Client implements source.Adapter for Audius.
// The API host is discovered on first use. A discovered host is kept for the
// client's lifetime; the fallback host only until FallbackTTL expires.
type Client struct {
	fetcher      *source.Fetcher
	appName      string
	limit        int
	discoveryURL string
	pick         func(n int) int
	fallbackTTL  time.Duration
	now          func() time.Time
	logger       *zap.Logger

	mu          sync.Mutex
	host        string
	hostExpires time.Time // zero for a discovered host
}

// New creates an Audius client on top of fetcher.
func New(fetcher *source.Fetcher, cfg Config) *Client {
	if cfg.AppName == "" {
		cfg.AppName = defaultAppName
	}
	if cfg.Limit <= 0 {
		cfg.Limit = defaultLimit
	}
	if cfg.DiscoveryURL == "" {
		cfg.DiscoveryURL = FallbackHost
	}
	if cfg.Pick == nil {
		cfg.Pick = rand.IntN
	}
	if cfg.FallbackTTL <= 0 {
		cfg.FallbackTTL = defaultFallbackTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Client{
		fetcher:      fetcher,
		appName:      cfg.AppName,
		limit:        cfg.Limit,
		discoveryURL: cfg.DiscoveryURL,
		pick:         cfg.Pick,
		fallbackTTL:  cfg.FallbackTTL,
		now:          cfg.Now,
		logger:       cfg.Logger,
	}
}

// Record is a track as returned by /v1/tracks.
type Record struct {
	ID          json.RawMessage `json:"id"`
	Title       json.RawMessage `json:"title"`
	Description json.RawMessage `json:"description"`
	Duration    json.RawMessage `json:"duration"`
	Genre       json.RawMessage `json:"genre"`
	Mood        json.RawMessage `json:"mood"`
	User        json.RawMessage `json:"user"`
	Artwork     json.RawMessage `json:"artwork"`
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

func (c *Client) Name() string         { return "Audius" }
func (c *Client) Source() track.Source { return track.SourceAudius }

// Host returns the API host, running discovery on first call.
// A failed discovery settles on FallbackHost and is retried once FallbackTTL has passed.
func (c *Client) Host(ctx context.Context) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.host != "" && (c.hostExpires.IsZero() || c.now().Before(c.hostExpires)) {
		return c.host
	}
	host, ok := c.discover(ctx)
	c.host = host
	c.hostExpires = time.Time{}
	if !ok {
		c.hostExpires = c.now().Add(c.fallbackTTL)
	}
	c.logger.Debug("audius host selected", zap.String("host", c.host), zap.Bool("discovered", ok))
	return c.host
}

// discover picks a host from the discovery list. ok is false when it fell back.
func (c *Client) discover(ctx context.Context) (host string, ok bool) {
	body, err := c.fetcher.Get(ctx, c.discoveryURL)
	if err != nil {
		c.logger.Warn("audius discovery failed", zap.Error(err))
		return FallbackHost, false
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return FallbackHost, false
	}
	var hosts []string
	for _, raw := range source.Elements(env.Data) {
		var h string
		if json.Unmarshal(raw, &h) == nil && strings.HasPrefix(h, "http") {
			hosts = append(hosts, strings.TrimSuffix(h, "/"))
		}
	}
	if len(hosts) == 0 {
		return FallbackHost, false
	}
	return hosts[c.pick(len(hosts))], true
}

// FetchTrending returns the trending chart.
func (c *Client) FetchTrending(ctx context.Context, offset int) ([]byte, error) {
	q := c.query(offset)
	return c.get(ctx, "/v1/tracks/trending", q)
}

// FetchSearch returns tracks matching query.
func (c *Client) FetchSearch(ctx context.Context, query string, offset int) ([]byte, error) {
	q := c.query(offset)
	q.Set("query", query)
	return c.get(ctx, "/v1/tracks/search", q)
}

func (c *Client) query(offset int) url.Values {
	q := url.Values{}
	q.Set("app_name", c.appName)
	q.Set("limit", strconv.Itoa(c.limit))
	q.Set("offset", strconv.Itoa(max(0, offset)))
	return q
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	body, err := c.fetcher.Get(ctx, c.Host(ctx)+path+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("audius: %w", err)
	}
	return body, nil
}

// Parse maps the "data" array. Anything else yields no tracks.
// Stream URLs point at the host selected by discovery.
func (c *Client) Parse(payload []byte) []track.Track {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil
	}

	var tracks []track.Track
	for _, raw := range source.Elements(env.Data) {
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

// MapToTrack converts a record. Records without an id are rejected.
func (c *Client) MapToTrack(r Record) (track.Track, bool) {
	id := source.Scalar(r.ID)
	if id == "" {
		return track.Track{}, false
	}

	c.mu.Lock()
	host := c.host
	c.mu.Unlock()
	if host == "" {
		host = FallbackHost
	}

	cover := source.Field(r.Artwork, "480x480")
	if cover == "" {
		cover = source.Field(r.Artwork, "1000x1000")
	}
	if cover == "" {
		cover = track.PlaceholderCover(id)
	}

	album := source.Scalar(r.Description)
	if runes := []rune(album); len(runes) > albumMaxRunes {
		album = string(runes[:albumMaxRunes])
	}
	if album == "" {
		album = fallbackAlbum
	}

	t := track.Track{
		ID:       track.NewID(track.SourceAudius, id),
		Title:    orDefault(source.Scalar(r.Title), fallbackTitle),
		Artist:   orDefault(source.Field(r.User, "name"), fallbackArtist),
		Album:    album,
		Cover:    track.SecureURL(cover),
		URL:      track.SecureURL(host + "/v1/tracks/" + url.PathEscape(id) + "/stream?app_name=" + url.QueryEscape(c.appName)),
		Duration: source.Seconds(r.Duration),
		Source:   track.SourceAudius,
	}
	if g := source.Scalar(r.Genre); g != "" {
		t = t.WithGenre(g)
	}
	if m := source.Scalar(r.Mood); m != "" {
		t = t.WithMood(m)
	}
	return t, true
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
