// Package archive adapts the Internet Archive advanced search API.
// The Archive has no trending chart, so only search is supported.
package archive

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
	defaultBaseURL = "https://archive.org"
	defaultLimit   = 40

	// DefaultDuration is assumed for every item since search results carry no length.
	DefaultDuration = 300

	fallbackTitle  = "Unknown Archive Work"
	fallbackArtist = "Archive Contributor"
	album          = "Internet Archive"
)

// Config configures the Archive client.
type Config struct {
	Limit   int
	BaseURL string // for tests
}

// Client implements source.Adapter for the Internet Archive.
type Client struct {
	fetcher *source.Fetcher
	limit   int
	baseURL string
}

// New creates an Archive client on top of fetcher.
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

// Record is one advanced search document.
// Title and creator may be a string or an array of strings.
type Record struct {
	Identifier json.RawMessage `json:"identifier"`
	Title      json.RawMessage `json:"title"`
	Creator    json.RawMessage `json:"creator"`
}

type envelope struct {
	Response struct {
		Docs json.RawMessage `json:"docs"`
	} `json:"response"`
}

func (c *Client) Name() string         { return "Archive" }
func (c *Client) Source() track.Source { return track.SourceArchive }

// FetchTrending makes no request and returns an empty payload.
func (c *Client) FetchTrending(context.Context, int) ([]byte, error) {
	return nil, nil
}

// FetchSearch runs a title search restricted to audio items.
func (c *Client) FetchSearch(ctx context.Context, query string, offset int) ([]byte, error) {
	q := url.Values{}
	q.Set("q", fmt.Sprintf("title:(%s) AND mediatype:audio", query))
	q.Add("fl[]", "identifier")
	q.Add("fl[]", "title")
	q.Add("fl[]", "creator")
	q.Set("rows", strconv.Itoa(c.limit))
	q.Set("start", strconv.Itoa(max(0, offset)))
	q.Set("output", "json")

	body, err := c.fetcher.Get(ctx, c.baseURL+"/advancedsearch.php?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}
	return body, nil
}

// Parse maps response.docs. Anything else, including an empty payload, yields no tracks.
func (c *Client) Parse(payload []byte) []track.Track {
	if len(payload) == 0 {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil
	}

	var tracks []track.Track
	for _, raw := range source.Elements(env.Response.Docs) {
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

// MapToTrack converts a document. Documents without an identifier are rejected.
func (c *Client) MapToTrack(r Record) (track.Track, bool) {
	id := source.Scalar(r.Identifier)
	if id == "" {
		return track.Track{}, false
	}
	esc := url.PathEscape(id)
	return track.Track{
		ID:       track.NewID(track.SourceArchive, id),
		Title:    text(r.Title, fallbackTitle),
		Artist:   text(r.Creator, fallbackArtist),
		Album:    album,
		Cover:    "https://archive.org/services/img/" + esc,
		URL:      "https://archive.org/download/" + esc + "/" + esc + "_vbr.m3u",
		Duration: DefaultDuration,
		Source:   track.SourceArchive,
	}, true
}

// text reads a scalar or the first non-empty element of an array.
func text(raw json.RawMessage, def string) string {
	if s := source.Scalar(raw); s != "" {
		return s
	}
	for _, elem := range source.Elements(raw) {
		if s := source.Scalar(elem); s != "" {
			return s
		}
	}
	return def
}
