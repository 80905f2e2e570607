// Package local exposes audio files from configured folders as a provider.
package local

import (
	"context"
	"crypto/sha1" //nolint:gosec // ids only
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/dhowden/tag"
	"go.uber.org/zap"

	"github.com/llehouerou/novatone/internal/player"
	"github.com/llehouerou/novatone/internal/track"
)

const (
	defaultLimit = 40

	fallbackArtist = "Unknown Artist"
	fallbackAlbum  = "Local Files"
)

// Config configures the local provider.
type Config struct {
	Roots  []string
	Limit  int
	Logger *zap.Logger
}

// Client implements source.Adapter over the local filesystem.
// Folders are scanned once and the result kept until Rescan.
type Client struct {
	roots  []string
	limit  int
	logger *zap.Logger

	mu      sync.Mutex
	scanned bool
	records []Record
}

// New creates a local provider for roots.
func New(cfg Config) *Client {
	if cfg.Limit <= 0 {
		cfg.Limit = defaultLimit
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Client{
		roots:  slices.Clone(cfg.Roots),
		limit:  cfg.Limit,
		logger: cfg.Logger,
	}
}

// Record describes one audio file.
type Record struct {
	Path     string `json:"path"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	Genre    string `json:"genre"`
	Duration int    `json:"duration"`
}

func (c *Client) Name() string         { return "Local" }
func (c *Client) Source() track.Source { return track.SourceLocal }

// FetchTrending returns one page of the library in path order.
func (c *Client) FetchTrending(ctx context.Context, offset int) ([]byte, error) {
	records, err := c.library(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(page(records, offset, c.limit))
}

// FetchSearch returns one page of files whose title, artist or album contain query.
func (c *Client) FetchSearch(ctx context.Context, query string, offset int) ([]byte, error) {
	records, err := c.library(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	var matched []Record
	for _, r := range records {
		if matches(r, q) {
			matched = append(matched, r)
		}
	}
	return json.Marshal(page(matched, offset, c.limit))
}

func matches(r Record, q string) bool {
	return strings.Contains(strings.ToLower(r.Title), q) ||
		strings.Contains(strings.ToLower(r.Artist), q) ||
		strings.Contains(strings.ToLower(r.Album), q)
}

func page(records []Record, offset, limit int) []Record {
	offset = max(0, offset)
	if offset >= len(records) {
		return []Record{}
	}
	return records[offset:min(len(records), offset+limit)]
}

// Parse maps a JSON array of records.
func (c *Client) Parse(payload []byte) []track.Track {
	var records []json.RawMessage
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil
	}
	var tracks []track.Track
	for _, raw := range records {
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

// MapToTrack converts a record. Records without a path are rejected.
func (c *Client) MapToTrack(r Record) (track.Track, bool) {
	if r.Path == "" {
		return track.Track{}, false
	}
	id := pathID(r.Path)
	title := r.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(r.Path), filepath.Ext(r.Path))
	}
	album := r.Album
	if album == "" {
		album = fallbackAlbum
	}
	artist := r.Artist
	if artist == "" {
		artist = fallbackArtist
	}

	t := track.Track{
		ID:       track.NewID(track.SourceLocal, id),
		Title:    title,
		Artist:   artist,
		Album:    album,
		Cover:    track.PlaceholderCover("loc" + id),
		Duration: max(0, r.Duration),
		Source:   track.SourceLocal,
		File:     r.Path,
	}
	if r.Genre != "" {
		t = t.WithGenre(r.Genre)
	}
	return t, true
}

// pathID derives a stable id from the cleaned absolute path.
func pathID(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	sum := sha1.Sum([]byte(filepath.Clean(path))) //nolint:gosec // ids only
	return hex.EncodeToString(sum[:])[:12]
}

// Rescan drops the cached scan; the next fetch walks the folders again.
func (c *Client) Rescan() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scanned = false
	c.records = nil
}

func (c *Client) library(ctx context.Context) ([]Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scanned {
		return c.records, nil
	}
	records, err := c.scan(ctx)
	if err != nil {
		return nil, err
	}
	c.records = records
	c.scanned = true
	c.logger.Info("local library scanned", zap.Int("files", len(records)))
	return records, nil
}

// scan walks every root. Unreadable entries are skipped.
func (c *Client) scan(ctx context.Context) ([]Record, error) {
	var records []Record
	for _, root := range c.roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if walkErr != nil {
				c.logger.Debug("skipping unreadable path", zap.String("path", path), zap.Error(walkErr))
				return nil
			}
			if d.IsDir() || !player.IsAudioFile(path) {
				return nil
			}
			records = append(records, c.read(path))
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", root, err)
		}
	}
	slices.SortFunc(records, func(a, b Record) int { return strings.Compare(a.Path, b.Path) })
	return records, nil
}

// read collects tags and length. Files with unreadable tags keep their file name as title.
func (c *Client) read(path string) Record {
	r := Record{Path: path}

	if f, err := os.Open(path); err == nil {
		if m, err := tag.ReadFrom(f); err == nil {
			r.Title = strings.TrimSpace(m.Title())
			r.Artist = strings.TrimSpace(m.Artist())
			if r.Artist == "" {
				r.Artist = strings.TrimSpace(m.AlbumArtist())
			}
			r.Album = strings.TrimSpace(m.Album())
			r.Genre = strings.TrimSpace(m.Genre())
		}
		f.Close()
	}
	if r.Title == "" {
		r.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	if d, err := player.ProbeDuration(path); err == nil {
		r.Duration = int(d.Seconds())
	} else {
		c.logger.Debug("duration probe failed", zap.String("path", path), zap.Error(err))
	}
	return r
}
