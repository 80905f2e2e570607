// Package library persists the listener's data: favorites, playlists,
// play stats, listening time, chat sessions and effect settings.
package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/llehouerou/novatone/internal/db"
	"github.com/llehouerou/novatone/internal/track"
)

// ErrNotFound is returned when a playlist or session does not exist.
var ErrNotFound = errors.New("not found")

// Store is the SQLite-backed library.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}

	s, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database and creates the schema.
func New(db *sql.DB) (*Store, error) {
	// SQLite allows one writer; a single connection also keeps :memory: databases whole.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying database.
func (s *Store) DB() *sql.DB {
	return s.db
}

// upsertTrack stores the latest copy of t.
func upsertTrack(ctx context.Context, q execer, t track.Track) error {
	t.Timestamp = 0
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO tracks (id, data) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data
	`, t.ID, string(data))
	return err
}

// Track returns the stored copy of a track that was played, favorited or
// added to a playlist.
func (s *Store) Track(ctx context.Context, id string) (track.Track, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM tracks WHERE id = ?`, id).Scan(&data)
	if db.IsNoRows(err) {
		return track.Track{}, ErrNotFound
	}
	if err != nil {
		return track.Track{}, err
	}
	return decodeTrack(data)
}

func decodeTrack(data string) (track.Track, error) {
	var t track.Track
	if err := json.Unmarshal([]byte(data), &t); err != nil {
		return track.Track{}, fmt.Errorf("decode track: %w", err)
	}
	return t, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// queryTracks runs a query whose only column is tracks.data.
func queryTracks(ctx context.Context, q querier, query string, args ...any) ([]track.Track, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []track.Track{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		t, err := decodeTrack(data)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}
