package library

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/llehouerou/novatone/internal/db"
	"github.com/llehouerou/novatone/internal/track"
)

// ErrEmptyName is returned for a blank playlist name.
var ErrEmptyName = errors.New("playlist name is empty")

// Playlist is a named, ordered list of tracks. The most recently added track comes first.
type Playlist struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Tracks    []track.Track `json:"tracks"`
	CreatedAt time.Time     `json:"createdAt"`
}

// CreatePlaylist creates an empty playlist.
func (s *Store) CreatePlaylist(ctx context.Context, name string) (Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Playlist{}, ErrEmptyName
	}
	p := Playlist{
		ID:        uuid.NewString(),
		Name:      name,
		Tracks:    []track.Track{},
		CreatedAt: s.now().Truncate(time.Millisecond),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO playlists (id, name, created_at) VALUES (?, ?, ?)
	`, p.ID, p.Name, p.CreatedAt.UnixMilli())
	if err != nil {
		return Playlist{}, err
	}
	return p, nil
}

// RenamePlaylist renames the playlist with id.
func (s *Store) RenamePlaylist(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	res, err := s.db.ExecContext(ctx, `UPDATE playlists SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return err
	}
	return db.Affected(res, ErrNotFound)
}

// DeletePlaylist deletes the playlist with id and its entries.
func (s *Store) DeletePlaylist(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM playlists WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return db.Affected(res, ErrNotFound)
}

// AddToPlaylist puts t at the front of the playlist. A track already in the
// playlist moves to the front instead of appearing twice.
func (s *Store) AddToPlaylist(ctx context.Context, playlistID string, t track.Track) error {
	return db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := playlistExists(ctx, tx, playlistID); err != nil {
			return err
		}
		if err := upsertTrack(ctx, tx, t); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO playlist_tracks (playlist_id, track_id, position)
			VALUES (?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM playlist_tracks WHERE playlist_id = ?))
			ON CONFLICT(playlist_id, track_id) DO UPDATE SET position = excluded.position
		`, playlistID, t.ID, playlistID)
		return err
	})
}

// RemoveFromPlaylist removes the track with trackID from the playlist.
func (s *Store) RemoveFromPlaylist(ctx context.Context, playlistID, trackID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM playlist_tracks WHERE playlist_id = ? AND track_id = ?
	`, playlistID, trackID)
	if err != nil {
		return err
	}
	return db.Affected(res, ErrNotFound)
}

// Playlist returns one playlist with its tracks.
func (s *Store) Playlist(ctx context.Context, id string) (Playlist, error) {
	var p Playlist
	var created int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at FROM playlists WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &created)
	if db.IsNoRows(err) {
		return Playlist{}, ErrNotFound
	}
	if err != nil {
		return Playlist{}, err
	}
	p.CreatedAt = time.UnixMilli(created)

	p.Tracks, err = s.playlistTracks(ctx, id)
	if err != nil {
		return Playlist{}, err
	}
	return p, nil
}

// Playlists returns every playlist with its tracks, newest playlist first.
func (s *Store) Playlists(ctx context.Context) ([]Playlist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_at FROM playlists ORDER BY created_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, err
	}

	playlists := []Playlist{}
	for rows.Next() {
		var p Playlist
		var created int64
		if err := rows.Scan(&p.ID, &p.Name, &created); err != nil {
			rows.Close()
			return nil, err
		}
		p.CreatedAt = time.UnixMilli(created)
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	// tracks are loaded after the cursor is released: the pool has a single connection
	for i := range playlists {
		playlists[i].Tracks, err = s.playlistTracks(ctx, playlists[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return playlists, nil
}

func (s *Store) playlistTracks(ctx context.Context, id string) ([]track.Track, error) {
	return queryTracks(ctx, s.db, `
		SELECT t.data FROM playlist_tracks pt
		JOIN tracks t ON t.id = pt.track_id
		WHERE pt.playlist_id = ?
		ORDER BY pt.position DESC
	`, id)
}

func playlistExists(ctx context.Context, tx *sql.Tx, id string) error {
	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM playlists WHERE id = ?`, id).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
