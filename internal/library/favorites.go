package library

import (
	"context"
	"database/sql"

	"github.com/llehouerou/novatone/internal/db"
	"github.com/llehouerou/novatone/internal/track"
)

// ToggleFavorite adds t to the front of the favorites, or removes it when
// already there. It reports whether t is a favorite afterwards.
func (s *Store) ToggleFavorite(ctx context.Context, t track.Track) (bool, error) {
	var favorite bool
	err := db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM favorites WHERE track_id = ?`, t.ID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil || n > 0 {
			return err
		}

		if err := upsertTrack(ctx, tx, t); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO favorites (track_id, position)
			VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM favorites))
		`, t.ID)
		favorite = err == nil
		return err
	})
	return favorite, err
}

// IsFavorite reports whether the track with id is a favorite.
func (s *Store) IsFavorite(ctx context.Context, id string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM favorites WHERE track_id = ?`, id).Scan(&n)
	return n > 0, err
}

// Favorites returns the favorites, most recently added first.
func (s *Store) Favorites(ctx context.Context) ([]track.Track, error) {
	return queryTracks(ctx, s.db, `
		SELECT t.data FROM favorites f
		JOIN tracks t ON t.id = f.track_id
		ORDER BY f.position DESC
	`)
}
