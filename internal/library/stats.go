package library

import (
	"context"
	"database/sql"
	"time"

	"github.com/llehouerou/novatone/internal/db"
	"github.com/llehouerou/novatone/internal/track"
)

// TrackStat counts how often a track was played.
type TrackStat struct {
	TrackID    string    `json:"trackId"`
	Count      int       `json:"count"`
	LastPlayed time.Time `json:"lastPlayed"`
	Title      string    `json:"title"`
	Artist     string    `json:"artist"`
	Cover      string    `json:"cover"`
}

// RecordPlay counts one play of t and keeps a copy of the track so it can be
// found again by ID.
func (s *Store) RecordPlay(ctx context.Context, t track.Track) error {
	return db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := upsertTrack(ctx, tx, t); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO track_stats (track_id, count, last_played, title, artist, cover)
			VALUES (?, 1, ?, ?, ?, ?)
			ON CONFLICT(track_id) DO UPDATE SET
				count = count + 1,
				last_played = excluded.last_played,
				title = excluded.title,
				artist = excluded.artist,
				cover = excluded.cover
		`, t.ID, s.now().UnixMilli(), t.Title, t.Artist, t.Cover)
		return err
	})
}

// TopStats returns up to n stats, most played first. n <= 0 returns all.
func (s *Store) TopStats(ctx context.Context, n int) ([]TrackStat, error) {
	if n <= 0 {
		n = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT track_id, count, last_played, title, artist, cover
		FROM track_stats
		ORDER BY count DESC, last_played DESC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []TrackStat{}
	for rows.Next() {
		var st TrackStat
		var last int64
		if err := rows.Scan(&st.TrackID, &st.Count, &last, &st.Title, &st.Artist, &st.Cover); err != nil {
			return nil, err
		}
		st.LastPlayed = time.UnixMilli(last)
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// AddListenTime adds d to the total listening time.
func (s *Store) AddListenTime(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO listen_time (id, seconds) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET seconds = seconds + excluded.seconds
	`, d.Seconds())
	return err
}

// ListenTime returns the total listening time.
func (s *Store) ListenTime(ctx context.Context) (time.Duration, error) {
	var seconds float64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(seconds), 0) FROM listen_time`).Scan(&seconds)
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds * float64(time.Second)), nil
}
