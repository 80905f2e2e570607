package library

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/llehouerou/novatone/internal/audio/effects"
	"github.com/llehouerou/novatone/internal/db"
)

// SaveEffects stores the effect settings, replacing any saved before.
func (s *Store) SaveEffects(ctx context.Context, settings effects.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO effect_settings (id, data, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, string(data), s.now().UnixMilli())
	return err
}

// LoadEffects returns the saved effect settings. ok is false when none were saved.
func (s *Store) LoadEffects(ctx context.Context) (settings effects.Settings, ok bool, err error) {
	var data string
	err = s.db.QueryRowContext(ctx, `SELECT data FROM effect_settings WHERE id = 1`).Scan(&data)
	if db.IsNoRows(err) {
		return effects.Settings{}, false, nil
	}
	if err != nil {
		return effects.Settings{}, false, err
	}
	if err := json.Unmarshal([]byte(data), &settings); err != nil {
		return effects.Settings{}, false, fmt.Errorf("decode effect settings: %w", err)
	}
	return settings, true, nil
}
