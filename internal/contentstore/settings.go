package contentstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"spirare/internal/content"
)

const metronomeSettingsKey = "metronome"

// MetronomeSettings returns the stored preference, or the defaults when none
// has been saved.
func (s *Store) MetronomeSettings(ctx context.Context) (content.MetronomeSettings, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT value_json FROM settings WHERE key = ?", metronomeSettingsKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return content.DefaultMetronomeSettings(), nil
	}
	if err != nil {
		return content.MetronomeSettings{}, unavailable("metronome settings", err)
	}
	var settings content.MetronomeSettings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return content.MetronomeSettings{}, corrupt("metronome settings", err, "decode settings")
	}
	return settings.Clamped(), nil
}

// SaveMetronomeSettings clamps and stores the preference.
func (s *Store) SaveMetronomeSettings(ctx context.Context, settings content.MetronomeSettings) error {
	raw, err := encodeJSON(settings.Clamped())
	if err != nil {
		return corrupt("save metronome settings", err, "encode settings")
	}
	_, err = s.exec(ctx,
		`INSERT INTO settings (key, value_json, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(key) DO UPDATE SET value_json = excluded.value_json, updated_at = excluded.updated_at`,
		metronomeSettingsKey, raw, formatTime(s.now()),
	)
	if err != nil {
		return unavailable("save metronome settings", err)
	}
	return nil
}
