package contentstore

import (
	"context"
	"database/sql"
	"encoding/json"

	"spirare/internal/content"
)

// contentTables lists every table Drop clears. schema_version is kept.
var contentTables = []string{"structure", "themes", "base_pools", "songs", "settings"}

// Stats counts stored records.
func (s *Store) Stats(ctx context.Context) (content.Stats, error) {
	var (
		stats     content.Stats
		structure int
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT
            (SELECT COUNT(1) FROM structure),
            (SELECT COUNT(1) FROM themes),
            (SELECT COUNT(1) FROM themes WHERE is_active = 1),
            (SELECT COUNT(1) FROM base_pools),
            (SELECT COUNT(1) FROM songs)`,
	).Scan(&structure, &stats.Themes, &stats.ActiveThemes, &stats.Pools, &stats.Songs)
	if err != nil {
		return content.Stats{}, unavailable("stats", err)
	}
	stats.HasStructure = structure > 0

	rows, err := s.db.QueryContext(ctx, "SELECT phrases_json FROM base_pools")
	if err != nil {
		return content.Stats{}, unavailable("stats", err)
	}
	defer rows.Close()
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return content.Stats{}, unavailable("stats", err)
		}
		var phrases []string
		if err := json.Unmarshal([]byte(raw), &phrases); err == nil {
			stats.Phrases += len(phrases)
		}
	}
	if err := rows.Err(); err != nil {
		return content.Stats{}, unavailable("stats", err)
	}
	return stats, nil
}

// Drop deletes all content in one transaction.
func (s *Store) Drop(ctx context.Context) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range contentTables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return unavailable("drop", err)
	}
	return nil
}
