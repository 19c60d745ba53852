package contentstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"spirare/internal/content"
)

// BasePool returns the shared phrases for a slot; an unknown slot has none.
func (s *Store) BasePool(ctx context.Context, stage content.Stage, practice string) ([]string, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		"SELECT phrases_json FROM base_pools WHERE stage = ? AND practice = ?",
		string(stage), practice,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("base pool", err)
	}
	var phrases []string
	if err := json.Unmarshal([]byte(raw), &phrases); err != nil {
		return nil, corrupt("base pool", err, "decode phrases for %s/%s", stage, practice)
	}
	return phrases, nil
}

// ListPools returns every pool in canonical stage order.
func (s *Store) ListPools(ctx context.Context) ([]content.BasePool, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT stage, practice, phrases_json FROM base_pools")
	if err != nil {
		return nil, unavailable("list pools", err)
	}
	defer rows.Close()

	var pools []content.BasePool
	for rows.Next() {
		var (
			pool content.BasePool
			raw  string
		)
		if err := rows.Scan(&pool.Stage, &pool.Practice, &raw); err != nil {
			return nil, unavailable("list pools", err)
		}
		if err := json.Unmarshal([]byte(raw), &pool.Phrases); err != nil {
			return nil, corrupt("list pools", err, "decode phrases for %s/%s", pool.Stage, pool.Practice)
		}
		if err := pool.Validate(); err != nil {
			return nil, corrupt("list pools", err, "stored pool is invalid")
		}
		pools = append(pools, pool)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list pools", err)
	}
	content.SortPools(pools)
	return pools, nil
}

// SavePool validates and replaces the pool for its slot.
func (s *Store) SavePool(ctx context.Context, pool content.BasePool) error {
	pool.Normalize()
	if err := pool.Validate(); err != nil {
		return err
	}
	raw, err := encodeJSON(pool.Phrases)
	if err != nil {
		return corrupt("save pool", err, "encode phrases")
	}
	_, err = s.exec(ctx,
		`INSERT INTO base_pools (stage, practice, phrases_json, updated_at) VALUES (?, ?, ?, ?)
         ON CONFLICT(stage, practice) DO UPDATE SET phrases_json = excluded.phrases_json, updated_at = excluded.updated_at`,
		string(pool.Stage), pool.Practice, raw, formatTime(s.now()),
	)
	if err != nil {
		return unavailable("save pool", err)
	}
	return nil
}
