package contentstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"spirare/internal/content"
)

// GetStructure returns the singleton structure.
func (s *Store) GetStructure(ctx context.Context) (content.Structure, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT doc_json FROM structure WHERE id = 1").Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return content.Structure{}, notFound("get structure", "structure has not been seeded")
	}
	if err != nil {
		return content.Structure{}, unavailable("get structure", err)
	}
	var structure content.Structure
	if err := json.Unmarshal([]byte(raw), &structure); err != nil {
		return content.Structure{}, corrupt("get structure", err, "decode structure")
	}
	if err := structure.Validate(); err != nil {
		return content.Structure{}, corrupt("get structure", err, "stored structure is invalid")
	}
	return structure, nil
}

// SaveStructure validates and replaces the singleton structure.
func (s *Store) SaveStructure(ctx context.Context, structure content.Structure) error {
	if err := structure.Validate(); err != nil {
		return err
	}
	doc, err := encodeJSON(structure)
	if err != nil {
		return corrupt("save structure", err, "encode structure")
	}
	_, err = s.exec(ctx,
		`INSERT INTO structure (id, doc_json, updated_at) VALUES (1, ?, ?)
         ON CONFLICT(id) DO UPDATE SET doc_json = excluded.doc_json, updated_at = excluded.updated_at`,
		doc, formatTime(s.now()),
	)
	if err != nil {
		return unavailable("save structure", err)
	}
	return nil
}
