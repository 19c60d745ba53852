package contentstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"spirare/internal/content"
	"spirare/internal/services"
)

const themeColumns = "id, category, title, description, structure_json, is_active, created_at, updated_at"

// GetThemeByCategory returns the theme for a normalized category.
func (s *Store) GetThemeByCategory(ctx context.Context, category string) (content.Theme, error) {
	category = content.NormalizeCategory(category)
	row := s.db.QueryRowContext(ctx, `SELECT `+themeColumns+` FROM themes WHERE category = ?`, category)
	theme, err := scanTheme(row)
	if errors.Is(err, sql.ErrNoRows) {
		return content.Theme{}, notFound("get theme", "no theme for category %q", category)
	}
	if err != nil {
		return content.Theme{}, err
	}
	return theme, nil
}

// ListThemes returns every theme ordered by category.
func (s *Store) ListThemes(ctx context.Context) ([]content.Theme, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+themeColumns+` FROM themes ORDER BY category`)
	if err != nil {
		return nil, unavailable("list themes", err)
	}
	defer rows.Close()

	var themes []content.Theme
	for rows.Next() {
		theme, err := scanTheme(rows)
		if err != nil {
			return nil, err
		}
		themes = append(themes, theme)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list themes", err)
	}
	return themes, nil
}

// CreateTheme stores a new theme. The category must be unused.
func (s *Store) CreateTheme(ctx context.Context, theme content.Theme) (content.Theme, error) {
	theme.Normalize()
	if err := theme.Validate(); err != nil {
		return content.Theme{}, err
	}
	if theme.ID == "" {
		theme.ID = uuid.NewString()
	}
	now := s.now()
	if theme.CreatedAt.IsZero() {
		theme.CreatedAt = now
	}
	theme.UpdatedAt = now

	structureJSON, err := encodeThemeStructure(theme)
	if err != nil {
		return content.Theme{}, err
	}
	_, err = s.exec(ctx,
		`INSERT INTO themes (`+themeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		theme.ID,
		theme.Category,
		theme.Title,
		nullableString(theme.Description),
		structureJSON,
		boolToInt(theme.IsActive),
		formatTime(theme.CreatedAt),
		formatTime(theme.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return content.Theme{}, services.Wrap(services.ErrConflict, "contentstore", "create theme",
			fmt.Sprintf("category %q already exists", theme.Category), nil)
	}
	if err != nil {
		return content.Theme{}, unavailable("create theme", err)
	}
	return theme, nil
}

// UpdateTheme replaces the theme stored under category. A blank category in
// theme keeps the current one; a different one renames the theme.
func (s *Store) UpdateTheme(ctx context.Context, category string, theme content.Theme) (content.Theme, error) {
	existing, err := s.GetThemeByCategory(ctx, category)
	if err != nil {
		return content.Theme{}, err
	}
	if theme.Category == "" {
		theme.Category = existing.Category
	}
	theme.Normalize()
	if err := theme.Validate(); err != nil {
		return content.Theme{}, err
	}
	theme.ID = existing.ID
	theme.CreatedAt = existing.CreatedAt
	theme.UpdatedAt = s.now()

	structureJSON, err := encodeThemeStructure(theme)
	if err != nil {
		return content.Theme{}, err
	}
	_, err = s.exec(ctx,
		`UPDATE themes
         SET category = ?, title = ?, description = ?, structure_json = ?, is_active = ?, updated_at = ?
         WHERE id = ?`,
		theme.Category,
		theme.Title,
		nullableString(theme.Description),
		structureJSON,
		boolToInt(theme.IsActive),
		formatTime(theme.UpdatedAt),
		theme.ID,
	)
	if isUniqueViolation(err) {
		return content.Theme{}, services.Wrap(services.ErrConflict, "contentstore", "update theme",
			fmt.Sprintf("category %q already exists", theme.Category), nil)
	}
	if err != nil {
		return content.Theme{}, unavailable("update theme", err)
	}
	return theme, nil
}

// DeleteTheme removes the theme stored under category.
func (s *Store) DeleteTheme(ctx context.Context, category string) error {
	category = content.NormalizeCategory(category)
	res, err := s.exec(ctx, "DELETE FROM themes WHERE category = ?", category)
	if err != nil {
		return unavailable("delete theme", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound("delete theme", "no theme for category %q", category)
	}
	return nil
}

func encodeThemeStructure(theme content.Theme) (any, error) {
	if len(theme.Structure) == 0 {
		return nil, nil
	}
	encoded, err := encodeJSON(theme.Structure)
	if err != nil {
		return nil, corrupt("encode theme", err, "encode structure for %s", theme.Category)
	}
	return encoded, nil
}

func scanTheme(scanner interface{ Scan(dest ...any) error }) (content.Theme, error) {
	var (
		theme       content.Theme
		description sql.NullString
		structure   sql.NullString
		isActive    int
		createdRaw  string
		updatedRaw  string
	)
	if err := scanner.Scan(
		&theme.ID,
		&theme.Category,
		&theme.Title,
		&description,
		&structure,
		&isActive,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return content.Theme{}, err
		}
		return content.Theme{}, unavailable("scan theme", err)
	}
	theme.Description = description.String
	theme.IsActive = isActive != 0
	if structure.Valid && structure.String != "" {
		if err := json.Unmarshal([]byte(structure.String), &theme.Structure); err != nil {
			return content.Theme{}, corrupt("scan theme", err, "decode structure for %s", theme.Category)
		}
	}
	if created, err := parseTime(createdRaw); err == nil {
		theme.CreatedAt = created
	}
	if updated, err := parseTime(updatedRaw); err == nil {
		theme.UpdatedAt = updated
	}
	if err := theme.Validate(); err != nil {
		return content.Theme{}, corrupt("scan theme", err, "stored theme %s is invalid", theme.Category)
	}
	return theme, nil
}
