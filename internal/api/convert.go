package api

import (
	"time"

	"spirare/internal/content"
	"spirare/internal/seed"
)

// FormatTime renders t in the API timestamp format. The zero time renders
// as an empty string.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}

// FromTheme converts a stored theme to its list view.
func FromTheme(theme content.Theme) ThemeSummary {
	return ThemeSummary{
		ID:          theme.ID,
		Category:    theme.Category,
		Title:       theme.Title,
		Description: theme.Description,
		IsActive:    theme.IsActive,
		Overrides:   theme.OverrideCount(),
		UpdatedAt:   FormatTime(theme.UpdatedAt),
	}
}

// FromThemes converts a theme list. A nil input yields an empty, non-nil
// slice so clients always see a JSON array.
func FromThemes(themes []content.Theme) []ThemeSummary {
	out := make([]ThemeSummary, 0, len(themes))
	for _, theme := range themes {
		out = append(out, FromTheme(theme))
	}
	return out
}

// FromStructure wraps structure with its slot count.
func FromStructure(structure content.Structure) StructureResponse {
	return StructureResponse{Structure: structure, Slots: structure.SlotCount()}
}

// FromBackup summarizes a backup document written to path.
func FromBackup(path string, doc seed.Document) BackupResponse {
	return BackupResponse{
		Path:      path,
		CreatedAt: FormatTime(doc.CreatedAt),
		Themes:    len(doc.Themes),
		Pools:     len(doc.Pools),
		Songs:     len(doc.Songs),
	}
}

// FromStats builds the status payload.
func FromStats(version, backend, narration string, startedAt, now time.Time, stats content.Stats) StatusResponse {
	uptime := int64(0)
	if !startedAt.IsZero() && now.After(startedAt) {
		uptime = int64(now.Sub(startedAt) / time.Second)
	}
	return StatusResponse{
		Version:       version,
		Backend:       backend,
		Narration:     narration,
		StartedAt:     FormatTime(startedAt),
		UptimeSeconds: uptime,
		Stats:         stats,
	}
}
