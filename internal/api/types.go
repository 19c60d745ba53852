package api

import (
	"spirare/internal/content"
	"spirare/internal/seed"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// SessionResponse wraps a composed meditation session.
type SessionResponse struct {
	Session content.MeditationSession `json:"session"`
}

// MetronomeUpdate is a partial metronome preference. Absent fields keep
// their stored values.
type MetronomeUpdate struct {
	PeriodMs *int  `json:"periodMs,omitempty"`
	IsMuted  *bool `json:"isMuted,omitempty"`
}

// TTSRequest asks the narration provider to speak text.
type TTSRequest struct {
	Text string `json:"text"`
}

// LoginRequest carries admin credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse returns the bearer token for admin routes.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

// ThemeSummary is the list view of a theme.
type ThemeSummary struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"isActive"`
	Overrides   int    `json:"overrides"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// ThemeListResponse wraps all stored themes.
type ThemeListResponse struct {
	Themes []ThemeSummary `json:"themes"`
}

// ThemeResponse wraps one full theme including its overrides.
type ThemeResponse struct {
	Theme content.Theme `json:"theme"`
}

// SongListResponse wraps all stored songs.
type SongListResponse struct {
	Songs []content.Song `json:"songs"`
}

// SongResponse wraps one song.
type SongResponse struct {
	Song content.Song `json:"song"`
}

// StructureResponse wraps the singleton structure.
type StructureResponse struct {
	Structure content.Structure `json:"structure"`
	Slots     int               `json:"slots"`
}

// PoolRequest replaces the phrases of one base pool.
type PoolRequest struct {
	Phrases []string `json:"phrases"`
}

// PoolResponse wraps one base pool.
type PoolResponse struct {
	Pool content.BasePool `json:"pool"`
}

// PoolListResponse wraps every stored base pool.
type PoolListResponse struct {
	Pools []content.BasePool `json:"pools"`
}

// SeedResponse reports what a seed run wrote.
type SeedResponse struct {
	Source  string      `json:"source"`
	Replace bool        `json:"replace"`
	Result  seed.Result `json:"result"`
}

// BackupResponse reports a written backup file.
type BackupResponse struct {
	Path      string `json:"path"`
	CreatedAt string `json:"createdAt"`
	Themes    int    `json:"themes"`
	Pools     int    `json:"pools"`
	Songs     int    `json:"songs"`
}

// DropResponse confirms that all content was removed.
type DropResponse struct {
	Dropped bool `json:"dropped"`
}

// StatusResponse describes the running service.
type StatusResponse struct {
	Version       string        `json:"version"`
	Backend       string        `json:"backend"`
	Narration     string        `json:"narration"`
	StartedAt     string        `json:"startedAt"`
	UptimeSeconds int64         `json:"uptimeSeconds"`
	Stats         content.Stats `json:"stats"`
}
