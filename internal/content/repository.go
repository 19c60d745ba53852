package content

import "context"

// StructureRepository returns the singleton Structure, failing with
// services.ErrNotFound when none has been stored.
type StructureRepository interface {
	GetStructure(ctx context.Context) (Structure, error)
}

// ThemeRepository looks up a theme by its normalized category, failing with
// services.ErrNotFound when it is absent.
type ThemeRepository interface {
	GetThemeByCategory(ctx context.Context, category string) (Theme, error)
}

// ContentPoolRepository returns the base phrases for a slot. A missing pool
// is an empty slice, not an error.
type ContentPoolRepository interface {
	BasePool(ctx context.Context, stage Stage, practice string) ([]string, error)
}

// Stats summarizes stored content.
type Stats struct {
	HasStructure bool `json:"hasStructure"`
	Themes       int  `json:"themes"`
	ActiveThemes int  `json:"activeThemes"`
	Pools        int  `json:"pools"`
	Phrases      int  `json:"phrases"`
	Songs        int  `json:"songs"`
}

// Store is the full content backend used by the server, the CLI and the seed
// tooling. Writes validate their input and fail with services.ErrValidation;
// lookups of absent records fail with services.ErrNotFound.
type Store interface {
	StructureRepository
	ThemeRepository
	ContentPoolRepository

	SaveStructure(ctx context.Context, s Structure) error

	ListThemes(ctx context.Context) ([]Theme, error)
	CreateTheme(ctx context.Context, t Theme) (Theme, error)
	UpdateTheme(ctx context.Context, category string, t Theme) (Theme, error)
	DeleteTheme(ctx context.Context, category string) error

	ListPools(ctx context.Context) ([]BasePool, error)
	SavePool(ctx context.Context, p BasePool) error

	ListSongs(ctx context.Context) ([]Song, error)
	GetSong(ctx context.Context, id string) (Song, error)
	CreateSong(ctx context.Context, s Song) (Song, error)
	UpdateSong(ctx context.Context, id string, s Song) (Song, error)
	DeleteSong(ctx context.Context, id string) error

	MetronomeSettings(ctx context.Context) (MetronomeSettings, error)
	SaveMetronomeSettings(ctx context.Context, m MetronomeSettings) error

	Stats(ctx context.Context) (Stats, error)
	Drop(ctx context.Context) error
	Close() error
}
