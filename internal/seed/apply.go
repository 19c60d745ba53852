package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"spirare/internal/content"
	"spirare/internal/logging"
	"spirare/internal/services"
	"spirare/internal/textutil"
)

// BackupFilePrefix starts every backup file name.
const BackupFilePrefix = "spirare-backup-"

// Options tunes Apply.
type Options struct {
	// Replace drops all stored content before applying the document.
	Replace bool
	Logger  *slog.Logger
}

// Result counts what Apply wrote.
type Result struct {
	Structure bool `json:"structure"`
	Pools     int  `json:"pools"`
	Themes    int  `json:"themes"`
	Songs     int  `json:"songs"`
	Metronome bool `json:"metronome"`
}

// Apply writes doc into store. Existing themes and songs with the same key
// are updated in place, so applying a document twice is idempotent.
func Apply(ctx context.Context, store content.Store, doc Document, opts Options) (Result, error) {
	logger := logging.NewComponentLogger(opts.Logger, "seed")
	var result Result

	if err := doc.Validate(); err != nil {
		return result, err
	}
	if opts.Replace {
		if err := store.Drop(ctx); err != nil {
			return result, err
		}
		logger.Info("content dropped before seeding")
	}
	if doc.Structure != nil {
		if err := store.SaveStructure(ctx, *doc.Structure); err != nil {
			return result, err
		}
		result.Structure = true
	}
	for _, pool := range doc.Pools {
		if err := store.SavePool(ctx, pool); err != nil {
			return result, err
		}
		result.Pools++
	}
	for _, theme := range doc.Themes {
		if err := upsertTheme(ctx, store, theme); err != nil {
			return result, err
		}
		result.Themes++
	}
	for _, song := range doc.Songs {
		if err := upsertSong(ctx, store, song); err != nil {
			return result, err
		}
		result.Songs++
	}
	if doc.Metronome != nil {
		if err := store.SaveMetronomeSettings(ctx, *doc.Metronome); err != nil {
			return result, err
		}
		result.Metronome = true
	}

	logger.Info("seed applied",
		logging.Bool("structure", result.Structure),
		logging.Int("pools", result.Pools),
		logging.Int("themes", result.Themes),
		logging.Int("songs", result.Songs),
		logging.Bool("replace", opts.Replace),
	)
	return result, nil
}

func upsertTheme(ctx context.Context, store content.Store, theme content.Theme) error {
	_, err := store.CreateTheme(ctx, theme)
	if errors.Is(err, services.ErrConflict) {
		_, err = store.UpdateTheme(ctx, theme.Category, theme)
	}
	return err
}

// upsertSong matches by id, or by src when the document leaves the id out.
func upsertSong(ctx context.Context, store content.Store, song content.Song) error {
	if song.ID == "" {
		existing, err := store.ListSongs(ctx)
		if err != nil {
			return err
		}
		for _, candidate := range existing {
			if candidate.Src == song.Src {
				song.ID = candidate.ID
				break
			}
		}
	}
	if song.ID != "" {
		_, err := store.UpdateSong(ctx, song.ID, song)
		if !errors.Is(err, services.ErrNotFound) {
			return err
		}
	}
	_, err := store.CreateSong(ctx, song)
	return err
}

// Backup reads everything in store into a document.
func Backup(ctx context.Context, store content.Store, now time.Time) (Document, error) {
	doc := Document{Version: FormatVersion, CreatedAt: now.UTC()}

	structure, err := store.GetStructure(ctx)
	switch {
	case err == nil:
		doc.Structure = &structure
	case !errors.Is(err, services.ErrNotFound):
		return Document{}, err
	}
	if doc.Pools, err = store.ListPools(ctx); err != nil {
		return Document{}, err
	}
	if doc.Themes, err = store.ListThemes(ctx); err != nil {
		return Document{}, err
	}
	if doc.Songs, err = store.ListSongs(ctx); err != nil {
		return Document{}, err
	}
	settings, err := store.MetronomeSettings(ctx)
	if err != nil {
		return Document{}, err
	}
	doc.Metronome = &settings
	return doc, nil
}

// BackupFileName returns the file name for a backup taken at stamp. A
// non-empty label is sanitized and appended after the timestamp.
func BackupFileName(stamp time.Time, label string) string {
	name := BackupFilePrefix + stamp.UTC().Format("20060102T150405Z")
	if label = textutil.SanitizeFileName(label); label != "" {
		name += "-" + strings.ReplaceAll(label, " ", "-")
	}
	return name + ".yaml"
}

// WriteBackup writes doc into dir under a timestamped name and returns the
// file path.
func WriteBackup(dir string, doc Document) (string, error) {
	return WriteLabeledBackup(dir, doc, "")
}

// WriteLabeledBackup is WriteBackup with a label appended to the file name.
func WriteLabeledBackup(dir string, doc Document, label string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	data, err := Marshal(doc)
	if err != nil {
		return "", err
	}
	stamp := doc.CreatedAt
	if stamp.IsZero() {
		stamp = time.Now()
	}
	path := filepath.Join(dir, BackupFileName(stamp, label))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("finalize backup: %w", err)
	}
	return path, nil
}
