package seed_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"spirare/internal/composer"
	"spirare/internal/content"
	"spirare/internal/seed"
	"spirare/internal/services"
	"spirare/internal/testsupport"
)

func TestDefaultDocumentIsValid(t *testing.T) {
	doc, err := seed.Default()
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}
	if doc.Structure == nil || doc.Structure.SlotCount() != 16 {
		t.Fatalf("expected full structure, got %+v", doc.Structure)
	}
	if len(doc.Pools) != 16 {
		t.Fatalf("expected a pool for every slot, got %d", len(doc.Pools))
	}
	if len(doc.Themes) == 0 || len(doc.Songs) == 0 {
		t.Fatal("expected themes and songs in the default seed")
	}
	if doc.Songs[0].Volume != content.DefaultVolume {
		t.Fatalf("expected song defaults applied, got %+v", doc.Songs[0])
	}
}

func TestParseRejectsBadDocuments(t *testing.T) {
	cases := map[string]string{
		"unknown field":   "structure:\n  opening: [posture]\ncolour: blue\n",
		"bad practice":    "structure:\n  opening: [juggling]\n",
		"duplicate theme": "themes:\n  - {category: calm, title: Calm}\n  - {category: Calm, title: Again}\n",
		"bad version":     "version: 7\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := seed.Parse([]byte(input)); !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestApplyDefaultThenCompose(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	doc, err := seed.Default()
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		result, err := seed.Apply(ctx, store, doc, seed.Options{})
		if err != nil {
			t.Fatalf("Apply #%d failed: %v", i+1, err)
		}
		if !result.Structure || result.Pools != 16 || result.Themes != len(doc.Themes) {
			t.Fatalf("unexpected result %+v", result)
		}
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Themes != len(doc.Themes) || stats.Songs != len(doc.Songs) {
		t.Fatalf("expected idempotent seeding, got %+v", stats)
	}

	session, err := composer.New(store, store, store).Compose(ctx, "calm")
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	if len(session.Stages) != 4 || session.PracticeCount() != 16 {
		t.Fatalf("unexpected session shape %+v", session)
	}
	intention := session.Stages[0].Practices[1]
	if intention.Practice != "intention" || !intention.IsSpecific {
		t.Fatalf("expected themed intention, got %+v", intention)
	}
}

func TestBackupRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	testsupport.MustSeedFixture(t, store)
	if _, err := store.CreateSong(ctx, content.Song{Title: "Rain", Src: "rain.mp3"}); err != nil {
		t.Fatalf("CreateSong failed: %v", err)
	}

	now := time.Date(2026, 10, 17, 8, 30, 0, 0, time.UTC)
	doc, err := seed.Backup(ctx, store, now)
	if err != nil {
		t.Fatalf("Backup failed: %v", err)
	}
	path, err := seed.WriteBackup(cfg.Paths.BackupDir, doc)
	if err != nil {
		t.Fatalf("WriteBackup failed: %v", err)
	}
	if filepath.Base(path) != "spirare-backup-20261017T083000Z.yaml" {
		t.Fatalf("unexpected backup name %s", path)
	}

	loaded, err := seed.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	restoreStore := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	if _, err := seed.Apply(ctx, restoreStore, loaded, seed.Options{Replace: true}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	theme, err := restoreStore.GetThemeByCategory(ctx, "calm")
	if err != nil {
		t.Fatalf("restored theme missing: %v", err)
	}
	original, _ := store.GetThemeByCategory(ctx, "calm")
	if theme.ID != original.ID {
		t.Fatalf("expected theme id preserved, got %s want %s", theme.ID, original.ID)
	}
	songs, err := restoreStore.ListSongs(ctx)
	if err != nil || len(songs) != 1 || songs[0].Title != "Rain" {
		t.Fatalf("unexpected restored songs %+v, %v", songs, err)
	}
}

func TestLoadReportsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	testsupport.WriteFile(t, path, "themes: [\n")
	_, err := seed.Load(path)
	if err == nil || !strings.Contains(err.Error(), "broken.yaml") {
		t.Fatalf("expected error naming the file, got %v", err)
	}
	if _, err := seed.Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not exist error, got %v", err)
	}
}

func TestBackupFileNameSanitizesLabel(t *testing.T) {
	stamp := time.Date(2026, 10, 17, 8, 30, 0, 0, time.UTC)
	if got := seed.BackupFileName(stamp, ""); got != "spirare-backup-20261017T083000Z.yaml" {
		t.Fatalf("unexpected unlabeled name %q", got)
	}
	if got := seed.BackupFileName(stamp, " before/upgrade: v2? "); got != "spirare-backup-20261017T083000Z-before-upgrade--v2.yaml" {
		t.Fatalf("unexpected labeled name %q", got)
	}
}
