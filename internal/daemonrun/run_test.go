package daemonrun

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"spirare/internal/logging"
	"spirare/internal/testsupport"
)

func TestSeedIfEmptySeedsOnce(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if err := seedIfEmpty(ctx, cfg, store, logging.NewNop()); err != nil {
		t.Fatalf("seedIfEmpty failed: %v", err)
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if !stats.HasStructure || stats.Themes == 0 {
		t.Fatalf("expected seeded store, got %+v", stats)
	}

	if err := store.DeleteTheme(ctx, "calm"); err != nil {
		t.Fatalf("DeleteTheme failed: %v", err)
	}
	if err := seedIfEmpty(ctx, cfg, store, logging.NewNop()); err != nil {
		t.Fatalf("second seedIfEmpty failed: %v", err)
	}
	if _, err := store.GetThemeByCategory(ctx, "calm"); err == nil {
		t.Fatal("expected populated store to be left alone")
	}
}

func TestLoadSeedPrefersConfiguredFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	path := filepath.Join(testsupport.BaseDir(cfg), "seed.yaml")
	testsupport.WriteFile(t, path, "themes:\n  - {category: night, title: Night}\n")
	cfg.Content.SeedPath = path

	doc, source, err := LoadSeed(cfg)
	if err != nil {
		t.Fatalf("LoadSeed failed: %v", err)
	}
	if source != path || len(doc.Themes) != 1 || doc.Themes[0].Category != "night" {
		t.Fatalf("unexpected seed %s %+v", source, doc)
	}

	cfg.Content.SeedPath = ""
	if _, source, err := LoadSeed(cfg); err != nil || source != "embedded" {
		t.Fatalf("expected embedded seed, got %s %v", source, err)
	}
}

func TestEnsureCurrentLogPointer(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "spirare-1.log")
	second := filepath.Join(dir, "spirare-2.log")
	for _, p := range []string{first, second} {
		testsupport.WriteFile(t, p, "log\n")
	}
	if err := ensureCurrentLogPointer(dir, first); err != nil {
		t.Fatalf("first pointer: %v", err)
	}
	if err := ensureCurrentLogPointer(dir, second); err != nil {
		t.Fatalf("second pointer: %v", err)
	}
	target, err := os.Readlink(filepath.Join(dir, logging.LogFileName))
	if err != nil {
		t.Fatalf("readlink: %v", err)
	}
	if target != second {
		t.Fatalf("pointer targets %s, want %s", target, second)
	}
}
