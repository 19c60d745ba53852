package testsupport

import (
	"context"
	"testing"

	"spirare/internal/config"
	"spirare/internal/content"
	"spirare/internal/contentstore"
)

// MustOpenStore opens a SQLite content store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *contentstore.Store {
	t.Helper()

	store, err := contentstore.OpenSQLite(context.Background(), cfg.Content.SQLitePath)
	if err != nil {
		t.Fatalf("open content store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// CalmTheme is the fixture theme MustSeedFixture stores: it overrides
// opening/intention and nothing else.
func CalmTheme() content.Theme {
	return content.Theme{
		Category: "calm",
		Title:    "Calm",
		IsActive: true,
		Structure: content.ThemeStructure{
			content.StageOpening: {"intention": {"Breathe."}},
		},
	}
}

// MustSeedFixture stores a small structure, the calm theme and base pools
// for the opening stage.
func MustSeedFixture(t testing.TB, store content.Store) {
	t.Helper()
	ctx := context.Background()

	var structure content.Structure
	structure.SetPractices(content.StageOpening, []string{"posture", "intention"})
	structure.SetPractices(content.StageAwakening, []string{"closing"})
	if err := store.SaveStructure(ctx, structure); err != nil {
		t.Fatalf("save structure: %v", err)
	}
	pools := []content.BasePool{
		{Stage: content.StageOpening, Practice: "posture", Phrases: []string{"Sit tall."}},
		{Stage: content.StageOpening, Practice: "intention", Phrases: []string{"Set an intention."}},
		{Stage: content.StageAwakening, Practice: "closing", Phrases: []string{"Open your eyes."}},
	}
	for _, pool := range pools {
		if err := store.SavePool(ctx, pool); err != nil {
			t.Fatalf("save pool: %v", err)
		}
	}
	if _, err := store.CreateTheme(ctx, CalmTheme()); err != nil {
		t.Fatalf("create theme: %v", err)
	}
}
