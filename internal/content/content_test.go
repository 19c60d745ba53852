package content_test

import (
	"errors"
	"testing"

	"spirare/internal/content"
	"spirare/internal/services"
)

func TestStagesCanonicalOrder(t *testing.T) {
	want := []content.Stage{content.StageOpening, content.StageConcentration, content.StageExploration, content.StageAwakening}
	got := content.Stages()
	if len(got) != len(want) {
		t.Fatalf("expected %d stages, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("stage %d = %s, want %s", i, got[i], want[i])
		}
		if got[i].Index() != i {
			t.Fatalf("Index(%s) = %d, want %d", got[i], got[i].Index(), i)
		}
	}
	got[0] = "mutated"
	if content.Stages()[0] != content.StageOpening {
		t.Fatal("Stages must return a copy")
	}
}

func TestParseStage(t *testing.T) {
	stage, err := content.ParseStage("  Awakening ")
	if err != nil || stage != content.StageAwakening {
		t.Fatalf("unexpected parse result %q %v", stage, err)
	}
	if _, err := content.ParseStage("closing"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestStructureValidate(t *testing.T) {
	if err := content.DefaultStructure().Validate(); err != nil {
		t.Fatalf("default structure invalid: %v", err)
	}
	if content.DefaultStructure().SlotCount() != 16 {
		t.Fatalf("expected 16 slots, got %d", content.DefaultStructure().SlotCount())
	}

	bad := content.Structure{Opening: []string{"intention", "gratitude"}}
	if err := bad.Validate(); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected vocabulary error, got %v", err)
	}
	dup := content.Structure{Concentration: []string{"anchor", "anchor"}}
	if err := dup.Validate(); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestThemeNormalizeAndValidate(t *testing.T) {
	theme := content.Theme{
		Category: " Deep Calm ",
		Title:    "  Deep calm  ",
		Structure: content.ThemeStructure{
			content.StageOpening: {"intention": {" Breathe. ", "", "Arrive."}},
		},
	}
	theme.Normalize()
	if theme.Category != "deep-calm" {
		t.Fatalf("unexpected category %q", theme.Category)
	}
	if got := theme.Override(content.StageOpening, "intention"); len(got) != 2 || got[0] != "Breathe." {
		t.Fatalf("unexpected override %v", got)
	}
	if theme.OverrideCount() != 1 {
		t.Fatalf("expected one override, got %d", theme.OverrideCount())
	}
	if err := theme.Validate(); err != nil {
		t.Fatalf("expected valid theme, got %v", err)
	}

	theme.Structure[content.StageOpening]["counting"] = []string{"One."}
	if err := theme.Validate(); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected misplaced practice rejected, got %v", err)
	}

	if err := (content.Theme{Category: "calm"}).Validate(); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected missing title rejected, got %v", err)
	}
	if got := (content.Theme{}).Override(content.StageOpening, "posture"); got != nil {
		t.Fatalf("expected nil override for empty theme, got %v", got)
	}
}

func TestSongDefaults(t *testing.T) {
	song := content.Song{Title: " Rain ", Src: "/audio/rain.mp3", Stage: "Opening"}
	song.Normalize()
	if song.FadeInMs != content.DefaultFadeMs || song.FadeOutMs != content.DefaultFadeMs {
		t.Fatalf("expected default fades, got %d/%d", song.FadeInMs, song.FadeOutMs)
	}
	if song.Volume != content.DefaultVolume {
		t.Fatalf("expected default volume, got %v", song.Volume)
	}
	if song.Stage != content.StageOpening {
		t.Fatalf("expected stage normalized, got %q", song.Stage)
	}
	if err := song.Validate(); err != nil {
		t.Fatalf("expected valid song: %v", err)
	}
	song.Volume = 1.2
	if err := song.Validate(); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected volume rejected, got %v", err)
	}
}

func TestClampPeriod(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, content.DefaultPeriodMs},
		{100, content.MinPeriodMs},
		{1200, 1200},
		{5000, content.MaxPeriodMs},
	}
	for _, tc := range cases {
		if got := content.ClampPeriod(tc.in, content.MinPeriodMs, content.MaxPeriodMs); got != tc.want {
			t.Fatalf("ClampPeriod(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
	if got := (content.MetronomeSettings{PeriodMs: 99, IsMuted: true}).Clamped(); got.PeriodMs != content.MinPeriodMs || !got.IsMuted {
		t.Fatalf("unexpected clamped settings %+v", got)
	}
}

func TestBasePoolValidate(t *testing.T) {
	pool := content.BasePool{Stage: content.StageExploration, Practice: "inquiry", Phrases: []string{" Who is aware? ", " "}}
	pool.Normalize()
	if len(pool.Phrases) != 1 {
		t.Fatalf("expected blank phrase dropped, got %v", pool.Phrases)
	}
	if err := pool.Validate(); err != nil {
		t.Fatalf("expected valid pool: %v", err)
	}
	pool.Practice = "posture"
	if err := pool.Validate(); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected misplaced practice rejected, got %v", err)
	}
}
