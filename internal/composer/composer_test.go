package composer_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"slices"
	"testing"

	"spirare/internal/composer"
	"spirare/internal/content"
	"spirare/internal/services"
)

type memoryRepo struct {
	structure *content.Structure
	themes    map[string]content.Theme
	pools     map[string][]string
	poolErr   error
	themeErr  error
}

func (r *memoryRepo) GetStructure(context.Context) (content.Structure, error) {
	if r.structure == nil {
		return content.Structure{}, services.Wrap(services.ErrNotFound, "memory", "get structure", "", nil)
	}
	return *r.structure, nil
}

func (r *memoryRepo) GetThemeByCategory(_ context.Context, category string) (content.Theme, error) {
	if r.themeErr != nil {
		return content.Theme{}, r.themeErr
	}
	theme, ok := r.themes[category]
	if !ok {
		return content.Theme{}, services.Wrap(services.ErrNotFound, "memory", "get theme", category, nil)
	}
	return theme, nil
}

func (r *memoryRepo) BasePool(_ context.Context, stage content.Stage, practice string) ([]string, error) {
	if r.poolErr != nil {
		return nil, r.poolErr
	}
	return r.pools[string(stage)+"/"+practice], nil
}

func newComposer(repo *memoryRepo, opts ...composer.Option) *composer.Composer {
	return composer.New(repo, repo, repo, opts...)
}

var lastPicker = composer.PickerFunc(func(pool []string) string { return pool[len(pool)-1] })

func TestComposeLiteralCalmScenario(t *testing.T) {
	repo := &memoryRepo{
		structure: &content.Structure{Opening: []string{"intention"}},
		themes: map[string]content.Theme{
			"calm": {
				Category: "calm",
				Title:    "Calm",
				Structure: content.ThemeStructure{
					content.StageOpening: {"intention": {"Breathe."}},
				},
			},
		},
	}

	session, err := newComposer(repo).Compose(context.Background(), "calm")
	if err != nil {
		t.Fatalf("Compose returned error: %v", err)
	}
	if len(session.Stages) != 1 {
		t.Fatalf("expected 1 stage, got %+v", session.Stages)
	}
	got := session.Stages[0]
	want := content.StageResult{
		Stage:     content.StageOpening,
		Practices: []content.PracticeResult{{Practice: "intention", Text: "Breathe.", IsSpecific: true}},
	}
	if got.Stage != want.Stage || !slices.Equal(got.Practices, want.Practices) {
		t.Fatalf("unexpected stage %+v, want %+v", got, want)
	}
	if session.Category != "calm" || session.Title != "Calm" {
		t.Fatalf("unexpected session header %+v", session)
	}
}

func TestComposePreservesStructureOrder(t *testing.T) {
	structure := content.Structure{
		Opening:       []string{"grounding", "posture", "intention"},
		Concentration: []string{"anchor", "breath_focus"},
		Awakening:     []string{"closing", "gratitude"},
	}
	repo := &memoryRepo{
		structure: &structure,
		themes:    map[string]content.Theme{"focus": {Category: "focus", Title: "Focus"}},
		pools:     map[string][]string{},
	}
	for _, stage := range content.Stages() {
		for _, practice := range structure.Practices(stage) {
			repo.pools[string(stage)+"/"+practice] = []string{practice + " phrase"}
		}
	}

	for range 20 {
		session, err := newComposer(repo, composer.WithConcurrency(3)).Compose(context.Background(), "focus")
		if err != nil {
			t.Fatalf("Compose returned error: %v", err)
		}
		wantStages := []content.Stage{content.StageOpening, content.StageConcentration, content.StageAwakening}
		if len(session.Stages) != len(wantStages) {
			t.Fatalf("unexpected stages %+v", session.Stages)
		}
		for i, stage := range session.Stages {
			if stage.Stage != wantStages[i] {
				t.Fatalf("stage %d = %s, want %s", i, stage.Stage, wantStages[i])
			}
			declared := structure.Practices(stage.Stage)
			if len(stage.Practices) != len(declared) {
				t.Fatalf("stage %s practices %+v, want %v", stage.Stage, stage.Practices, declared)
			}
			for j, practice := range stage.Practices {
				if practice.Practice != declared[j] {
					t.Fatalf("stage %s practice %d = %s, want %s", stage.Stage, j, practice.Practice, declared[j])
				}
				if practice.Text != declared[j]+" phrase" {
					t.Fatalf("unexpected text %q for %s", practice.Text, practice.Practice)
				}
			}
		}
	}
}

func TestComposeDrawsOnlyFromOverride(t *testing.T) {
	override := []string{"Soften.", "Settle.", "Arrive."}
	repo := &memoryRepo{
		structure: &content.Structure{Opening: []string{"posture"}},
		themes: map[string]content.Theme{
			"rest": {
				Category:  "rest",
				Title:     "Rest",
				Structure: content.ThemeStructure{content.StageOpening: {"posture": override}},
			},
		},
		pools: map[string][]string{"opening/posture": {"Sit tall."}},
	}
	c := newComposer(repo)
	seen := map[string]bool{}
	for range 200 {
		session, err := c.Compose(context.Background(), "rest")
		if err != nil {
			t.Fatalf("Compose returned error: %v", err)
		}
		practice := session.Stages[0].Practices[0]
		if !practice.IsSpecific {
			t.Fatal("expected override slot to be specific")
		}
		if !slices.Contains(override, practice.Text) {
			t.Fatalf("text %q not drawn from override pool", practice.Text)
		}
		seen[practice.Text] = true
	}
	if len(seen) < 2 {
		t.Fatalf("expected random draws to vary, saw %v", seen)
	}
}

func TestComposeFallsBackToBasePool(t *testing.T) {
	base := []string{"Feel the floor.", "Notice your weight."}
	repo := &memoryRepo{
		structure: &content.Structure{Opening: []string{"grounding"}},
		themes: map[string]content.Theme{
			"earth": {
				Category:  "earth",
				Title:     "Earth",
				Structure: content.ThemeStructure{content.StageOpening: {"grounding": {}}},
			},
		},
		pools: map[string][]string{"opening/grounding": base},
	}
	c := newComposer(repo)
	for range 100 {
		session, err := c.Compose(context.Background(), "earth")
		if err != nil {
			t.Fatalf("Compose returned error: %v", err)
		}
		practice := session.Stages[0].Practices[0]
		if practice.IsSpecific {
			t.Fatal("expected empty override to fall back to base pool")
		}
		if !slices.Contains(base, practice.Text) {
			t.Fatalf("text %q not drawn from base pool", practice.Text)
		}
	}
}

func TestComposeEmptyPoolsYieldEmptyText(t *testing.T) {
	repo := &memoryRepo{
		structure: &content.Structure{Exploration: []string{"inquiry"}},
		themes:    map[string]content.Theme{"open": {Category: "open", Title: "Open"}},
	}
	session, err := newComposer(repo, composer.WithPicker(lastPicker)).Compose(context.Background(), "open")
	if err != nil {
		t.Fatalf("expected empty pools to be tolerated, got %v", err)
	}
	practice := session.Stages[0].Practices[0]
	if practice.Text != "" || practice.IsSpecific {
		t.Fatalf("expected empty non-specific text, got %+v", practice)
	}
}

func TestComposeEmptyStructureEncodesEmptyStages(t *testing.T) {
	repo := &memoryRepo{
		structure: &content.Structure{},
		themes:    map[string]content.Theme{"calm": {Category: "calm", Title: "Calm"}},
	}
	session, err := newComposer(repo).Compose(context.Background(), "calm")
	if err != nil {
		t.Fatalf("Compose returned error: %v", err)
	}
	if session.Stages == nil || len(session.Stages) != 0 {
		t.Fatalf("expected empty non-nil stages, got %#v", session.Stages)
	}
	data, err := json.Marshal(session)
	if err != nil {
		t.Fatalf("marshal session: %v", err)
	}
	if !strings.Contains(string(data), `"stages":[]`) {
		t.Fatalf("expected empty stages array, got %s", data)
	}
}

func TestComposeUsesInjectedPicker(t *testing.T) {
	repo := &memoryRepo{
		structure: &content.Structure{Awakening: []string{"gratitude"}},
		themes:    map[string]content.Theme{"thanks": {Category: "thanks", Title: "Thanks"}},
		pools:     map[string][]string{"awakening/gratitude": {"one", "two", "three"}},
	}
	session, err := newComposer(repo, composer.WithPicker(lastPicker)).Compose(context.Background(), "thanks")
	if err != nil {
		t.Fatalf("Compose returned error: %v", err)
	}
	if got := session.Stages[0].Practices[0].Text; got != "three" {
		t.Fatalf("expected deterministic pick, got %q", got)
	}
}

func TestComposeNotFound(t *testing.T) {
	repo := &memoryRepo{
		structure: &content.Structure{Opening: []string{"intention"}},
		themes:    map[string]content.Theme{},
	}
	_, err := newComposer(repo).Compose(context.Background(), "missing")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found for unknown category, got %v", err)
	}

	repo = &memoryRepo{themes: map[string]content.Theme{"calm": {Category: "calm", Title: "Calm"}}}
	_, err = newComposer(repo).Compose(context.Background(), "calm")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found for missing structure, got %v", err)
	}
}

func TestComposeStorageFaultIsUnavailable(t *testing.T) {
	repo := &memoryRepo{
		structure: &content.Structure{Opening: []string{"intention"}},
		themes:    map[string]content.Theme{"calm": {Category: "calm", Title: "Calm"}},
		poolErr:   errors.New("disk on fire"),
	}
	_, err := newComposer(repo).Compose(context.Background(), "calm")
	if !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}

	repo.poolErr = nil
	repo.themeErr = errors.New("connection reset")
	_, err = newComposer(repo).Compose(context.Background(), "calm")
	if !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected unavailable for theme fault, got %v", err)
	}
}

func TestComposeRejectsBlankCategory(t *testing.T) {
	_, err := newComposer(&memoryRepo{}).Compose(context.Background(), "   ")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestComposeNormalizesCategory(t *testing.T) {
	repo := &memoryRepo{
		structure: &content.Structure{Opening: []string{"posture"}},
		themes:    map[string]content.Theme{"deep-calm": {Category: "deep-calm", Title: "Deep Calm"}},
	}
	session, err := newComposer(repo).Compose(context.Background(), "Deep Calm")
	if err != nil {
		t.Fatalf("Compose returned error: %v", err)
	}
	if session.Category != "deep-calm" {
		t.Fatalf("unexpected category %q", session.Category)
	}
}
