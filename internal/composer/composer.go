package composer

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"spirare/internal/content"
	"spirare/internal/logging"
	"spirare/internal/services"
)

const defaultDrawConcurrency = 8

// Composer builds sessions. It is safe for concurrent use.
type Composer struct {
	structures  content.StructureRepository
	themes      content.ThemeRepository
	pools       content.ContentPoolRepository
	picker      Picker
	logger      *slog.Logger
	concurrency int
}

// Option customizes a Composer.
type Option func(*Composer)

// WithPicker overrides the phrase selection strategy.
func WithPicker(p Picker) Option {
	return func(c *Composer) {
		if p != nil {
			c.picker = p
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Composer) {
		c.logger = logging.NewComponentLogger(logger, "composer")
	}
}

// WithConcurrency bounds the number of concurrent base pool reads.
func WithConcurrency(n int) Option {
	return func(c *Composer) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// New constructs a Composer over the three repository ports.
func New(structures content.StructureRepository, themes content.ThemeRepository, pools content.ContentPoolRepository, opts ...Option) *Composer {
	c := &Composer{
		structures:  structures,
		themes:      themes,
		pools:       pools,
		picker:      RandomPicker{},
		logger:      logging.NewComponentLogger(nil, "composer"),
		concurrency: defaultDrawConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type slot struct {
	stage    content.Stage
	practice string
}

// Compose assembles a session for category. A missing Structure or Theme
// fails with services.ErrNotFound; storage faults fail with
// services.ErrUnavailable and are not retried. Stages without practice slots
// are left out of the session.
func (c *Composer) Compose(ctx context.Context, category string) (content.MeditationSession, error) {
	key := content.NormalizeCategory(category)
	if key == "" {
		return content.MeditationSession{}, services.Wrap(services.ErrValidation, "composer", "compose", "category is required", nil)
	}
	ctx = services.WithCategory(ctx, key)
	logger := logging.WithContext(ctx, c.logger)

	var (
		structure content.Structure
		theme     content.Theme
	)
	loads, loadCtx := errgroup.WithContext(ctx)
	loads.Go(func() error {
		s, err := c.structures.GetStructure(loadCtx)
		if err != nil {
			return classify(err, "load structure")
		}
		structure = s
		return nil
	})
	loads.Go(func() error {
		t, err := c.themes.GetThemeByCategory(loadCtx, key)
		if err != nil {
			return classify(err, "load theme "+key)
		}
		theme = t
		return nil
	})
	if err := loads.Wait(); err != nil {
		logger.Info("session compose failed", logging.Error(err), logging.String(logging.FieldEventType, "compose_failed"))
		return content.MeditationSession{}, err
	}

	slots := make([]slot, 0, structure.SlotCount())
	for _, stage := range content.Stages() {
		for _, practice := range structure.Practices(stage) {
			slots = append(slots, slot{stage: stage, practice: practice})
		}
	}

	results := make([]content.PracticeResult, len(slots))
	draws, drawCtx := errgroup.WithContext(ctx)
	draws.SetLimit(c.concurrency)
	for i, s := range slots {
		draws.Go(func() error {
			result, err := c.draw(drawCtx, theme, s)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := draws.Wait(); err != nil {
		logger.Info("session compose failed", logging.Error(err), logging.String(logging.FieldEventType, "compose_failed"))
		return content.MeditationSession{}, err
	}

	session := content.MeditationSession{
		Category:    theme.Category,
		Title:       theme.Title,
		Description: theme.Description,
		Stages:      assemble(slots, results),
	}
	specific := 0
	for _, r := range results {
		if r.IsSpecific {
			specific++
		}
	}
	logger.Debug("session composed",
		logging.Int("stages", len(session.Stages)),
		logging.Int("practices", len(results)),
		logging.Int("specific", specific),
	)
	return session, nil
}

func (c *Composer) draw(ctx context.Context, theme content.Theme, s slot) (content.PracticeResult, error) {
	result := content.PracticeResult{Practice: s.practice}
	if override := theme.Override(s.stage, s.practice); len(override) > 0 {
		result.IsSpecific = true
		result.Text = pick(c.picker, override)
		return result, nil
	}
	pool, err := c.pools.BasePool(ctx, s.stage, s.practice)
	if err != nil {
		return result, classify(err, "load base pool "+string(s.stage)+"/"+s.practice)
	}
	result.Text = pick(c.picker, pool)
	return result, nil
}

// assemble groups slot results by stage, keeping declared order.
func assemble(slots []slot, results []content.PracticeResult) []content.StageResult {
	stages := make([]content.StageResult, 0, len(content.Stages()))
	for i, s := range slots {
		if n := len(stages); n == 0 || stages[n-1].Stage != s.stage {
			stages = append(stages, content.StageResult{Stage: s.stage})
		}
		last := &stages[len(stages)-1]
		last.Practices = append(last.Practices, results[i])
	}
	return stages
}

// classify keeps not-found and already classified errors intact and marks
// everything else as a storage outage.
func classify(err error, operation string) error {
	switch {
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrUnavailable),
		errors.Is(err, services.ErrValidation):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return services.Wrap(services.ErrUnavailable, "composer", operation, "content store failure", err)
	}
}
