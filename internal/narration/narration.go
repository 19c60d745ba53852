package narration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"spirare/internal/config"
	"spirare/internal/logging"
	"spirare/internal/services"
)

const (
	ProviderNone  = "none"
	ProviderHTTP  = "http"
	ProviderGenAI = "genai"
)

// ErrDisabled is returned when no narration provider is configured.
var ErrDisabled = errors.New("narration disabled")

// Audio is one synthesized clip.
type Audio struct {
	Data     []byte
	MIMEType string
}

// Synthesizer converts text into audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (Audio, error)
}

// SynthesizerFunc adapts a function to Synthesizer.
type SynthesizerFunc func(ctx context.Context, text string) (Audio, error)

// Synthesize calls f.
func (f SynthesizerFunc) Synthesize(ctx context.Context, text string) (Audio, error) {
	return f(ctx, text)
}

// Disabled is the "none" provider.
type Disabled struct{}

// Synthesize always fails with ErrDisabled.
func (Disabled) Synthesize(context.Context, string) (Audio, error) {
	return Audio{}, ErrDisabled
}

// New builds the synthesizer named by cfg.Narration.Provider.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Synthesizer, error) {
	if cfg == nil {
		return Disabled{}, nil
	}
	logger = logging.NewComponentLogger(logger, "narration")
	n := cfg.Narration
	switch strings.ToLower(strings.TrimSpace(n.Provider)) {
	case "", ProviderNone:
		logger.Info("narration disabled", logging.String("provider", ProviderNone))
		return Disabled{}, nil
	case ProviderHTTP:
		logger.Info("narration via tts proxy",
			logging.String("provider", ProviderHTTP),
			logging.String("base_url", n.BaseURL),
			logging.String("voice", n.Voice),
		)
		return NewHTTPClient(HTTPConfig{
			BaseURL: n.BaseURL,
			APIKey:  n.APIKey,
			Voice:   n.Voice,
			Model:   n.Model,
			Timeout: cfg.NarrationTimeout(),
		}, WithRetryMaxAttempts(n.RetryAttempts)), nil
	case ProviderGenAI:
		logger.Info("narration via gemini",
			logging.String("provider", ProviderGenAI),
			logging.String("model", n.Model),
			logging.String("voice", n.Voice),
		)
		return NewGenAI(ctx, GenAIConfig{
			APIKey:  n.APIKey,
			Model:   n.Model,
			Voice:   n.Voice,
			Timeout: cfg.NarrationTimeout(),
		})
	default:
		return nil, services.Wrap(services.ErrValidation, "narration", "new",
			fmt.Sprintf("unknown provider %q", n.Provider), nil)
	}
}

func requireText(op, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", services.Wrap(services.ErrValidation, "narration", op, "text required", nil)
	}
	return text, nil
}
