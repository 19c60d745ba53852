package narration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"spirare/internal/audio"
	"spirare/internal/services"
)

const (
	defaultGenAIModel = "gemini-2.5-flash-preview-tts"
	defaultGenAIVoice = "Kore"
	genaiPCMRate      = 24000
)

// GenAIConfig selects the Gemini speech model and voice.
type GenAIConfig struct {
	APIKey  string
	Model   string
	Voice   string
	Timeout time.Duration
}

// GenAI synthesizes speech with Gemini's audio response modality.
type GenAI struct {
	client  *genai.Client
	model   string
	voice   string
	timeout time.Duration
}

// NewGenAI creates a Gemini client for the configured API key.
func NewGenAI(ctx context.Context, cfg GenAIConfig) (*GenAI, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrValidation, "narration", "genai", "api key required", nil)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "narration", "genai", "create client", err)
	}
	g := &GenAI{
		client:  client,
		model:   strings.TrimSpace(cfg.Model),
		voice:   strings.TrimSpace(cfg.Voice),
		timeout: cfg.Timeout,
	}
	if g.model == "" {
		g.model = defaultGenAIModel
	}
	if g.voice == "" {
		g.voice = defaultGenAIVoice
	}
	return g, nil
}

// Synthesize requests a single audio candidate for text and returns it as WAV
// when Gemini answers with headerless PCM.
func (g *GenAI) Synthesize(ctx context.Context, text string) (Audio, error) {
	text, err := requireText("synthesize", text)
	if err != nil {
		return Audio{}, err
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, g.requestConfig())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return Audio{}, err
		}
		return Audio{}, services.Wrap(services.ErrUnavailable, "narration", "genai", "generate speech", err)
	}
	clip, err := extractAudio(resp)
	if err != nil {
		return Audio{}, services.Wrap(services.ErrUnavailable, "narration", "genai", "decode speech", err)
	}
	return clip, nil
}

func (g *GenAI) requestConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: g.voice},
			},
		},
	}
}

func extractAudio(resp *genai.GenerateContentResponse) (Audio, error) {
	if resp == nil {
		return Audio{}, errors.New("empty response")
	}
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			return normalizeInline(part.InlineData.Data, part.InlineData.MIMEType), nil
		}
	}
	return Audio{}, fmt.Errorf("no audio in %d candidate(s)", len(resp.Candidates))
}

// normalizeInline wraps raw L16 PCM into a WAV container.
func normalizeInline(data []byte, mimeType string) Audio {
	if mimeType == "" || audio.IsRawPCM(mimeType) {
		rate := audio.PCMRate(mimeType, genaiPCMRate)
		return Audio{Data: audio.WrapPCM16(data, rate, 1), MIMEType: audio.MIMEWAV}
	}
	return Audio{Data: data, MIMEType: mimeType}
}
