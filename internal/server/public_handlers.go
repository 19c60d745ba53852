package server

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"spirare/internal/api"
	"spirare/internal/content"
	"spirare/internal/logging"
	"spirare/internal/narration"
	"spirare/internal/services"
)

// maxTTSRunes bounds a single synthesis request.
const maxTTSRunes = 2000

func (s *Server) handleMeditation(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	ctx := services.WithCategory(r.Context(), content.NormalizeCategory(category))
	session, err := s.composer.Compose(ctx, category)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.SessionResponse{Session: session})
}

func (s *Server) handleGetMetronome(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.MetronomeSettings(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.clampMetronome(settings))
}

func (s *Server) handlePutMetronome(w http.ResponseWriter, r *http.Request) {
	var update api.MetronomeUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		s.writeError(w, r, err)
		return
	}
	if update.PeriodMs != nil && *update.PeriodMs < 0 {
		s.writeError(w, r, services.Wrap(services.ErrValidation, "server", "metronome settings", "periodMs must not be negative", nil))
		return
	}
	settings, err := s.store.MetronomeSettings(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	// A zero period leaves the stored one unchanged.
	if update.PeriodMs != nil && *update.PeriodMs > 0 {
		settings.PeriodMs = *update.PeriodMs
	}
	if update.IsMuted != nil {
		settings.IsMuted = *update.IsMuted
	}
	settings = s.clampMetronome(settings)
	if err := s.store.SaveMetronomeSettings(r.Context(), settings); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, settings)
}

// clampMetronome applies the configured period bounds, which may be tighter
// than the stored range.
func (s *Server) clampMetronome(settings content.MetronomeSettings) content.MetronomeSettings {
	bounds := s.cfg.Metronome
	period := settings.PeriodMs
	if period <= 0 {
		period = bounds.DefaultPeriodMs
	}
	settings.PeriodMs = content.ClampPeriod(period, bounds.MinPeriodMs, bounds.MaxPeriodMs)
	return settings
}

func (s *Server) handleTTS(w http.ResponseWriter, r *http.Request) {
	var req api.TTSRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		s.writeError(w, r, services.Wrap(services.ErrValidation, "server", "tts", "text is required", nil))
		return
	}
	if utf8.RuneCountInString(text) > maxTTSRunes {
		s.writeError(w, r, services.Wrap(services.ErrValidation, "server", "tts", "text is too long", nil))
		return
	}
	clip, err := s.synth.Synthesize(r.Context(), text)
	if errors.Is(err, narration.ErrDisabled) {
		err = services.Wrap(services.ErrUnavailable, "server", "tts", "narration is disabled", err)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	logging.WithContext(r.Context(), s.logger).Debug("narration synthesized",
		logging.Int("bytes", len(clip.Data)),
		logging.String("mime_type", clip.MIMEType),
	)
	w.Header().Set("Content-Type", clip.MIMEType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(clip.Data)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	provider := s.cfg.Narration.Provider
	if provider == "" {
		provider = narration.ProviderNone
	}
	s.writeJSON(w, http.StatusOK, api.FromStats(
		s.version,
		s.cfg.Content.Backend,
		provider,
		s.startedAt,
		s.clock.Now(),
		stats,
	))
}
