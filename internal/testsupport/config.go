package testsupport

import (
	"path/filepath"
	"testing"

	"spirare/internal/config"
)

const (
	AdminUsername = "admin"
	AdminPassword = "test-password"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.BackupDir = filepath.Join(base, "backups")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Content.SQLitePath = filepath.Join(base, "data", "content.db")
	cfgVal.Admin.Username = AdminUsername
	cfgVal.Admin.Password = AdminPassword

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithNarrationProxy points narration at an HTTP TTS endpoint.
func WithNarrationProxy(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Narration.Provider = "http"
		b.cfg.Narration.BaseURL = baseURL
		b.cfg.Narration.RetryAttempts = 1
	}
}

// WithSubstepSeconds overrides both playback substep durations.
func WithSubstepSeconds(seconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Playback.SubstepSeconds = seconds
		b.cfg.Playback.PreviewSubstepSeconds = seconds
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
