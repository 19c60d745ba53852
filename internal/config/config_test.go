package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"spirare/internal/config"
)

func clearSecretEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"SPIRARE_ADMIN_PASSWORD", "SPIRARE_TTS_API_KEY", "GEMINI_API_KEY", "SPIRARE_MONGO_URI"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	clearSecretEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "spirare")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Content.SQLitePath != filepath.Join(wantData, "content.db") {
		t.Fatalf("unexpected sqlite path: %q", cfg.Content.SQLitePath)
	}
	if cfg.Content.Backend != "sqlite" {
		t.Fatalf("expected sqlite backend by default, got %q", cfg.Content.Backend)
	}
	if cfg.Narration.Provider != "none" {
		t.Fatalf("expected narration disabled by default, got %q", cfg.Narration.Provider)
	}
	if cfg.SubstepDuration() != 120*time.Second {
		t.Fatalf("unexpected substep duration: %s", cfg.SubstepDuration())
	}
	if cfg.PreviewSubstepDuration() != 10*time.Second {
		t.Fatalf("unexpected preview duration: %s", cfg.PreviewSubstepDuration())
	}
	if cfg.Playback.FadeInMs != 1500 || cfg.Playback.FadeOutMs != 1500 {
		t.Fatalf("unexpected fade defaults: %+v", cfg.Playback)
	}
	if cfg.Metronome.DefaultPeriodMs != 1000 || cfg.Metronome.MinPeriodMs != 600 || cfg.Metronome.MaxPeriodMs != 1800 {
		t.Fatalf("unexpected metronome defaults: %+v", cfg.Metronome)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir, cfg.Paths.BackupDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
	if !strings.HasPrefix(cfg.LockPath(), cfg.Paths.DataDir) {
		t.Fatalf("expected lock inside data dir, got %q", cfg.LockPath())
	}
}

func TestLoadCustomPath(t *testing.T) {
	clearSecretEnv(t)
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "spirare.toml")

	type payload struct {
		Paths struct {
			DataDir string `toml:"data_dir"`
		} `toml:"paths"`
		Narration struct {
			Provider string `toml:"provider"`
			BaseURL  string `toml:"base_url"`
		} `toml:"narration"`
		Playback struct {
			SubstepSeconds int `toml:"substep_seconds"`
		} `toml:"playback"`
	}
	custom := payload{}
	custom.Paths.DataDir = filepath.Join(tempDir, "data")
	custom.Narration.Provider = "HTTP"
	custom.Narration.BaseURL = " https://tts.example.com/speak "
	custom.Playback.SubstepSeconds = 45
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Narration.Provider != "http" {
		t.Fatalf("expected provider lower-cased, got %q", cfg.Narration.Provider)
	}
	if cfg.Narration.BaseURL != "https://tts.example.com/speak" {
		t.Fatalf("expected trimmed base url, got %q", cfg.Narration.BaseURL)
	}
	if cfg.Playback.SubstepSeconds != 45 {
		t.Fatalf("expected substep seconds 45, got %d", cfg.Playback.SubstepSeconds)
	}
	if cfg.Paths.LogDir != filepath.Join(tempDir, "data", "logs") {
		t.Fatalf("expected log dir derived from data dir, got %q", cfg.Paths.LogDir)
	}
}

func TestEnvFallbacksForSecrets(t *testing.T) {
	clearSecretEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SPIRARE_ADMIN_PASSWORD", "hunter2")
	t.Setenv("GEMINI_API_KEY", "gemini-key")

	configPath := filepath.Join(t.TempDir(), "spirare.toml")
	if err := os.WriteFile(configPath, []byte("[narration]\nprovider = \"genai\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Admin.Password != "hunter2" {
		t.Fatalf("expected admin password from env, got %q", cfg.Admin.Password)
	}
	if cfg.Narration.APIKey != "gemini-key" {
		t.Fatalf("expected genai key from env, got %q", cfg.Narration.APIKey)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*config.Config){
		"backend":        func(c *config.Config) { c.Content.Backend = "postgres" },
		"provider":       func(c *config.Config) { c.Narration.Provider = "espeak" },
		"http base url":  func(c *config.Config) { c.Narration.Provider = "http"; c.Narration.BaseURL = "" },
		"genai key":      func(c *config.Config) { c.Narration.Provider = "genai"; c.Narration.APIKey = "" },
		"volume":         func(c *config.Config) { c.Playback.DefaultVolume = 1.5 },
		"period bounds":  func(c *config.Config) { c.Metronome.MinPeriodMs = 2000 },
		"default period": func(c *config.Config) { c.Metronome.DefaultPeriodMs = 100 },
		"log level":      func(c *config.Config) { c.Logging.Level = "chatty" },
	}
	for name, mutate := range cases {
		cfg := config.Default()
		cfg.Content.SQLitePath = "/tmp/content.db"
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}

	cfg := config.Default()
	cfg.Content.SQLitePath = "/tmp/content.db"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	clearSecretEnv(t)
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("expected sample to load, exists=%v err=%v", exists, err)
	}
}

func TestExpandPathHandlesTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := config.ExpandPath("~/spirare")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "spirare") {
		t.Fatalf("unexpected expansion %q", got)
	}
}
