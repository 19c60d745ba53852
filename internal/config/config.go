package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir   string `toml:"data_dir"`
	LogDir    string `toml:"log_dir"`
	BackupDir string `toml:"backup_dir"`
	APIBind   string `toml:"api_bind"`
}

// Admin contains the credentials accepted by the admin login endpoint.
type Admin struct {
	Username        string `toml:"username"`
	Password        string `toml:"password"`
	TokenTTLMinutes int    `toml:"token_ttl_minutes"`
}

// Content selects and configures the content store backend.
type Content struct {
	Backend       string `toml:"backend"`
	SQLitePath    string `toml:"sqlite_path"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
	SeedPath      string `toml:"seed_path"`
}

// Narration configures the text-to-speech provider.
type Narration struct {
	Provider       string `toml:"provider"`
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	Voice          string `toml:"voice"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	RetryAttempts  int    `toml:"retry_attempts"`
}

// Playback contains timings for the session walkthrough.
type Playback struct {
	SubstepSeconds        int     `toml:"substep_seconds"`
	PreviewSubstepSeconds int     `toml:"preview_substep_seconds"`
	FadeInMs              int     `toml:"fade_in_ms"`
	FadeOutMs             int     `toml:"fade_out_ms"`
	DefaultVolume         float64 `toml:"default_volume"`
}

// Metronome bounds the metronome period.
type Metronome struct {
	DefaultPeriodMs int `toml:"default_period_ms"`
	MinPeriodMs     int `toml:"min_period_ms"`
	MaxPeriodMs     int `toml:"max_period_ms"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for Spirare.
//
// Configuration sections by subsystem:
//   - Paths: data, log and backup directories plus the API bind address
//   - Admin: credentials for the admin surface
//   - Content: sqlite or mongo content store
//   - Narration: text-to-speech provider settings
//   - Playback: substep durations and track fade defaults
//   - Metronome: period bounds
//   - Logging: log format, level, and retention
type Config struct {
	Paths     Paths     `toml:"paths"`
	Admin     Admin     `toml:"admin"`
	Content   Content   `toml:"content"`
	Narration Narration `toml:"narration"`
	Playback  Playback  `toml:"playback"`
	Metronome Metronome `toml:"metronome"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("spirare.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for server operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir, c.Paths.BackupDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockPath returns the location of the single-instance server lock.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "spirared.lock")
}

// SubstepDuration returns the countdown length of one substep in the
// composed session flow.
func (c *Config) SubstepDuration() time.Duration {
	return time.Duration(c.Playback.SubstepSeconds) * time.Second
}

// PreviewSubstepDuration returns the countdown length used by the preview
// flow.
func (c *Config) PreviewSubstepDuration() time.Duration {
	return time.Duration(c.Playback.PreviewSubstepSeconds) * time.Second
}

// NarrationTimeout returns the per-request synthesis timeout.
func (c *Config) NarrationTimeout() time.Duration {
	return time.Duration(c.Narration.TimeoutSeconds) * time.Second
}

// TokenTTL returns how long an admin bearer token stays valid.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Admin.TokenTTLMinutes) * time.Minute
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
