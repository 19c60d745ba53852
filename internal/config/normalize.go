package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAdmin()
	if err := c.normalizeContent(); err != nil {
		return err
	}
	c.normalizeNarration()
	c.normalizePlayback()
	c.normalizeMetronome()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.BackupDir) == "" {
		c.Paths.BackupDir = filepath.Join(c.Paths.DataDir, "backups")
	}
	if c.Paths.BackupDir, err = expandPath(c.Paths.BackupDir); err != nil {
		return fmt.Errorf("paths.backup_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeAdmin() {
	c.Admin.Username = strings.TrimSpace(c.Admin.Username)
	if c.Admin.Username == "" {
		c.Admin.Username = defaultAdminUsername
	}
	if c.Admin.Password == "" {
		if value, ok := os.LookupEnv("SPIRARE_ADMIN_PASSWORD"); ok {
			c.Admin.Password = value
		}
	}
	if c.Admin.TokenTTLMinutes <= 0 {
		c.Admin.TokenTTLMinutes = defaultTokenTTLMinutes
	}
}

func (c *Config) normalizeContent() error {
	c.Content.Backend = strings.ToLower(strings.TrimSpace(c.Content.Backend))
	if c.Content.Backend == "" {
		c.Content.Backend = defaultContentBackend
	}
	var err error
	if strings.TrimSpace(c.Content.SQLitePath) == "" {
		c.Content.SQLitePath = filepath.Join(c.Paths.DataDir, defaultSQLiteFile)
	}
	if c.Content.SQLitePath, err = expandPath(c.Content.SQLitePath); err != nil {
		return fmt.Errorf("content.sqlite_path: %w", err)
	}
	if c.Content.SeedPath, err = expandPath(strings.TrimSpace(c.Content.SeedPath)); err != nil {
		return fmt.Errorf("content.seed_path: %w", err)
	}
	c.Content.MongoURI = strings.TrimSpace(c.Content.MongoURI)
	if c.Content.MongoURI == "" {
		if value, ok := os.LookupEnv("SPIRARE_MONGO_URI"); ok {
			c.Content.MongoURI = strings.TrimSpace(value)
		} else {
			c.Content.MongoURI = defaultMongoURI
		}
	}
	c.Content.MongoDatabase = strings.TrimSpace(c.Content.MongoDatabase)
	if c.Content.MongoDatabase == "" {
		c.Content.MongoDatabase = defaultMongoDatabase
	}
	return nil
}

func (c *Config) normalizeNarration() {
	c.Narration.Provider = strings.ToLower(strings.TrimSpace(c.Narration.Provider))
	if c.Narration.Provider == "" {
		c.Narration.Provider = defaultNarrationProvider
	}
	c.Narration.BaseURL = strings.TrimSpace(c.Narration.BaseURL)
	c.Narration.APIKey = strings.TrimSpace(c.Narration.APIKey)
	if c.Narration.APIKey == "" {
		if value, ok := os.LookupEnv("SPIRARE_TTS_API_KEY"); ok {
			c.Narration.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("GEMINI_API_KEY"); ok && c.Narration.Provider == "genai" {
			c.Narration.APIKey = strings.TrimSpace(value)
		}
	}
	c.Narration.Model = strings.TrimSpace(c.Narration.Model)
	if c.Narration.Model == "" {
		c.Narration.Model = defaultNarrationModel
	}
	c.Narration.Voice = strings.TrimSpace(c.Narration.Voice)
	if c.Narration.Voice == "" {
		c.Narration.Voice = defaultNarrationVoice
	}
	if c.Narration.TimeoutSeconds <= 0 {
		c.Narration.TimeoutSeconds = defaultNarrationTimeout
	}
	if c.Narration.RetryAttempts < 0 {
		c.Narration.RetryAttempts = 0
	}
}

func (c *Config) normalizePlayback() {
	if c.Playback.SubstepSeconds <= 0 {
		c.Playback.SubstepSeconds = defaultSubstepSeconds
	}
	if c.Playback.PreviewSubstepSeconds <= 0 {
		c.Playback.PreviewSubstepSeconds = defaultPreviewSubstepSeconds
	}
	if c.Playback.FadeInMs < 0 {
		c.Playback.FadeInMs = defaultFadeMs
	}
	if c.Playback.FadeOutMs < 0 {
		c.Playback.FadeOutMs = defaultFadeMs
	}
}

func (c *Config) normalizeMetronome() {
	if c.Metronome.MinPeriodMs <= 0 {
		c.Metronome.MinPeriodMs = defaultMetronomeMinPeriodMs
	}
	if c.Metronome.MaxPeriodMs <= 0 {
		c.Metronome.MaxPeriodMs = defaultMetronomeMaxPeriodMs
	}
	if c.Metronome.DefaultPeriodMs <= 0 {
		c.Metronome.DefaultPeriodMs = defaultMetronomePeriodMs
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
