package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateContent(); err != nil {
		return err
	}
	if err := c.validateNarration(); err != nil {
		return err
	}
	if err := c.validatePlayback(); err != nil {
		return err
	}
	if err := c.validateMetronome(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateContent() error {
	switch c.Content.Backend {
	case "sqlite":
		if strings.TrimSpace(c.Content.SQLitePath) == "" {
			return errors.New("content.sqlite_path must be set when content.backend is sqlite")
		}
	case "mongo":
		if strings.TrimSpace(c.Content.MongoURI) == "" {
			return errors.New("content.mongo_uri must be set when content.backend is mongo")
		}
		if strings.TrimSpace(c.Content.MongoDatabase) == "" {
			return errors.New("content.mongo_database must be set when content.backend is mongo")
		}
	default:
		return fmt.Errorf("content.backend must be sqlite or mongo, got %q", c.Content.Backend)
	}
	return nil
}

func (c *Config) validateNarration() error {
	switch c.Narration.Provider {
	case "none":
		return nil
	case "http":
		if c.Narration.BaseURL == "" {
			return errors.New("narration.base_url must be set when narration.provider is http")
		}
	case "genai":
		if c.Narration.APIKey == "" {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = defaultConfigPath
			}
			return fmt.Errorf("narration.api_key is required for the genai provider. Set GEMINI_API_KEY env var or edit %s (create with 'spirare config init')", defaultPath)
		}
	default:
		return fmt.Errorf("narration.provider must be none, http or genai, got %q", c.Narration.Provider)
	}
	if c.Narration.RetryAttempts > 10 {
		return errors.New("narration.retry_attempts must be at most 10")
	}
	return nil
}

func (c *Config) validatePlayback() error {
	if c.Playback.DefaultVolume < 0 || c.Playback.DefaultVolume > 1 {
		return errors.New("playback.default_volume must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateMetronome() error {
	m := c.Metronome
	if m.MinPeriodMs >= m.MaxPeriodMs {
		return errors.New("metronome.min_period_ms must be less than metronome.max_period_ms")
	}
	if m.DefaultPeriodMs < m.MinPeriodMs || m.DefaultPeriodMs > m.MaxPeriodMs {
		return fmt.Errorf("metronome.default_period_ms must be between %d and %d", m.MinPeriodMs, m.MaxPeriodMs)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not recognized", c.Logging.Level)
	}
}
