package config

const (
	defaultConfigPath            = "~/.config/spirare/config.toml"
	defaultDataDir               = "~/.local/share/spirare"
	defaultAPIBind               = "127.0.0.1:7490"
	defaultAdminUsername         = "admin"
	defaultTokenTTLMinutes       = 720
	defaultContentBackend        = "sqlite"
	defaultSQLiteFile            = "content.db"
	defaultMongoURI              = "mongodb://127.0.0.1:27017"
	defaultMongoDatabase         = "spirare"
	defaultNarrationProvider     = "none"
	defaultNarrationModel        = "gemini-2.5-flash-preview-tts"
	defaultNarrationVoice        = "Kore"
	defaultNarrationTimeout      = 30
	defaultNarrationRetries      = 3
	defaultSubstepSeconds        = 120
	defaultPreviewSubstepSeconds = 10
	defaultFadeMs                = 1500
	defaultTrackVolume           = 0.5
	defaultMetronomePeriodMs     = 1000
	defaultMetronomeMinPeriodMs  = 600
	defaultMetronomeMaxPeriodMs  = 1800
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultLogRetentionDays      = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			APIBind: defaultAPIBind,
		},
		Admin: Admin{
			Username:        defaultAdminUsername,
			TokenTTLMinutes: defaultTokenTTLMinutes,
		},
		Content: Content{
			Backend:       defaultContentBackend,
			MongoURI:      defaultMongoURI,
			MongoDatabase: defaultMongoDatabase,
		},
		Narration: Narration{
			Provider:       defaultNarrationProvider,
			Model:          defaultNarrationModel,
			Voice:          defaultNarrationVoice,
			TimeoutSeconds: defaultNarrationTimeout,
			RetryAttempts:  defaultNarrationRetries,
		},
		Playback: Playback{
			SubstepSeconds:        defaultSubstepSeconds,
			PreviewSubstepSeconds: defaultPreviewSubstepSeconds,
			FadeInMs:              defaultFadeMs,
			FadeOutMs:             defaultFadeMs,
			DefaultVolume:         defaultTrackVolume,
		},
		Metronome: Metronome{
			DefaultPeriodMs: defaultMetronomePeriodMs,
			MinPeriodMs:     defaultMetronomeMinPeriodMs,
			MaxPeriodMs:     defaultMetronomeMaxPeriodMs,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
