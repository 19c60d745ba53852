// Package daemonrun wires the long-running spirared process: logging,
// content store, narration provider and the HTTP server.
package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"spirare/internal/config"
	"spirare/internal/content"
	"spirare/internal/contentstore"
	"spirare/internal/logging"
	"spirare/internal/narration"
	"spirare/internal/seed"
	"spirare/internal/server"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
	Version     string
	// SkipSeed leaves an empty store empty instead of applying the seed.
	SkipSeed bool
}

// Run starts the spirared runtime loop and blocks until cmdCtx is cancelled
// or the process receives SIGINT or SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("spirare-%s.log", runID))
	level := opts.LogLevel
	if strings.TrimSpace(level) == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
		Development:      opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update %s link: %v\n", logging.LogFileName, err)
	}
	logging.Prune(logger, cfg.Logging.RetentionDays, time.Now(),
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "spirare-*.log", Keep: []string{logPath}},
		logging.RetentionTarget{Dir: cfg.Paths.BackupDir, Pattern: seed.BackupFilePrefix + "*.yaml"},
	)
	logConfigSnapshot(logger, cfg)

	pidPath := filepath.Join(cfg.Paths.DataDir, "spirared.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := contentstore.Open(signalCtx, cfg, logger)
	if err != nil {
		logger.Error("open content store", logging.Error(err))
		return err
	}
	defer store.Close()

	if !opts.SkipSeed {
		if err := seedIfEmpty(signalCtx, cfg, store, logger); err != nil {
			logging.WarnWithContext(logger, "initial seed failed", "seed_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "run `spirare db seed` or check content.seed_path"),
				logging.String(logging.FieldImpact, "sessions fail until content is seeded"),
			)
		}
	}

	synth, err := narration.New(signalCtx, cfg, logger)
	if err != nil {
		logging.WarnWithContext(logger, "narration provider unavailable", "narration_init_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the [narration] section of the config"),
			logging.String(logging.FieldImpact, "sessions play without voice"),
		)
		synth = narration.Disabled{}
	}

	srv, err := server.New(cfg, store, synth, logger, server.WithVersion(opts.Version))
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	if err := srv.Start(signalCtx); err != nil {
		if errors.Is(err, server.ErrAlreadyRunning) {
			return fmt.Errorf("%w (lock %s)", err, cfg.LockPath())
		}
		return fmt.Errorf("start server: %w", err)
	}
	defer srv.Stop()

	logger.Info("spirared started",
		logging.String("version", opts.Version),
		logging.String("address", srv.Addr()),
	)
	<-signalCtx.Done()
	logger.Info("spirared shutting down")
	return nil
}

// seedIfEmpty applies the configured seed file, or the embedded default, to a
// store that holds no structure and no themes.
func seedIfEmpty(ctx context.Context, cfg *config.Config, store content.Store, logger *slog.Logger) error {
	stats, err := store.Stats(ctx)
	if err != nil {
		return err
	}
	if stats.HasStructure || stats.Themes > 0 {
		return nil
	}
	doc, source, err := LoadSeed(cfg)
	if err != nil {
		return err
	}
	result, err := seed.Apply(ctx, store, doc, seed.Options{Logger: logger})
	if err != nil {
		return err
	}
	logger.Info("empty content store seeded",
		logging.String(logging.FieldEventType, "initial_seed"),
		logging.String("source", source),
		logging.Int("themes", result.Themes),
		logging.Int("pools", result.Pools),
	)
	return nil
}

// LoadSeed returns the seed document named by content.seed_path, falling back
// to the embedded default. The second value names the source.
func LoadSeed(cfg *config.Config) (seed.Document, string, error) {
	if cfg != nil && cfg.Content.SeedPath != "" {
		doc, err := seed.Load(cfg.Content.SeedPath)
		return doc, cfg.Content.SeedPath, err
	}
	doc, err := seed.Default()
	return doc, "embedded", err
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, logging.LogFileName)
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logConfigSnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	logger.Info("configuration snapshot",
		logging.String(logging.FieldEventType, "config_snapshot"),
		logging.String("content_backend", cfg.Content.Backend),
		logging.String("narration_provider", cfg.Narration.Provider),
		logging.Bool("narration_key_present", strings.TrimSpace(cfg.Narration.APIKey) != ""),
		logging.Bool("admin_password_set", cfg.Admin.Password != ""),
		logging.String("api_bind", cfg.Paths.APIBind),
		logging.Int("substep_seconds", cfg.Playback.SubstepSeconds),
	)
}
