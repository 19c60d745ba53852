package contentstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"spirare/internal/config"
	"spirare/internal/content"
	"spirare/internal/contentstore/mongostore"
	"spirare/internal/logging"
	"spirare/internal/services"
)

const (
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"

	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Store is the SQLite content backend.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

var _ content.Store = (*Store)(nil)

// Open connects to the backend selected by cfg.Content.Backend.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (content.Store, error) {
	logger = logging.NewComponentLogger(logger, "contentstore")
	switch cfg.Content.Backend {
	case BackendMongo:
		store, err := mongostore.Open(ctx, cfg.Content.MongoURI, cfg.Content.MongoDatabase)
		if err != nil {
			return nil, err
		}
		logger.Info("content store opened",
			logging.String("backend", BackendMongo),
			logging.String("database", cfg.Content.MongoDatabase),
		)
		return store, nil
	case BackendSQLite, "":
		store, err := OpenSQLite(ctx, cfg.Content.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("content store opened",
			logging.String("backend", BackendSQLite),
			logging.String("path", store.Path()),
		)
		return store, nil
	default:
		return nil, services.Wrap(services.ErrValidation, "contentstore", "open",
			fmt.Sprintf("unknown backend %q", cfg.Content.Backend), nil)
	}
}

// OpenSQLite opens or creates the database at path and verifies its schema.
func OpenSQLite(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, services.Wrap(services.ErrValidation, "contentstore", "open", "sqlite path is required", nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, now: func() time.Time { return time.Now().UTC() }}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code()&0xff == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// withTx runs fn in a transaction, retrying the whole transaction on SQLITE_BUSY.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()
		if err := fn(tx); err != nil {
			return err
		}
		return tx.Commit()
	})
}

// unavailable tags a storage fault for the API layer.
func unavailable(operation string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return services.Wrap(services.ErrUnavailable, "contentstore", operation, "sqlite", err)
}

func notFound(operation, format string, args ...any) error {
	return services.Wrap(services.ErrNotFound, "contentstore", operation, fmt.Sprintf(format, args...), nil)
}

// corrupt reports a stored record that fails to decode or validate.
func corrupt(operation string, err error, format string, args ...any) error {
	return services.Wrap(services.ErrInternal, "contentstore", operation, fmt.Sprintf(format, args...), err)
}
