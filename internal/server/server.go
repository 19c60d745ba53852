package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"spirare/internal/clock"
	"spirare/internal/composer"
	"spirare/internal/config"
	"spirare/internal/content"
	"spirare/internal/logging"
	"spirare/internal/narration"
	"spirare/internal/services"
)

// ErrAlreadyRunning is returned by Start when another instance holds the lock.
var ErrAlreadyRunning = errors.New("another spirare server instance is already running")

// Server serves the HTTP API.
type Server struct {
	cfg      *config.Config
	store    content.Store
	composer *composer.Composer
	synth    narration.Synthesizer
	tokens   *tokenStore
	clock    clock.Clock
	logger   *slog.Logger
	version  string

	startedAt time.Time
	handler   http.Handler

	mu       sync.Mutex
	lock     *flock.Flock
	listener net.Listener
	server   *http.Server
}

// Option customizes a Server.
type Option func(*Server)

// WithVersion sets the version reported by /api/status.
func WithVersion(version string) Option {
	return func(s *Server) {
		if v := strings.TrimSpace(version); v != "" {
			s.version = v
		}
	}
}

// WithClock replaces the clock used for token expiry and uptime.
func WithClock(c clock.Clock) Option {
	return func(s *Server) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithComposer replaces the session composer built from the store.
func WithComposer(c *composer.Composer) Option {
	return func(s *Server) {
		if c != nil {
			s.composer = c
		}
	}
}

// New builds a server over store. A nil synthesizer disables /api/tts.
func New(cfg *config.Config, store content.Store, synth narration.Synthesizer, logger *slog.Logger, opts ...Option) (*Server, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("server requires config and content store")
	}
	if synth == nil {
		synth = narration.Disabled{}
	}
	logger = logging.NewComponentLogger(logger, "api-server")
	s := &Server{
		cfg:     cfg,
		store:   store,
		synth:   synth,
		clock:   clock.System{},
		logger:  logger,
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.composer == nil {
		s.composer = composer.New(store, store, store, composer.WithLogger(logger))
	}
	s.tokens = newTokenStore(s.clock, cfg.TokenTTL())
	s.startedAt = s.clock.Now()
	s.handler = s.withRequestContext(s.routes())
	return s, nil
}

// Handler returns the routed handler with request middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start acquires the instance lock, binds the configured address and serves
// until ctx is cancelled or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server != nil {
		return errors.New("server already started")
	}

	if err := os.MkdirAll(filepath.Dir(s.cfg.LockPath()), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(s.cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return services.Wrap(services.ErrUnavailable, "server", "lock", s.cfg.LockPath(), err)
	}
	if !ok {
		return ErrAlreadyRunning
	}

	listener, err := net.Listen("tcp", s.cfg.Paths.APIBind)
	if err != nil {
		_ = lock.Unlock()
		return fmt.Errorf("api listen: %w", err)
	}
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	s.lock = lock
	s.listener = listener
	s.server = srv

	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorWithContext(s.logger, "api server error", "api_server_failed", logging.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening",
		logging.String("address", listener.Addr().String()),
		logging.String("lock", s.cfg.LockPath()),
	)
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the listener down and releases the instance lock. It is safe
// to call more than once.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
	s.server = nil
	s.listener = nil
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil {
			logging.WarnWithContext(s.logger, "failed to release server lock", "lock_release_failed",
				logging.Error(err),
				logging.String("lock", s.cfg.LockPath()),
			)
		}
		s.lock = nil
	}
	s.logger.Info("api server stopped")
}
