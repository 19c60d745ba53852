package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"spirare/internal/api"
	"spirare/internal/clock"
	"spirare/internal/logging"
	"spirare/internal/services"
)

// tokenStore keeps issued admin bearer tokens in memory. Tokens do not
// survive a restart.
type tokenStore struct {
	mu     sync.Mutex
	clock  clock.Clock
	ttl    time.Duration
	tokens map[string]time.Time
}

func newTokenStore(c clock.Clock, ttl time.Duration) *tokenStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &tokenStore{clock: c, ttl: ttl, tokens: make(map[string]time.Time)}
}

func (t *tokenStore) issue() (string, time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clock.Now()
	t.pruneLocked(now)
	token := uuid.NewString()
	expires := now.Add(t.ttl)
	t.tokens[token] = expires
	return token, expires
}

func (t *tokenStore) valid(token string) bool {
	if token == "" {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	expires, ok := t.tokens[token]
	if !ok {
		return false
	}
	if !t.clock.Now().Before(expires) {
		delete(t.tokens, token)
		return false
	}
	return true
}

func (t *tokenStore) revoke(token string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.tokens, token)
}

func (t *tokenStore) pruneLocked(now time.Time) {
	for token, expires := range t.tokens {
		if !now.Before(expires) {
			delete(t.tokens, token)
		}
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
}

// requireAdmin rejects requests without a live bearer token.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.tokens.valid(bearerToken(r)) {
			s.writeError(w, r, services.Wrap(services.ErrUnauthorized, "server", "auth", "valid bearer token required", nil))
			return
		}
		next(w, r)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if !s.credentialsMatch(req.Username, req.Password) {
		logging.WarnWithContext(logging.WithContext(r.Context(), s.logger), "admin login rejected", "admin_login_rejected",
			logging.String("username", req.Username),
			logging.String(logging.FieldImpact, "admin surface stays locked"),
		)
		s.writeError(w, r, services.Wrap(services.ErrUnauthorized, "server", "login", "invalid credentials", nil))
		return
	}
	token, expires := s.tokens.issue()
	s.logger.Info("admin login", logging.String("username", req.Username))
	s.writeJSON(w, http.StatusOK, api.LoginResponse{Token: token, ExpiresAt: api.FormatTime(expires)})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.tokens.revoke(bearerToken(r))
	w.WriteHeader(http.StatusNoContent)
}

// credentialsMatch compares in constant time. An unset admin password
// disables login entirely.
func (s *Server) credentialsMatch(username, password string) bool {
	want := s.cfg.Admin
	if want.Password == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(want.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(want.Password)) == 1
	return userOK && passOK
}
