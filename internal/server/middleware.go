package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"spirare/internal/logging"
	"spirare/internal/services"
)

// RequestIDHeader carries the correlation id in both directions.
const RequestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wrote {
		r.status = code
		r.wrote = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.wrote {
		r.status = http.StatusOK
		r.wrote = true
	}
	return r.ResponseWriter.Write(b)
}

// withRequestContext attaches a correlation id to every request, echoes it
// in the response, recovers handler panics and logs the outcome.
func (s *Server) withRequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		ctx := services.WithRequestID(r.Context(), id)
		r = r.WithContext(ctx)
		w.Header().Set(RequestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		defer func() {
			if p := recover(); p != nil {
				logging.ErrorWithContext(logging.WithContext(ctx, s.logger), "handler panic", "handler_panic",
					logging.Any("panic", p),
					logging.String("path", r.URL.Path),
				)
				if !rec.wrote {
					s.writeError(rec, r, services.Wrap(services.ErrInternal, "server", "serve", "handler panic", nil))
				}
			}
			logging.WithContext(ctx, s.logger).Debug("request served",
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path),
				logging.Int("status", rec.status),
				logging.Duration("duration", time.Since(start)),
			)
		}()
		next.ServeHTTP(rec, r)
	})
}
