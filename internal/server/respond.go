package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"spirare/internal/api"
	"spirare/internal/logging"
	"spirare/internal/services"
)

// maxBodyBytes bounds request bodies. Seed documents are the largest payload.
const maxBodyBytes = 4 << 20

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

// writeError answers with the status mapped from err's marker. Details of
// internal and unavailable failures stay in the log.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := services.HTTPStatus(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		logging.WarnWithContext(logging.WithContext(r.Context(), s.logger), "request failed", "request_failed",
			logging.Error(err),
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", status),
		)
		message = http.StatusText(status)
	}
	requestID, _ := services.RequestIDFromContext(r.Context())
	s.writeJSON(w, status, api.ErrorResponse{
		Error:     message,
		Kind:      services.Kind(err),
		RequestID: requestID,
	})
}

// decodeJSON reads a single JSON object from the body into v, rejecting
// unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return services.Wrap(services.ErrValidation, "server", "decode", "request body is required", nil)
		}
		return services.Wrap(services.ErrValidation, "server", "decode", "invalid request body", err)
	}
	return nil
}

// readBody returns the raw body, bounded by maxBodyBytes.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "server", "read body", "request body too large or unreadable", err)
	}
	return data, nil
}
