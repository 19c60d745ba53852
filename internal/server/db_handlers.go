package server

import (
	"net/http"
	"strconv"
	"strings"

	"spirare/internal/api"
	"spirare/internal/logging"
	"spirare/internal/seed"
)

// handleSeed applies a seed document. A non-empty body is parsed as the
// document (YAML, which also accepts JSON); otherwise the configured seed
// file or the embedded default is used.
func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	replace := queryBool(r, "replace")
	body, err := readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var (
		doc    seed.Document
		source string
	)
	switch {
	case len(strings.TrimSpace(string(body))) > 0:
		source = "request"
		doc, err = seed.Parse(body)
	case s.cfg.Content.SeedPath != "":
		source = s.cfg.Content.SeedPath
		doc, err = seed.Load(source)
	default:
		source = "embedded"
		doc, err = seed.Default()
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := seed.Apply(r.Context(), s.store, doc, seed.Options{
		Replace: replace,
		Logger:  logging.WithContext(r.Context(), s.logger),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.SeedResponse{Source: source, Replace: replace, Result: result})
}

// handleBackup writes a backup file under the backup directory. With
// ?download=true the YAML document is returned instead.
func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	doc, err := seed.Backup(r.Context(), s.store, s.clock.Now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if queryBool(r, "download") {
		data, err := seed.Marshal(doc)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.Header().Set("Content-Disposition", `attachment; filename="`+seed.BackupFileName(doc.CreatedAt, "")+`"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}
	path, err := seed.WriteBackup(s.cfg.Paths.BackupDir, doc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	logging.WithContext(r.Context(), s.logger).Info("backup written", logging.String("path", path))
	s.writeJSON(w, http.StatusOK, api.FromBackup(path, doc))
}

func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Drop(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	logging.WithContext(r.Context(), s.logger).Warn("all content dropped",
		logging.String(logging.FieldEventType, "content_dropped"),
		logging.String(logging.FieldImpact, "sessions fail until content is seeded again"),
	)
	s.writeJSON(w, http.StatusOK, api.DropResponse{Dropped: true})
}

func queryBool(r *http.Request, key string) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(r.URL.Query().Get(key)))
	return err == nil && value
}
