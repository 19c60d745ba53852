package server

import "net/http"

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /meditation/{category}", s.handleMeditation)
	mux.HandleFunc("GET /metronome-settings", s.handleGetMetronome)
	mux.HandleFunc("PUT /metronome-settings", s.handlePutMetronome)
	mux.HandleFunc("POST /api/tts", s.handleTTS)
	mux.HandleFunc("POST /api/admin/login", s.handleLogin)
	mux.HandleFunc("GET /api/status", s.handleStatus)

	admin := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, s.requireAdmin(h))
	}
	admin("POST /api/admin/logout", s.handleLogout)

	admin("GET /api/themes", s.handleListThemes)
	admin("POST /api/themes", s.handleCreateTheme)
	admin("GET /api/themes/{category}", s.handleGetTheme)
	admin("PUT /api/themes/{category}", s.handleUpdateTheme)
	admin("DELETE /api/themes/{category}", s.handleDeleteTheme)

	admin("GET /api/songs", s.handleListSongs)
	admin("POST /api/songs", s.handleCreateSong)
	admin("GET /api/songs/{id}", s.handleGetSong)
	admin("PUT /api/songs/{id}", s.handleUpdateSong)
	admin("DELETE /api/songs/{id}", s.handleDeleteSong)

	admin("GET /api/structure", s.handleGetStructure)
	admin("PUT /api/structure", s.handlePutStructure)

	admin("GET /api/pools", s.handleListPools)
	admin("GET /api/pools/{stage}/{practice}", s.handleGetPool)
	admin("PUT /api/pools/{stage}/{practice}", s.handlePutPool)

	admin("POST /api/db/seed", s.handleSeed)
	admin("POST /api/db/backup", s.handleBackup)
	admin("POST /api/db/drop", s.handleDrop)

	return mux
}
