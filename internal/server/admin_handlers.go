package server

import (
	"net/http"

	"spirare/internal/api"
	"spirare/internal/content"
	"spirare/internal/services"
)

func (s *Server) handleListThemes(w http.ResponseWriter, r *http.Request) {
	themes, err := s.store.ListThemes(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.ThemeListResponse{Themes: api.FromThemes(themes)})
}

func (s *Server) handleCreateTheme(w http.ResponseWriter, r *http.Request) {
	var theme content.Theme
	if err := decodeJSON(w, r, &theme); err != nil {
		s.writeError(w, r, err)
		return
	}
	// Identity and timestamps belong to the store.
	theme.ID = ""
	created, err := s.store.CreateTheme(r.Context(), theme)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, api.ThemeResponse{Theme: created})
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := s.store.GetThemeByCategory(r.Context(), r.PathValue("category"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.ThemeResponse{Theme: theme})
}

func (s *Server) handleUpdateTheme(w http.ResponseWriter, r *http.Request) {
	var theme content.Theme
	if err := decodeJSON(w, r, &theme); err != nil {
		s.writeError(w, r, err)
		return
	}
	updated, err := s.store.UpdateTheme(r.Context(), r.PathValue("category"), theme)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.ThemeResponse{Theme: updated})
}

func (s *Server) handleDeleteTheme(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTheme(r.Context(), r.PathValue("category")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := s.store.ListSongs(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if songs == nil {
		songs = []content.Song{}
	}
	s.writeJSON(w, http.StatusOK, api.SongListResponse{Songs: songs})
}

func (s *Server) handleCreateSong(w http.ResponseWriter, r *http.Request) {
	var song content.Song
	if err := decodeJSON(w, r, &song); err != nil {
		s.writeError(w, r, err)
		return
	}
	song.ID = ""
	created, err := s.store.CreateSong(r.Context(), song)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, api.SongResponse{Song: created})
}

func (s *Server) handleGetSong(w http.ResponseWriter, r *http.Request) {
	song, err := s.store.GetSong(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.SongResponse{Song: song})
}

func (s *Server) handleUpdateSong(w http.ResponseWriter, r *http.Request) {
	var song content.Song
	if err := decodeJSON(w, r, &song); err != nil {
		s.writeError(w, r, err)
		return
	}
	updated, err := s.store.UpdateSong(r.Context(), r.PathValue("id"), song)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.SongResponse{Song: updated})
}

func (s *Server) handleDeleteSong(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteSong(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetStructure(w http.ResponseWriter, r *http.Request) {
	structure, err := s.store.GetStructure(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromStructure(structure))
}

func (s *Server) handlePutStructure(w http.ResponseWriter, r *http.Request) {
	var structure content.Structure
	if err := decodeJSON(w, r, &structure); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.SaveStructure(r.Context(), structure); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromStructure(structure))
}

func (s *Server) handleListPools(w http.ResponseWriter, r *http.Request) {
	pools, err := s.store.ListPools(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if pools == nil {
		pools = []content.BasePool{}
	}
	s.writeJSON(w, http.StatusOK, api.PoolListResponse{Pools: pools})
}

func (s *Server) handleGetPool(w http.ResponseWriter, r *http.Request) {
	pool, err := poolFromPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	phrases, err := s.store.BasePool(r.Context(), pool.Stage, pool.Practice)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	pool.Phrases = phrases
	if pool.Phrases == nil {
		pool.Phrases = []string{}
	}
	s.writeJSON(w, http.StatusOK, api.PoolResponse{Pool: pool})
}

func (s *Server) handlePutPool(w http.ResponseWriter, r *http.Request) {
	pool, err := poolFromPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req api.PoolRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	pool.Phrases = req.Phrases
	pool.Normalize()
	if err := s.store.SavePool(r.Context(), pool); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.PoolResponse{Pool: pool})
}

// poolFromPath resolves the {stage}/{practice} slot and rejects practices
// outside the stage vocabulary.
func poolFromPath(r *http.Request) (content.BasePool, error) {
	stage, err := content.ParseStage(r.PathValue("stage"))
	if err != nil {
		return content.BasePool{}, err
	}
	practice := r.PathValue("practice")
	if !stage.Allows(practice) {
		return content.BasePool{}, services.Wrap(services.ErrValidation, "server", "pool slot",
			"practice "+practice+" is not part of stage "+string(stage), nil)
	}
	return content.BasePool{Stage: stage, Practice: practice}, nil
}
