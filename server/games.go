package server

import (
	"net/http"
	"strconv"
	"strings"

	"mr-games/db"
	"mr-games/games"
)

const (
	defaultYear     = 2025
	defaultCoverExt = "jpg"
)

// createRequest mirrors games.NewGame with optional fields left as pointers so
// absent values can take their defaults.
type createRequest struct {
	Title       string   `json:"title"`
	Genre       string   `json:"genre"`
	Size        string   `json:"size"`
	Rating      *float64 `json:"rating"`
	Year        *int     `json:"year"`
	Tag         string   `json:"tag"`
	IsNew       *bool    `json:"is_new"`
	Description string   `json:"description"`
	CoverBase64 string   `json:"cover_base64"`
	CoverExt    string   `json:"cover_ext"`
}

func (req createRequest) normalize() games.NewGame {
	out := games.NewGame{
		Title:       strings.TrimSpace(req.Title),
		Genre:       games.Genre(strings.TrimSpace(req.Genre)),
		Size:        strings.TrimSpace(req.Size),
		Year:        defaultYear,
		Tag:         games.Tag(strings.TrimSpace(req.Tag)),
		IsNew:       true,
		Description: strings.TrimSpace(req.Description),
		CoverBase64: req.CoverBase64,
		CoverExt:    req.CoverExt,
	}
	if req.Rating != nil {
		out.Rating = *req.Rating
	}
	if req.Year != nil {
		out.Year = *req.Year
	}
	if req.IsNew != nil {
		out.IsNew = *req.IsNew
	}
	if out.CoverExt == "" {
		out.CoverExt = defaultCoverExt
	}
	return out
}

// handleListGames returns the whole catalog, newest first.
func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.List()
	if err != nil {
		s.log.Errorw("Failed to list games", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch games")
		return
	}

	list := make([]games.Game, 0, len(records))
	for _, rec := range records {
		list = append(list, rec.ToAPI())
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"games": list})
}

// handleCreateGame validates a new record, stores its cover and inserts it.
func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req createRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	newGame := req.normalize()
	if newGame.Title == "" || newGame.Genre == "" {
		respondError(w, http.StatusBadRequest, "title and genre are required")
		return
	}

	coverURL := ""
	if newGame.CoverBase64 != "" {
		name, err := s.saveCover(newGame.CoverBase64, newGame.CoverExt)
		if err != nil {
			s.log.Warnw("Rejected cover upload", "title", newGame.Title, "error", err)
			respondError(w, http.StatusBadRequest, "Invalid cover image")
			return
		}
		coverURL = s.publicURL + "/covers/" + name
	}

	rec := db.FromNewGame(newGame, coverURL)
	if err := s.store.Create(&rec); err != nil {
		s.log.Errorw("Failed to create game", "title", newGame.Title, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to create game")
		return
	}

	s.log.Infow("Game created", "id", rec.ID, "title", rec.Title, "genre", rec.Genre)
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "id": rec.ID})
}

// handleDeleteGame removes the record named by the id query parameter.
func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("id")
	if raw == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		respondError(w, http.StatusBadRequest, "id must be a positive integer")
		return
	}

	found, err := s.store.Delete(uint(id))
	if err != nil {
		s.log.Errorw("Failed to delete game", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to delete game")
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "Game not found")
		return
	}

	s.log.Infow("Game deleted", "id", id)
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
