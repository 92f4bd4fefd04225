package server

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// coverExt lowercases ext and falls back to jpg for anything that is not a
// short alphanumeric extension.
func coverExt(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if ext == "" || len(ext) > 5 {
		return defaultCoverExt
	}
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return defaultCoverExt
		}
	}
	return ext
}

// saveCover decodes a base64 image into the covers directory and returns the
// stored file name.
func (s *Server) saveCover(encoded, ext string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to decode cover: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("cover is empty")
	}

	name := uuid.NewString() + "." + coverExt(ext)
	if err := os.WriteFile(filepath.Join(s.coversDir, name), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write cover %s: %w", name, err)
	}
	s.log.Debugw("Cover stored", "file", name, "bytes", len(data))
	return name, nil
}

// handleCover serves a stored cover image.
func (s *Server) handleCover(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	if name == "" || strings.Contains(name, "/") || strings.Contains(name, "..") {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(s.coversDir, name))
}
