package server

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"mr-games/db"
)

// maxBodyBytes bounds a create request, base64 cover included.
const maxBodyBytes = 16 << 20

// Options configures a Server.
type Options struct {
	Store     *db.Store
	CoversDir string
	PublicURL string // Prefix of the cover URLs handed to clients
	Token     string // Bearer token required on mutations; empty disables the check
	Logger    *zap.SugaredLogger
}

// Server holds the HTTP server dependencies
type Server struct {
	store     *db.Store
	router    chi.Router
	coversDir string
	publicURL string
	token     string
	log       *zap.SugaredLogger
}

// New creates the games store HTTP server.
func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	s := &Server{
		store:     opts.Store,
		router:    chi.NewRouter(),
		coversDir: opts.CoversDir,
		publicURL: strings.TrimRight(opts.PublicURL, "/"),
		token:     opts.Token,
		log:       log,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Route("/games", func(r chi.Router) {
		r.Get("/", s.handleListGames)

		r.Group(func(r chi.Router) {
			r.Use(s.requireToken)
			r.Post("/", s.handleCreateGame)
			r.Delete("/", s.handleDeleteGame)
		})
	})

	s.router.Get("/covers/*", s.handleCover)

	// Health check
	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

// requestLogger logs one line per request through zap.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.log.Infow("Request served",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

// requireToken rejects mutations without the configured bearer token.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" {
			got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if subtle.ConstantTimeCompare([]byte(got), []byte(s.token)) != 1 {
				respondError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// --- Response helpers ---

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}
