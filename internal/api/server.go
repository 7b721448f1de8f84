package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/docspell/internal/config"
	"github.com/dgallion1/docspell/internal/langtool"
	"github.com/dgallion1/docspell/internal/pipeline"
)

// Server is the HTTP API server for docspell.
type Server struct {
	router  chi.Router
	lang    *langtool.Language
	results *pipeline.ResultStore
	stats   *pipeline.Stats
	metrics *Metrics
	log     *slog.Logger
	cfg     config.Config
}

// NewServer creates and configures the HTTP server. lang is the default
// language, already extended with any configured dictionary.
func NewServer(lang *langtool.Language, results *pipeline.ResultStore, stats *pipeline.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		lang:    lang,
		results: results,
		stats:   stats,
		metrics: NewMetrics(),
		log:     log,
		cfg:     cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.DocspellAPIKey, s.log))

		r.Post("/api/check", s.handleCheck)
		r.Get("/api/checks/{checkID}", s.handleGetCheck)
		r.Get("/api/stats/checks", s.handleCheckStats)
		r.Get("/api/languages", s.handleLanguages)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
