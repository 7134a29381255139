// Package server wires the HTTP surface: the contact pipeline, the
// read-only rate-limit status endpoint and the site catalog.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/muneebexotic/portfolio-api/internal/config"
	"github.com/muneebexotic/portfolio-api/internal/content"
	"github.com/muneebexotic/portfolio-api/internal/form"
	"github.com/muneebexotic/portfolio-api/internal/ratelimit"
)

type Server struct {
	cfg      *config.Config
	log      *slog.Logger
	pipeline *form.Pipeline
	limiter  ratelimit.Store
	catalog  *content.Catalog
}

func New(cfg *config.Config, log *slog.Logger, pipeline *form.Pipeline, limiter ratelimit.Store, catalog *content.Catalog) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		cfg:      cfg,
		log:      log,
		pipeline: pipeline,
		limiter:  limiter,
		catalog:  catalog,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger(s.log))
	r.Use(SecurityHeaders)
	r.Use(CORS(s.cfg.Server.AllowedOrigins))

	r.Get("/health", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/contact", s.handleContact)
		r.Get("/contact/limit", s.handleContactLimit)
		r.Get("/projects", s.handleProjects)
		r.Get("/posts", s.handlePosts)
		r.Get("/skills", s.handleSkills)
		r.Get("/experience", s.handleExperience)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
