// Package server exposes identity resolution over HTTP: a chi router with
// bearer-token auth on every route except /healthz.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"identityresolver/internal/auth"
	"identityresolver/internal/logging"
	"identityresolver/internal/registry"
	"identityresolver/internal/resolver"
	"identityresolver/internal/stats"
	"identityresolver/internal/store"
)

// Server is the HTTP surface for identity resolution.
type Server struct {
	router *chi.Mux
	store  *store.Store
	reg    *registry.Registry
	cache  *stats.Cache
	tokens *auth.TokenService
	logger *slog.Logger
}

// New builds a Server and wires its routes. tokens may be nil only in tests
// that never exercise protected routes; production callers must supply one.
func New(st *store.Store, reg *registry.Registry, cache *stats.Cache, tokens *auth.TokenService, logger *slog.Logger) *Server {
	s := &Server{
		store:  st,
		reg:    reg,
		cache:  cache,
		tokens: tokens,
		logger: logging.Default(logger).With("component", "server"),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealthz)

	r.Group(func(r chi.Router) {
		if s.tokens != nil {
			r.Use(auth.RequireBearer(s.tokens))
		}
		r.Post("/v1/resolve", s.handleResolve)
		r.Post("/v1/learn", s.handleLearn)
		r.Post("/v1/stats/refresh", s.handleStatsRefresh)
		r.Get("/v1/registry/counts", s.handleRegistryCounts)
	})

	s.router = r
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("encode response failed", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// resolveRequest is the POST /v1/resolve request body.
type resolveRequest struct {
	PhoneNumber  string `json:"phoneNumber"`
	TotalNumbers int    `json:"totalNumbers"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PhoneNumber == "" {
		s.respondError(w, http.StatusBadRequest, "phoneNumber is required")
		return
	}

	entries, err := s.store.EntriesForNumber(r.Context(), req.PhoneNumber)
	if err != nil {
		s.logger.Error("load entries failed", "phone", req.PhoneNumber, "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to load entries")
		return
	}

	profile := resolver.Resolve(entries, req.TotalNumbers, s.cache.Snapshot(), s.reg, func() int64 { return time.Now().UnixMilli() })
	s.respondJSON(w, http.StatusOK, profile)
}

// learnRequest is the POST /v1/learn request body.
type learnRequest struct {
	Token    string            `json:"token"`
	Category registry.Category `json:"category"`
}

func (s *Server) handleLearn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !s.reg.LearnToken(req.Token, req.Category) {
		s.respondError(w, http.StatusUnprocessableEntity, "token rejected: too short or non-learnable category")
		return
	}

	row := store.NameReferenceRow{
		Token:      req.Token,
		Category:   req.Category,
		Source:     store.SourceLearned,
		Confidence: 1.0,
		Frequency:  1,
	}
	if err := s.store.SaveNameReference(r.Context(), row); err != nil {
		s.logger.Error("persist learned token failed", "token", req.Token, "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to persist learned token")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]bool{"accepted": true})
}

func (s *Server) handleStatsRefresh(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.AllEntriesWithPhone(r.Context())
	if err != nil {
		s.logger.Error("stats refresh: load corpus failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to load corpus")
		return
	}
	s.cache.Refresh(entries)
	s.respondJSON(w, http.StatusOK, map[string]int{"tokens": len(s.cache.Snapshot())})
}

func (s *Server) handleRegistryCounts(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.reg.GetCounts())
}
