// Package server provides the HTTP handlers that serve master data and access
// lookups through the cache, invalidate it on writes, and administer it.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	cache "github.com/infodht/nightapi"
	"github.com/infodht/nightapi/internal/master"
	"github.com/infodht/nightapi/keys"
)

// Config contains server configuration values.
type Config struct {
	Port       string
	AdminToken string
}

// Deps are the collaborators a Server is built from.
type Deps struct {
	Cache    *cache.Store
	Repo     *master.Repository
	Logger   *zap.Logger
	Gatherer prometheus.Gatherer
}

// Server contains the configured router, cache, repository and config.
type Server struct {
	cfg    Config
	router *chi.Mux
	cache  *cache.Store
	repo   *master.Repository
	log    *zap.Logger
}

// New constructs a Server with middleware and routes configured.
func New(cfg Config, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		cfg:    cfg,
		router: chi.NewRouter(),
		cache:  deps.Cache,
		repo:   deps.Repo,
		log:    deps.Logger,
	}
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(30 * time.Second))

	s.router.Get("/health", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))

	s.router.Route("/master/{subject}", func(r chi.Router) {
		r.Get("/", s.handleGetMaster)
		r.Post("/", s.handleAddMaster)
	})

	s.router.Route("/menus", func(r chi.Router) {
		r.Get("/", s.handleGetMenus)
		r.Post("/", s.handleAddMenu)
	})

	s.router.Route("/access", func(r chi.Router) {
		r.Get("/permissions/{roleID}", s.handleGetPermissions)
		r.Put("/permissions/{roleID}", s.handleSetPermission)
		r.Get("/sidebar/{roleID}", s.handleGetSidebar)
	})

	s.router.Route("/admin/cache", func(r chi.Router) {
		r.Use(s.auth)
		r.Get("/", s.handleCacheStats)
		r.Delete("/", s.handleCacheDelete)
		r.Post("/flush", s.handleCacheFlush)
	})

	return s
}

// Router exposes the root HTTP handler for the server.
func (s *Server) Router() http.Handler { return s.router }

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.AdminToken == "" {
			next.ServeHTTP(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+s.cfg.AdminToken {
			writeJSON(w, http.StatusUnauthorized, envelope(http.StatusUnauthorized, nil, "unauthorized"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "cache_entries": s.cache.Size()})
}

// Response is the envelope every JSON endpoint answers with.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

func envelope(status int, data any, msg string) Response {
	if data == nil {
		data = struct{}{}
	}
	return Response{StatusCode: status, Data: data, Message: msg, Success: status < 400}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps repository errors to statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, master.ErrUnknownSubject):
		status = http.StatusNotFound
	case errors.Is(err, master.ErrDuplicate):
		status = http.StatusConflict
	case errors.Is(err, master.ErrEmptyName):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, envelope(status, nil, err.Error()))
}

// invalidate applies an invalidation group after a committed write. A cache
// failure is logged by the cache and does not fail the request.
func (s *Server) invalidate(regions []keys.Region) {
	if !s.cache.Invalidate(regions...) {
		s.log.Warn("cache invalidation incomplete", zap.Stringers("regions", regions))
	}
}
