// Package server exposes the calendar service over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/market-sessions/internal/modules/calendar"
	"github.com/aristath/market-sessions/internal/scheduler"
	"github.com/aristath/market-sessions/internal/storage"
)

// Config holds server configuration.
type Config struct {
	Log        zerolog.Logger
	Registry   *calendar.Registry
	CacheDB    *storage.DB
	Scheduler  *scheduler.Scheduler
	HorizonJob scheduler.Job
	Port       int
	DevMode    bool
}

// Server is the HTTP server.
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	registry       *calendar.Registry
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server.
func New(cfg Config) *Server {
	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		registry:       cfg.Registry,
		systemHandlers: NewSystemHandlers(cfg.Log, cfg.Registry, cfg.CacheDB, cfg.Scheduler, cfg.HorizonJob),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// setupMiddleware configures middleware.
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		s.setupCalendarRoutes(r)
		s.setupSystemRoutes(r)
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Router returns the configured handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// handleHealth handles liveness checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "market-sessions",
	})
}

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	writeJSONResponse(w, status, data, s.log)
}

func writeJSONResponse(w http.ResponseWriter, status int, data interface{}, log zerolog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError maps service errors to HTTP responses. A NotSessionError is an
// ordinary not-found outcome; an OutOfRangeError points the caller at the
// built range; everything else is a 500 with the detail kept server-side.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var nse *calendar.NotSessionError
	if errors.As(err, &nse) {
		s.writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"error":         "not_a_session",
			"message":       nse.Error(),
			"first_session": nse.First.String(),
			"last_session":  nse.Last.String(),
		})
		return
	}
	var oor *calendar.OutOfRangeError
	if errors.As(err, &oor) {
		s.writeJSON(w, http.StatusRequestedRangeNotSatisfiable, map[string]interface{}{
			"error":       "out_of_range",
			"message":     oor.Error(),
			"range_start": oor.Start.String(),
			"range_end":   oor.End.String(),
		})
		return
	}
	s.log.Error().Err(err).Msg("Request failed")
	s.writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
		"error": "internal",
	})
}

// writeBadRequest reports a malformed parameter.
func (s *Server) writeBadRequest(w http.ResponseWriter, msg string) {
	s.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":   "bad_request",
		"message": msg,
	})
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
