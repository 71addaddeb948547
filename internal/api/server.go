// Package api provides the HTTP server for Pulse. It exposes the nudge
// engine to external collaborators: the evaluation trigger, preference
// editing, usage counters for the settings UI, and outcome reporting from
// the delivery sink.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pulsehabit/pulse/internal/app/engine"
	"github.com/pulsehabit/pulse/internal/health"
	"github.com/pulsehabit/pulse/internal/infra/sqlite"
)

// Server is the Pulse HTTP API server.
type Server struct {
	engine         *engine.Engine
	runner         *engine.Runner
	store          *sqlite.DB
	health         *health.Checker
	metricsEnabled bool
}

// NewServer creates a new API server.
func NewServer(eng *engine.Engine, runner *engine.Runner, store *sqlite.DB, checker *health.Checker) *Server {
	return &Server{engine: eng, runner: runner, store: store, health: checker}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// Health check, backed by the periodic checker's latest results.
	r.Get("/health", s.handleHealth)

	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "Pulse is running",
		})
	})

	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"version": "0.1.0",
		})
	})

	// Nudge engine API
	r.Route("/api/nudge", func(r chi.Router) {
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Post("/evaluate", s.handleEvaluate)
			r.Get("/preferences", s.handleGetPreferences)
			r.Put("/preferences", s.handlePutPreferences)
			r.Get("/usage", s.handleUsage)
			r.Get("/history", s.handleHistory)
		})
		r.Post("/deliveries", s.handleRecordDelivery)
		r.Post("/outcomes/{historyID}", s.handleRecordOutcome)
	})

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// handleHealth serves the checker's latest results: 200 while every check
// passes, 503 otherwise. A checker that has not completed a pass yet reports
// healthy with no checks listed.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	statuses := s.health.Statuses()
	if statuses == nil {
		statuses = []health.Status{}
	}

	code := http.StatusOK
	status := "ok"
	if !s.health.IsHealthy() {
		code = http.StatusServiceUnavailable
		status = "degraded"
	}
	writeJSON(w, code, map[string]any{
		"status": status,
		"checks": statuses,
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}
