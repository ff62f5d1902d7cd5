package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// healthCheckTimeout bounds the dependency probes in the health endpoint.
const healthCheckTimeout = 3 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Import trigger
		r.Post("/import", s.handleImport)

		// Snapshot endpoints
		r.Route("/snapshots", func(r chi.Router) {
			r.Get("/", s.handleListSnapshots)
			r.Get("/{id}", s.handleGetSnapshot)
		})

		// Entity endpoints
		r.Route("/entities", func(r chi.Router) {
			r.Get("/", s.handleListEntities)
			r.Get("/search", s.handleSearchEntities)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetEntity)
				r.Get("/state", s.handleGetEntityState)
				r.Get("/history", s.handleGetEntityHistory)
			})
		})

		// Inventory endpoints
		r.Route("/areas", func(r chi.Router) {
			r.Get("/", s.handleListAreas)
			r.Get("/{id}", s.handleGetArea)
			r.Get("/{id}/devices", s.handleListAreaDevices)
		})
		r.Route("/devices", func(r chi.Router) {
			r.Get("/", s.handleListDevices)
			r.Get("/{id}", s.handleGetDevice)
		})

		// Profile endpoints
		r.Route("/persons", func(r chi.Router) {
			r.Get("/", s.handleListPersons)
			r.Get("/{id}", s.handleGetPerson)
		})
		r.Route("/zones", func(r chi.Router) {
			r.Get("/", s.handleListZones)
			r.Get("/{id}", s.handleGetZone)
		})
		r.Route("/automations", func(r chi.Router) {
			r.Get("/", s.handleListAutomations)
			r.Get("/{id}", s.handleGetAutomation)
		})
		r.Route("/media-players", func(r chi.Router) {
			r.Get("/", s.handleListMediaPlayers)
			r.Get("/{id}", s.handleGetMediaPlayer)
		})

		// Service catalogue endpoints
		r.Route("/services", func(r chi.Router) {
			r.Get("/", s.handleListServices)
			r.Get("/{name}", s.handleGetService)
		})
	})

	return r
}

// handleHealth reports server health and the state of its dependencies.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	checks := map[string]string{}
	status := http.StatusOK

	if s.db != nil {
		if err := s.db.HealthCheck(ctx); err != nil {
			checks["database"] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			checks["database"] = "ok"
		}
	}
	if s.mqtt != nil {
		if err := s.mqtt.HealthCheck(ctx); err != nil {
			checks["mqtt"] = err.Error()
		} else {
			checks["mqtt"] = "ok"
		}
	}
	if s.influx != nil {
		if err := s.influx.HealthCheck(ctx); err != nil {
			checks["influxdb"] = err.Error()
		} else {
			checks["influxdb"] = "ok"
		}
	}

	body := map[string]any{
		"status":  "ok",
		"version": s.version,
		"checks":  checks,
	}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	writeJSON(w, status, body)
}
