// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up the HTTP routes and middleware chain for the
// autopress server: the JSON API, the progress stream endpoints, and the
// health check.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"autopress/internal/handlers"
	"autopress/internal/middleware"
)

// New creates the configured chi router. The rate limiter guards only the
// manual trigger endpoint; everything else is unmetered.
func New(api *handlers.API, limiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.With(limiter.Middleware).Post("/pipeline/run", api.PipelineRun)

		r.Get("/runs", api.RunsList)
		r.Get("/runs/{id}", api.RunGet)

		r.Route("/content/{id}", func(r chi.Router) {
			r.Get("/", api.ContentGet)
			r.Get("/preview", api.ContentPreview)
			r.Post("/publish", api.ContentPublish)
		})

		r.Get("/scheduler", api.SchedulerGet)
		r.Put("/scheduler", api.SchedulerUpdate)
	})

	// Long-lived progress streams live outside /api.
	r.Get("/events", api.Events)
	r.Get("/ws", api.WS)

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
