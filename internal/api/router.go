// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter configures all HTTP routes.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health endpoints get permissive rate limiting so monitors can
	// poll freely.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(httprate.LimitByIP(1000, time.Minute))
		r.Use(securityHeaders)
		r.Get("/", h.Health)
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	rpm := 300
	if h.config != nil && h.config.RateLimit.RequestsPerMinute > 0 {
		rpm = h.config.RateLimit.RequestsPerMinute
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(rpm, time.Minute))
		r.Use(securityHeaders)
		r.Use(instrument)

		r.Route("/recommend", func(r chi.Router) {
			r.Post("/start", h.StartSession)
			r.Post("/sessions/{id}/answer", h.AnswerSession)
			r.Get("/sessions/{id}", h.GetSession)
			r.Post("/feedback", h.RecordFeedback)
			r.Get("/model", h.ModelInfo)
		})

		r.Post("/rate", h.RatePlace)

		r.Route("/restaurants", func(r chi.Router) {
			r.Post("/ingest", h.IngestPlaces)
			r.Get("/search", h.SearchPlaces)
			r.Get("/{id}", h.GetPlace)
		})

		r.Route("/lists", func(r chi.Router) {
			r.Post("/", h.CreateList)
			r.Get("/", h.Lists)
			r.Delete("/{id}", h.DeleteList)
			r.Post("/{id}/restore", h.RestoreList)
			r.Post("/{id}/places", h.AddListPlace)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
