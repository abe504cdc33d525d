// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

package api

import (
	"net/http"
	"time"

	"github.com/avelasq/mesafinder/internal/models"
)

// HealthLive handles GET /api/v1/health/live. Always 200 while the
// process runs; no dependency checks.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]interface{}{"status": "alive"}, time.Now())
}

// HealthReady handles GET /api/v1/health/ready: readiness gates on the
// database answering.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if err := h.db.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeInternal, "Database not ready", err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{"status": "ready"}, start)
}

// Health handles GET /api/v1/health with component detail.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	dbStatus := "ok"
	status := http.StatusOK
	if err := h.db.Ping(r.Context()); err != nil {
		dbStatus = "unavailable"
		status = http.StatusServiceUnavailable
	}

	version, trainedAt, trained := h.model.Info()
	modelInfo := map[string]interface{}{"trained": trained, "version": version}
	if trained {
		modelInfo["trained_at"] = trainedAt
	}

	respondSuccess(w, status, map[string]interface{}{
		"status":         dbStatus,
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
		"database":       dbStatus,
		"model":          modelInfo,
	}, start)
}
