// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avelasq/mesafinder/internal/models"
	"github.com/avelasq/mesafinder/internal/recommend"
)

// StartSession handles POST /api/v1/recommend/start.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req recommend.StartRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "Invalid request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	res, err := h.engine.Start(r.Context(), req)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondResult(w, http.StatusCreated, res, start)
}

// AnswerSession handles POST /api/v1/recommend/sessions/{id}/answer.
func (h *Handler) AnswerSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sessionID := chi.URLParam(r, "id")

	var ans recommend.Answer
	if err := decodeJSON(r, &ans); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "Invalid request body", err)
		return
	}
	if apiErr := validateRequest(&ans); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	res, err := h.engine.Answer(r.Context(), sessionID, ans)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondResult(w, http.StatusOK, res, start)
}

// GetSession handles GET /api/v1/recommend/sessions/{id}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	res, err := h.engine.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondResult(w, http.StatusOK, res, start)
}

// ModelInfo handles GET /api/v1/recommend/model: which scoring path is
// available and when the learned model last trained.
func (h *Handler) ModelInfo(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	version, trainedAt, trained := h.model.Info()
	data := map[string]interface{}{
		"trained": trained,
		"version": version,
	}
	if trained {
		data["trained_at"] = trainedAt
	}

	count, err := h.db.RealFeedbackCount(r.Context())
	if err == nil {
		data["real_feedback_count"] = count
		data["min_real_feedback"] = h.config.Scorer.MinRealFeedback
	}
	respondSuccess(w, http.StatusOK, data, start)
}

// respondResult writes an engine result, carrying the degraded flag
// into response metadata.
func respondResult(w http.ResponseWriter, status int, res recommend.Result, start time.Time) {
	respondJSON(w, status, &models.APIResponse{
		Status: "success",
		Data:   res,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Degraded:    res.Degraded,
		},
	})
}
