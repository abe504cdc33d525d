// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avelasq/mesafinder/internal/models"
)

// ingestRequest is the POST /restaurants/ingest payload.
type ingestRequest struct {
	Places []models.PlaceIngest `json:"places" validate:"required,min=1,max=500,dive"`
}

// IngestPlaces handles POST /api/v1/restaurants/ingest. Rows whose
// google_place_id already exists are skipped, so re-running an ingest
// is safe.
func (h *Handler) IngestPlaces(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req ingestRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "Invalid request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	inserted, err := h.db.IngestPlaces(r.Context(), req.Places)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, map[string]interface{}{
		"received": len(req.Places),
		"inserted": inserted,
		"skipped":  len(req.Places) - inserted,
	}, start)
}

// SearchPlaces handles GET /api/v1/restaurants/search?q=...&limit=...
func (h *Handler) SearchPlaces(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	q := r.URL.Query().Get("q")
	if q == "" {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "Query parameter q is required", nil)
		return
	}
	limit := getIntParam(r, "limit", 10)
	if limit > 50 {
		limit = 50
	}

	places, err := h.db.SearchPlaces(r.Context(), q, limit)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"query":   q,
		"results": places,
		"count":   len(places),
	}, start)
}

// GetPlace handles GET /api/v1/restaurants/{id}.
func (h *Handler) GetPlace(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "Invalid place id", nil)
		return
	}

	place, err := h.db.PlaceByID(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, place, start)
}
