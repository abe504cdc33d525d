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

type createListRequest struct {
	Name string `json:"name" validate:"required,min=1,max=120"`
}

type addListPlaceRequest struct {
	PlaceID int64 `json:"place_id" validate:"required,gt=0"`
}

// CreateList handles POST /api/v1/lists.
func (h *Handler) CreateList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req createListRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "Invalid request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	list, err := h.db.CreateList(r.Context(), req.Name)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, list, start)
}

// Lists handles GET /api/v1/lists. With ?deleted=true it returns
// soft-deleted lists awaiting purge instead of active ones.
func (h *Handler) Lists(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var (
		lists []models.List
		err   error
	)
	if r.URL.Query().Get("deleted") == "true" {
		lists, err = h.db.DeletedLists(r.Context())
	} else {
		lists, err = h.db.ActiveLists(r.Context())
	}
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"lists": lists,
		"count": len(lists),
	}, start)
}

// DeleteList handles DELETE /api/v1/lists/{id}: a soft delete. Rating
// history survives until the purge sweep removes the list for good.
func (h *Handler) DeleteList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, ok := listID(w, r)
	if !ok {
		return
	}
	if err := h.db.SoftDeleteList(r.Context(), id, time.Now()); err != nil {
		respondDomainError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{"deleted": id}, start)
}

// RestoreList handles POST /api/v1/lists/{id}/restore.
func (h *Handler) RestoreList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, ok := listID(w, r)
	if !ok {
		return
	}
	if err := h.db.RestoreList(r.Context(), id); err != nil {
		respondDomainError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{"restored": id}, start)
}

// AddListPlace handles POST /api/v1/lists/{id}/places.
func (h *Handler) AddListPlace(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, ok := listID(w, r)
	if !ok {
		return
	}

	var req addListPlaceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "Invalid request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	// Both sides must exist; the membership row itself is idempotent.
	if _, err := h.db.ListByID(r.Context(), id); err != nil {
		respondDomainError(w, err)
		return
	}
	if _, err := h.db.PlaceByID(r.Context(), req.PlaceID); err != nil {
		respondDomainError(w, err)
		return
	}
	if err := h.db.AddPlaceToList(r.Context(), id, req.PlaceID); err != nil {
		respondDomainError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, map[string]interface{}{
		"list_id":  id,
		"place_id": req.PlaceID,
	}, start)
}

func listID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "Invalid list id", nil)
		return 0, false
	}
	return id, true
}
