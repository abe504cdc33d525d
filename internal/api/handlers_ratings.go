// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/avelasq/mesafinder/internal/database"
	"github.com/avelasq/mesafinder/internal/logging"
	"github.com/avelasq/mesafinder/internal/models"
)

type rateRequest struct {
	PlaceID int64 `json:"place_id" validate:"required,gt=0"`
	ListID  int64 `json:"list_id" validate:"required,gt=0"`
	Stars   int   `json:"stars" validate:"required,min=1,max=5"`
}

type feedbackRequest struct {
	RecommendationID string `json:"recommendation_id" validate:"required,uuid4"`
	Rating           int    `json:"rating" validate:"required,min=1,max=5"`
}

// RatePlace handles POST /api/v1/rate: stores a rating and, when the
// place was previously recommended for that list, closes the loop by
// attaching the rating to the recommendation as observed feedback.
func (h *Handler) RatePlace(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req rateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "Invalid request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	ctx := r.Context()
	list, err := h.db.ListByID(ctx, req.ListID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if list.Deleted() {
		respondError(w, http.StatusConflict, models.ErrCodeConflict,
			"Cannot rate against a deleted list", nil)
		return
	}
	if _, err := h.db.PlaceByID(ctx, req.PlaceID); err != nil {
		respondDomainError(w, err)
		return
	}

	rating := models.Rating{
		PlaceID: req.PlaceID,
		ListID:  req.ListID,
		Stars:   req.Stars,
		Source:  models.RatingSourceUser,
	}
	if err := h.db.AddRating(ctx, rating); err != nil {
		respondDomainError(w, err)
		return
	}

	data := map[string]interface{}{
		"place_id":          req.PlaceID,
		"list_id":           req.ListID,
		"stars":             req.Stars,
		"feedback_recorded": false,
	}

	// Best effort: a rating for a never-recommended place is still a
	// rating; only a duplicate outcome on the same recommendation is
	// worth surfacing in logs.
	rec, err := h.db.LatestRecommendationForPlace(ctx, req.ListID, req.PlaceID)
	switch {
	case err == nil:
		outcomeErr := h.feedback.RecordOutcome(ctx, models.FeedbackRecord{
			RecommendationID: rec.ID,
			ObservedRating:   req.Stars,
		})
		if outcomeErr == nil {
			data["feedback_recorded"] = true
			data["recommendation_id"] = rec.ID
		} else if errors.Is(outcomeErr, database.ErrDuplicateFeedback) {
			logging.Debug().Str("recommendation_id", rec.ID).Msg("feedback already attached")
		} else {
			logging.Warn().Err(outcomeErr).Str("recommendation_id", rec.ID).Msg("record outcome failed")
		}
	case errors.Is(err, database.ErrNotFound):
		// No recommendation to close the loop on.
	default:
		logging.Warn().Err(err).Msg("recommendation lookup failed")
	}

	respondSuccess(w, http.StatusCreated, data, start)
}

// RecordFeedback handles POST /api/v1/recommend/feedback: attaches an
// observed rating directly to a recommendation by id.
func (h *Handler) RecordFeedback(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req feedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "Invalid request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	err := h.feedback.RecordOutcome(r.Context(), models.FeedbackRecord{
		RecommendationID: req.RecommendationID,
		ObservedRating:   req.Rating,
	})
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, models.ErrCodeUnknownRecommendation,
			"Recommendation not found", nil)
		return
	}
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, map[string]interface{}{
		"recommendation_id": req.RecommendationID,
		"observed_rating":   req.Rating,
	}, start)
}
