// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

package api

import (
	"errors"
	"net/http"

	"github.com/avelasq/mesafinder/internal/database"
	"github.com/avelasq/mesafinder/internal/models"
	"github.com/avelasq/mesafinder/internal/recommend"
)

// respondDomainError maps engine and persistence sentinels to HTTP
// status codes and stable machine-readable error codes.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, recommend.ErrInvalidSession):
		respondError(w, http.StatusNotFound, models.ErrCodeInvalidSession,
			"Session not found, expired, or already finished", nil)
	case errors.Is(err, recommend.ErrStaleProbe):
		respondError(w, http.StatusConflict, models.ErrCodeStaleQuestion,
			"Answer does not match the currently posed question", nil)
	case errors.Is(err, recommend.ErrNoCandidates):
		respondError(w, http.StatusUnprocessableEntity, models.ErrCodeNoCandidates,
			"No restaurants match; the session has been aborted", nil)
	case errors.Is(err, recommend.ErrOutOfServiceArea):
		respondError(w, http.StatusUnprocessableEntity, models.ErrCodeOutOfServiceArea,
			"Location is outside the served area", nil)
	case errors.Is(err, database.ErrDuplicateFeedback):
		respondError(w, http.StatusConflict, models.ErrCodeDuplicateFeedback,
			"Feedback already recorded for this recommendation", nil)
	case errors.Is(err, database.ErrDuplicateRating):
		respondError(w, http.StatusConflict, models.ErrCodeConflict,
			"A rating already exists for this place in this list", nil)
	case errors.Is(err, database.ErrNotFound):
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound,
			"Resource not found", nil)
	default:
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal,
			"Internal server error", err)
	}
}
