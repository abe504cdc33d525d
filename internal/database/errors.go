// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

package database

import "errors"

// Sentinel errors returned by the persistence layer.
var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateRating indicates a rating already exists for the
	// (place, list) pair.
	ErrDuplicateRating = errors.New("rating already exists for this place in this list")

	// ErrDuplicateFeedback indicates a feedback record was already
	// attached to the recommendation.
	ErrDuplicateFeedback = errors.New("feedback already recorded for this recommendation")
)
