// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

package models

import "time"

// RatingSource distinguishes real user ratings from synthetic ones used
// to bootstrap the catalog. Only "user" rows count toward learned-model
// eligibility and training.
type RatingSource string

const (
	// RatingSourceUser is a rating submitted by a real user.
	RatingSourceUser RatingSource = "user"
	// RatingSourceSynthetic is a generated bootstrap rating.
	RatingSourceSynthetic RatingSource = "synthetic"
)

// Rating is one observed 1-5 star rating of a place within a list.
// Ratings are unique per (place, list) and append-only.
type Rating struct {
	PlaceID   int64        `json:"place_id"`
	ListID    int64        `json:"list_id"`
	Stars     int          `json:"rating"`
	Source    RatingSource `json:"source"`
	CreatedAt time.Time    `json:"created_at"`
}
