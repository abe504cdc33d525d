// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

package models

import "time"

// ScoreReason is the machine-assigned provenance tag on a recommendation.
// It records which scoring path produced the predicted score and is never
// user-supplied.
type ScoreReason string

const (
	// ReasonHeuristicBaseline marks a score from the bucket-average heuristic.
	ReasonHeuristicBaseline ScoreReason = "heuristic_baseline"
	// ReasonLearnedModel marks a score from the trained regression model.
	ReasonLearnedModel ScoreReason = "learned_model"
	// ReasonColdStart marks a score produced without relevant rating
	// history. Cold-start rows are excluded from training data.
	ReasonColdStart ScoreReason = "cold_start"
)

// Recommendation is one candidate returned at session completion, with
// its predicted score. Created once when a session completes; immutable
// afterwards except for the later-attached observed rating.
type Recommendation struct {
	ID             string      `json:"id"`
	SessionID      string      `json:"session_id"`
	PlaceID        int64       `json:"place_id"`
	ListID         int64       `json:"list_id,omitempty"`
	PredictedScore float64     `json:"predicted_score"`
	Reason         ScoreReason `json:"reason"`
	DistanceM      float64     `json:"distance_m"`
	CreatedAt      time.Time   `json:"created_at"`
}

// FeedbackRecord is the observed outcome attached to a recommendation
// after the user acts. At most one per recommendation; append-only.
type FeedbackRecord struct {
	RecommendationID string    `json:"recommendation_id"`
	ObservedRating   int       `json:"observed_rating"`
	ObservedAt       time.Time `json:"observed_at"`
}

// TrainingExample is one (features, label) row for the learned scorer:
// a feedback record joined to its recommended place and session context.
type TrainingExample struct {
	PriceTier  int
	Cuisine    string
	Attributes PlaceAttributes
	Context    string
	DistanceM  float64
	Rating     float64
}
