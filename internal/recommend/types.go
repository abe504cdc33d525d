// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

package recommend

import (
	"time"

	"github.com/avelasq/mesafinder/internal/geo"
	"github.com/avelasq/mesafinder/internal/models"
)

// SessionStatus is the lifecycle state of a narrowing session.
type SessionStatus string

const (
	// StatusActive means the session is accepting answers.
	StatusActive SessionStatus = "ACTIVE"
	// StatusComplete means recommendations were produced. Terminal.
	StatusComplete SessionStatus = "COMPLETE"
	// StatusAborted means the session ended without recommendations,
	// either by empty filtering or idle expiry. Terminal.
	StatusAborted SessionStatus = "ABORTED"
)

// Candidate is one catalog place still in play, with its distance from
// the session origin. Distance is fixed at session start.
type Candidate struct {
	Place     models.Place `json:"place"`
	DistanceM float64      `json:"distance_m"`
}

// PosedProbe is the question currently awaiting an answer. Only an
// answer naming this probe's ID is accepted; anything else is stale.
type PosedProbe struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// Answer is one user reply to a posed probe.
type Answer struct {
	ProbeID string `json:"question_id" validate:"required"`
	Value   string `json:"value" validate:"required"`
}

// Session is one interactive narrowing conversation. All mutation goes
// through the engine, which serializes access per session.
type Session struct {
	ID      string
	ListID  int64
	Context string
	Origin  geo.Point
	Status  SessionStatus

	Candidates []Candidate
	Posed      *PosedProbe
	Asked      map[string]bool
	Turns      int

	CreatedAt    time.Time
	LastActivity time.Time

	// Recommendations is populated on completion, ranked best-first.
	Recommendations []models.Recommendation
}

// StartRequest opens a session.
type StartRequest struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
	Context   string  `json:"context,omitempty"`
	ListID    int64   `json:"list_id,omitempty"`
}

// Result is the engine's reply to a start or answer call: either the
// next question (session still active) or the final recommendations.
type Result struct {
	SessionID       string                 `json:"session_id"`
	Status          SessionStatus          `json:"status"`
	CandidateCount  int                    `json:"candidate_count"`
	Turn            int                    `json:"turn"`
	Question        *PosedProbe            `json:"question,omitempty"`
	Recommendations []RankedRecommendation `json:"recommendations,omitempty"`
	Degraded        bool                   `json:"-"`
}

// RankedRecommendation pairs a persisted recommendation row with its
// place for display.
type RankedRecommendation struct {
	Recommendation models.Recommendation `json:"recommendation"`
	Place          models.Place          `json:"place"`
}
