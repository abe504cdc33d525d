// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

// Package api provides the HTTP surface: session start/answer, ratings,
// catalog ingest and search, lists, and health. Routing uses Chi.
//
// Handler methods are split across files by concern:
//   - handlers_recommend.go: session lifecycle and model info
//   - handlers_places.go: catalog ingest and search
//   - handlers_lists.go: list CRUD, soft delete, restore
//   - handlers_ratings.go: ratings and recommendation outcomes
//   - handlers_health.go: liveness and readiness
package api

import (
	"time"

	"github.com/avelasq/mesafinder/internal/config"
	"github.com/avelasq/mesafinder/internal/database"
	"github.com/avelasq/mesafinder/internal/feedback"
	"github.com/avelasq/mesafinder/internal/recommend"
	"github.com/avelasq/mesafinder/internal/recommend/scoring"
)

// Handler contains dependencies for API handlers.
type Handler struct {
	db        *database.DB
	engine    *recommend.Engine
	feedback  *feedback.Service
	model     *scoring.LinearModel
	config    *config.Config
	startTime time.Time
}

// NewHandler creates the API handler.
func NewHandler(db *database.DB, engine *recommend.Engine, fb *feedback.Service, model *scoring.LinearModel, cfg *config.Config) *Handler {
	return &Handler{
		db:        db,
		engine:    engine,
		feedback:  fb,
		model:     model,
		config:    cfg,
		startTime: time.Now(),
	}
}
