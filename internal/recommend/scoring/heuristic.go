// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

// Package scoring implements the two score producers behind the session
// engine: a bucket-average heuristic and a trained linear model, plus
// the resolver that picks between them per call.
package scoring

import (
	"context"
	"fmt"

	"github.com/avelasq/mesafinder/internal/models"
	"github.com/avelasq/mesafinder/internal/recommend"
)

// HistorySource provides rating aggregates for the heuristic.
type HistorySource interface {
	BucketAverage(ctx context.Context, cuisine string, priceTier int) (float64, int, error)
}

// Heuristic scores a candidate from the average rating of its
// (cuisine, price tier) bucket, nudged by context fit. An empty bucket
// means no relevant history: the score is the neutral midpoint and the
// recommendation is tagged cold start.
type Heuristic struct {
	history HistorySource
	neutral float64
}

// NewHeuristic creates the baseline scorer. neutral is the prediction
// used when a bucket has no history (typically 3.0).
func NewHeuristic(history HistorySource, neutral float64) *Heuristic {
	if neutral <= 0 {
		neutral = 3.0
	}
	return &Heuristic{history: history, neutral: neutral}
}

// Score implements recommend.Scorer.
func (h *Heuristic) Score(ctx context.Context, c recommend.Candidate, sessionContext string) (float64, models.ScoreReason, error) {
	avg, count, err := h.history.BucketAverage(ctx, c.Place.Cuisine, c.Place.PriceTier)
	if err != nil {
		return 0, "", fmt.Errorf("bucket average: %w", err)
	}
	if count == 0 {
		return h.neutral, models.ReasonColdStart, nil
	}
	return avg + contextBoost(c.Place, sessionContext), models.ReasonHeuristicBaseline, nil
}

// contextBoost nudges the bucket average when the place's attributes
// fit the stated occasion. Small on purpose: history dominates.
func contextBoost(p models.Place, sessionContext string) float64 {
	switch sessionContext {
	case recommend.ContextDateNight:
		if p.Attributes.GoodForDates {
			return 0.25
		}
	case recommend.ContextGroupHang:
		if p.Attributes.GoodForGroups {
			return 0.25
		}
	case recommend.ContextWeekendBrunch:
		if p.Attributes.HasOutdoorSeating {
			return 0.25
		}
	case recommend.ContextLateNight:
		if p.Attributes.HasCocktails {
			return 0.25
		}
	case recommend.ContextQuickLunch:
		if p.PriceTier == 1 {
			return 0.1
		}
	}
	return 0
}
