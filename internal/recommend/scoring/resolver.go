// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

package scoring

import (
	"context"
	"sync"
	"time"

	"github.com/avelasq/mesafinder/internal/models"
	"github.com/avelasq/mesafinder/internal/recommend"
)

// FeedbackGate reports how much qualifying real feedback exists. The
// learned model only serves once this clears the configured threshold.
type FeedbackGate interface {
	RealFeedbackCount(ctx context.Context) (int, error)
}

// Resolver picks the scoring path per call: the trained model when it
// exists and enough real feedback has accumulated, the heuristic
// otherwise. The feedback count is cached briefly so scoring a batch of
// candidates costs one gate query, not one per candidate.
type Resolver struct {
	heuristic *Heuristic
	model     *LinearModel
	gate      FeedbackGate
	minReal   int

	mu          sync.Mutex
	cachedCount int
	cachedAt    time.Time
	cacheTTL    time.Duration

	now func() time.Time
}

// NewResolver wires the two scorers behind one recommend.Scorer.
func NewResolver(heuristic *Heuristic, model *LinearModel, gate FeedbackGate, minReal int) *Resolver {
	return &Resolver{
		heuristic: heuristic,
		model:     model,
		gate:      gate,
		minReal:   minReal,
		cacheTTL:  time.Minute,
		now:       time.Now,
	}
}

// Score implements recommend.Scorer.
func (r *Resolver) Score(ctx context.Context, c recommend.Candidate, sessionContext string) (float64, models.ScoreReason, error) {
	if r.useLearned(ctx) {
		return r.model.Predict(c, sessionContext), models.ReasonLearnedModel, nil
	}
	return r.heuristic.Score(ctx, c, sessionContext)
}

func (r *Resolver) useLearned(ctx context.Context) bool {
	if r.model == nil || !r.model.IsTrained() {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if now.Sub(r.cachedAt) > r.cacheTTL {
		count, err := r.gate.RealFeedbackCount(ctx)
		if err != nil {
			// Gate unreadable: fall back to the heuristic rather than
			// serve model scores on stale evidence.
			return false
		}
		r.cachedCount = count
		r.cachedAt = now
	}
	return r.cachedCount >= r.minReal
}
