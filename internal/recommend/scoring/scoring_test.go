// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

package scoring

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/avelasq/mesafinder/internal/models"
	"github.com/avelasq/mesafinder/internal/recommend"
)

type mockHistory struct {
	avg   float64
	count int
	err   error
}

func (m *mockHistory) BucketAverage(context.Context, string, int) (float64, int, error) {
	return m.avg, m.count, m.err
}

func candidate(tier int, cuisine string, attrs models.PlaceAttributes, distM float64) recommend.Candidate {
	return recommend.Candidate{
		Place:     models.Place{ID: 1, PriceTier: tier, Cuisine: cuisine, Attributes: attrs},
		DistanceM: distM,
	}
}

func TestHeuristicColdStart(t *testing.T) {
	h := NewHeuristic(&mockHistory{count: 0}, 3.0)

	score, reason, err := h.Score(context.Background(),
		candidate(2, "Mexican", models.PlaceAttributes{}, 500), recommend.ContextQuickLunch)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if reason != models.ReasonColdStart {
		t.Errorf("reason = %q, want cold_start", reason)
	}
	if score != 3.0 {
		t.Errorf("score = %v, want neutral 3.0", score)
	}
}

func TestHeuristicBucketAverageWithContextBoost(t *testing.T) {
	h := NewHeuristic(&mockHistory{avg: 4.0, count: 12}, 3.0)

	tests := []struct {
		name    string
		attrs   models.PlaceAttributes
		context string
		want    float64
	}{
		{"no fit", models.PlaceAttributes{}, recommend.ContextDateNight, 4.0},
		{"date fit", models.PlaceAttributes{GoodForDates: true}, recommend.ContextDateNight, 4.25},
		{"group fit", models.PlaceAttributes{GoodForGroups: true}, recommend.ContextGroupHang, 4.25},
		{"brunch fit", models.PlaceAttributes{HasOutdoorSeating: true}, recommend.ContextWeekendBrunch, 4.25},
		{"late night fit", models.PlaceAttributes{HasCocktails: true}, recommend.ContextLateNight, 4.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, reason, err := h.Score(context.Background(),
				candidate(2, "Mexican", tt.attrs, 500), tt.context)
			if err != nil {
				t.Fatalf("Score: %v", err)
			}
			if reason != models.ReasonHeuristicBaseline {
				t.Errorf("reason = %q, want heuristic_baseline", reason)
			}
			if math.Abs(score-tt.want) > 1e-9 {
				t.Errorf("score = %v, want %v", score, tt.want)
			}
		})
	}
}

func TestHeuristicPropagatesHistoryError(t *testing.T) {
	h := NewHeuristic(&mockHistory{err: errors.New("db down")}, 3.0)

	_, _, err := h.Score(context.Background(),
		candidate(1, "Thai", models.PlaceAttributes{}, 100), recommend.ContextQuickLunch)
	if err == nil {
		t.Fatal("expected error from failing history source")
	}
}

func TestSolveSmallSystem(t *testing.T) {
	// 2x + y = 5; x + 3y = 10 -> x=1, y=3
	a := [][]float64{{2, 1}, {1, 3}}
	b := []float64{5, 10}
	w, err := solve(a, b)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if math.Abs(w[0]-1) > 1e-9 || math.Abs(w[1]-3) > 1e-9 {
		t.Errorf("solution = %v, want [1 3]", w)
	}
}

func TestSolveSingular(t *testing.T) {
	a := [][]float64{{1, 2}, {2, 4}}
	b := []float64{3, 6}
	if _, err := solve(a, b); err == nil {
		t.Fatal("expected singular system error")
	}
}

func trainingSet(n int, label func(i int) float64) []models.TrainingExample {
	cuisines := []string{"Mexican", "Italian"}
	contexts := recommend.KnownContexts()
	examples := make([]models.TrainingExample, 0, n)
	for i := 0; i < n; i++ {
		examples = append(examples, models.TrainingExample{
			PriceTier: 1 + i%3,
			Cuisine:   cuisines[i%len(cuisines)],
			Attributes: models.PlaceAttributes{
				HasOutdoorSeating: i%2 == 0,
				GoodForDates:      i%3 == 0,
				GoodForGroups:     i%5 == 0,
			},
			Context:   contexts[i%len(contexts)],
			DistanceM: float64(100 + i*37),
			Rating:    label(i),
		})
	}
	return examples
}

func TestLinearModelTrainAndPredict(t *testing.T) {
	m := NewLinearModel(1.0)
	if m.IsTrained() {
		t.Fatal("fresh model reports trained")
	}

	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	// Constant label: the fit should predict close to it everywhere.
	if err := m.Train(trainingSet(80, func(int) float64 { return 4.0 }), now); err != nil {
		t.Fatalf("Train: %v", err)
	}
	if !m.IsTrained() {
		t.Fatal("model not trained after Train")
	}

	version, trainedAt, trained := m.Info()
	if version != 1 || !trained || !trainedAt.Equal(now) {
		t.Errorf("Info = (%d, %v, %v), want (1, %v, true)", version, trainedAt, trained, now)
	}

	got := m.Predict(candidate(2, "Mexican", models.PlaceAttributes{HasOutdoorSeating: true}, 400),
		recommend.ContextDateNight)
	if math.Abs(got-4.0) > 0.3 {
		t.Errorf("prediction = %v, want ~4.0", got)
	}
}

func TestLinearModelInsufficientData(t *testing.T) {
	m := NewLinearModel(1.0)
	err := m.Train(trainingSet(5, func(int) float64 { return 3 }), time.Now())
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("err = %v, want ErrInsufficientData", err)
	}
	if m.IsTrained() {
		t.Error("failed training must not install weights")
	}
}

func TestLinearModelSnapshotRestore(t *testing.T) {
	m := NewLinearModel(1.0)
	if err := m.Train(trainingSet(80, func(int) float64 { return 4.0 }), time.Now()); err != nil {
		t.Fatalf("Train: %v", err)
	}

	snap := m.Snapshot()
	restored := NewLinearModel(1.0)
	restored.Restore(snap)

	c := candidate(1, "Italian", models.PlaceAttributes{}, 800)
	a := m.Predict(c, recommend.ContextQuickLunch)
	b := restored.Predict(c, recommend.ContextQuickLunch)
	if a != b {
		t.Errorf("restored prediction %v != original %v", b, a)
	}
}

type mockGate struct {
	count int
	err   error
	calls int
}

func (g *mockGate) RealFeedbackCount(context.Context) (int, error) {
	g.calls++
	return g.count, g.err
}

func TestResolverUsesHeuristicUntilGateClears(t *testing.T) {
	ctx := context.Background()
	heuristic := NewHeuristic(&mockHistory{avg: 4.5, count: 3}, 3.0)
	model := NewLinearModel(1.0)
	gate := &mockGate{count: 10}

	r := NewResolver(heuristic, model, gate, 50)
	c := candidate(2, "Thai", models.PlaceAttributes{}, 200)

	// Untrained model: heuristic, gate never queried.
	_, reason, err := r.Score(ctx, c, recommend.ContextQuickLunch)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if reason != models.ReasonHeuristicBaseline {
		t.Errorf("reason = %q, want heuristic_baseline", reason)
	}
	if gate.calls != 0 {
		t.Errorf("gate queried %d times for untrained model, want 0", gate.calls)
	}

	if err := model.Train(trainingSet(80, func(int) float64 { return 4.0 }), time.Now()); err != nil {
		t.Fatalf("Train: %v", err)
	}

	// Trained but below threshold: still heuristic.
	_, reason, err = r.Score(ctx, c, recommend.ContextQuickLunch)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if reason != models.ReasonHeuristicBaseline {
		t.Errorf("reason = %q, want heuristic_baseline below threshold", reason)
	}

	// Threshold cleared: learned model serves.
	gate.count = 50
	r2 := NewResolver(heuristic, model, gate, 50)
	_, reason, err = r2.Score(ctx, c, recommend.ContextQuickLunch)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if reason != models.ReasonLearnedModel {
		t.Errorf("reason = %q, want learned_model", reason)
	}
}

func TestResolverCachesGateCount(t *testing.T) {
	ctx := context.Background()
	heuristic := NewHeuristic(&mockHistory{avg: 4.0, count: 5}, 3.0)
	model := NewLinearModel(1.0)
	if err := model.Train(trainingSet(80, func(int) float64 { return 4.0 }), time.Now()); err != nil {
		t.Fatalf("Train: %v", err)
	}
	gate := &mockGate{count: 100}
	r := NewResolver(heuristic, model, gate, 50)

	c := candidate(2, "Thai", models.PlaceAttributes{}, 200)
	for i := 0; i < 5; i++ {
		if _, _, err := r.Score(ctx, c, recommend.ContextQuickLunch); err != nil {
			t.Fatalf("Score: %v", err)
		}
	}
	if gate.calls != 1 {
		t.Errorf("gate queried %d times within TTL, want 1", gate.calls)
	}
}

func TestResolverGateErrorFallsBack(t *testing.T) {
	heuristic := NewHeuristic(&mockHistory{avg: 4.0, count: 5}, 3.0)
	model := NewLinearModel(1.0)
	if err := model.Train(trainingSet(80, func(int) float64 { return 4.0 }), time.Now()); err != nil {
		t.Fatalf("Train: %v", err)
	}
	gate := &mockGate{err: errors.New("db down")}
	r := NewResolver(heuristic, model, gate, 50)

	_, reason, err := r.Score(context.Background(),
		candidate(2, "Thai", models.PlaceAttributes{}, 200), recommend.ContextQuickLunch)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if reason != models.ReasonHeuristicBaseline {
		t.Errorf("reason = %q, want heuristic fallback on gate error", reason)
	}
}
