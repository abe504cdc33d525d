// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avelasq/mesafinder/internal/geo"
	"github.com/avelasq/mesafinder/internal/models"
)

// Test origin in the middle of the served area. 0.001 deg of latitude
// is roughly 111 m, so offsets below stay well inside a 3 mile radius.
var testOrigin = geo.Point{Lat: 37.755, Lng: -122.42}

type mockCatalog struct {
	places []models.Place
	err    error
}

func (m *mockCatalog) OperationalPlaces(context.Context) ([]models.Place, error) {
	return m.places, m.err
}

type mockScorer struct {
	scores map[int64]float64
	reason models.ScoreReason
	err    error
}

func (m *mockScorer) Score(_ context.Context, c Candidate, _ string) (float64, models.ScoreReason, error) {
	if m.err != nil {
		return 0, "", m.err
	}
	reason := m.reason
	if reason == "" {
		reason = models.ReasonHeuristicBaseline
	}
	if s, ok := m.scores[c.Place.ID]; ok {
		return s, reason, nil
	}
	return 3.5, reason, nil
}

type mockRecorder struct {
	recorded [][]models.Recommendation
	degraded bool
}

func (m *mockRecorder) Record(_ context.Context, recs []models.Recommendation) bool {
	m.recorded = append(m.recorded, recs)
	return m.degraded
}

func place(id int64, tier int, cuisine string, attrs models.PlaceAttributes, latOffset float64) models.Place {
	return models.Place{
		ID:            id,
		GooglePlaceID: "gp",
		Name:          "Place",
		Latitude:      testOrigin.Lat + latOffset,
		Longitude:     testOrigin.Lng,
		Status:        models.StatusOperational,
		PriceTier:     tier,
		Cuisine:       cuisine,
		Attributes:    attrs,
	}
}

// eightPlaceCatalog builds a catalog where price tier splits 4/4 while
// every other discriminating attribute splits worse, so the first
// question is deterministic.
func eightPlaceCatalog() []models.Place {
	outdoor := models.PlaceAttributes{HasOutdoorSeating: true}
	dates := models.PlaceAttributes{GoodForDates: true}
	return []models.Place{
		place(1, 1, "Mexican", outdoor, 0.001),
		place(2, 1, "Mexican", models.PlaceAttributes{}, 0.002),
		place(3, 1, "Italian", models.PlaceAttributes{}, 0.003),
		place(4, 1, "Italian", dates, 0.004),
		place(5, 3, "Italian", models.PlaceAttributes{}, 0.005),
		place(6, 3, "Italian", models.PlaceAttributes{}, 0.006),
		place(7, 3, "Mexican", outdoor, 0.007),
		place(8, 3, "Italian", models.PlaceAttributes{}, 0.008),
	}
}

func newTestEngine(catalog []models.Place, scorer Scorer, rec Recorder, opts Options) *Engine {
	if scorer == nil {
		scorer = &mockScorer{}
	}
	if rec == nil {
		rec = &mockRecorder{}
	}
	return New(&mockCatalog{places: catalog}, scorer, rec, opts)
}

func startRequest() StartRequest {
	return StartRequest{Latitude: testOrigin.Lat, Longitude: testOrigin.Lng, Context: "date night"}
}

func TestStartPosesBalancedSplitQuestion(t *testing.T) {
	e := newTestEngine(eightPlaceCatalog(), nil, nil, Options{})

	res, err := e.Start(context.Background(), startRequest())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if res.Status != StatusActive {
		t.Fatalf("status = %s, want ACTIVE", res.Status)
	}
	if res.CandidateCount != 8 {
		t.Errorf("candidates = %d, want 8", res.CandidateCount)
	}
	if res.Question == nil || res.Question.ID != ProbePriceTier {
		t.Fatalf("question = %+v, want price_tier (best worst-case split)", res.Question)
	}
	if len(res.Question.Options) != 2 || res.Question.Options[0] != "$" || res.Question.Options[1] != "$$$" {
		t.Errorf("options = %v, want [$ $$$]", res.Question.Options)
	}
}

func TestStartFiltersByDistance(t *testing.T) {
	catalog := eightPlaceCatalog()
	// ~5.5 km north: outside a 3 km radius.
	catalog = append(catalog, place(99, 2, "Thai", models.PlaceAttributes{}, 0.05))

	e := newTestEngine(catalog, nil, nil, Options{MaxDistanceM: 3000})
	res, err := e.Start(context.Background(), startRequest())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if res.CandidateCount != 8 {
		t.Errorf("candidates = %d, want 8 (distant place excluded)", res.CandidateCount)
	}
}

func TestStartOutOfServiceArea(t *testing.T) {
	area := geo.MissionDistrict
	e := newTestEngine(eightPlaceCatalog(), nil, nil, Options{ServiceArea: &area})

	_, err := e.Start(context.Background(), StartRequest{Latitude: 40.7, Longitude: -74.0})
	if !errors.Is(err, ErrOutOfServiceArea) {
		t.Errorf("err = %v, want ErrOutOfServiceArea", err)
	}
}

func TestStartNothingInRangeAborts(t *testing.T) {
	e := newTestEngine(nil, nil, nil, Options{})

	res, err := e.Start(context.Background(), startRequest())
	if !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("err = %v, want ErrNoCandidates", err)
	}
	if res.Status != StatusAborted {
		t.Errorf("status = %s, want ABORTED", res.Status)
	}

	got, err := e.Get(res.SessionID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != StatusAborted {
		t.Errorf("stored status = %s, want ABORTED", got.Status)
	}
}

func TestStartSmallSetCompletesImmediately(t *testing.T) {
	rec := &mockRecorder{}
	e := newTestEngine(eightPlaceCatalog()[:3], nil, rec, Options{})

	res, err := e.Start(context.Background(), startRequest())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if res.Status != StatusComplete {
		t.Fatalf("status = %s, want COMPLETE at or below the threshold", res.Status)
	}
	if res.Question != nil {
		t.Error("completed session must not pose a question")
	}
	if len(res.Recommendations) != 3 {
		t.Errorf("recommendations = %d, want 3", len(res.Recommendations))
	}
	if len(rec.recorded) != 1 {
		t.Errorf("recorder calls = %d, want 1", len(rec.recorded))
	}
}

func TestAnswerNarrowsMonotonically(t *testing.T) {
	e := newTestEngine(eightPlaceCatalog(), nil, nil, Options{MinCandidates: 1, MaxTurns: 8})
	ctx := context.Background()

	res, err := e.Start(ctx, startRequest())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	asked := map[string]bool{}
	prev := res.CandidateCount
	for res.Status == StatusActive {
		q := res.Question
		if q == nil {
			t.Fatal("active session without a posed question")
		}
		if asked[q.ID] {
			t.Fatalf("question %s posed twice", q.ID)
		}
		asked[q.ID] = true

		res, err = e.Answer(ctx, res.SessionID, Answer{ProbeID: q.ID, Value: q.Options[0]})
		if err != nil {
			t.Fatalf("Answer(%s): %v", q.ID, err)
		}
		if res.CandidateCount > prev {
			t.Fatalf("candidates grew from %d to %d", prev, res.CandidateCount)
		}
		prev = res.CandidateCount
	}
	if res.Status != StatusComplete {
		t.Fatalf("final status = %s, want COMPLETE", res.Status)
	}
}

func TestAnswerStaleProbeRejected(t *testing.T) {
	e := newTestEngine(eightPlaceCatalog(), nil, nil, Options{})
	ctx := context.Background()

	res, err := e.Start(ctx, startRequest())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	_, err = e.Answer(ctx, res.SessionID, Answer{ProbeID: ProbeCocktails, Value: "yes"})
	if !errors.Is(err, ErrStaleProbe) {
		t.Fatalf("err = %v, want ErrStaleProbe", err)
	}

	// Session survives a stale answer; the same question is still posed.
	got, err := e.Get(res.SessionID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != StatusActive || got.Question == nil || got.Question.ID != res.Question.ID {
		t.Errorf("session after stale answer = %+v, want unchanged active question", got)
	}
}

func TestAnswerUnknownSession(t *testing.T) {
	e := newTestEngine(eightPlaceCatalog(), nil, nil, Options{})

	_, err := e.Answer(context.Background(), "no-such-session", Answer{ProbeID: ProbePriceTier, Value: "$"})
	if !errors.Is(err, ErrInvalidSession) {
		t.Errorf("err = %v, want ErrInvalidSession", err)
	}
}

func TestAnswerEliminatingAllAborts(t *testing.T) {
	e := newTestEngine(eightPlaceCatalog(), nil, nil, Options{})
	ctx := context.Background()

	res, err := e.Start(ctx, startRequest())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	// A value matching no candidate empties the set and aborts.
	res, err = e.Answer(ctx, res.SessionID, Answer{ProbeID: res.Question.ID, Value: "$$$$$"})
	if !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("err = %v, want ErrNoCandidates", err)
	}
	if res.Status != StatusAborted {
		t.Errorf("status = %s, want ABORTED", res.Status)
	}

	// Aborted sessions accept no further answers.
	_, err = e.Answer(ctx, res.SessionID, Answer{ProbeID: ProbePriceTier, Value: "$"})
	if !errors.Is(err, ErrInvalidSession) {
		t.Errorf("err after abort = %v, want ErrInvalidSession", err)
	}
}

func TestMaxTurnsForcesCompletion(t *testing.T) {
	e := newTestEngine(eightPlaceCatalog(), nil, nil, Options{MinCandidates: 1, MaxTurns: 1})
	ctx := context.Background()

	res, err := e.Start(ctx, startRequest())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	res, err = e.Answer(ctx, res.SessionID, Answer{ProbeID: res.Question.ID, Value: res.Question.Options[0]})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if res.Status != StatusComplete {
		t.Errorf("status after turn cap = %s, want COMPLETE", res.Status)
	}
	if res.Turn != 1 {
		t.Errorf("turns = %d, want 1", res.Turn)
	}
}

func TestNoDiscriminatingQuestionCompletes(t *testing.T) {
	// Five identical places: no probe splits them, so the session
	// completes at start even though the set exceeds the threshold.
	attrs := models.PlaceAttributes{HasOutdoorSeating: true}
	catalog := make([]models.Place, 0, 5)
	for i := int64(1); i <= 5; i++ {
		catalog = append(catalog, place(i, 2, "Mexican", attrs, float64(i)*0.001))
	}

	e := newTestEngine(catalog, nil, nil, Options{MinCandidates: 3, MaxRecommendations: 5})
	res, err := e.Start(context.Background(), startRequest())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if res.Status != StatusComplete {
		t.Errorf("status = %s, want COMPLETE when nothing discriminates", res.Status)
	}
	if len(res.Recommendations) != 5 {
		t.Errorf("recommendations = %d, want all 5", len(res.Recommendations))
	}
}

func TestRankingOrderAndClipping(t *testing.T) {
	catalog := eightPlaceCatalog()[:3]
	scorer := &mockScorer{scores: map[int64]float64{
		1: 9.7, // clipped to 5.0
		2: 5.0, // ties with 1 after clipping; nearer, so ranks first
		3: 0.2, // clipped to 1.0
	}}
	e := newTestEngine(catalog, scorer, nil, Options{})

	res, err := e.Start(context.Background(), startRequest())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(res.Recommendations) != 3 {
		t.Fatalf("recommendations = %d, want 3", len(res.Recommendations))
	}

	got := res.Recommendations
	if got[0].Place.ID != 1 || got[1].Place.ID != 2 || got[2].Place.ID != 3 {
		t.Errorf("order = [%d %d %d], want [1 2 3] (score desc, distance asc on tie)",
			got[0].Place.ID, got[1].Place.ID, got[2].Place.ID)
	}
	if got[0].Recommendation.PredictedScore != 5.0 {
		t.Errorf("top score = %v, want clipped 5.0", got[0].Recommendation.PredictedScore)
	}
	if got[2].Recommendation.PredictedScore != 1.0 {
		t.Errorf("bottom score = %v, want clipped 1.0", got[2].Recommendation.PredictedScore)
	}
}

func TestScorerFailureFallsBackToColdStart(t *testing.T) {
	scorer := &mockScorer{err: errors.New("history unavailable")}
	e := newTestEngine(eightPlaceCatalog()[:2], scorer, nil, Options{})

	res, err := e.Start(context.Background(), startRequest())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	for _, r := range res.Recommendations {
		if r.Recommendation.Reason != models.ReasonColdStart {
			t.Errorf("reason = %q, want cold_start on scorer failure", r.Recommendation.Reason)
		}
		if r.Recommendation.PredictedScore != 3.0 {
			t.Errorf("score = %v, want neutral 3.0", r.Recommendation.PredictedScore)
		}
	}
}

func TestDegradedPersistDoesNotFailCompletion(t *testing.T) {
	rec := &mockRecorder{degraded: true}
	e := newTestEngine(eightPlaceCatalog()[:2], nil, rec, Options{})

	res, err := e.Start(context.Background(), startRequest())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if res.Status != StatusComplete {
		t.Fatalf("status = %s, want COMPLETE despite persist failure", res.Status)
	}
	if !res.Degraded {
		t.Error("result not flagged degraded")
	}
	if len(res.Recommendations) == 0 {
		t.Error("degraded completion must still return recommendations")
	}
}

func TestAnswerAfterCompletionInvalid(t *testing.T) {
	e := newTestEngine(eightPlaceCatalog()[:2], nil, nil, Options{})
	ctx := context.Background()

	res, err := e.Start(ctx, startRequest())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if res.Status != StatusComplete {
		t.Fatalf("status = %s, want COMPLETE", res.Status)
	}

	_, err = e.Answer(ctx, res.SessionID, Answer{ProbeID: ProbePriceTier, Value: "$"})
	if !errors.Is(err, ErrInvalidSession) {
		t.Errorf("err = %v, want ErrInvalidSession for terminal session", err)
	}
}

func TestSweepIdleAbortsStaleSessions(t *testing.T) {
	e := newTestEngine(eightPlaceCatalog(), nil, nil, Options{SessionTimeout: 15 * time.Minute})
	ctx := context.Background()

	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return base }

	res, err := e.Start(ctx, startRequest())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	e.now = func() time.Time { return base.Add(20 * time.Minute) }
	if aborted := e.SweepIdle(); aborted != 1 {
		t.Errorf("aborted = %d, want 1", aborted)
	}

	got, err := e.Get(res.SessionID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != StatusAborted {
		t.Errorf("status = %s, want ABORTED after idle sweep", got.Status)
	}

	// Terminal sessions are dropped past the retention horizon.
	e.now = func() time.Time { return base.Add(2 * time.Hour) }
	e.SweepIdle()
	if _, err := e.Get(res.SessionID); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("err = %v, want ErrInvalidSession after retention drop", err)
	}
}

func TestIdleSessionRejectsAnswerLazily(t *testing.T) {
	e := newTestEngine(eightPlaceCatalog(), nil, nil, Options{SessionTimeout: 15 * time.Minute})
	ctx := context.Background()

	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return base }

	res, err := e.Start(ctx, startRequest())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	e.now = func() time.Time { return base.Add(16 * time.Minute) }
	_, err = e.Answer(ctx, res.SessionID, Answer{ProbeID: res.Question.ID, Value: res.Question.Options[0]})
	if !errors.Is(err, ErrInvalidSession) {
		t.Errorf("err = %v, want ErrInvalidSession for expired session", err)
	}
}

func TestNormalizeContext(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Date Night", ContextDateNight},
		{"  date night  ", ContextDateNight},
		{"GROUP HANG", ContextGroupHang},
		{"weekend brunch", ContextWeekendBrunch},
		{"late night eats", ContextLateNight},

		// Free-form wording maps through the keyword tiers.
		{"romantic anniversary dinner", ContextDateNight},
		{"hanging with friends", ContextGroupHang},
		{"office party", ContextGroupHang},
		{"weekend breakfast", ContextWeekendBrunch},
		{"late bar crawl", ContextLateNight},
		{"after the show", ContextLateNight},
		{"grabbing a quick bite near work", ContextQuickLunch},

		// Tier order is the precedence: a date keyword beats a later tier.
		{"romantic late dinner", ContextDateNight},
		{"group brunch", ContextGroupHang},

		{"", ContextQuickLunch},
		{"birthday dinner", ContextQuickLunch},
		{"Discovery Session", ContextQuickLunch},
	}
	for _, tt := range tests {
		if got := NormalizeContext(tt.in); got != tt.want {
			t.Errorf("NormalizeContext(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSelectorSkipsExhaustedProbes(t *testing.T) {
	candidates := []Candidate{
		{Place: place(1, 1, "Mexican", models.PlaceAttributes{HasCocktails: true}, 0)},
		{Place: place(2, 1, "Mexican", models.PlaceAttributes{}, 0)},
	}
	asked := map[string]bool{ProbeCocktails: true}

	probe := selectProbe(candidates, asked)
	if probe != nil {
		t.Errorf("probe = %+v, want nil when only the asked probe discriminates", probe)
	}
}
