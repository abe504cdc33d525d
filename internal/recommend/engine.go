// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

// Package recommend implements the interactive narrowing engine: a
// session starts from a location, filters the catalog by distance, then
// asks adaptive questions until the candidate set is small enough to
// score and rank.
package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avelasq/mesafinder/internal/geo"
	"github.com/avelasq/mesafinder/internal/logging"
	"github.com/avelasq/mesafinder/internal/metrics"
	"github.com/avelasq/mesafinder/internal/models"
)

// CatalogSource provides the operational place catalog.
type CatalogSource interface {
	OperationalPlaces(ctx context.Context) ([]models.Place, error)
}

// Scorer predicts a 1-5 rating for a candidate in a session context and
// reports which scoring path produced it.
type Scorer interface {
	Score(ctx context.Context, c Candidate, sessionContext string) (float64, models.ScoreReason, error)
}

// Recorder persists recommendation rows at session completion. A
// persist failure degrades the response but never fails it: the caller
// still gets recommendations, flagged degraded.
type Recorder interface {
	Record(ctx context.Context, recs []models.Recommendation) (degraded bool)
}

// Options configures the engine. Zero values are replaced by defaults
// in New.
type Options struct {
	// MaxDistanceM is the start-time distance filter radius.
	MaxDistanceM float64
	// MaxTurns caps the number of answered questions per session.
	MaxTurns int
	// MinCandidates is the completion threshold: a set at or below this
	// size is scored immediately instead of being narrowed further.
	MinCandidates int
	// MaxRecommendations caps the ranked output.
	MaxRecommendations int
	// SessionTimeout is the idle expiry horizon.
	SessionTimeout time.Duration
	// ServiceArea, when non-nil, rejects start locations outside it.
	ServiceArea *geo.BoundingBox
}

func (o *Options) applyDefaults() {
	if o.MaxDistanceM <= 0 {
		o.MaxDistanceM = 3.0 * geo.MetersPerMile
	}
	if o.MaxTurns <= 0 {
		o.MaxTurns = 5
	}
	if o.MinCandidates <= 0 {
		o.MinCandidates = 3
	}
	if o.MaxRecommendations <= 0 {
		o.MaxRecommendations = 3
	}
	if o.SessionTimeout <= 0 {
		o.SessionTimeout = 15 * time.Minute
	}
}

// Engine runs narrowing sessions. Sessions live in memory; the catalog,
// scorer, and recorder are injected.
type Engine struct {
	catalog  CatalogSource
	scorer   Scorer
	recorder Recorder
	opts     Options

	mu       sync.Mutex
	sessions map[string]*Session

	now func() time.Time
}

// New creates an engine.
func New(catalog CatalogSource, scorer Scorer, recorder Recorder, opts Options) *Engine {
	opts.applyDefaults()
	return &Engine{
		catalog:  catalog,
		scorer:   scorer,
		recorder: recorder,
		opts:     opts,
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Start opens a session at the given location. The catalog is filtered
// by distance once, here; answers only ever shrink the resulting set.
// Returns ErrOutOfServiceArea for locations outside the served area and
// ErrNoCandidates when nothing is within range (the session is created
// aborted so the outcome is inspectable).
func (e *Engine) Start(ctx context.Context, req StartRequest) (Result, error) {
	origin := geo.Point{Lat: req.Latitude, Lng: req.Longitude}
	if e.opts.ServiceArea != nil && !e.opts.ServiceArea.Contains(origin) {
		return Result{}, ErrOutOfServiceArea
	}

	places, err := e.catalog.OperationalPlaces(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load catalog: %w", err)
	}

	candidates := make([]Candidate, 0, len(places))
	for _, p := range places {
		d := geo.HaversineM(origin, geo.Point{Lat: p.Latitude, Lng: p.Longitude})
		if d <= e.opts.MaxDistanceM {
			candidates = append(candidates, Candidate{Place: p, DistanceM: d})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].DistanceM != candidates[j].DistanceM {
			return candidates[i].DistanceM < candidates[j].DistanceM
		}
		return candidates[i].Place.ID < candidates[j].Place.ID
	})

	now := e.now()
	s := &Session{
		ID:           uuid.NewString(),
		ListID:       req.ListID,
		Context:      NormalizeContext(req.Context),
		Origin:       origin,
		Status:       StatusActive,
		Candidates:   candidates,
		Asked:        make(map[string]bool),
		CreatedAt:    now,
		LastActivity: now,
	}

	// Coarse lock: sessions are short-lived and the catalog is small, so
	// holding the engine lock through scoring keeps per-session state
	// race-free without per-session locks.
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sessions[s.ID] = s

	metrics.SessionsStarted.Inc()
	metrics.ActiveSessions.Inc()
	logging.Info().
		Str("session_id", s.ID).
		Str("context", s.Context).
		Int("candidates", len(candidates)).
		Msg("session started")

	if len(candidates) == 0 {
		e.abort(s, "empty catalog within range")
		return Result{SessionID: s.ID, Status: StatusAborted}, ErrNoCandidates
	}
	if len(candidates) <= e.opts.MinCandidates {
		return e.complete(ctx, s), nil
	}
	return e.pose(ctx, s), nil
}

// Answer applies one answer to a session. The answer must name the
// currently posed question; anything else is ErrStaleProbe. The
// candidate set never grows, and an answer that empties it aborts the
// session.
func (e *Engine) Answer(ctx context.Context, sessionID string, ans Answer) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[sessionID]
	if !ok {
		return Result{}, ErrInvalidSession
	}

	now := e.now()
	if s.Status == StatusActive && now.Sub(s.LastActivity) > e.opts.SessionTimeout {
		e.abort(s, "idle expiry")
	}
	if s.Status != StatusActive || s.Posed == nil {
		return Result{}, ErrInvalidSession
	}

	if ans.ProbeID != s.Posed.ID {
		return Result{}, ErrStaleProbe
	}

	spec := probeByID(ans.ProbeID)
	if spec == nil {
		return Result{}, ErrStaleProbe
	}

	s.Candidates = filterByAnswer(s.Candidates, spec, ans.Value)
	s.Asked[ans.ProbeID] = true
	s.Posed = nil
	s.Turns++
	s.LastActivity = now

	logging.Debug().
		Str("session_id", s.ID).
		Str("question", ans.ProbeID).
		Str("value", ans.Value).
		Int("remaining", len(s.Candidates)).
		Msg("answer applied")

	if len(s.Candidates) == 0 {
		e.abort(s, "answer eliminated all candidates")
		return Result{SessionID: s.ID, Status: StatusAborted, Turn: s.Turns}, ErrNoCandidates
	}
	if len(s.Candidates) <= e.opts.MinCandidates || s.Turns >= e.opts.MaxTurns {
		return e.complete(ctx, s), nil
	}
	return e.pose(ctx, s), nil
}

// Get returns a snapshot result for an existing session, including the
// recommendations of a completed one. ErrInvalidSession for unknown ids.
func (e *Engine) Get(sessionID string) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[sessionID]
	if !ok {
		return Result{}, ErrInvalidSession
	}

	res := Result{
		SessionID:      s.ID,
		Status:         s.Status,
		CandidateCount: len(s.Candidates),
		Turn:           s.Turns,
		Question:       s.Posed,
	}
	if s.Status == StatusComplete {
		res.Recommendations = e.ranked(s)
	}
	return res, nil
}

// SweepIdle aborts sessions idle past the timeout and drops terminal
// sessions past a retention horizon. Returns the number aborted.
func (e *Engine) SweepIdle() int {
	now := e.now()
	retention := 2 * e.opts.SessionTimeout

	e.mu.Lock()
	defer e.mu.Unlock()

	aborted := 0
	for id, s := range e.sessions {
		idle := now.Sub(s.LastActivity)
		switch {
		case s.Status == StatusActive && idle > e.opts.SessionTimeout:
			e.abort(s, "idle expiry")
			aborted++
		case s.Status != StatusActive && idle > retention:
			delete(e.sessions, id)
		}
	}
	return aborted
}

// pose selects and records the next question. When no question can
// discriminate the remaining set, the session completes instead.
func (e *Engine) pose(ctx context.Context, s *Session) Result {
	probe := selectProbe(s.Candidates, s.Asked)
	if probe == nil {
		return e.complete(ctx, s)
	}
	s.Posed = probe
	return Result{
		SessionID:      s.ID,
		Status:         StatusActive,
		CandidateCount: len(s.Candidates),
		Turn:           s.Turns,
		Question:       probe,
	}
}

// complete scores the remaining candidates, ranks them, persists the
// recommendation rows, and finalizes the session. Persist failures
// degrade the result rather than failing it.
func (e *Engine) complete(ctx context.Context, s *Session) Result {
	now := e.now()
	scored := make([]scoredCandidate, 0, len(s.Candidates))
	for _, c := range s.Candidates {
		score, reason, err := e.scorer.Score(ctx, c, s.Context)
		if err != nil {
			logging.Warn().Err(err).
				Str("session_id", s.ID).
				Int64("place_id", c.Place.ID).
				Msg("scorer failed, falling back to cold start")
			score, reason = neutralScore, models.ReasonColdStart
		}
		metrics.ScoresComputed.WithLabelValues(string(reason)).Inc()
		scored = append(scored, scoredCandidate{Candidate: c, score: clipScore(score), reason: reason})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		if scored[i].DistanceM != scored[j].DistanceM {
			return scored[i].DistanceM < scored[j].DistanceM
		}
		return scored[i].Place.ID < scored[j].Place.ID
	})
	if len(scored) > e.opts.MaxRecommendations {
		scored = scored[:e.opts.MaxRecommendations]
	}

	recs := make([]models.Recommendation, 0, len(scored))
	places := make([]models.Place, 0, len(scored))
	for _, sc := range scored {
		recs = append(recs, models.Recommendation{
			ID:             uuid.NewString(),
			SessionID:      s.ID,
			PlaceID:        sc.Place.ID,
			ListID:         s.ListID,
			PredictedScore: sc.score,
			Reason:         sc.reason,
			DistanceM:      sc.DistanceM,
			CreatedAt:      now,
		})
		places = append(places, sc.Place)
	}

	degraded := false
	if len(recs) > 0 {
		degraded = e.recorder.Record(ctx, recs)
	}

	s.Status = StatusComplete
	s.Posed = nil
	s.Recommendations = recs
	s.LastActivity = now
	s.Candidates = candidatesOf(scored)

	metrics.ActiveSessions.Dec()
	metrics.RecordSessionFinished("complete", s.Turns)
	logging.Info().
		Str("session_id", s.ID).
		Int("turns", s.Turns).
		Int("recommendations", len(recs)).
		Bool("degraded", degraded).
		Msg("session completed")

	ranked := make([]RankedRecommendation, len(recs))
	for i := range recs {
		ranked[i] = RankedRecommendation{Recommendation: recs[i], Place: places[i]}
	}
	return Result{
		SessionID:       s.ID,
		Status:          StatusComplete,
		CandidateCount:  len(recs),
		Turn:            s.Turns,
		Recommendations: ranked,
		Degraded:        degraded,
	}
}

// abort finalizes a session without recommendations. Callers hold no
// lock invariant here beyond owning the session reference.
func (e *Engine) abort(s *Session, why string) {
	if s.Status != StatusActive {
		return
	}
	s.Status = StatusAborted
	s.Posed = nil
	s.LastActivity = e.now()
	metrics.ActiveSessions.Dec()
	metrics.RecordSessionFinished("aborted", s.Turns)
	logging.Info().Str("session_id", s.ID).Str("reason", why).Msg("session aborted")
}

// ranked rebuilds display rows for a completed session from its stored
// recommendations and candidate places.
func (e *Engine) ranked(s *Session) []RankedRecommendation {
	byID := make(map[int64]models.Place, len(s.Candidates))
	for _, c := range s.Candidates {
		byID[c.Place.ID] = c.Place
	}
	out := make([]RankedRecommendation, 0, len(s.Recommendations))
	for _, r := range s.Recommendations {
		out = append(out, RankedRecommendation{Recommendation: r, Place: byID[r.PlaceID]})
	}
	return out
}

type scoredCandidate struct {
	Candidate
	score  float64
	reason models.ScoreReason
}

func candidatesOf(scored []scoredCandidate) []Candidate {
	cs := make([]Candidate, len(scored))
	for i, sc := range scored {
		cs[i] = sc.Candidate
	}
	return cs
}

// neutralScore is the cold-start fallback prediction.
const neutralScore = 3.0

// clipScore clamps predictions into the valid rating range.
func clipScore(v float64) float64 {
	if v < 1.0 {
		return 1.0
	}
	if v > 5.0 {
		return 5.0
	}
	return v
}
