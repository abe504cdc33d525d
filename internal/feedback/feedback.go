// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

// Package feedback owns the recommendation outcome path: persisting
// recommendation rows at session completion, attaching observed
// outcomes, and publishing feedback events that drive retraining.
package feedback

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"

	"github.com/avelasq/mesafinder/internal/logging"
	"github.com/avelasq/mesafinder/internal/metrics"
	"github.com/avelasq/mesafinder/internal/models"
)

// TopicFeedbackRecorded carries one Event per recorded outcome.
const TopicFeedbackRecorded = "feedback.recorded"

// Event is the payload published on TopicFeedbackRecorded.
type Event struct {
	RecommendationID string    `json:"recommendation_id"`
	ObservedRating   int       `json:"observed_rating"`
	ObservedAt       time.Time `json:"observed_at"`
}

// Store is the persistence surface the service needs.
type Store interface {
	InsertRecommendations(ctx context.Context, recs []models.Recommendation) error
	AttachFeedback(ctx context.Context, f models.FeedbackRecord) error
}

// Service implements recommend.Recorder and the outcome contract. The
// recommendation write sits behind a circuit breaker: when persistence
// is unhealthy, sessions still complete and responses are flagged
// degraded instead of failing.
type Service struct {
	store     Store
	publisher message.Publisher
	breaker   *gobreaker.CircuitBreaker[struct{}]
}

// NewService wires the outcome path. publisher may be nil, in which
// case events are dropped (used by tests that only exercise persists).
func NewService(store Store, publisher message.Publisher) *Service {
	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:    "recommendation-writes",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	})
	return &Service{store: store, publisher: publisher, breaker: breaker}
}

// Record persists completed-session recommendations. Returns true when
// the write failed or was short-circuited; the recommendations are
// still served, so the caller only marks the response degraded.
func (s *Service) Record(ctx context.Context, recs []models.Recommendation) bool {
	_, err := s.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, s.store.InsertRecommendations(ctx, recs)
	})
	if err != nil {
		metrics.RecommendationWriteErrors.Inc()
		logging.Error().Err(err).
			Int("count", len(recs)).
			Msg("recommendation persist failed, serving degraded")
		return true
	}
	return false
}

// RecordOutcome attaches an observed rating to a recommendation and
// publishes the feedback event. The event is best-effort: a publish
// failure is logged but the outcome is already durable.
func (s *Service) RecordOutcome(ctx context.Context, f models.FeedbackRecord) error {
	if f.ObservedAt.IsZero() {
		f.ObservedAt = time.Now().UTC()
	}
	if err := s.store.AttachFeedback(ctx, f); err != nil {
		return fmt.Errorf("attach feedback: %w", err)
	}
	metrics.FeedbackRecorded.Inc()

	if s.publisher != nil {
		s.publish(Event{
			RecommendationID: f.RecommendationID,
			ObservedRating:   f.ObservedRating,
			ObservedAt:       f.ObservedAt,
		})
	}
	return nil
}

func (s *Service) publish(ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		logging.Error().Err(err).Msg("marshal feedback event")
		return
	}
	msg := message.NewMessage(uuid.NewString(), payload)
	if err := s.publisher.Publish(TopicFeedbackRecorded, msg); err != nil {
		logging.Error().Err(err).
			Str("recommendation_id", ev.RecommendationID).
			Msg("publish feedback event")
	}
}
