// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

package services

import (
	"context"
	"errors"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/avelasq/mesafinder/internal/feedback"
	"github.com/avelasq/mesafinder/internal/logging"
	"github.com/avelasq/mesafinder/internal/metrics"
	"github.com/avelasq/mesafinder/internal/models"
	"github.com/avelasq/mesafinder/internal/recommend/scoring"
)

// TrainingSource provides the learned model's training set.
type TrainingSource interface {
	TrainingExamples(ctx context.Context) ([]models.TrainingExample, error)
}

// ModelStore persists trained model snapshots.
type ModelStore interface {
	Save(snap scoring.ModelSnapshot) error
}

// TrainerConfig controls retraining cadence.
type TrainerConfig struct {
	// TrainOnStartup runs one training pass before entering the loop.
	TrainOnStartup bool
	// Interval is the periodic retrain cadence.
	Interval time.Duration
	// RetrainEvery triggers a retrain after this many feedback events,
	// independent of the interval.
	RetrainEvery int
}

// TrainerService retrains the learned model: periodically, and eagerly
// after enough feedback events arrive on the feedback topic.
type TrainerService struct {
	source     TrainingSource
	store      ModelStore
	model      *scoring.LinearModel
	subscriber message.Subscriber
	cfg        TrainerConfig
}

// NewTrainerService wires the retraining loop. subscriber may be nil to
// disable event-driven retraining (interval-only).
func NewTrainerService(source TrainingSource, store ModelStore, model *scoring.LinearModel, subscriber message.Subscriber, cfg TrainerConfig) *TrainerService {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.RetrainEvery <= 0 {
		cfg.RetrainEvery = 25
	}
	return &TrainerService{
		source:     source,
		store:      store,
		model:      model,
		subscriber: subscriber,
		cfg:        cfg,
	}
}

// Serve implements suture.Service.
func (t *TrainerService) Serve(ctx context.Context) error {
	if t.cfg.TrainOnStartup {
		t.train(ctx)
	}

	var events <-chan *message.Message
	if t.subscriber != nil {
		ch, err := t.subscriber.Subscribe(ctx, feedback.TopicFeedbackRecorded)
		if err != nil {
			return err
		}
		events = ch
	}

	ticker := time.NewTicker(t.cfg.Interval)
	defer ticker.Stop()

	pending := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			msg.Ack()
			pending++
			if pending >= t.cfg.RetrainEvery {
				t.train(ctx)
				pending = 0
			}
		case <-ticker.C:
			t.train(ctx)
			pending = 0
		}
	}
}

// train runs one training pass. Too little data is normal early on and
// only logged; other failures are logged and retried on the next
// trigger rather than crashing the service.
func (t *TrainerService) train(ctx context.Context) {
	examples, err := t.source.TrainingExamples(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("load training examples")
		return
	}

	if err := t.model.Train(examples, time.Now().UTC()); err != nil {
		if errors.Is(err, scoring.ErrInsufficientData) {
			logging.Debug().Int("examples", len(examples)).Msg("not enough data to train")
		} else {
			logging.Error().Err(err).Msg("model training failed")
		}
		return
	}
	metrics.ModelTrainings.Inc()

	version, trainedAt, _ := t.model.Info()
	if err := t.store.Save(t.model.Snapshot()); err != nil {
		logging.Error().Err(err).Int("version", version).Msg("persist trained model")
		return
	}
	logging.Info().
		Int("version", version).
		Time("trained_at", trainedAt).
		Int("examples", len(examples)).
		Msg("model trained")
}

func (t *TrainerService) String() string { return "model-trainer" }
