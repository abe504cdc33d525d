// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

// Package main is the entry point for the Mesafinder server.
//
// Mesafinder narrows a neighborhood restaurant catalog to a handful of
// recommendations through a short interactive question loop, then
// learns from the ratings users leave behind.
//
// The server initializes components in the following order:
//
//  1. Configuration: Koanf v2 layered sources (defaults, YAML, env)
//  2. Database: DuckDB catalog, lists, ratings, and recommendations
//  3. Model store: BadgerDB persistence for the trained scorer
//  4. Event bus: in-process Watermill pub/sub for feedback events
//  5. Engine: the interactive narrowing session engine
//  6. Supervision tree: trainer, sweeper, purge workers and HTTP server
//
// Graceful shutdown on SIGINT/SIGTERM stops accepting connections,
// drains in-flight requests, and closes the stores.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/avelasq/mesafinder/internal/api"
	"github.com/avelasq/mesafinder/internal/config"
	"github.com/avelasq/mesafinder/internal/database"
	"github.com/avelasq/mesafinder/internal/feedback"
	"github.com/avelasq/mesafinder/internal/geo"
	"github.com/avelasq/mesafinder/internal/logging"
	"github.com/avelasq/mesafinder/internal/recommend"
	"github.com/avelasq/mesafinder/internal/recommend/modelstore"
	"github.com/avelasq/mesafinder/internal/recommend/scoring"
	"github.com/avelasq/mesafinder/internal/supervisor"
	"github.com/avelasq/mesafinder/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("starting mesafinder")

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer closeQuietly(db, "database")

	store, err := modelstore.Open(cfg.Database.ModelDir)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open model store")
	}
	defer closeQuietly(store, "model store")

	model := scoring.NewLinearModel(1.0)
	restoreModel(store, model)

	pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer closeQuietly(pubsub, "event bus")

	fb := feedback.NewService(db, pubsub)
	heuristic := scoring.NewHeuristic(db, cfg.Scorer.NeutralScore)
	resolver := scoring.NewResolver(heuristic, model, db, cfg.Scorer.MinRealFeedback)

	engineOpts := recommend.Options{
		MaxDistanceM:       cfg.Engine.MaxDistanceMiles * geo.MetersPerMile,
		MaxTurns:           cfg.Engine.MaxTurns,
		MinCandidates:      cfg.Engine.MinCandidates,
		MaxRecommendations: cfg.Engine.MaxRecommendations,
		SessionTimeout:     cfg.Engine.SessionTimeout,
	}
	if cfg.Engine.ServiceAreaEnforced {
		area := geo.MissionDistrict
		engineOpts.ServiceArea = &area
	}
	engine := recommend.New(db, resolver, fb, engineOpts)

	handler := api.NewHandler(db, engine, fb, model, cfg)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(handler),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree := supervisor.NewTree(slog.New(slog.NewJSONHandler(os.Stderr, nil)), treeCfg)

	tree.AddWorker(services.NewTrainerService(db, store, model, pubsub, services.TrainerConfig{
		TrainOnStartup: cfg.Trainer.TrainOnStartup,
		Interval:       cfg.Trainer.TrainInterval,
		RetrainEvery:   cfg.Trainer.RetrainEvery,
	}))
	tree.AddWorker(services.NewSweeperService(engine, cfg.Engine.SweepInterval))
	tree.AddWorker(services.NewPurgeService(db, cfg.Lists.PurgeAfter, cfg.Lists.PurgeInterval))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", server.Addr).Msg("mesafinder ready")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("supervision tree exited")
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("service did not stop in time")
		}
	}
	logging.Info().Msg("mesafinder stopped")
}

// restoreModel loads the last persisted model, if any. A missing model
// is the normal first-boot case; a corrupt one is discarded so the
// trainer rebuilds it from the database.
func restoreModel(store *modelstore.Store, model *scoring.LinearModel) {
	snap, err := store.Load()
	switch {
	case err == nil:
		model.Restore(snap)
		logging.Info().Int("version", snap.Version).Msg("trained model restored")
	case errors.Is(err, modelstore.ErrNoModel):
		logging.Info().Msg("no persisted model, starting with heuristic scoring")
	case errors.Is(err, modelstore.ErrCorrupt):
		logging.Warn().Msg("persisted model failed checksum, discarding")
	default:
		logging.Error().Err(err).Msg("load persisted model")
	}
}

type closer interface{ Close() error }

func closeQuietly(c closer, what string) {
	if err := c.Close(); err != nil {
		logging.Warn().Err(err).Str("component", what).Msg("close failed")
	}
}
