// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

// Package config loads and validates application configuration via
// Koanf v2 with layered sources: built-in defaults, an optional YAML
// file, and environment variables (highest priority).
package config

import (
	"fmt"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Logging   LoggingConfig   `koanf:"logging"`
	Engine    EngineConfig    `koanf:"engine"`
	Scorer    ScorerConfig    `koanf:"scorer"`
	Trainer   TrainerConfig   `koanf:"trainer"`
	Lists     ListsConfig     `koanf:"lists"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the listen address. Default: 0.0.0.0
	Host string `koanf:"host"`

	// Port is the listen port. Default: 8642
	Port int `koanf:"port"`

	// ReadTimeout bounds request read time.
	ReadTimeout time.Duration `koanf:"read_timeout"`

	// WriteTimeout bounds response write time.
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig holds DuckDB and model store settings.
type DatabaseConfig struct {
	// Path is the DuckDB database file. Empty means in-memory.
	Path string `koanf:"path"`

	// ModelDir is the BadgerDB directory for trained model artifacts.
	// Empty means in-memory (models lost on restart).
	ModelDir string `koanf:"model_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// EngineConfig holds recommendation session engine settings.
type EngineConfig struct {
	// MaxDistanceMiles is the default search radius when the request
	// does not supply one.
	MaxDistanceMiles float64 `koanf:"max_distance_miles"`

	// MaxTurns is the default cap on questions per session.
	MaxTurns int `koanf:"max_turns"`

	// MinCandidates is the narrowing target: a session completes once
	// the remaining set is at or below this size.
	MinCandidates int `koanf:"min_candidates"`

	// MaxRecommendations bounds the returned recommendation list.
	MaxRecommendations int `koanf:"max_recommendations"`

	// SessionTimeout is how long an idle session may go without an
	// answer before the sweep reclaims it.
	SessionTimeout time.Duration `koanf:"session_timeout"`

	// SweepInterval is how often the idle-session sweep runs.
	SweepInterval time.Duration `koanf:"sweep_interval"`

	// ServiceAreaEnforced rejects session origins outside the pilot
	// service area bounding box when true.
	ServiceAreaEnforced bool `koanf:"service_area_enforced"`
}

// ScorerConfig holds scoring strategy settings.
type ScorerConfig struct {
	// MinRealFeedback is the number of non-synthetic, non-cold-start
	// feedback records required before the learned model is eligible.
	MinRealFeedback int `koanf:"min_real_feedback"`

	// NeutralScore is the fallback predicted score when no history
	// matches a candidate's bucket.
	NeutralScore float64 `koanf:"neutral_score"`
}

// TrainerConfig holds learned-model training settings.
type TrainerConfig struct {
	// TrainOnStartup triggers a training pass when the service starts.
	TrainOnStartup bool `koanf:"train_on_startup"`

	// TrainInterval is the periodic retraining fallback.
	TrainInterval time.Duration `koanf:"train_interval"`

	// RetrainEvery retrains after this many new feedback events.
	RetrainEvery int `koanf:"retrain_every"`
}

// ListsConfig holds list lifecycle settings.
type ListsConfig struct {
	// PurgeAfter is how long a soft-deleted list is retained before the
	// purge sweep removes it and its ratings.
	PurgeAfter time.Duration `koanf:"purge_after"`

	// PurgeInterval is how often the purge sweep runs.
	PurgeInterval time.Duration `koanf:"purge_interval"`
}

// RateLimitConfig holds HTTP rate limiting settings.
type RateLimitConfig struct {
	// RequestsPerMinute is the per-IP request allowance.
	RequestsPerMinute int `koanf:"requests_per_minute"`
}

// Validate checks the configuration for invalid combinations.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Engine.MaxTurns < 1 {
		return fmt.Errorf("engine.max_turns must be >= 1, got %d", c.Engine.MaxTurns)
	}
	if c.Engine.MinCandidates < 1 {
		return fmt.Errorf("engine.min_candidates must be >= 1, got %d", c.Engine.MinCandidates)
	}
	if c.Engine.MaxRecommendations < 1 {
		return fmt.Errorf("engine.max_recommendations must be >= 1, got %d", c.Engine.MaxRecommendations)
	}
	if c.Engine.MaxDistanceMiles <= 0 {
		return fmt.Errorf("engine.max_distance_miles must be positive, got %f", c.Engine.MaxDistanceMiles)
	}
	if c.Engine.SessionTimeout <= 0 {
		return fmt.Errorf("engine.session_timeout must be positive, got %s", c.Engine.SessionTimeout)
	}
	if c.Scorer.MinRealFeedback < 0 {
		return fmt.Errorf("scorer.min_real_feedback must be >= 0, got %d", c.Scorer.MinRealFeedback)
	}
	if c.Scorer.NeutralScore < 1.0 || c.Scorer.NeutralScore > 5.0 {
		return fmt.Errorf("scorer.neutral_score must be within [1.0, 5.0], got %f", c.Scorer.NeutralScore)
	}
	if c.Lists.PurgeAfter <= 0 {
		return fmt.Errorf("lists.purge_after must be positive, got %s", c.Lists.PurgeAfter)
	}
	return nil
}
