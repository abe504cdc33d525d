// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/mesafinder/config.yaml",
	"/etc/mesafinder/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// envPrefix is the prefix for configuration environment variables.
// Nesting uses a double underscore: MESA_ENGINE__MAX_TURNS -> engine.max_turns.
const envPrefix = "MESA_"

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8642,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Path:     "data/mesafinder.db",
			ModelDir: "data/models",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Engine: EngineConfig{
			MaxDistanceMiles:    3.0,
			MaxTurns:            5,
			MinCandidates:       3,
			MaxRecommendations:  3,
			SessionTimeout:      15 * time.Minute,
			SweepInterval:       time.Minute,
			ServiceAreaEnforced: true,
		},
		Scorer: ScorerConfig{
			MinRealFeedback: 50,
			NeutralScore:    3.0,
		},
		Trainer: TrainerConfig{
			TrainOnStartup: true,
			TrainInterval:  24 * time.Hour,
			RetrainEvery:   25,
		},
		Lists: ListsConfig{
			PurgeAfter:    30 * 24 * time.Hour,
			PurgeInterval: time.Hour,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 300,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Built-in defaults
//  2. Optional YAML config file
//  3. Environment variables (highest priority)
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file. CONFIG_PATH wins, then the
// default paths in order. Returns "" when nothing is found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransformFunc maps environment variable names to koanf paths.
// The MESA_ prefix is stripped, "__" becomes the nesting separator, and
// the remainder is lowercased:
//
//	MESA_SERVER__PORT            -> server.port
//	MESA_ENGINE__MAX_TURNS       -> engine.max_turns
//	MESA_SCORER__MIN_REAL_FEEDBACK -> scorer.min_real_feedback
func envTransformFunc(key string) string {
	key = strings.TrimPrefix(key, envPrefix)
	key = strings.ToLower(key)
	return strings.ReplaceAll(key, "__", ".")
}
