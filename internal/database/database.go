// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

// Package database provides the DuckDB-backed persistence layer: the
// restaurant catalog, lists, ratings, and recommendation/feedback rows.
//
// CRUD methods are split across files by concern:
//   - crud_places.go: catalog ingest (deduped), queries, search
//   - crud_lists.go: lists with soft delete, restore, timed purge
//   - crud_ratings.go: ratings and scorer aggregates
//   - crud_recommendations.go: recommendation rows and feedback attachment
package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/avelasq/mesafinder/internal/logging"
)

// DB wraps the DuckDB connection and provides data access methods.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at path and initializes the
// schema. An empty path opens an in-memory database, used by tests.
func New(path string) (*DB, error) {
	connStr := path
	if connStr == "" {
		connStr = ":memory:"
	} else {
		dbDir := filepath.Dir(connStr)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("create database directory %s: %w", dbDir, err)
			}
		}
	}

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	// Single writer; DuckDB handles intra-process concurrency.
	conn.SetMaxOpenConns(4)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(time.Hour)

	db := &DB{conn: conn}
	if err := db.initSchema(context.Background()); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	logging.Info().Str("path", connStr).Msg("database initialized")
	return db, nil
}

// Ping verifies the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates all tables and sequences if they do not exist.
func (db *DB) initSchema(ctx context.Context) error {
	queries := []string{
		`CREATE SEQUENCE IF NOT EXISTS seq_place_id START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_list_id START 1`,
		`CREATE TABLE IF NOT EXISTS places (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_place_id'),
			google_place_id VARCHAR NOT NULL UNIQUE,
			name VARCHAR NOT NULL,
			latitude DOUBLE NOT NULL,
			longitude DOUBLE NOT NULL,
			address VARCHAR,
			business_status VARCHAR NOT NULL DEFAULT 'OPERATIONAL',
			price_tier INTEGER NOT NULL DEFAULT 2 CHECK (price_tier BETWEEN 1 AND 3),
			cuisine VARCHAR NOT NULL DEFAULT '',
			has_outdoor_seating BOOLEAN NOT NULL DEFAULT FALSE,
			good_for_dates BOOLEAN NOT NULL DEFAULT FALSE,
			is_vegan_friendly BOOLEAN NOT NULL DEFAULT FALSE,
			good_for_groups BOOLEAN NOT NULL DEFAULT FALSE,
			quiet_ambiance BOOLEAN NOT NULL DEFAULT FALSE,
			has_cocktails BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS lists (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_list_id'),
			name VARCHAR NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			deleted_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS list_places (
			list_id BIGINT NOT NULL,
			place_id BIGINT NOT NULL,
			PRIMARY KEY (list_id, place_id)
		)`,
		`CREATE TABLE IF NOT EXISTS ratings (
			place_id BIGINT NOT NULL,
			list_id BIGINT NOT NULL,
			rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
			source VARCHAR NOT NULL DEFAULT 'user',
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			PRIMARY KEY (place_id, list_id)
		)`,
		`CREATE TABLE IF NOT EXISTS recommendations (
			id VARCHAR PRIMARY KEY,
			session_id VARCHAR NOT NULL,
			place_id BIGINT NOT NULL,
			list_id BIGINT,
			predicted_score DOUBLE NOT NULL,
			reason VARCHAR NOT NULL,
			distance_m DOUBLE NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,
		`CREATE TABLE IF NOT EXISTS feedback_records (
			recommendation_id VARCHAR PRIMARY KEY,
			observed_rating INTEGER NOT NULL CHECK (observed_rating BETWEEN 1 AND 5),
			observed_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,
	}

	for _, q := range queries {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}

// closeQuietly closes a resource and explicitly ignores any error.
// Use in error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

// closeWithLog closes a resource and logs any error. Use for cleanup
// where errors should be acknowledged but not fail the operation.
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("failed to close resource")
	}
}
