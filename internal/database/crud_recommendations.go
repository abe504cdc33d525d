// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avelasq/mesafinder/internal/models"
)

// InsertRecommendations persists the recommendation rows produced at
// session completion. All rows commit or none do.
func (db *DB) InsertRecommendations(ctx context.Context, recs []models.Recommendation) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin recommendation transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO recommendations (
			id, session_id, place_id, list_id, predicted_score, reason, distance_m, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare recommendation statement: %w", err)
	}
	defer closeWithLog(stmt, "recommendation statement")

	for _, r := range recs {
		var listID interface{}
		if r.ListID != 0 {
			listID = r.ListID
		}
		createdAt := r.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		if _, err := stmt.ExecContext(ctx,
			r.ID, r.SessionID, r.PlaceID, listID,
			r.PredictedScore, string(r.Reason), r.DistanceM, createdAt,
		); err != nil {
			return fmt.Errorf("insert recommendation %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit recommendations: %w", err)
	}
	return nil
}

// recommendationColumns is the select list matching scanRecommendation.
const recommendationColumns = `id, session_id, place_id, COALESCE(list_id, 0),
	predicted_score, reason, distance_m, created_at`

func scanRecommendation(row interface{ Scan(...interface{}) error }) (models.Recommendation, error) {
	var r models.Recommendation
	var reason string
	err := row.Scan(&r.ID, &r.SessionID, &r.PlaceID, &r.ListID,
		&r.PredictedScore, &reason, &r.DistanceM, &r.CreatedAt)
	r.Reason = models.ScoreReason(reason)
	return r, err
}

// RecommendationByID returns a recommendation row or ErrNotFound.
func (db *DB) RecommendationByID(ctx context.Context, id string) (models.Recommendation, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+recommendationColumns+` FROM recommendations WHERE id = ?`, id)
	r, err := scanRecommendation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Recommendation{}, ErrNotFound
	}
	if err != nil {
		return models.Recommendation{}, fmt.Errorf("query recommendation %s: %w", id, err)
	}
	return r, nil
}

// LatestRecommendationForPlace returns the most recent recommendation
// of a place within a list, used to link an incoming rating back to the
// recommendation it answers. Returns ErrNotFound when the place was
// never recommended for that list.
func (db *DB) LatestRecommendationForPlace(ctx context.Context, listID, placeID int64) (models.Recommendation, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+recommendationColumns+` FROM recommendations
		 WHERE list_id = ? AND place_id = ?
		 ORDER BY created_at DESC LIMIT 1`,
		listID, placeID)
	r, err := scanRecommendation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Recommendation{}, ErrNotFound
	}
	if err != nil {
		return models.Recommendation{}, fmt.Errorf("query recommendation for place %d: %w", placeID, err)
	}
	return r, nil
}

// AttachFeedback records the observed outcome for a recommendation.
// Returns ErrNotFound for an unknown recommendation id and
// ErrDuplicateFeedback when an outcome is already attached.
func (db *DB) AttachFeedback(ctx context.Context, f models.FeedbackRecord) error {
	if _, err := db.RecommendationByID(ctx, f.RecommendationID); err != nil {
		return err
	}

	observedAt := f.ObservedAt
	if observedAt.IsZero() {
		observedAt = time.Now().UTC()
	}

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO feedback_records (recommendation_id, observed_rating, observed_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (recommendation_id) DO NOTHING`,
		f.RecommendationID, f.ObservedRating, observedAt)
	if err != nil {
		return fmt.Errorf("insert feedback for %s: %w", f.RecommendationID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrDuplicateFeedback
	}
	return nil
}
