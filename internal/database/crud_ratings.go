// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

package database

import (
	"context"
	"fmt"

	"github.com/avelasq/mesafinder/internal/models"
)

// AddRating records a 1-5 rating for a place within a list. Returns
// ErrDuplicateRating when a rating already exists for the pair (ratings
// are append-only and never overwritten).
func (db *DB) AddRating(ctx context.Context, r models.Rating) error {
	source := r.Source
	if source == "" {
		source = models.RatingSourceUser
	}

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO ratings (place_id, list_id, rating, source) VALUES (?, ?, ?, ?)
		 ON CONFLICT (place_id, list_id) DO NOTHING`,
		r.PlaceID, r.ListID, r.Stars, string(source))
	if err != nil {
		return fmt.Errorf("insert rating: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrDuplicateRating
	}
	return nil
}

// BucketAverage returns the mean user rating and sample count for
// places sharing the given cuisine and price tier. This is the
// heuristic scorer's history read; synthetic ratings are included here
// on purpose (they exist to make the heuristic useful pre-launch).
func (db *DB) BucketAverage(ctx context.Context, cuisine string, priceTier int) (float64, int, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT COALESCE(AVG(r.rating), 0), COUNT(*)
		FROM ratings r
		JOIN places p ON p.id = r.place_id
		WHERE p.cuisine = ? AND p.price_tier = ?`,
		cuisine, priceTier)

	var avg float64
	var count int
	if err := row.Scan(&avg, &count); err != nil {
		return 0, 0, fmt.Errorf("query bucket average: %w", err)
	}
	return avg, count, nil
}

// RealFeedbackCount counts feedback records that qualify as learned-model
// training signal: attached to a non-cold-start recommendation. Synthetic
// ratings never produce feedback records (only the user rating path
// attaches outcomes), so no source filter is needed here.
func (db *DB) RealFeedbackCount(ctx context.Context) (int, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM feedback_records f
		JOIN recommendations rec ON rec.id = f.recommendation_id
		WHERE rec.reason <> ?`,
		string(models.ReasonColdStart))

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("query real feedback count: %w", err)
	}
	return count, nil
}

// TrainingExamples returns the learned model's training set: each
// qualifying feedback record joined to its recommended place and the
// session's list context. Cold-start recommendations are excluded so
// the model never trains on its own neutral fallbacks.
func (db *DB) TrainingExamples(ctx context.Context) ([]models.TrainingExample, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT p.price_tier, p.cuisine,
			p.has_outdoor_seating, p.good_for_dates, p.is_vegan_friendly,
			p.good_for_groups, p.quiet_ambiance, p.has_cocktails,
			COALESCE(l.name, ''), rec.distance_m, f.observed_rating
		FROM feedback_records f
		JOIN recommendations rec ON rec.id = f.recommendation_id
		JOIN places p ON p.id = rec.place_id
		LEFT JOIN lists l ON l.id = rec.list_id
		WHERE rec.reason <> ?
		ORDER BY f.observed_at`,
		string(models.ReasonColdStart))
	if err != nil {
		return nil, fmt.Errorf("query training examples: %w", err)
	}
	defer closeQuietly(rows)

	var examples []models.TrainingExample
	for rows.Next() {
		var ex models.TrainingExample
		if err := rows.Scan(
			&ex.PriceTier, &ex.Cuisine,
			&ex.Attributes.HasOutdoorSeating, &ex.Attributes.GoodForDates,
			&ex.Attributes.IsVeganFriendly, &ex.Attributes.GoodForGroups,
			&ex.Attributes.QuietAmbiance, &ex.Attributes.HasCocktails,
			&ex.Context, &ex.DistanceM, &ex.Rating,
		); err != nil {
			return nil, fmt.Errorf("scan training example: %w", err)
		}
		examples = append(examples, ex)
	}
	return examples, rows.Err()
}
