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

	"github.com/avelasq/mesafinder/internal/models"
)

// IngestPlaces bulk-inserts catalog places, deduplicated by Google
// place id. Rows whose google_place_id already exists are skipped.
// Returns the number of rows actually inserted.
func (db *DB) IngestPlaces(ctx context.Context, places []models.PlaceIngest) (int, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin ingest transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO places (
			google_place_id, name, latitude, longitude, address, business_status,
			price_tier, cuisine, has_outdoor_seating, good_for_dates,
			is_vegan_friendly, good_for_groups, quiet_ambiance, has_cocktails
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (google_place_id) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("prepare ingest statement: %w", err)
	}
	defer closeWithLog(stmt, "ingest statement")

	inserted := 0
	for _, p := range places {
		status := p.BusinessStatus
		if status == "" {
			status = string(models.StatusOperational)
		}
		tier := p.PriceTier
		if tier == 0 {
			tier = 2
		}
		res, err := stmt.ExecContext(ctx,
			p.GooglePlaceID, p.Name, p.Latitude, p.Longitude, p.Address, status,
			tier, p.Cuisine, p.HasOutdoorSeating, p.GoodForDates,
			p.IsVeganFriendly, p.GoodForGroups, p.QuietAmbiance, p.HasCocktails,
		)
		if err != nil {
			return 0, fmt.Errorf("insert place %s: %w", p.GooglePlaceID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit ingest: %w", err)
	}
	return inserted, nil
}

// placeColumns is the select list matching scanPlace.
const placeColumns = `id, google_place_id, name, latitude, longitude,
	COALESCE(address, ''), business_status, price_tier, cuisine,
	has_outdoor_seating, good_for_dates, is_vegan_friendly,
	good_for_groups, quiet_ambiance, has_cocktails`

// scanPlace scans one place row.
func scanPlace(row interface{ Scan(...interface{}) error }) (models.Place, error) {
	var p models.Place
	err := row.Scan(
		&p.ID, &p.GooglePlaceID, &p.Name, &p.Latitude, &p.Longitude,
		&p.Address, &p.Status, &p.PriceTier, &p.Cuisine,
		&p.Attributes.HasOutdoorSeating, &p.Attributes.GoodForDates,
		&p.Attributes.IsVeganFriendly, &p.Attributes.GoodForGroups,
		&p.Attributes.QuietAmbiance, &p.Attributes.HasCocktails,
	)
	return p, err
}

// OperationalPlaces returns every place currently open for business.
// This is the candidate catalog read consumed by the session engine;
// distance filtering happens in memory (the catalog is small).
func (db *DB) OperationalPlaces(ctx context.Context) ([]models.Place, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+placeColumns+` FROM places WHERE business_status = ? ORDER BY id`,
		string(models.StatusOperational))
	if err != nil {
		return nil, fmt.Errorf("query operational places: %w", err)
	}
	defer closeQuietly(rows)

	var places []models.Place
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan place: %w", err)
		}
		places = append(places, p)
	}
	return places, rows.Err()
}

// PlaceByID returns a single place or ErrNotFound.
func (db *DB) PlaceByID(ctx context.Context, id int64) (models.Place, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+placeColumns+` FROM places WHERE id = ?`, id)
	p, err := scanPlace(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Place{}, ErrNotFound
	}
	if err != nil {
		return models.Place{}, fmt.Errorf("query place %d: %w", id, err)
	}
	return p, nil
}

// SearchPlaces returns up to limit places whose name contains q
// (case-insensitive), ordered by name.
func (db *DB) SearchPlaces(ctx context.Context, q string, limit int) ([]models.Place, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+placeColumns+` FROM places
		 WHERE name ILIKE ? ORDER BY name LIMIT ?`,
		"%"+q+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("search places: %w", err)
	}
	defer closeQuietly(rows)

	var places []models.Place
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan place: %w", err)
		}
		places = append(places, p)
	}
	return places, rows.Err()
}
