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

// CreateList creates a new active list and returns it.
func (db *DB) CreateList(ctx context.Context, name string) (models.List, error) {
	row := db.conn.QueryRowContext(ctx,
		`INSERT INTO lists (name) VALUES (?) RETURNING id, name, created_at`, name)

	var l models.List
	if err := row.Scan(&l.ID, &l.Name, &l.CreatedAt); err != nil {
		return models.List{}, fmt.Errorf("create list: %w", err)
	}
	return l, nil
}

// ActiveLists returns all lists that are not soft-deleted, ordered by name.
func (db *DB) ActiveLists(ctx context.Context) ([]models.List, error) {
	return db.queryLists(ctx,
		`SELECT id, name, created_at, deleted_at FROM lists
		 WHERE deleted_at IS NULL ORDER BY name`)
}

// DeletedLists returns all soft-deleted lists, most recently deleted first.
func (db *DB) DeletedLists(ctx context.Context) ([]models.List, error) {
	return db.queryLists(ctx,
		`SELECT id, name, created_at, deleted_at FROM lists
		 WHERE deleted_at IS NOT NULL ORDER BY deleted_at DESC`)
}

func (db *DB) queryLists(ctx context.Context, query string) ([]models.List, error) {
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query lists: %w", err)
	}
	defer closeQuietly(rows)

	var lists []models.List
	for rows.Next() {
		var l models.List
		var deletedAt sql.NullTime
		if err := rows.Scan(&l.ID, &l.Name, &l.CreatedAt, &deletedAt); err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		if deletedAt.Valid {
			t := deletedAt.Time
			l.DeletedAt = &t
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

// SoftDeleteList marks an active list deleted. Returns ErrNotFound if
// the list does not exist or is already deleted. Rating history is
// preserved until the purge sweep.
func (db *DB) SoftDeleteList(ctx context.Context, id int64, now time.Time) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE lists SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		now.UTC(), id)
	if err != nil {
		return fmt.Errorf("soft delete list %d: %w", id, err)
	}
	return requireRowAffected(res)
}

// RestoreList clears the deletion mark on a soft-deleted list.
func (db *DB) RestoreList(ctx context.Context, id int64) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE lists SET deleted_at = NULL WHERE id = ? AND deleted_at IS NOT NULL`, id)
	if err != nil {
		return fmt.Errorf("restore list %d: %w", id, err)
	}
	return requireRowAffected(res)
}

// ListByID returns a list (active or deleted) or ErrNotFound.
func (db *DB) ListByID(ctx context.Context, id int64) (models.List, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, name, created_at, deleted_at FROM lists WHERE id = ?`, id)

	var l models.List
	var deletedAt sql.NullTime
	err := row.Scan(&l.ID, &l.Name, &l.CreatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.List{}, ErrNotFound
	}
	if err != nil {
		return models.List{}, fmt.Errorf("query list %d: %w", id, err)
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		l.DeletedAt = &t
	}
	return l, nil
}

// AddPlaceToList adds a place to a list; adding twice is a no-op.
func (db *DB) AddPlaceToList(ctx context.Context, listID, placeID int64) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO list_places (list_id, place_id) VALUES (?, ?)
		 ON CONFLICT (list_id, place_id) DO NOTHING`,
		listID, placeID)
	if err != nil {
		return fmt.Errorf("add place %d to list %d: %w", placeID, listID, err)
	}
	return nil
}

// PurgeDeletedLists physically removes lists soft-deleted before the
// cutoff, together with their memberships and ratings. Returns the
// number of lists purged.
func (db *DB) PurgeDeletedLists(ctx context.Context, cutoff time.Time) (int, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin purge transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM lists WHERE deleted_at IS NOT NULL AND deleted_at < ?`,
		cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("query purgeable lists: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			closeQuietly(rows)
			return 0, fmt.Errorf("scan purgeable list id: %w", err)
		}
		ids = append(ids, id)
	}
	closeQuietly(rows)
	if err := rows.Err(); err != nil {
		return 0, err
	}

	if len(ids) == 0 {
		return 0, tx.Commit()
	}

	for _, id := range ids {
		for _, q := range []string{
			`DELETE FROM ratings WHERE list_id = ?`,
			`DELETE FROM list_places WHERE list_id = ?`,
			`DELETE FROM lists WHERE id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return 0, fmt.Errorf("purge list %d: %w", id, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit purge: %w", err)
	}
	return len(ids), nil
}

// requireRowAffected maps zero affected rows to ErrNotFound.
func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
