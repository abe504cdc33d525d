// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

package models

import "time"

// List is a named collection of places a user keeps (e.g. "Date Night").
//
// Lists are soft-deleted: DeletedAt is set instead of removing the row,
// so rating history keeps its referential integrity. A periodic purge
// sweep physically removes lists deleted longer ago than the configured
// retention window, together with their memberships and ratings.
type List struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Deleted reports whether the list is currently soft-deleted.
func (l *List) Deleted() bool {
	return l.DeletedAt != nil
}
