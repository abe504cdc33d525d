// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

// Package models defines data structures shared across the Mesafinder
// application: catalog places, lists, ratings, recommendation records,
// and the standard API response envelope.
package models
