// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

package models

import "time"

// APIResponse is the standard envelope returned by all HTTP endpoints.
//
// Status is "success" (see Data) or "error" (see Error). Metadata is
// always populated for observability.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`

	// Degraded is set when the response is served despite a failed
	// durability write (e.g. recommendation persistence). The
	// user-visible payload is still complete.
	Degraded bool `json:"degraded,omitempty"`
}

// APIError carries a machine-readable code and a human-readable message.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error codes returned by the API.
const (
	ErrCodeValidation            = "VALIDATION_ERROR"
	ErrCodeInvalidSession        = "INVALID_SESSION"
	ErrCodeStaleQuestion         = "STALE_QUESTION"
	ErrCodeNoCandidates          = "NO_CANDIDATES"
	ErrCodeOutOfServiceArea      = "OUT_OF_SERVICE_AREA"
	ErrCodeUnknownRecommendation = "UNKNOWN_RECOMMENDATION"
	ErrCodeDuplicateFeedback     = "DUPLICATE_FEEDBACK"
	ErrCodeNotFound              = "NOT_FOUND"
	ErrCodeConflict              = "CONFLICT"
	ErrCodeInternal              = "INTERNAL_ERROR"
)
