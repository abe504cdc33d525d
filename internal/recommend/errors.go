// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

package recommend

import "errors"

// Sentinel errors returned by the session engine.
var (
	// ErrInvalidSession indicates the session id is unknown, expired, or
	// the session is no longer active.
	ErrInvalidSession = errors.New("session not found or not active")

	// ErrStaleProbe indicates the answer targets a question other than
	// the one currently posed. The session stays active; the client
	// should re-answer the current question.
	ErrStaleProbe = errors.New("answer does not match the currently posed question")

	// ErrNoCandidates indicates the candidate set became empty. The
	// session is aborted and cannot be resumed.
	ErrNoCandidates = errors.New("no candidates remain")

	// ErrOutOfServiceArea indicates the start location falls outside the
	// served neighborhood.
	ErrOutOfServiceArea = errors.New("location outside service area")
)
