// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

package services

import (
	"context"
	"time"

	"github.com/avelasq/mesafinder/internal/logging"
)

// SessionSweeper abandons idle sessions.
type SessionSweeper interface {
	SweepIdle() int
}

// SweeperService periodically aborts sessions that idled past their
// timeout, so abandoned conversations don't pin memory.
type SweeperService struct {
	sweeper  SessionSweeper
	interval time.Duration
}

// NewSweeperService creates the idle-session sweep loop.
func NewSweeperService(sweeper SessionSweeper, interval time.Duration) *SweeperService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SweeperService{sweeper: sweeper, interval: interval}
}

// Serve implements suture.Service.
func (s *SweeperService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := s.sweeper.SweepIdle(); n > 0 {
				logging.Info().Int("aborted", n).Msg("idle sessions swept")
			}
		}
	}
}

func (s *SweeperService) String() string { return "session-sweeper" }
