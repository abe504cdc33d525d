// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

package services

import (
	"context"
	"time"

	"github.com/avelasq/mesafinder/internal/logging"
	"github.com/avelasq/mesafinder/internal/metrics"
)

// ListPurger physically removes lists soft-deleted before the cutoff.
type ListPurger interface {
	PurgeDeletedLists(ctx context.Context, cutoff time.Time) (int, error)
}

// PurgeService turns soft deletes into real ones once the grace period
// passes, taking the list's memberships and ratings with it.
type PurgeService struct {
	purger     ListPurger
	purgeAfter time.Duration
	interval   time.Duration
}

// NewPurgeService creates the list purge loop. purgeAfter is the grace
// period between soft delete and permanent removal.
func NewPurgeService(purger ListPurger, purgeAfter, interval time.Duration) *PurgeService {
	if purgeAfter <= 0 {
		purgeAfter = 30 * 24 * time.Hour
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &PurgeService{purger: purger, purgeAfter: purgeAfter, interval: interval}
}

// Serve implements suture.Service.
func (p *PurgeService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-p.purgeAfter)
			n, err := p.purger.PurgeDeletedLists(ctx, cutoff)
			if err != nil {
				logging.Error().Err(err).Msg("list purge failed")
				continue
			}
			if n > 0 {
				metrics.ListsPurged.Add(float64(n))
				logging.Info().Int("purged", n).Msg("deleted lists purged")
			}
		}
	}
}

func (p *PurgeService) String() string { return "list-purge" }
