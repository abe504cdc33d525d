// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

package recommend

// selectProbe picks the next question for the remaining candidates: the
// unasked probe whose worst-case partition (largest bucket) is smallest,
// so every answer is guaranteed to cut the set as much as possible.
// Ties resolve to the earlier bank entry, which keeps selection
// deterministic for identical inputs. Returns nil when no unasked probe
// splits the candidates into two or more non-empty buckets.
func selectProbe(candidates []Candidate, asked map[string]bool) *PosedProbe {
	var (
		best      *probeSpec
		bestWorst int
	)

	for i := range probeBank {
		spec := &probeBank[i]
		if asked[spec.id] {
			continue
		}

		buckets := make(map[string]int)
		for _, c := range candidates {
			buckets[spec.key(c)]++
		}
		if len(buckets) < 2 {
			continue
		}

		worst := 0
		for _, n := range buckets {
			if n > worst {
				worst = n
			}
		}
		if best == nil || worst < bestWorst {
			best = spec
			bestWorst = worst
		}
	}

	if best == nil {
		return nil
	}
	return &PosedProbe{
		ID:      best.id,
		Prompt:  best.prompt,
		Options: best.options(candidates),
	}
}
