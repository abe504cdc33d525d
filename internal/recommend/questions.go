// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

package recommend

import (
	"sort"
	"strings"

	"github.com/avelasq/mesafinder/internal/models"
)

// Probe ids are stable attribute keys; clients echo them back in answers.
const (
	ProbePriceTier = "price_tier"
	ProbeCuisine   = "cuisine"
	ProbeOutdoor   = "has_outdoor_seating"
	ProbeDates     = "good_for_dates"
	ProbeVegan     = "is_vegan_friendly"
	ProbeGroups    = "good_for_groups"
	ProbeQuiet     = "quiet_ambiance"
	ProbeCocktails = "has_cocktails"
)

const (
	answerYes = "yes"
	answerNo  = "no"
)

// probeSpec is one bank entry: how to partition candidates on an
// attribute and how to interpret an answer against it.
type probeSpec struct {
	id     string
	prompt string

	// key returns the partition bucket a candidate falls into.
	key func(c Candidate) string

	// options returns the answer values to offer, given the remaining
	// candidates. Empty or single-option probes cannot discriminate.
	options func(cs []Candidate) []string
}

// matches reports whether a candidate survives the given answer value.
func (p *probeSpec) matches(c Candidate, value string) bool {
	return p.key(c) == value
}

func priceTierKey(c Candidate) string {
	return strings.Repeat("$", c.Place.PriceTier)
}

func boolKey(get func(models.PlaceAttributes) bool) func(Candidate) string {
	return func(c Candidate) string {
		if get(c.Place.Attributes) {
			return answerYes
		}
		return answerNo
	}
}

func yesNoOptions([]Candidate) []string {
	return []string{answerYes, answerNo}
}

// distinctKeys returns the sorted distinct non-empty partition keys of
// the remaining candidates.
func distinctKeys(cs []Candidate, key func(Candidate) string) []string {
	seen := make(map[string]struct{}, len(cs))
	for _, c := range cs {
		if k := key(c); k != "" {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func boolProbe(id, prompt string, get func(models.PlaceAttributes) bool) probeSpec {
	return probeSpec{id: id, prompt: prompt, key: boolKey(get), options: yesNoOptions}
}

// probeBank is the fixed question bank in priority order. The order is
// the deterministic tie-break when two probes split equally well.
var probeBank = []probeSpec{
	{
		id:     ProbePriceTier,
		prompt: "What price range are you looking for?",
		key:    priceTierKey,
		options: func(cs []Candidate) []string {
			return distinctKeys(cs, priceTierKey)
		},
	},
	{
		id:     ProbeCuisine,
		prompt: "Any particular cuisine?",
		key:    func(c Candidate) string { return c.Place.Cuisine },
		options: func(cs []Candidate) []string {
			return distinctKeys(cs, func(c Candidate) string { return c.Place.Cuisine })
		},
	},
	boolProbe(ProbeOutdoor, "Do you want outdoor seating?",
		func(a models.PlaceAttributes) bool { return a.HasOutdoorSeating }),
	boolProbe(ProbeDates, "Is this for a date?",
		func(a models.PlaceAttributes) bool { return a.GoodForDates }),
	boolProbe(ProbeVegan, "Should it be vegan friendly?",
		func(a models.PlaceAttributes) bool { return a.IsVeganFriendly }),
	boolProbe(ProbeGroups, "Are you bringing a group?",
		func(a models.PlaceAttributes) bool { return a.GoodForGroups }),
	boolProbe(ProbeQuiet, "Do you prefer a quiet spot?",
		func(a models.PlaceAttributes) bool { return a.QuietAmbiance }),
	boolProbe(ProbeCocktails, "In the mood for cocktails?",
		func(a models.PlaceAttributes) bool { return a.HasCocktails }),
}

// probeByID returns the bank entry for a probe id, or nil.
func probeByID(id string) *probeSpec {
	for i := range probeBank {
		if probeBank[i].id == id {
			return &probeBank[i]
		}
	}
	return nil
}

// filterByAnswer returns the candidates surviving the answer. The
// result is always a subset of the input.
func filterByAnswer(cs []Candidate, spec *probeSpec, value string) []Candidate {
	kept := make([]Candidate, 0, len(cs))
	for _, c := range cs {
		if spec.matches(c, value) {
			kept = append(kept, c)
		}
	}
	return kept
}
