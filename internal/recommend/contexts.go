// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

package recommend

import "strings"

// Canonical session contexts. Free-text input is normalized to one of
// these; anything unrecognized falls back to ContextQuickLunch so the
// scorer always sees a known label.
const (
	ContextDateNight     = "Date Night"
	ContextGroupHang     = "Group Hang"
	ContextQuickLunch    = "Quick Lunch"
	ContextWeekendBrunch = "Weekend Brunch"
	ContextLateNight     = "Late Night Eats"
)

var canonicalContexts = map[string]string{
	"date night":      ContextDateNight,
	"group hang":      ContextGroupHang,
	"quick lunch":     ContextQuickLunch,
	"weekend brunch":  ContextWeekendBrunch,
	"late night eats": ContextLateNight,
}

// KnownContexts returns the canonical context labels.
func KnownContexts() []string {
	return []string{
		ContextDateNight, ContextGroupHang, ContextQuickLunch,
		ContextWeekendBrunch, ContextLateNight,
	}
}

// contextKeywords maps free-form wording to canonical labels by
// substring, checked tier by tier. Tier order is the precedence:
// "romantic late dinner" is a date, not late-night.
var contextKeywords = []struct {
	label  string
	tokens []string
}{
	{ContextDateNight, []string{"date", "anniversary", "romantic"}},
	{ContextGroupHang, []string{"group", "friends", "party", "hang"}},
	{ContextWeekendBrunch, []string{"brunch", "weekend", "breakfast"}},
	{ContextLateNight, []string{"late", "night", "bar", "after"}},
	{ContextQuickLunch, []string{"lunch", "work", "quick"}},
}

// NormalizeContext maps free-text context input to a canonical label:
// an exact label match first, then the keyword tiers, then the Quick
// Lunch fallback for anything unrecognized (e.g. "Discovery Session").
func NormalizeContext(s string) string {
	value := strings.ToLower(strings.TrimSpace(s))
	if c, ok := canonicalContexts[value]; ok {
		return c
	}
	for _, tier := range contextKeywords {
		for _, token := range tier.tokens {
			if strings.Contains(value, token) {
				return tier.label
			}
		}
	}
	return ContextQuickLunch
}
