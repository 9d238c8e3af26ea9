// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

// Package normalize derives canonical cache keys from free-text game names
// and filters non-base-game catalog entries out of provider results.
//
// Every cache in the service keys on Normalize output, so two spellings of
// the same title ("The Witcher 3: Wild Hunt" and "the witcher 3 - wild hunt")
// share one cache slot and one upstream quota unit.
package normalize

import (
	"regexp"
	"strings"
)

// Options controls the output shape of Normalize.
type Options struct {
	// DashJoin joins words with "-" instead of a space, for URL path segments.
	DashJoin bool

	// SearchMode keeps edition and version qualifiers. Search queries sent
	// upstream need them; identity keys do not.
	SearchMode bool
}

var (
	symbolStripper = strings.NewReplacer(
		"©", "", "™", "", "®", "",
		"–", "", "—", "",
		"†", "", "‡", "",
	)

	// nonWord matches everything that is not a letter, digit, underscore,
	// whitespace or hyphen.
	nonWord = regexp.MustCompile(`[^\p{L}\p{N}_\s-]+`)

	// separators splits on runs of whitespace and hyphens.
	separators = regexp.MustCompile(`[\s-]+`)

	// editionPhrases are removed in identity mode. Longer phrases come first
	// so "game of the year edition" wins over "edition"-free variants.
	editionPhrases = []string{
		"game of the year edition",
		"game of the year",
		"goty edition",
		"goty",
		"ultimate edition",
		"deluxe edition",
		"definitive edition",
		"complete edition",
		"enhanced edition",
		"special edition",
		"gold edition",
		"standard edition",
		"anniversary edition",
		"directors cut",
		"remastered",
		"remaster",
		"campaign",
	}

	// editionPattern anchors on spaces rather than \b, which only knows
	// ASCII word characters. The input is already collapsed, so words are
	// separated by exactly one space.
	editionPattern = regexp.MustCompile(`(?:^|\s)(?:` + strings.Join(editionPhrases, "|") + `)(?:\s|$)`)
)

// Normalize returns the canonical key for raw. It is pure and idempotent:
// Normalize(Normalize(s, o), o) == Normalize(s, o) for every s and o.
// Empty input yields "".
func Normalize(raw string, opts Options) string {
	if raw == "" {
		return ""
	}

	s := strings.ToLower(raw)
	s = symbolStripper.Replace(s)
	s = strings.ReplaceAll(s, "/", " ")
	s = nonWord.ReplaceAllString(s, "")
	s = collapse(s)

	if !opts.SearchMode {
		// Removing one phrase can expose another ("deluxe ultimate edition
		// edition"), so strip to a fixed point.
		for {
			stripped := collapse(editionPattern.ReplaceAllString(s, " "))
			if stripped == s {
				break
			}
			s = stripped
		}
	}

	if opts.DashJoin {
		return strings.ReplaceAll(s, " ", "-")
	}
	return s
}

// collapse folds whitespace and hyphen runs into single spaces and trims.
func collapse(s string) string {
	return strings.TrimSpace(separators.ReplaceAllString(s, " "))
}

// Key is shorthand for the identity key used by the caches.
func Key(raw string) string {
	return Normalize(raw, Options{})
}
