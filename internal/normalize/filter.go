// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package normalize

import "regexp"

var (
	// excludedMarkers are whole-word markers of non-base catalog entries.
	excludedMarkers = regexp.MustCompile(`(?i)\b(?:` +
		`demo|soundtracks?|ost|wallpapers?|dlc|artbook|art\s+book|` +
		`playtest|dedicated\s+server|sdk|trailer|bonus\s+content` +
		`)\b`)

	// excludedPatterns catch storefront add-on products.
	excludedPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bseason\s*pass\b`),
		regexp.MustCompile(`(?i)\bstarter\s*pack\b`),
		regexp.MustCompile(`(?i)\bpre-?\s*order\b`),
		regexp.MustCompile(`(?i)\bcd\s*-?\s*key\b`),
		regexp.MustCompile(`(?i)\bupgrade\s*pack\b`),
		regexp.MustCompile(`(?i)\bexpansion\s*pass\b`),
		regexp.MustCompile(`(?i)\b(?:coin|coins|gem|gems|gold|currency|credits)\s+pack\b`),
		regexp.MustCompile(`(?i)\bbundle\b`),
	}

	// regionalSuffix matches region-locked store duplicates such as
	// "Foo (RU)" or "Foo Asia Version".
	regionalSuffix = regexp.MustCompile(`(?i)(?:\(\s*(?:ru|jp|cn|kr|asia|eu|us|na|row|sea|latam)\s*\)|\b(?:ru|jp|cn|kr|asia|row|sea)\s+(?:version|edition|region))\s*$`)
)

// FilterString returns "" when name is a demo, soundtrack, wallpaper, DLC,
// regional duplicate or other add-on product, and name unchanged otherwise.
func FilterString(name string) string {
	if name == "" {
		return ""
	}
	if excludedMarkers.MatchString(name) || regionalSuffix.MatchString(name) {
		return ""
	}
	for _, p := range excludedPatterns {
		if p.MatchString(name) {
			return ""
		}
	}
	return name
}
