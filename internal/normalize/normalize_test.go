// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package normalize

import (
	"testing"
	"testing/quick"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		opts Options
		want string
	}{
		{
			name: "edition suffix and dash-colon symbols removed",
			raw:  "The Witcher 3: Wild Hunt — Game of the Year Edition",
			want: "the witcher 3 wild hunt",
		},
		{
			name: "search mode keeps edition phrase",
			raw:  "The Witcher 3: Wild Hunt — Game of the Year Edition",
			opts: Options{SearchMode: true},
			want: "the witcher 3 wild hunt game of the year edition",
		},
		{
			name: "dash join for url segments",
			raw:  "Half-Life 2: Episode One",
			opts: Options{DashJoin: true},
			want: "half-life-2-episode-one",
		},
		{
			name: "trademark symbols stripped",
			raw:  "DOOM™ Eternal®",
			want: "doom eternal",
		},
		{
			name: "slash becomes separator",
			raw:  "Fate/Samurai Remnant",
			want: "fate samurai remnant",
		},
		{
			name: "goty abbreviation",
			raw:  "Borderlands GOTY",
			want: "borderlands",
		},
		{
			name: "campaign qualifier",
			raw:  "Halo: Reach Campaign",
			want: "halo reach",
		},
		{
			name: "phrase inside a word is kept",
			raw:  "Gotye Simulator",
			want: "gotye simulator",
		},
		{
			name: "nested edition phrases",
			raw:  "Foo Deluxe Ultimate Edition Edition",
			want: "foo",
		},
		{
			name: "apostrophes and punctuation",
			raw:  "Baldur's Gate 3!!",
			want: "baldurs gate 3",
		},
		{
			name: "leading and trailing separators",
			raw:  "  --  Celeste -- ",
			opts: Options{DashJoin: true},
			want: "celeste",
		},
		{
			name: "empty input",
			raw:  "",
			want: "",
		},
		{
			name: "only symbols",
			raw:  "™®©",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.raw, tt.opts); got != tt.want {
				t.Errorf("Normalize(%q, %+v) = %q, want %q", tt.raw, tt.opts, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	samples := []string{
		"The Witcher 3: Wild Hunt — Game of the Year Edition",
		"Deluxe Ultimate Edition Edition",
		"Pokémon™ Legends: Arceus",
		"S.T.A.L.K.E.R.: Shadow of Chernobyl",
		"NieR:Automata™ - Become as Gods Edition",
		"---goty---",
		"a/b\\c|d",
		"ＡＢＣ full width",
	}
	allOpts := []Options{{}, {DashJoin: true}, {SearchMode: true}, {DashJoin: true, SearchMode: true}}

	for _, opts := range allOpts {
		for _, s := range samples {
			once := Normalize(s, opts)
			if twice := Normalize(once, opts); twice != once {
				t.Errorf("not idempotent for %q with %+v: %q then %q", s, opts, once, twice)
			}
		}

		opts := opts
		property := func(s string) bool {
			once := Normalize(s, opts)
			return Normalize(once, opts) == once
		}
		if err := quick.Check(property, &quick.Config{MaxCount: 500}); err != nil {
			t.Errorf("idempotence property failed with %+v: %v", opts, err)
		}
	}
}

func TestKey(t *testing.T) {
	t.Parallel()

	if Key("Hades II") != Normalize("Hades II", Options{}) {
		t.Error("Key should match identity Normalize")
	}
}

func TestKey_EditionPhrasesAreWholeWords(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Ōgoty":                    "ōgoty",
		"Gotyō":                    "gotyō",
		"Ōkami GOTY":               "ōkami",
		"Skyrim Ñremastered":       "skyrim ñremastered",
		"Doom GOTY GOTY":           "doom",
		"Remastered":               "",
		"Café Remastered Campaign": "café",
	}
	for raw, want := range tests {
		if got := Key(raw); got != want {
			t.Errorf("Key(%q) = %q, want %q", raw, got, want)
		}
	}
}
