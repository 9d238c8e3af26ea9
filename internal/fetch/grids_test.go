// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package fetch

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/tomtom215/gamescore/internal/upstream"
)

func unix(year int) int64 {
	return time.Date(year, 6, 1, 0, 0, 0, 0, time.UTC).Unix()
}

func TestPickGridGame(t *testing.T) {
	games := []upstream.GridGame{
		{ID: 1, Name: "Doom", ReleaseDate: unix(2016)},
		{ID: 2, Name: "Doom", ReleaseDate: unix(1993)},
	}

	tests := []struct {
		year int
		want int64
	}{
		{0, 1},
		{1993, 2},
		{2016, 1},
		{2020, 1},
	}
	for _, tt := range tests {
		got, ok := PickGridGame(games, tt.year)
		if !ok || got.ID != tt.want {
			t.Errorf("PickGridGame(year=%d) = %d, want %d", tt.year, got.ID, tt.want)
		}
	}

	if _, ok := PickGridGame(nil, 0); ok {
		t.Error("PickGridGame(nil) should report no game")
	}
}

func TestFetchGrid(t *testing.T) {
	env := newTestEnv(t, nil)
	env.grids.games = []upstream.GridGame{
		{ID: 1, Name: "Doom", ReleaseDate: unix(2016)},
		{ID: 2, Name: "Doom", ReleaseDate: unix(1993)},
	}
	env.grids.grids = map[int64][]upstream.Grid{
		1: {{ID: 10, URL: "https://cdn.example/new.png"}},
		2: {{ID: 20, URL: ""}, {ID: 21, URL: "https://cdn.example/old.png", Thumb: "https://cdn.example/old_thumb.png"}},
	}
	ctx := context.Background()

	r := env.o.FetchGrid(ctx, "DOOM", 1993)
	if !r.OK() || r.Value.GameID != 2 || r.Value.URL != "https://cdn.example/old.png" {
		t.Fatalf("FetchGrid(1993) = %+v", r)
	}
	if len(env.grids.lastFilter.Dimensions) != 1 || env.grids.lastFilter.Styles[0] != "alternate" {
		t.Errorf("filters = %+v, want the configured ones", env.grids.lastFilter)
	}

	if r := env.o.FetchGrid(ctx, "Doom", 0); !r.OK() || r.Value.GameID != 1 {
		t.Errorf("FetchGrid(no year) = %+v", r)
	}
	if got := env.grids.searchCalls.Load(); got != 2 {
		t.Errorf("search calls = %d, want 2 (year is part of the key)", got)
	}

	env.o.FetchGrid(ctx, "doom", 1993)
	if got := env.grids.searchCalls.Load(); got != 2 {
		t.Errorf("search calls = %d, want 2 after a cached lookup", got)
	}
}

func TestFetchGrid_Misses(t *testing.T) {
	tests := []struct {
		name  string
		games []upstream.GridGame
		grids map[int64][]upstream.Grid
		err   error
		want  Status
	}{
		{"no games", nil, nil, nil, StatusNotFound},
		{"no urls", []upstream.GridGame{{ID: 1}}, map[int64][]upstream.Grid{1: {{ID: 5}}}, nil, StatusNotFound},
		{"provider down", nil, nil, fmt.Errorf("grid_search: %w", upstream.ErrTransient), StatusError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			env.grids.games = tt.games
			env.grids.grids = tt.grids
			env.grids.searchErr = tt.err

			if r := env.o.FetchGrid(context.Background(), "Obscure Game", 0); r.Status != tt.want {
				t.Fatalf("FetchGrid() = %+v, want %v", r, tt.want)
			}
			env.o.FetchGrid(context.Background(), "Obscure Game", 0)
			if got := env.grids.searchCalls.Load(); got != 1 {
				t.Errorf("search calls = %d, want 1 while guarded", got)
			}
		})
	}
}

func TestSweepAndPurge(t *testing.T) {
	env := newTestEnv(t, nil)
	env.reviews.detail = hadesDetail
	ctx := context.Background()

	env.o.FetchDetail(ctx, 1)
	env.o.FetchStoreSummary(ctx, 1145360)
	env.o.FetchIndex(ctx)

	if removed := env.o.Sweep(); removed != 0 {
		t.Errorf("Sweep() on fresh caches removed %d", removed)
	}

	// Summaries (6h) expire; details (24h), names (7d) and index (24h) do not.
	env.clock.Advance(7 * time.Hour)
	if removed := env.o.Sweep(); removed != 1 {
		t.Errorf("Sweep() removed %d, want 1", removed)
	}

	env.o.Purge()
	stats := env.o.CacheStats()
	for name, st := range stats {
		if st.Entries != 0 {
			t.Errorf("%s has %d entries after Purge", name, st.Entries)
		}
	}

	env.o.FetchDetail(ctx, 1)
	if got := env.reviews.detailCalls.Load(); got != 2 {
		t.Errorf("detail calls = %d, want 2 after Purge", got)
	}
}
