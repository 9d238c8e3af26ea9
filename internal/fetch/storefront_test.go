// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package fetch

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tomtom215/gamescore/internal/index"
	"github.com/tomtom215/gamescore/internal/upstream"
)

type staticLister struct {
	calls int
	apps  []upstream.App
}

func (l *staticLister) ListApps(context.Context, int64) (upstream.AppPage, error) {
	l.calls++
	return upstream.AppPage{Apps: l.apps}, nil
}

func TestFetchIndex_CachesInMemory(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		r := env.o.FetchIndex(ctx)
		if !r.OK() || r.Value["hades"] != 1145360 {
			t.Fatalf("FetchIndex() = %+v", r)
		}
	}
	if got := env.index.getCalls.Load(); got != 1 {
		t.Errorf("index Get calls = %d, want 1", got)
	}

	env.clock.Advance(24 * time.Hour)
	env.o.FetchIndex(ctx)
	if got := env.index.getCalls.Load(); got != 2 {
		t.Errorf("index Get calls = %d, want 2 after the TTL", got)
	}
}

func TestFetchIndex_Error(t *testing.T) {
	env := newTestEnv(t, nil)
	env.index.err = fmt.Errorf("list apps: %w", upstream.ErrTransient)

	r := env.o.FetchIndex(context.Background())
	if r.Status != StatusError || !errors.Is(r.Err, upstream.ErrTransient) {
		t.Errorf("FetchIndex() = %+v, want Error", r)
	}
	if r := env.o.ResolveAppID(context.Background(), "Hades"); r.Status != StatusError {
		t.Errorf("ResolveAppID() = %+v, want Error", r)
	}
}

func TestFetchIndex_SurvivesStoreOutage(t *testing.T) {
	lister := &staticLister{apps: []upstream.App{{ID: 620, Name: "Portal 2"}, {ID: 400, Name: "Portal"}}}
	o := New(Deps{
		Index: index.New(lister, failingStore{}, index.Config{TTL: time.Hour}),
		Store: failingStore{},
	}, testConfig())

	r := o.FetchIndex(context.Background())
	if !r.OK() || r.Value["portal 2"] != 620 || r.Value["portal"] != 400 {
		t.Fatalf("FetchIndex() with failing store = %+v", r)
	}
}

func TestRebuildIndex(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	env.o.FetchIndex(ctx)
	env.index.m = map[string]int64{"hades": 1145360, "hades ii": 1145350}

	r := env.o.RebuildIndex(ctx)
	if !r.OK() || len(r.Value) != 2 {
		t.Fatalf("RebuildIndex() = %+v", r)
	}
	if got := env.index.rebuildCalls.Load(); got != 1 {
		t.Errorf("rebuild calls = %d, want 1", got)
	}
	if r := env.o.ResolveAppID(ctx, "Hades II"); !r.OK() || r.Value != 1145350 {
		t.Errorf("ResolveAppID() after rebuild = %+v", r)
	}
	if got := env.index.getCalls.Load(); got != 1 {
		t.Errorf("index Get calls = %d, want 1", got)
	}
}

func TestResolveAppID(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		want   Status
		wantID int64
	}{
		{"Hades", StatusOK, 1145360},
		{"HADES™", StatusOK, 1145360},
		{"Unknown Game", StatusNotFound, 0},
		{"", StatusNotFound, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := env.o.ResolveAppID(ctx, tt.name)
			if r.Status != tt.want || r.Value != tt.wantID {
				t.Errorf("ResolveAppID(%q) = %+v", tt.name, r)
			}
		})
	}
}

func TestFetchStoreSummary(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	r := env.o.FetchStoreSummary(ctx, 1145360)
	if !r.OK() {
		t.Fatalf("FetchStoreSummary() = %+v", r)
	}
	s := r.Value
	if s.AppID != 1145360 || s.Details.Name != "Hades" || s.Reviews.ReviewScore != 9 || s.CurrentPlayers != 1234 {
		t.Errorf("summary = %+v", s)
	}
	if len(s.Degraded) != 0 {
		t.Errorf("Degraded = %v, want none", s.Degraded)
	}

	env.o.FetchStoreSummary(ctx, 1145360)
	if got := env.storefront.detailsCalls.Load(); got != 1 {
		t.Errorf("appdetails calls = %d, want 1", got)
	}
}

func TestFetchStoreSummary_PartialFailuresDegrade(t *testing.T) {
	env := newTestEnv(t, nil)
	env.storefront.reviews = func(int64) (*upstream.ReviewSummary, error) {
		return nil, fmt.Errorf("appreviews: %w", upstream.ErrTransient)
	}
	env.storefront.players = func(int64) (int, error) {
		return 0, fmt.Errorf("players: %w", upstream.ErrNotFound)
	}
	ctx := context.Background()

	r := env.o.FetchStoreSummary(ctx, 1145360)
	if !r.OK() {
		t.Fatalf("FetchStoreSummary() = %+v, want OK", r)
	}
	if len(r.Value.Degraded) != 2 || r.Value.CurrentPlayers != 0 {
		t.Errorf("summary = %+v, want reviews and current_players degraded", r.Value)
	}

	// Degraded summaries are kept only for the transient window.
	env.clock.Advance(time.Minute)
	env.o.FetchStoreSummary(ctx, 1145360)
	if got := env.storefront.detailsCalls.Load(); got != 2 {
		t.Errorf("appdetails calls = %d, want 2", got)
	}
}

func TestFetchStoreSummary_DetailsDecideStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Status
	}{
		{"not found", fmt.Errorf("appdetails: %w", upstream.ErrNotFound), StatusNotFound},
		{"malformed", fmt.Errorf("appdetails: %w", upstream.ErrMalformed), StatusNotFound},
		{"transient", fmt.Errorf("appdetails: %w", upstream.ErrTransient), StatusError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			env.storefront.details = func(int64) (*upstream.AppDetails, error) { return nil, tt.err }

			if r := env.o.FetchStoreSummary(context.Background(), 10); r.Status != tt.want {
				t.Fatalf("FetchStoreSummary() = %+v, want %v", r, tt.want)
			}
			env.o.FetchStoreSummary(context.Background(), 10)
			if got := env.storefront.detailsCalls.Load(); got != 1 {
				t.Errorf("appdetails calls = %d, want 1 while guarded", got)
			}
		})
	}
}

func TestFetchStoreSummary_InvalidID(t *testing.T) {
	env := newTestEnv(t, nil)
	if r := env.o.FetchStoreSummary(context.Background(), -1); r.Status != StatusNotFound {
		t.Errorf("FetchStoreSummary(-1) = %+v", r)
	}
}
