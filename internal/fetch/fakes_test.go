// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package fetch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/gamescore/internal/cache"
	"github.com/tomtom215/gamescore/internal/config"
	"github.com/tomtom215/gamescore/internal/store"
	"github.com/tomtom215/gamescore/internal/upstream"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeReviews struct {
	searchCalls atomic.Int32
	detailCalls atomic.Int32
	search      func(criteria string) ([]upstream.SearchHit, error)
	detail      func(id int64) (*upstream.DetailRecord, error)
}

func (f *fakeReviews) Search(_ context.Context, criteria string) ([]upstream.SearchHit, error) {
	f.searchCalls.Add(1)
	if f.search == nil {
		return nil, nil
	}
	return f.search(criteria)
}

func (f *fakeReviews) Detail(_ context.Context, id int64) (*upstream.DetailRecord, error) {
	f.detailCalls.Add(1)
	if f.detail == nil {
		return nil, upstream.ErrNotFound
	}
	return f.detail(id)
}

type fakeStorefront struct {
	detailsCalls atomic.Int32
	details      func(appid int64) (*upstream.AppDetails, error)
	reviews      func(appid int64) (*upstream.ReviewSummary, error)
	players      func(appid int64) (int, error)
}

func (f *fakeStorefront) AppDetails(_ context.Context, appid int64) (*upstream.AppDetails, error) {
	f.detailsCalls.Add(1)
	return f.details(appid)
}

func (f *fakeStorefront) AppReviews(_ context.Context, appid int64) (*upstream.ReviewSummary, error) {
	return f.reviews(appid)
}

func (f *fakeStorefront) CurrentPlayers(_ context.Context, appid int64) (int, error) {
	return f.players(appid)
}

type fakeGrids struct {
	searchCalls atomic.Int32
	lastFilter  upstream.GridFilters
	games       []upstream.GridGame
	searchErr   error
	grids       map[int64][]upstream.Grid
}

func (f *fakeGrids) SearchGame(_ context.Context, _ string) ([]upstream.GridGame, error) {
	f.searchCalls.Add(1)
	return f.games, f.searchErr
}

func (f *fakeGrids) GetGrids(_ context.Context, id int64, filters upstream.GridFilters) ([]upstream.Grid, error) {
	f.lastFilter = filters
	return f.grids[id], nil
}

type fakeIndex struct {
	getCalls     atomic.Int32
	rebuildCalls atomic.Int32
	m            map[string]int64
	err          error
}

func (f *fakeIndex) Get(context.Context) (map[string]int64, error) {
	f.getCalls.Add(1)
	return f.m, f.err
}

func (f *fakeIndex) Rebuild(context.Context) (map[string]int64, error) {
	f.rebuildCalls.Add(1)
	return f.m, f.err
}

// failingStore fails every call.
type failingStore struct{}

var errOutage = errors.New("connection refused")

func (failingStore) Get(context.Context, string) ([]byte, error)              { return nil, errOutage }
func (failingStore) Set(context.Context, string, []byte, time.Duration) error { return errOutage }
func (failingStore) HGet(context.Context, string, string) ([]byte, error)     { return nil, errOutage }
func (failingStore) HSet(context.Context, string, string, []byte) error       { return errOutage }
func (failingStore) Expire(context.Context, string, time.Duration) error      { return errOutage }
func (failingStore) Close() error                                             { return nil }

func datasetConfig(hit time.Duration) config.DatasetCacheConfig {
	return config.DatasetCacheConfig{
		HitTTL:       hit,
		NotFoundTTL:  hit / 2,
		TransientTTL: time.Minute,
		MaxBytes:     1 << 20,
	}
}

func testConfig() Config {
	return Config{
		Names:        datasetConfig(7 * 24 * time.Hour),
		Details:      datasetConfig(24 * time.Hour),
		StoreSummary: datasetConfig(6 * time.Hour),
		Grids:        datasetConfig(7 * 24 * time.Hour),
		MatchCutoff:  0.1,
		IndexTTL:     24 * time.Hour,
		DetailTTL:    30 * 24 * time.Hour,
		AliasTTL:     30 * 24 * time.Hour,
		GridFilters:  upstream.GridFilters{Dimensions: []string{"460x215"}, Styles: []string{"alternate"}},
	}
}

func openStore(t *testing.T) *store.BadgerStore {
	t.Helper()
	s, err := store.Open(store.Config{})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

type testEnv struct {
	o          *Orchestrator
	clock      *cache.ManualClock
	reviews    *fakeReviews
	storefront *fakeStorefront
	grids      *fakeGrids
	index      *fakeIndex
}

func newTestEnv(t *testing.T, st store.Store) *testEnv {
	t.Helper()
	env := &testEnv{
		clock:   cache.NewManualClock(epoch),
		reviews: &fakeReviews{},
		storefront: &fakeStorefront{
			details: func(appid int64) (*upstream.AppDetails, error) {
				return &upstream.AppDetails{AppID: appid, Name: "Hades", Type: "game"}, nil
			},
			reviews: func(int64) (*upstream.ReviewSummary, error) {
				return &upstream.ReviewSummary{ReviewScore: 9, ReviewScoreDesc: "Overwhelmingly Positive"}, nil
			},
			players: func(int64) (int, error) { return 1234, nil },
		},
		grids: &fakeGrids{},
		index: &fakeIndex{m: map[string]int64{"hades": 1145360}},
	}
	env.o = New(Deps{
		Reviews:    env.reviews,
		Storefront: env.storefront,
		Grids:      env.grids,
		Index:      env.index,
		Store:      st,
		Clock:      env.clock,
	}, testConfig())
	return env
}
