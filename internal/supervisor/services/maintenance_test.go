// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/gamescore/internal/fetch"
)

type fakeSweeper struct{ calls atomic.Int32 }

func (f *fakeSweeper) Sweep() int {
	f.calls.Add(1)
	return 3
}

type fakeGC struct {
	calls atomic.Int32
	err   error
}

func (f *fakeGC) RunGC(context.Context) error {
	f.calls.Add(1)
	return f.err
}

type fakeIndex struct {
	mu    sync.Mutex
	calls []string
	fail  bool
}

func (f *fakeIndex) result() fetch.Result[map[string]int64] {
	if f.fail {
		return fetch.Result[map[string]int64]{Status: fetch.StatusError, Err: errors.New("storefront down")}
	}
	return fetch.Result[map[string]int64]{Value: map[string]int64{"portal": 400}, Status: fetch.StatusOK}
}

func (f *fakeIndex) FetchIndex(context.Context) fetch.Result[map[string]int64] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "fetch")
	return f.result()
}

func (f *fakeIndex) RebuildIndex(context.Context) fetch.Result[map[string]int64] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "rebuild")
	return f.result()
}

func (f *fakeIndex) snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func TestCacheSweeperService(t *testing.T) {
	sw := &fakeSweeper{}
	svc := NewCacheSweeperService(sw, time.Minute)
	if svc.String() != "cache-sweeper" {
		t.Errorf("String() = %q", svc.String())
	}
	ticker, stop := runService(t, svc)
	if got := sw.calls.Load(); got != 0 {
		t.Errorf("sweeps before tick = %d, want 0", got)
	}
	ticker.tick(t)
	_ = stop()
	if got := sw.calls.Load(); got != 1 {
		t.Errorf("sweeps = %d, want 1", got)
	}
}

func TestIndexWarmerService(t *testing.T) {
	tests := []struct {
		name   string
		warm   bool
		ticks  int
		expect []string
	}{
		{"no warm", false, 2, []string{"rebuild", "rebuild"}},
		{"warm from snapshot then rebuild", true, 2, []string{"fetch", "rebuild", "rebuild"}},
		{"warm only", true, 0, []string{"fetch"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := &fakeIndex{}
			ticker, stop := runService(t, NewIndexWarmerService(idx, time.Hour, tt.warm))
			for i := 0; i < tt.ticks; i++ {
				ticker.tick(t)
			}
			_ = stop()

			got := idx.snapshot()
			if len(got) != len(tt.expect) {
				t.Fatalf("calls = %v, want %v", got, tt.expect)
			}
			for i := range got {
				if got[i] != tt.expect[i] {
					t.Errorf("calls = %v, want %v", got, tt.expect)
					break
				}
			}
		})
	}
}

func TestIndexWarmerService_WarmsWithoutRefresh(t *testing.T) {
	idx := &fakeIndex{}
	err := NewIndexWarmerService(idx, 0, true).Serve(context.Background())
	if !errors.Is(err, suture.ErrDoNotRestart) {
		t.Errorf("Serve() = %v, want ErrDoNotRestart", err)
	}
	if got := idx.snapshot(); len(got) != 1 || got[0] != "fetch" {
		t.Errorf("calls = %v, want [fetch]", got)
	}
}

func TestIndexWarmerService_FailureKeepsTicking(t *testing.T) {
	idx := &fakeIndex{fail: true}
	ticker, stop := runService(t, NewIndexWarmerService(idx, time.Hour, true))
	ticker.tick(t)
	if err := stop(); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
	if got := len(idx.snapshot()); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestIndexResult(t *testing.T) {
	if err := indexResult(fetch.Result[map[string]int64]{Status: fetch.StatusOK}); err != nil {
		t.Errorf("ok: %v", err)
	}
	cause := errors.New("quota")
	if err := indexResult(fetch.Result[map[string]int64]{Status: fetch.StatusError, Err: cause}); !errors.Is(err, cause) {
		t.Errorf("error: %v, want wrapping %v", err, cause)
	}
	if err := indexResult(fetch.Result[map[string]int64]{Status: fetch.StatusNotFound}); err == nil {
		t.Error("not found without cause: want error")
	}
}

func TestStoreGCService(t *testing.T) {
	gc := &fakeGC{err: errors.New("value log busy")}
	ticker, stop := runService(t, NewStoreGCService(gc, time.Minute))
	ticker.tick(t)
	ticker.tick(t)
	if err := stop(); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
	if got := gc.calls.Load(); got != 2 {
		t.Errorf("GC runs = %d, want 2", got)
	}
}
