// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/gamescore/internal/auth"
	"github.com/tomtom215/gamescore/internal/cache"
	"github.com/tomtom215/gamescore/internal/fetch"
	"github.com/tomtom215/gamescore/internal/middleware"
	"github.com/tomtom215/gamescore/internal/upstream"
)

const testSecret = "api-test-secret-with-at-least-32-characters"

// fakeService answers from fixed tables.
type fakeService struct {
	ids     map[string]fetch.Result[int64]
	details map[int64]fetch.Result[upstream.DetailRecord]
	apps    map[string]fetch.Result[int64]
	summary fetch.Result[fetch.StoreSummary]
	index   fetch.Result[map[string]int64]
	grid    fetch.Result[fetch.GridImage]

	gridName     string
	gridYear     int
	rebuildCalls atomic.Int32
	purged       atomic.Int32
}

func newFakeService() *fakeService {
	return &fakeService{
		ids:     map[string]fetch.Result[int64]{},
		details: map[int64]fetch.Result[upstream.DetailRecord]{},
		apps:    map[string]fetch.Result[int64]{},
		index:   fetch.Result[map[string]int64]{Value: map[string]int64{"hades": 1145360}},
	}
}

func notFoundResult[T any]() fetch.Result[T] {
	return fetch.Result[T]{Status: fetch.StatusNotFound, Err: upstream.ErrNotFound}
}

func (f *fakeService) ResolveID(_ context.Context, name string) fetch.Result[int64] {
	if r, ok := f.ids[name]; ok {
		return r
	}
	return notFoundResult[int64]()
}

func (f *fakeService) FetchDetail(_ context.Context, id int64) fetch.Result[upstream.DetailRecord] {
	if r, ok := f.details[id]; ok {
		return r
	}
	return notFoundResult[upstream.DetailRecord]()
}

func (f *fakeService) ResolveAppID(_ context.Context, name string) fetch.Result[int64] {
	if r, ok := f.apps[name]; ok {
		return r
	}
	return notFoundResult[int64]()
}

func (f *fakeService) FetchStoreSummary(_ context.Context, appid int64) fetch.Result[fetch.StoreSummary] {
	r := f.summary
	r.Value.AppID = appid
	return r
}

func (f *fakeService) FetchIndex(context.Context) fetch.Result[map[string]int64] {
	return f.index
}

func (f *fakeService) RebuildIndex(context.Context) fetch.Result[map[string]int64] {
	f.rebuildCalls.Add(1)
	return f.index
}

func (f *fakeService) FetchGrid(_ context.Context, name string, year int) fetch.Result[fetch.GridImage] {
	f.gridName, f.gridYear = name, year
	return f.grid
}

func (f *fakeService) Purge() {
	f.purged.Add(1)
}

func (f *fakeService) CacheStats() map[string]cache.Stats {
	return map[string]cache.Stats{
		"names":   {Entries: 3, Hits: 10, Misses: 2},
		"details": {Entries: 2, Bytes: 2048},
	}
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type testServer struct {
	svc     *fakeService
	handler http.Handler
	admin   *auth.JWTManager
}

// newTestServer builds the full router with rate limiting off. withAdmin
// mounts the admin routes.
func newTestServer(t *testing.T, store Pinger, withAdmin bool) *testServer {
	t.Helper()
	svc := newFakeService()
	perf := middleware.NewPerformanceMonitor(100, time.Minute)
	h := NewHandler(svc, store, perf, HandlerConfig{IndexChunkSize: 2, Version: "test"})

	var admin *auth.JWTManager
	if withAdmin {
		var err error
		admin, err = auth.NewJWTManager(testSecret, time.Hour)
		if err != nil {
			t.Fatalf("NewJWTManager() error = %v", err)
		}
	}
	mw := NewChiMiddleware(&ChiMiddlewareConfig{RateLimitDisabled: true})
	return &testServer{svc: svc, handler: NewRouter(h, mw, admin).SetupChi(), admin: admin}
}

func (s *testServer) do(t *testing.T, method, target, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: invalid JSON %q: %v", method, target, rec.Body.String(), err)
		}
	}
	return rec, env
}

// envelope decodes APIResponse with raw data.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func (e envelope) decode(t *testing.T, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(e.Data, v); err != nil {
		t.Fatalf("decode data %s: %v", e.Data, err)
	}
}

var errUpstreamDown = errors.New("connection refused")
