// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package api

import (
	"context"
	"time"

	"github.com/tomtom215/gamescore/internal/cache"
	"github.com/tomtom215/gamescore/internal/fetch"
	"github.com/tomtom215/gamescore/internal/middleware"
	"github.com/tomtom215/gamescore/internal/upstream"
)

// Service is the lookup surface the handlers need. *fetch.Orchestrator
// implements it.
type Service interface {
	ResolveID(ctx context.Context, name string) fetch.Result[int64]
	FetchDetail(ctx context.Context, id int64) fetch.Result[upstream.DetailRecord]
	ResolveAppID(ctx context.Context, name string) fetch.Result[int64]
	FetchStoreSummary(ctx context.Context, appid int64) fetch.Result[fetch.StoreSummary]
	FetchIndex(ctx context.Context) fetch.Result[map[string]int64]
	RebuildIndex(ctx context.Context) fetch.Result[map[string]int64]
	FetchGrid(ctx context.Context, name string, year int) fetch.Result[fetch.GridImage]
	Purge()
	CacheStats() map[string]cache.Stats
}

// Pinger reports durable store health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the dependencies of the HTTP handlers.
type Handler struct {
	svc        Service
	store      Pinger
	perf       *middleware.PerformanceMonitor
	chunkSize  int
	version    string
	startTime  time.Time
	pingTimeout time.Duration
}

// HandlerConfig carries the handler settings that do not come from Service.
type HandlerConfig struct {
	// IndexChunkSize is the shard size used to report index shard counts.
	IndexChunkSize int
	Version        string
}

// NewHandler creates the handler set. store and perf may be nil.
func NewHandler(svc Service, store Pinger, perf *middleware.PerformanceMonitor, cfg HandlerConfig) *Handler {
	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	return &Handler{
		svc:        svc,
		store:      store,
		perf:       perf,
		chunkSize:  cfg.IndexChunkSize,
		version:    version,
		startTime:  time.Now(),
		pingTimeout: 2 * time.Second,
	}
}
