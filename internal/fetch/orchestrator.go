// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package fetch

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/gamescore/internal/cache"
	"github.com/tomtom215/gamescore/internal/config"
	"github.com/tomtom215/gamescore/internal/logging"
	"github.com/tomtom215/gamescore/internal/metrics"
	"github.com/tomtom215/gamescore/internal/store"
	"github.com/tomtom215/gamescore/internal/upstream"
)

// Dataset names label caches, metrics and single-flight keys.
const (
	DatasetNames        = "names"
	DatasetDetails      = "details"
	DatasetStoreSummary = "store_summary"
	DatasetGrids        = "grids"
	DatasetIndex        = "index"
	DatasetAppIDs       = "app_ids"
)

// ReviewsAPI is the review aggregator.
type ReviewsAPI interface {
	Search(ctx context.Context, criteria string) ([]upstream.SearchHit, error)
	Detail(ctx context.Context, id int64) (*upstream.DetailRecord, error)
}

// StorefrontAPI is the per-app part of the storefront.
type StorefrontAPI interface {
	AppDetails(ctx context.Context, appid int64) (*upstream.AppDetails, error)
	AppReviews(ctx context.Context, appid int64) (*upstream.ReviewSummary, error)
	CurrentPlayers(ctx context.Context, appid int64) (int, error)
}

// GridsAPI is the grid artwork provider.
type GridsAPI interface {
	SearchGame(ctx context.Context, name string) ([]upstream.GridGame, error)
	GetGrids(ctx context.Context, id int64, filters upstream.GridFilters) ([]upstream.Grid, error)
}

// IndexSource loads or rebuilds the storefront name index.
type IndexSource interface {
	Get(ctx context.Context) (map[string]int64, error)
	Rebuild(ctx context.Context) (map[string]int64, error)
}

// Config holds the orchestrator's cache and matching settings.
type Config struct {
	Names        config.DatasetCacheConfig
	Details      config.DatasetCacheConfig
	StoreSummary config.DatasetCacheConfig
	Grids        config.DatasetCacheConfig

	// MatchCutoff is the largest search distance accepted as a match.
	MatchCutoff float64

	// IndexTTL is how long the name index stays in memory.
	IndexTTL time.Duration

	// DetailTTL and AliasTTL are the durable store expiries of detail
	// snapshots and name aliases.
	DetailTTL time.Duration
	AliasTTL  time.Duration

	GridFilters upstream.GridFilters
}

// ConfigFrom extracts the orchestrator settings from the service config.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		Names:        cfg.Cache.Names,
		Details:      cfg.Cache.Details,
		StoreSummary: cfg.Cache.StoreSummary,
		Grids:        cfg.Cache.Grids,
		MatchCutoff:  cfg.Reviews.MatchCutoff,
		IndexTTL:     cfg.Index.TTL,
		DetailTTL:    cfg.Store.DetailTTL,
		AliasTTL:     cfg.Store.AliasTTL,
		GridFilters:  upstream.GridFilters{Dimensions: cfg.Grids.Dimensions, Styles: cfg.Grids.Styles},
	}
}

// Deps are the collaborators of an Orchestrator. Store may be nil.
type Deps struct {
	Reviews    ReviewsAPI
	Storefront StorefrontAPI
	Grids      GridsAPI
	Index      IndexSource
	Store      store.Store
	Clock      cache.Clock
}

// detailEntry is a cached detail record. Stale entries came from the
// durable snapshot and live only for the transient TTL.
type detailEntry struct {
	Record upstream.DetailRecord `json:"record"`
	Stale  bool                  `json:"stale,omitempty"`
}

// Orchestrator answers lookups from memory, the durable store and the
// providers, in that order, and writes answers back down the tiers.
type Orchestrator struct {
	reviews    ReviewsAPI
	storefront StorefrontAPI
	grids      GridsAPI
	index      IndexSource
	store      store.Store
	cfg        Config

	names        *cache.TTLCache[int64]
	namesGuard   *cache.NegativeGuard
	details      *cache.TTLCache[detailEntry]
	detailsGuard *cache.NegativeGuard
	summaries    *cache.TTLCache[StoreSummary]
	summaryGuard *cache.NegativeGuard
	gridImages   *cache.TTLCache[GridImage]
	gridsGuard   *cache.NegativeGuard
	indexCache   *cache.TTLCache[map[string]int64]

	group singleflight.Group
	log   zerolog.Logger
}

// New creates an Orchestrator with one cache and one guard per dataset.
func New(deps Deps, cfg Config) *Orchestrator {
	clock := deps.Clock
	if clock == nil {
		clock = cache.SystemClock
	}
	log := logging.WithComponent("fetch")

	o := &Orchestrator{
		reviews:    deps.Reviews,
		storefront: deps.Storefront,
		grids:      deps.Grids,
		index:      deps.Index,
		store:      deps.Store,
		cfg:        cfg,
		log:        log,
	}

	o.names = newDatasetCache[int64](DatasetNames, cfg.Names, clock, log)
	o.namesGuard = newGuard(DatasetNames, cfg.Names, clock)
	o.details = newDatasetCache[detailEntry](DatasetDetails, cfg.Details, clock, log)
	o.detailsGuard = newGuard(DatasetDetails, cfg.Details, clock)
	o.summaries = newDatasetCache[StoreSummary](DatasetStoreSummary, cfg.StoreSummary, clock, log)
	o.summaryGuard = newGuard(DatasetStoreSummary, cfg.StoreSummary, clock)
	o.gridImages = newDatasetCache[GridImage](DatasetGrids, cfg.Grids, clock, log)
	o.gridsGuard = newGuard(DatasetGrids, cfg.Grids, clock)
	o.indexCache = cache.NewTTLCache[map[string]int64](DatasetIndex,
		cache.WithClock[map[string]int64](clock),
		cache.WithDefaultTTL[map[string]int64](cfg.IndexTTL),
	)
	return o
}

func newDatasetCache[V any](name string, dc config.DatasetCacheConfig, clock cache.Clock, log zerolog.Logger) *cache.TTLCache[V] {
	return cache.NewTTLCache[V](name,
		cache.WithClock[V](clock),
		cache.WithDefaultTTL[V](dc.HitTTL),
		cache.WithEvictionCallback[V](func(key string, _ V, reason cache.EvictReason) {
			if reason == cache.EvictCapacity {
				log.Debug().Str("cache", name).Str("key", key).Msg("Evicted oldest entry over byte budget")
			}
		}),
	)
}

func newGuard(name string, dc config.DatasetCacheConfig, clock cache.Clock) *cache.NegativeGuard {
	return cache.NewNegativeGuard(name+"_misses", cache.GuardConfig{
		HitTTL:       dc.HitTTL,
		NotFoundTTL:  dc.NotFoundTTL,
		TransientTTL: dc.TransientTTL,
		MaxBytes:     dc.MaxBytes,
	}, clock)
}

// flight runs fn once for concurrent callers of the same dataset and key.
// fn runs on a context that ignores the caller's cancellation, so the
// write-back completes even if every waiter has gone; a caller whose ctx
// ends stops waiting and gets an Error result.
func flight[T any](ctx context.Context, o *Orchestrator, dataset, key string, fn func(context.Context) Result[T]) Result[T] {
	detached := context.WithoutCancel(ctx)
	ch := o.group.DoChan(dataset+"/"+key, func() (any, error) {
		return fn(detached), nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			metrics.RecordSingleflightShared(dataset)
		}
		return res.Val.(Result[T])
	case <-ctx.Done():
		return failed[T](ctx.Err())
	}
}

// miss records a failed upstream lookup in guard and converts err.
// Final answers become NotFound; everything else is remembered as transient.
func miss[T any](ctx context.Context, o *Orchestrator, guard *cache.NegativeGuard, dataset, key string, err error) Result[T] {
	switch {
	case isFinal(err):
		guard.RememberNotFound(key)
		o.logCtx(ctx).Debug().Err(err).Str("dataset", dataset).Str("key", key).Msg("Upstream has no record")
		return notFound[T](err)
	case isContextErr(err):
		return failed[T](err)
	default:
		guard.RememberTransient(key)
		o.logCtx(ctx).Warn().Err(err).Str("dataset", dataset).Str("key", key).Msg("Upstream lookup failed")
		return failed[T](err)
	}
}

// logCtx returns the component logger with the request and correlation
// IDs carried by ctx.
func (o *Orchestrator) logCtx(ctx context.Context) *zerolog.Logger {
	logger := logging.WithContextIDs(ctx, o.log)
	return &logger
}

// storeGet reads key from the durable store. Absence and outages both
// report false; outages are logged.
func (o *Orchestrator) storeGet(ctx context.Context, key string) ([]byte, bool) {
	if o.store == nil {
		return nil, false
	}
	data, err := o.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			o.logCtx(ctx).Warn().Err(err).Str("key", key).Msg("Durable store read failed")
		}
		return nil, false
	}
	return data, true
}

// storeSet writes key to the durable store, logging failures.
func (o *Orchestrator) storeSet(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if o.store == nil {
		return
	}
	if err := o.store.Set(ctx, key, value, ttl); err != nil {
		o.logCtx(ctx).Warn().Err(err).Str("key", key).Msg("Durable store write failed")
	}
}

// Sweep removes expired entries from every cache and guard.
func (o *Orchestrator) Sweep() int {
	removed := o.names.Sweep() + o.namesGuard.Sweep() +
		o.details.Sweep() + o.detailsGuard.Sweep() +
		o.summaries.Sweep() + o.summaryGuard.Sweep() +
		o.gridImages.Sweep() + o.gridsGuard.Sweep() +
		o.indexCache.Sweep()
	if removed > 0 {
		o.log.Debug().Int("removed", removed).Msg("Swept expired cache entries")
	}
	return removed
}

// Purge clears every cache and guard. The durable store is left alone.
func (o *Orchestrator) Purge() {
	o.names.Clear()
	o.namesGuard.Clear()
	o.details.Clear()
	o.detailsGuard.Clear()
	o.summaries.Clear()
	o.summaryGuard.Clear()
	o.gridImages.Clear()
	o.gridsGuard.Clear()
	o.indexCache.Clear()
	o.log.Info().Msg("In-memory caches purged")
}

// CacheStats returns the counters of the positive caches by dataset.
func (o *Orchestrator) CacheStats() map[string]cache.Stats {
	return map[string]cache.Stats{
		DatasetNames:        o.names.Stats(),
		DatasetDetails:      o.details.Stats(),
		DatasetStoreSummary: o.summaries.Stats(),
		DatasetGrids:        o.gridImages.Stats(),
		DatasetIndex:        o.indexCache.Stats(),
	}
}
