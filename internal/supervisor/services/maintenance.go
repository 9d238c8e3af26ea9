// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/gamescore/internal/fetch"
	"github.com/tomtom215/gamescore/internal/logging"
)

// Sweeper drops expired entries from in-memory caches.
type Sweeper interface {
	Sweep() int
}

// IndexFetcher loads and rebuilds the storefront name index.
type IndexFetcher interface {
	FetchIndex(ctx context.Context) fetch.Result[map[string]int64]
	RebuildIndex(ctx context.Context) fetch.Result[map[string]int64]
}

// GarbageCollector reclaims space in the persistent store.
type GarbageCollector interface {
	RunGC(ctx context.Context) error
}

// NewCacheSweeperService sweeps expired cache entries every interval.
// Lookups already treat expired entries as absent; the sweep only bounds
// memory held by keys nobody asks for again.
func NewCacheSweeperService(s Sweeper, interval time.Duration) *PeriodicService {
	return NewPeriodicService("cache-sweeper", interval, false, func(ctx context.Context) error {
		if n := s.Sweep(); n > 0 {
			logger := logging.WithComponent("cache-sweeper")
			logger.Debug().Int("removed", n).Msg("Swept expired cache entries")
		}
		return nil
	})
}

// NewIndexWarmerService rebuilds the name index every interval. With
// warmOnStartup it loads the index once at start, from the snapshot if
// one is fresh, so the first resolve does not pay for a full download.
func NewIndexWarmerService(f IndexFetcher, interval time.Duration, warmOnStartup bool) *PeriodicService {
	svc := NewPeriodicService("index-warmer", interval, false, func(ctx context.Context) error {
		return indexResult(f.RebuildIndex(ctx))
	})
	if warmOnStartup {
		svc.runOnStart = true
		warmed := false
		svc.task = func(ctx context.Context) error {
			if !warmed {
				warmed = true
				return indexResult(f.FetchIndex(ctx))
			}
			return indexResult(f.RebuildIndex(ctx))
		}
	}
	return svc
}

func indexResult(r fetch.Result[map[string]int64]) error {
	switch {
	case r.Status == fetch.StatusOK:
		return nil
	case r.Err != nil:
		return fmt.Errorf("index refresh: %w", r.Err)
	default:
		return errors.New("index refresh: storefront returned no index")
	}
}

// NewStoreGCService runs value-log GC on the store every interval.
func NewStoreGCService(gc GarbageCollector, interval time.Duration) *PeriodicService {
	return NewPeriodicService("store-gc", interval, false, gc.RunGC)
}
