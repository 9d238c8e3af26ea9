// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package fetch

import (
	"context"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/gamescore/internal/normalize"
	"github.com/tomtom215/gamescore/internal/upstream"
)

const indexKey = "applist"

// StoreSummary combines the storefront details, review summary and live
// player count of one app. Degraded lists the parts that could not be
// fetched and were left at their zero values.
type StoreSummary struct {
	AppID          int64                  `json:"appid"`
	Details        upstream.AppDetails    `json:"details"`
	Reviews        upstream.ReviewSummary `json:"reviews"`
	CurrentPlayers int                    `json:"current_players"`
	Degraded       []string               `json:"degraded,omitempty"`
}

// FetchIndex returns the normalized name to app id index. It succeeds
// whenever the storefront does, even if the durable store is down.
func (o *Orchestrator) FetchIndex(ctx context.Context) Result[map[string]int64] {
	if m, ok := o.indexCache.Get(indexKey); ok {
		return record(DatasetIndex, found(m))
	}
	r := flight(ctx, o, DatasetIndex, indexKey, func(ctx context.Context) Result[map[string]int64] {
		if m, ok := o.indexCache.Peek(indexKey); ok {
			return found(m)
		}
		m, err := o.index.Get(ctx)
		if err != nil {
			o.logCtx(ctx).Error().Err(err).Msg("Failed to load or build name index")
			return failed[map[string]int64](err)
		}
		o.indexCache.Set(indexKey, m, o.cfg.IndexTTL, 0)
		return found(m)
	})
	return record(DatasetIndex, r)
}

// RebuildIndex rebuilds the index from the storefront, persists it and
// replaces the in-memory copy.
func (o *Orchestrator) RebuildIndex(ctx context.Context) Result[map[string]int64] {
	r := flight(ctx, o, DatasetIndex, "rebuild", func(ctx context.Context) Result[map[string]int64] {
		m, err := o.index.Rebuild(ctx)
		if err != nil {
			o.logCtx(ctx).Error().Err(err).Msg("Name index rebuild failed")
			return failed[map[string]int64](err)
		}
		o.indexCache.Set(indexKey, m, o.cfg.IndexTTL, 0)
		return found(m)
	})
	return record(DatasetIndex, r)
}

// ResolveAppID maps a free-text game name to its storefront app id.
func (o *Orchestrator) ResolveAppID(ctx context.Context, name string) Result[int64] {
	key := normalize.Key(name)
	if key == "" {
		return record(DatasetAppIDs, notFound[int64](ErrEmptyKey))
	}
	idx := o.FetchIndex(ctx)
	if !idx.OK() {
		return record(DatasetAppIDs, failed[int64](idx.Err))
	}
	id, ok := idx.Value[key]
	if !ok {
		return record(DatasetAppIDs, notFound[int64](ErrNoMatch))
	}
	return record(DatasetAppIDs, found(id))
}

// FetchStoreSummary returns the storefront summary of appid. Only the app
// details decide the status; review and player count failures degrade.
func (o *Orchestrator) FetchStoreSummary(ctx context.Context, appid int64) Result[StoreSummary] {
	if appid <= 0 {
		return record(DatasetStoreSummary, notFound[StoreSummary](ErrInvalidID))
	}
	key := strconv.FormatInt(appid, 10)

	if s, ok := o.summaries.Get(key); ok {
		return record(DatasetStoreSummary, found(s))
	}
	if r, ok := fromGuard[StoreSummary](o.summaryGuard, key); ok {
		return record(DatasetStoreSummary, r)
	}

	r := flight(ctx, o, DatasetStoreSummary, key, func(ctx context.Context) Result[StoreSummary] {
		return o.fetchStoreSummary(ctx, appid, key)
	})
	return record(DatasetStoreSummary, r)
}

func (o *Orchestrator) fetchStoreSummary(ctx context.Context, appid int64, key string) Result[StoreSummary] {
	if s, ok := o.summaries.Peek(key); ok {
		return found(s)
	}

	var (
		details    *upstream.AppDetails
		reviews    *upstream.ReviewSummary
		players    int
		reviewsErr error
		playersErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := o.storefront.AppDetails(gctx, appid)
		if err != nil {
			return err
		}
		details = d
		return nil
	})
	g.Go(func() error {
		reviews, reviewsErr = o.storefront.AppReviews(gctx, appid)
		return nil
	})
	g.Go(func() error {
		players, playersErr = o.storefront.CurrentPlayers(gctx, appid)
		return nil
	})
	if err := g.Wait(); err != nil {
		return miss[StoreSummary](ctx, o, o.summaryGuard, DatasetStoreSummary, key, err)
	}

	summary := StoreSummary{AppID: appid, Details: *details}
	if reviewsErr == nil && reviews != nil {
		summary.Reviews = *reviews
	} else {
		summary.Degraded = append(summary.Degraded, "reviews")
		o.logCtx(ctx).Debug().Err(reviewsErr).Int64("appid", appid).Msg("Review summary unavailable")
	}
	if playersErr == nil {
		summary.CurrentPlayers = players
	} else {
		summary.Degraded = append(summary.Degraded, "current_players")
		o.logCtx(ctx).Debug().Err(playersErr).Int64("appid", appid).Msg("Player count unavailable")
	}

	ttl := o.cfg.StoreSummary.HitTTL
	if len(summary.Degraded) > 0 {
		// Retry the missing parts once the transient window has passed.
		_, ttl = o.summaryGuard.TTLs()
	}
	o.summaries.Set(key, summary, ttl, o.cfg.StoreSummary.MaxBytes)
	return found(summary)
}
