// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package fetch

import (
	"context"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/gamescore/internal/normalize"
	"github.com/tomtom215/gamescore/internal/upstream"
)

// Durable store key prefixes.
const (
	aliasPrefix  = "alias:"
	detailPrefix = "detail:"
)

// BestMatch returns the search hit with the lowest distance not above
// cutoff, ignoring hits rejected by normalize.FilterString. Ties keep the
// earlier hit.
func BestMatch(hits []upstream.SearchHit, cutoff float64) (upstream.SearchHit, bool) {
	var best upstream.SearchHit
	ok := false
	for _, h := range hits {
		if normalize.FilterString(h.Name) == "" || h.Dist > cutoff {
			continue
		}
		if !ok || h.Dist < best.Dist {
			best, ok = h, true
		}
	}
	return best, ok
}

// ResolveID maps a free-text game name to its review aggregator id.
func (o *Orchestrator) ResolveID(ctx context.Context, name string) Result[int64] {
	key := normalize.Key(name)
	if key == "" {
		return record(DatasetNames, notFound[int64](ErrEmptyKey))
	}
	if id, ok := o.names.Get(key); ok {
		return record(DatasetNames, found(id))
	}
	if r, ok := fromGuard[int64](o.namesGuard, key); ok {
		return record(DatasetNames, r)
	}

	r := flight(ctx, o, DatasetNames, key, func(ctx context.Context) Result[int64] {
		return o.resolveID(ctx, name, key)
	})
	return record(DatasetNames, r)
}

func (o *Orchestrator) resolveID(ctx context.Context, name, key string) Result[int64] {
	// A flight that finished between our cache miss and joining the group
	// has already written the answer.
	if id, ok := o.names.Peek(key); ok {
		return found(id)
	}
	if id, ok := o.readAlias(ctx, key); ok {
		o.names.Set(key, id, o.cfg.Names.HitTTL, o.cfg.Names.MaxBytes)
		return found(id)
	}

	criteria := normalize.Normalize(name, normalize.Options{SearchMode: true})
	hits, err := o.reviews.Search(ctx, criteria)
	if err != nil {
		return miss[int64](ctx, o, o.namesGuard, DatasetNames, key, err)
	}

	best, ok := BestMatch(hits, o.cfg.MatchCutoff)
	if !ok {
		o.namesGuard.RememberNotFound(key)
		o.logCtx(ctx).Debug().Str("key", key).Int("candidates", len(hits)).Msg("No search hit within cutoff")
		return notFound[int64](ErrNoMatch)
	}

	o.names.Set(key, best.ID, o.cfg.Names.HitTTL, o.cfg.Names.MaxBytes)
	o.storeSet(ctx, aliasPrefix+key, []byte(strconv.FormatInt(best.ID, 10)), o.cfg.AliasTTL)
	return found(best.ID)
}

func (o *Orchestrator) readAlias(ctx context.Context, key string) (int64, bool) {
	data, ok := o.storeGet(ctx, aliasPrefix+key)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil || id <= 0 {
		o.logCtx(ctx).Warn().Str("key", key).Msg("Ignoring corrupt name alias")
		return 0, false
	}
	return id, true
}

// FetchDetail returns the review aggregator record for id. When the provider
// is unavailable, the last durable snapshot is served as a stale result.
func (o *Orchestrator) FetchDetail(ctx context.Context, id int64) Result[upstream.DetailRecord] {
	if id <= 0 {
		return record(DatasetDetails, notFound[upstream.DetailRecord](ErrInvalidID))
	}
	key := strconv.FormatInt(id, 10)

	if e, ok := o.details.Get(key); ok {
		if e.Stale {
			return record(DatasetDetails, staleValue(e.Record, ErrSuppressed))
		}
		return record(DatasetDetails, found(e.Record))
	}
	if r, ok := fromGuard[upstream.DetailRecord](o.detailsGuard, key); ok {
		return record(DatasetDetails, r)
	}

	r := flight(ctx, o, DatasetDetails, key, func(ctx context.Context) Result[upstream.DetailRecord] {
		return o.fetchDetail(ctx, id, key)
	})
	return record(DatasetDetails, r)
}

func (o *Orchestrator) fetchDetail(ctx context.Context, id int64, key string) Result[upstream.DetailRecord] {
	if e, ok := o.details.Peek(key); ok {
		if e.Stale {
			return staleValue(e.Record, ErrSuppressed)
		}
		return found(e.Record)
	}

	rec, err := o.reviews.Detail(ctx, id)
	if err == nil {
		o.details.Set(key, detailEntry{Record: *rec}, o.cfg.Details.HitTTL, o.cfg.Details.MaxBytes)
		if alias := normalize.Key(rec.Name); alias != "" {
			o.names.Set(alias, rec.ID, o.cfg.Names.HitTTL, o.cfg.Names.MaxBytes)
		}
		o.writeSnapshot(ctx, key, rec)
		return found(*rec)
	}

	if isFinal(err) || isContextErr(err) {
		return miss[upstream.DetailRecord](ctx, o, o.detailsGuard, DatasetDetails, key, err)
	}

	if snap, ok := o.readSnapshot(ctx, key); ok {
		_, transientTTL := o.detailsGuard.TTLs()
		o.details.Set(key, detailEntry{Record: snap, Stale: true}, transientTTL, o.cfg.Details.MaxBytes)
		o.logCtx(ctx).Warn().Err(err).Str("id", key).Msg("Review aggregator unavailable, serving durable snapshot")
		return staleValue(snap, err)
	}
	return miss[upstream.DetailRecord](ctx, o, o.detailsGuard, DatasetDetails, key, err)
}

func (o *Orchestrator) writeSnapshot(ctx context.Context, key string, rec *upstream.DetailRecord) {
	if o.store == nil {
		return
	}
	data, err := json.Marshal(rec)
	if err != nil {
		o.logCtx(ctx).Warn().Err(err).Str("id", key).Msg("Failed to encode detail snapshot")
		return
	}
	o.storeSet(ctx, detailPrefix+key, data, o.cfg.DetailTTL)
}

func (o *Orchestrator) readSnapshot(ctx context.Context, key string) (upstream.DetailRecord, bool) {
	var rec upstream.DetailRecord
	data, ok := o.storeGet(ctx, detailPrefix+key)
	if !ok {
		return rec, false
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		o.logCtx(ctx).Warn().Err(err).Str("id", key).Msg("Ignoring corrupt detail snapshot")
		return rec, false
	}
	return rec, true
}
