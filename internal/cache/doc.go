// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

/*
Package cache provides the in-process tier of the gamescore lookup path.

# Overview

Three pieces live here:
  - TTLCache: a generic map whose entries expire individually and are
    evicted oldest-first once a byte budget is reached
  - EstimateSize: the JSON-encoded size of a key/value map, which is the
    unit the byte budget is expressed in
  - NegativeGuard: a TTLCache of failure sentinels that stops repeated
    lookups for missing or unavailable records from spending upstream quota

Each dataset (review ids, review details, storefront summaries, grid images)
owns its own TTLCache and NegativeGuard. There is no package-level state.

# Eviction

Eviction is FIFO by insertion. Reads do not reorder entries; replacing a
key counts as a new insertion. When Set is called with maxBytes > 0 and the
cache already holds at least that many bytes, expired entries are purged
and then, if still needed, exactly one oldest entry is evicted before the
new entry is inserted.

# Expiry

Every entry stores its own expiresAt. Get and Has compare it against the
injected Clock, Sweep removes every expired entry, and ExpireIfMatch
removes a key only when the deadline still matches. No per-key timers
exist, so a replaced entry can never be removed by its predecessor's
deadline.

# Usage Example

	details := cache.NewTTLCache[upstream.DetailRecord]("details",
	    cache.WithDefaultTTL[upstream.DetailRecord](24*time.Hour))

	details.Set(key, record, 0, 4<<20)
	if rec, ok := details.Get(key); ok {
	    // use rec
	}

	guard := cache.NewNegativeGuard("details_miss", cache.GuardConfig{
	    HitTTL:       24 * time.Hour,
	    NotFoundTTL:  6 * time.Hour,
	    TransientTTL: time.Minute,
	}, nil)
	guard.RememberTransient(key)

# Thread Safety

All TTLCache and NegativeGuard methods are safe for concurrent use. They
do not coalesce concurrent misses; the fetch package layers single-flight
on top.
*/
package cache
