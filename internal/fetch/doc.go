// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

/*
Package fetch coordinates every lookup the API serves.

Each operation walks the same tiers:

 1. the in-memory TTL cache of its dataset
 2. the dataset's negative guard, which remembers recent failures
 3. the durable store (name aliases, detail snapshots, the name index)
 4. the provider, through a single-flight call per dataset and key

and writes the answer back down. Successful detail fetches also write a
secondary name alias so a later lookup by name skips the search entirely.

Operations never return a Go error. They return a Result whose Status is
OK, NotFound or Error:

	upstream.ErrNotFound, ErrMalformed  -> NotFound, guarded for not_found_ttl
	upstream.ErrTransient, ErrQuota...  -> Error (or a stale snapshot), guarded for transient_ttl
	store errors                        -> logged, lookup continues without the store

Concurrent callers for the same key share one upstream call. The shared call
runs detached from any single caller's cancellation; a caller that gives up
receives an Error result while the call completes and fills the cache.
*/
package fetch
