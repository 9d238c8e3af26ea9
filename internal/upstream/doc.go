// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

/*
Package upstream contains the HTTP clients for the three game-data providers.

	ReviewsClient     critic-review aggregator: Search, Detail
	StorefrontClient  storefront: ListApps, AppDetails, AppReviews, CurrentPlayers
	GridsClient       grid artwork: SearchGame, GetGrids

All clients share one core:
  - A sony/gobreaker circuit breaker per provider. Only transient failures
    count against it; not-found, malformed and quota answers do not.
  - An optional x/time/rate limiter per endpoint class. The review aggregator
    allows 25 searches and 200 details per day by default.
  - HTTP 429 handling with exponential backoff that honours Retry-After.
    A provider that keeps answering 429 yields ErrQuotaExhausted.
  - goccy/go-json decoding. Non-2xx bodies are read up to 64KB for errors.

Every returned error wraps one of ErrNotFound, ErrTransient,
ErrQuotaExhausted or ErrMalformed (or a context error), so callers classify
with errors.Is or Outcome.
*/
package upstream
