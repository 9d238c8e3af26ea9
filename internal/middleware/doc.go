// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

/*
Package middleware provides the infrastructure middleware of the HTTP API.

All middleware has the chi signature func(http.Handler) http.Handler:

  - RequestID: request and correlation IDs for structured logs
  - PrometheusMetrics: request count, latency and in-flight gauge, labeled
    by chi route pattern
  - PerformanceMonitor: recent latency percentiles per route and
    slow-request logging
  - Compression: gzip for bodies of at least 1KB

Typical stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(perf.Middleware)
	r.Use(middleware.Compression(middleware.DefaultMinCompressSize))

Route patterns are only known after chi has routed the request, so
PrometheusMetrics and PerformanceMonitor read them once the inner handler
returns.
*/
package middleware
