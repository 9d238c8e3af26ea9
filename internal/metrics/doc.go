// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry through promauto at
package init and exposed by the API server at /metrics.

# Available Metrics

Cache Metrics:
  - cache_hits_total, cache_misses_total (counter)
    Labels: cache_type
  - cache_entries, cache_bytes (gauge)
    Labels: cache_type
  - cache_evictions_total (counter)
    Labels: cache_type, reason (capacity, expired, replaced, deleted)
  - negative_cache_hits_total (counter)
    Labels: cache_type, kind (not_found, transient)
  - singleflight_shared_total (counter)
    Labels: dataset
  - fetch_results_total (counter)
    Labels: dataset, status, stale

Upstream Metrics:
  - upstream_requests_total (counter)
    Labels: provider, endpoint, outcome
  - upstream_request_duration_seconds (histogram)
  - upstream_quota_rejections_total (counter)
  - upstream_retries_total (counter)
  - circuit_breaker_state (gauge: 0=closed, 1=half-open, 2=open)
  - circuit_breaker_requests_total, circuit_breaker_state_transitions_total
  - circuit_breaker_consecutive_failures (gauge)

Store and Index Metrics:
  - store_operations_total, store_operation_duration_seconds
  - index_build_duration_seconds, index_builds_total, index_loads_total
  - index_entries, index_shards (gauge)

API Metrics:
  - api_requests_total, api_request_duration_seconds, api_active_requests
  - api_rate_limit_hits_total

# Usage Example

	start := time.Now()
	hits, err := client.Search(ctx, criteria)
	metrics.RecordUpstreamRequest("reviews", "search", outcome(err), time.Since(start))

# Example Queries

Cache hit ratio per dataset:

	sum by (cache_type) (rate(cache_hits_total[5m]))
	  / (sum by (cache_type) (rate(cache_hits_total[5m])) + sum by (cache_type) (rate(cache_misses_total[5m])))

Quota pressure:

	sum by (provider, endpoint) (increase(upstream_quota_rejections_total[1d]))
*/
package metrics
