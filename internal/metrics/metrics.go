// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the gamescore lookup path:
// - In-process cache efficiency and eviction
// - Negative cache and single-flight coalescing
// - Upstream provider calls, quotas and circuit breakers
// - Durable store and chunked index
// - API endpoint latency and throughput

var (
	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "names", "details", "store_summary", "grids", "index"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache_type"},
	)

	CacheBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_bytes",
			Help: "Current JSON-encoded size of each cache in bytes",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions",
		},
		[]string{"cache_type", "reason"}, // reason: "capacity", "expired", "replaced", "deleted"
	)

	NegativeCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "negative_cache_hits_total",
			Help: "Total number of lookups short-circuited by a remembered failure",
		},
		[]string{"cache_type", "kind"}, // kind: "not_found", "transient"
	)

	SingleflightShared = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "singleflight_shared_total",
			Help: "Total number of callers that received the result of another caller's upstream call",
		},
		[]string{"dataset"},
	)

	FetchResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fetch_results_total",
			Help: "Total number of orchestrated lookups by outcome",
		},
		[]string{"dataset", "status", "stale"},
	)

	// Upstream Provider Metrics
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Total number of requests sent to upstream providers",
		},
		[]string{"provider", "endpoint", "outcome"}, // outcome: "ok", "not_found", "transient", "malformed", "quota"
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Upstream request duration in seconds, including retries",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider", "endpoint"},
	)

	UpstreamQuotaRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_quota_rejections_total",
			Help: "Total number of requests refused locally because the daily quota was spent",
		},
		[]string{"provider", "endpoint"},
	)

	UpstreamRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_retries_total",
			Help: "Total number of retries after HTTP 429 responses",
		},
		[]string{"provider"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Durable Store Metrics
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operations_total",
			Help: "Total number of durable store operations",
		},
		[]string{"operation", "result"}, // result: "ok", "not_found", "error"
	)

	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_operation_duration_seconds",
			Help:    "Durable store operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Chunked Index Metrics
	IndexBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "index_build_duration_seconds",
			Help:    "Duration of full app index builds in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	IndexBuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "index_builds_total",
			Help: "Total number of app index builds",
		},
		[]string{"result"},
	)

	IndexLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "index_loads_total",
			Help: "Total number of attempts to load the app index from the durable store",
		},
		[]string{"result"}, // result: "hit", "miss", "error"
	)

	IndexEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "index_entries",
			Help: "Number of names in the most recent app index",
		},
	)

	IndexShards = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "index_shards",
			Help: "Number of shards written for the most recent app index",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordCacheHit records a cache hit
func RecordCacheHit(cacheType string) {
	CacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss(cacheType string) {
	CacheMisses.WithLabelValues(cacheType).Inc()
}

// RecordCacheEviction records an entry leaving a cache
func RecordCacheEviction(cacheType, reason string) {
	CacheEvictions.WithLabelValues(cacheType, reason).Inc()
}

// SetCacheState publishes the entry count and encoded size of a cache
func SetCacheState(cacheType string, entries, bytes int) {
	CacheSize.WithLabelValues(cacheType).Set(float64(entries))
	CacheBytes.WithLabelValues(cacheType).Set(float64(bytes))
}

// RecordNegativeHit records a lookup answered by a failure sentinel
func RecordNegativeHit(cacheType, kind string) {
	NegativeCacheHits.WithLabelValues(cacheType, kind).Inc()
}

// RecordSingleflightShared records a caller that joined an in-flight call
func RecordSingleflightShared(dataset string) {
	SingleflightShared.WithLabelValues(dataset).Inc()
}

// RecordFetchResult records the outcome of an orchestrated lookup
func RecordFetchResult(dataset, status string, stale bool) {
	staleStr := "false"
	if stale {
		staleStr = "true"
	}
	FetchResults.WithLabelValues(dataset, status, staleStr).Inc()
}

// RecordUpstreamRequest records one logical upstream call and its outcome
func RecordUpstreamRequest(provider, endpoint, outcome string, duration time.Duration) {
	UpstreamRequests.WithLabelValues(provider, endpoint, outcome).Inc()
	UpstreamRequestDuration.WithLabelValues(provider, endpoint).Observe(duration.Seconds())
}

// RecordQuotaRejection records a call refused by the local quota limiter
func RecordQuotaRejection(provider, endpoint string) {
	UpstreamQuotaRejections.WithLabelValues(provider, endpoint).Inc()
}

// RecordUpstreamRetry records a retry after a 429 response
func RecordUpstreamRetry(provider string) {
	UpstreamRetries.WithLabelValues(provider).Inc()
}

// RecordStoreOperation records a durable store operation
func RecordStoreOperation(operation, result string, duration time.Duration) {
	StoreOperations.WithLabelValues(operation, result).Inc()
	StoreOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordIndexBuild records a full app index build
func RecordIndexBuild(duration time.Duration, entries int, err error) {
	IndexBuildDuration.Observe(duration.Seconds())
	if err != nil {
		IndexBuilds.WithLabelValues("error").Inc()
		return
	}
	IndexBuilds.WithLabelValues("success").Inc()
	IndexEntries.Set(float64(entries))
}

// RecordIndexLoad records an attempt to read the persisted index
func RecordIndexLoad(result string) {
	IndexLoads.WithLabelValues(result).Inc()
}

// SetIndexShards publishes the shard count of the last persisted index
func SetIndexShards(shards int) {
	IndexShards.Set(float64(shards))
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordRateLimitHit records a request rejected by the API rate limiter
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// SetAppInfo publishes the build version
func SetAppInfo(version string) {
	AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
}

// UpdateUptime publishes seconds elapsed since start
func UpdateUptime(start time.Time) {
	AppUptime.Set(time.Since(start).Seconds())
}
