// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package middleware

import (
	"net/http"
	"sort"
	"sync"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tomtom215/gamescore/internal/logging"
)

// DefaultSlowRequest is the latency above which a request is logged.
const DefaultSlowRequest = time.Second

// RequestSample is one observed request.
type RequestSample struct {
	Route    string
	Method   string
	Status   int
	Duration time.Duration
	At       time.Time
}

// EndpointStats summarizes the retained samples of one route.
type EndpointStats struct {
	Endpoint     string  `json:"endpoint"`
	RequestCount int64   `json:"request_count"`
	ErrorCount   int64   `json:"error_count"`
	AvgMS        float64 `json:"avg_ms"`
	P50MS        int64   `json:"p50_ms"`
	P95MS        int64   `json:"p95_ms"`
	P99MS        int64   `json:"p99_ms"`
	MaxMS        int64   `json:"max_ms"`
}

// PerformanceMonitor keeps the last N request samples in a ring and reports
// per-route latency percentiles from them.
type PerformanceMonitor struct {
	mu      sync.Mutex
	samples []RequestSample
	next    int
	full    bool
	slow    time.Duration
	now     func() time.Time
}

// NewPerformanceMonitor retains up to capacity samples. Requests slower than
// slow are logged; zero selects DefaultSlowRequest.
func NewPerformanceMonitor(capacity int, slow time.Duration) *PerformanceMonitor {
	if capacity <= 0 {
		capacity = 1000
	}
	if slow <= 0 {
		slow = DefaultSlowRequest
	}
	return &PerformanceMonitor{
		samples: make([]RequestSample, capacity),
		slow:    slow,
		now:     time.Now,
	}
}

// Record adds a sample, overwriting the oldest once the ring is full.
func (pm *PerformanceMonitor) Record(s RequestSample) {
	pm.mu.Lock()
	pm.samples[pm.next] = s
	pm.next = (pm.next + 1) % len(pm.samples)
	if pm.next == 0 {
		pm.full = true
	}
	pm.mu.Unlock()
}

func (pm *PerformanceMonitor) retained() []RequestSample {
	if pm.full {
		out := make([]RequestSample, 0, len(pm.samples))
		out = append(out, pm.samples[pm.next:]...)
		return append(out, pm.samples[:pm.next]...)
	}
	return append([]RequestSample(nil), pm.samples[:pm.next]...)
}

// Stats returns per-route statistics, busiest route first.
func (pm *PerformanceMonitor) Stats() []EndpointStats {
	pm.mu.Lock()
	samples := pm.retained()
	pm.mu.Unlock()

	type bucket struct {
		durations []int64
		errors    int64
	}
	byRoute := make(map[string]*bucket)
	for _, s := range samples {
		key := s.Method + " " + s.Route
		b := byRoute[key]
		if b == nil {
			b = &bucket{}
			byRoute[key] = b
		}
		b.durations = append(b.durations, s.Duration.Milliseconds())
		if s.Status >= http.StatusInternalServerError {
			b.errors++
		}
	}

	stats := make([]EndpointStats, 0, len(byRoute))
	for endpoint, b := range byRoute {
		sort.Slice(b.durations, func(i, j int) bool { return b.durations[i] < b.durations[j] })
		var sum int64
		for _, d := range b.durations {
			sum += d
		}
		n := len(b.durations)
		stats = append(stats, EndpointStats{
			Endpoint:     endpoint,
			RequestCount: int64(n),
			ErrorCount:   b.errors,
			AvgMS:        float64(sum) / float64(n),
			P50MS:        percentile(b.durations, 0.50),
			P95MS:        percentile(b.durations, 0.95),
			P99MS:        percentile(b.durations, 0.99),
			MaxMS:        b.durations[n-1],
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].RequestCount != stats[j].RequestCount {
			return stats[i].RequestCount > stats[j].RequestCount
		}
		return stats[i].Endpoint < stats[j].Endpoint
	})
	return stats
}

// Middleware samples every request and logs slow ones.
func (pm *PerformanceMonitor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := pm.now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		sample := RequestSample{
			Route:    RoutePattern(r),
			Method:   r.Method,
			Status:   statusOf(ww),
			Duration: pm.now().Sub(start),
			At:       start,
		}
		pm.Record(sample)

		if sample.Duration > pm.slow {
			logging.CtxWarn(r.Context()).
				Str("method", sample.Method).
				Str("route", sample.Route).
				Int("status", sample.Status).
				Dur("duration", sample.Duration).
				Msg("Slow request")
		}
	})
}

// percentile picks from an ascending slice by nearest rank.
func percentile(sorted []int64, p float64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[int(float64(len(sorted)-1)*p)]
}
