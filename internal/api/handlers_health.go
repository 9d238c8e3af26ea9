// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/gamescore/internal/logging"
)

// HealthStatus is the answer of GET /api/v1/health.
type HealthStatus struct {
	Status         string  `json:"status"`
	Version        string  `json:"version"`
	StoreConnected bool    `json:"store_connected"`
	CachedEntries  int     `json:"cached_entries"`
	Uptime         float64 `json:"uptime_seconds"`
}

func (h *Handler) storeConnected(ctx context.Context) bool {
	if h.store == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, h.pingTimeout)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		logging.CtxWarn(ctx).Err(err).Msg("Durable store health check failed")
		return false
	}
	return true
}

// Health reports overall status. A store outage degrades the service but
// lookups keep working from memory and upstream, so the status code stays 200.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	connected := h.storeConnected(r.Context())
	status := "healthy"
	if !connected {
		status = "degraded"
	}

	entries := 0
	for _, st := range h.svc.CacheStats() {
		entries += st.Entries
	}

	WriteSuccess(w, r, HealthStatus{
		Status:         status,
		Version:        h.version,
		StoreConnected: connected,
		CachedEntries:  entries,
		Uptime:         time.Since(h.startTime).Seconds(),
	})
}

// HealthLive is a liveness probe: 200 while the process is serving.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady is a readiness probe: 503 while the durable store is down.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if !h.storeConnected(r.Context()) {
		NewResponseWriter(w, r).ServiceUnavailable("Durable store unavailable")
		return
	}
	WriteSuccess(w, r, map[string]interface{}{"ready": true})
}
