// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package api

import (
	"net/http"
	"sort"

	"github.com/tomtom215/gamescore/internal/auth"
	"github.com/tomtom215/gamescore/internal/logging"
	"github.com/tomtom215/gamescore/internal/middleware"
)

// CacheInfo is the API form of one cache's counters.
type CacheInfo struct {
	Name      string           `json:"name"`
	Entries   int              `json:"entries"`
	Bytes     int              `json:"bytes"`
	Hits      int64            `json:"hits"`
	Misses    int64            `json:"misses"`
	Evictions map[string]int64 `json:"evictions,omitempty"`
}

// AdminStats is the answer of GET /api/v1/admin/stats.
type AdminStats struct {
	Caches    []CacheInfo                `json:"caches"`
	Endpoints []middleware.EndpointStats `json:"endpoints,omitempty"`
}

func (h *Handler) cacheInfo() []CacheInfo {
	stats := h.svc.CacheStats()
	out := make([]CacheInfo, 0, len(stats))
	for name, st := range stats {
		out = append(out, CacheInfo{
			Name:      name,
			Entries:   st.Entries,
			Bytes:     st.Bytes,
			Hits:      st.Hits,
			Misses:    st.Misses,
			Evictions: st.Evictions,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func actor(r *http.Request) string {
	if c, ok := auth.ClaimsFromContext(r.Context()); ok {
		return c.Subject
	}
	return ""
}

// RebuildIndex handles POST /api/v1/admin/index/rebuild
// The rebuild runs synchronously; concurrent calls share one rebuild.
func (h *Handler) RebuildIndex(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	logging.Ctx(r.Context()).Info().Str("actor", logging.SanitizeUserID(actor(r))).Msg("Admin requested index rebuild")

	res := h.svc.RebuildIndex(r.Context())
	respondResult(rw, serviceStorefront, "Name index unavailable", res, h.indexInfo)
}

// PurgeCaches handles POST /api/v1/admin/cache/purge
// Only in-memory caches and failure sentinels are dropped; the durable store
// is left alone.
func (h *Handler) PurgeCaches(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	purged := 0
	for _, c := range h.cacheInfo() {
		purged += c.Entries
	}
	h.svc.Purge()

	logging.Ctx(r.Context()).Info().
		Str("actor", logging.SanitizeUserID(actor(r))).
		Int("entries", purged).
		Msg("Admin purged caches")
	rw.Success(map[string]int{"purged_entries": purged})
}

// Stats handles GET /api/v1/admin/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := AdminStats{Caches: h.cacheInfo()}
	if h.perf != nil {
		stats.Endpoints = h.perf.Stats()
	}
	WriteSuccess(w, r, stats)
}
