// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/gamescore/internal/fetch"
	"github.com/tomtom215/gamescore/internal/index"
)

// IndexInfo describes the cached name index.
type IndexInfo struct {
	Entries   int `json:"entries"`
	Shards    int `json:"shards"`
	ChunkSize int `json:"chunk_size"`
}

func (h *Handler) indexInfo(m map[string]int64) interface{} {
	chunk := h.chunkSize
	if chunk <= 0 {
		chunk = index.DefaultChunkSize
	}
	return IndexInfo{
		Entries:   len(m),
		Shards:    index.ShardCount(len(m), chunk),
		ChunkSize: chunk,
	}
}

// ResolveApp handles GET /api/v1/store/apps/resolve?name=
// Lookups use the in-memory name index; no storefront search is made.
func (h *Handler) ResolveApp(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	name, ok := parseName(rw, r)
	if !ok {
		return
	}
	res := h.svc.ResolveAppID(r.Context(), name)
	respondResult(rw, serviceStorefront, "No store app matches the given name", res, resolvedName(name))
}

// AppSummary handles GET /api/v1/store/apps/{appid}
func (h *Handler) AppSummary(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	appid, ok := parseID(rw, chi.URLParam(r, "appid"))
	if !ok {
		return
	}
	res := h.svc.FetchStoreSummary(r.Context(), appid)
	respondResult(rw, serviceStorefront, "Store app not found", res, func(s fetch.StoreSummary) interface{} {
		return s
	})
}

// StoreIndex handles GET /api/v1/store/index
func (h *Handler) StoreIndex(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	res := h.svc.FetchIndex(r.Context())
	respondResult(rw, serviceStorefront, "Name index unavailable", res, h.indexInfo)
}
