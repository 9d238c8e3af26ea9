// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/gamescore/internal/normalize"
	"github.com/tomtom215/gamescore/internal/upstream"
	"github.com/tomtom215/gamescore/internal/validation"
)

// nameRequest is the query of the resolve endpoints.
type nameRequest struct {
	Name string `query:"name" validate:"required,max=200,gamename"`
}

// idRequest is a numeric path id.
type idRequest struct {
	ID string `query:"id" validate:"required,numeric,max=19"`
}

// ResolvedName is the answer of the resolve endpoints.
type ResolvedName struct {
	Name string `json:"name"`
	Key  string `json:"key"`
	ID   int64  `json:"id"`
}

func parseName(rw *ResponseWriter, r *http.Request) (string, bool) {
	req := nameRequest{Name: r.URL.Query().Get("name")}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidation(rw, verr)
		return "", false
	}
	return req.Name, true
}

func parseID(rw *ResponseWriter, raw string) (int64, bool) {
	req := idRequest{ID: raw}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidation(rw, verr)
		return 0, false
	}
	id, err := strconv.ParseInt(req.ID, 10, 64)
	if err != nil {
		rw.BadRequest("id is out of range")
		return 0, false
	}
	return id, true
}

func resolvedName(name string) func(int64) interface{} {
	return func(id int64) interface{} {
		return ResolvedName{Name: name, Key: normalize.Key(name), ID: id}
	}
}

// ResolveGame handles GET /api/v1/games/resolve?name=
// It maps a free-form title to the review aggregator's game id.
func (h *Handler) ResolveGame(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	name, ok := parseName(rw, r)
	if !ok {
		return
	}
	res := h.svc.ResolveID(r.Context(), name)
	respondResult(rw, serviceReviews, "No game matches the given name", res, resolvedName(name))
}

// GameDetail handles GET /api/v1/games/{id}
func (h *Handler) GameDetail(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := parseID(rw, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	res := h.svc.FetchDetail(r.Context(), id)
	respondResult(rw, serviceReviews, "Game not found", res, func(d upstream.DetailRecord) interface{} {
		return d
	})
}
