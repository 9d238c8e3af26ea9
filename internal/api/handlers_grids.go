// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package api

import (
	"net/http"
	"strconv"

	"github.com/tomtom215/gamescore/internal/fetch"
	"github.com/tomtom215/gamescore/internal/validation"
)

type gridRequest struct {
	Name string `query:"name" validate:"required,max=200,gamename"`
	Year string `query:"year" validate:"omitempty,numeric,len=4"`
}

// GridArtwork handles GET /api/v1/grids?name=&year=
// The optional year picks between same-named games.
func (h *Handler) GridArtwork(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	q := r.URL.Query()
	req := gridRequest{Name: q.Get("name"), Year: q.Get("year")}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidation(rw, verr)
		return
	}

	year := 0
	if req.Year != "" {
		// len=4 and numeric already hold.
		year, _ = strconv.Atoi(req.Year)
	}

	res := h.svc.FetchGrid(r.Context(), req.Name, year)
	respondResult(rw, serviceGrids, "No grid artwork found", res, func(g fetch.GridImage) interface{} {
		return g
	})
}
