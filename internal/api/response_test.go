// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/gamescore/internal/logging"
)

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestResponseWriter(t *testing.T) {
	tests := []struct {
		name       string
		write      func(rw *ResponseWriter)
		wantStatus int
		wantOK     bool
		wantCode   string
		wantStale  bool
	}{
		{"success", func(rw *ResponseWriter) { rw.Success("x") }, http.StatusOK, true, "", false},
		{"stale", func(rw *ResponseWriter) { rw.Stale("x") }, http.StatusOK, true, "", true},
		{"accepted", func(rw *ResponseWriter) { rw.Accepted("x") }, http.StatusAccepted, true, "", false},
		{"bad request", func(rw *ResponseWriter) { rw.BadRequest("no") }, http.StatusBadRequest, false, ErrCodeBadRequest, false},
		{"not found", func(rw *ResponseWriter) { rw.NotFound("no") }, http.StatusNotFound, false, ErrCodeNotFound, false},
		{"too many", func(rw *ResponseWriter) { rw.TooManyRequests("slow") }, http.StatusTooManyRequests, false, ErrCodeTooManyRequests, false},
		{"upstream", func(rw *ResponseWriter) { rw.ExternalServiceError("grids", "unavailable", errUpstreamDown) }, http.StatusBadGateway, false, ErrCodeExternalServiceFail, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(logging.ContextWithRequestID(req.Context(), "req-1"))
			rec := httptest.NewRecorder()
			tt.write(NewResponseWriter(rec, req))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			resp := decodeResponse(t, rec)
			if resp.Success != tt.wantOK || resp.Meta == nil || resp.Meta.RequestID != "req-1" || resp.Meta.Stale != tt.wantStale {
				t.Errorf("response = %+v meta = %+v", resp, resp.Meta)
			}
			if got := rec.Header().Get("Warning"); (got != "") != tt.wantStale {
				t.Errorf("Warning header = %q, stale = %v", got, tt.wantStale)
			}
			if tt.wantCode != "" && (resp.Error == nil || resp.Error.Code != tt.wantCode || resp.Error.RequestID != "req-1") {
				t.Errorf("error = %+v, want code %s", resp.Error, tt.wantCode)
			}
		})
	}
}

func TestResponseWriter_UnauthorizedChallenge(t *testing.T) {
	rec := httptest.NewRecorder()
	NewResponseWriter(rec, httptest.NewRequest(http.MethodPost, "/", nil)).Unauthorized("Bearer token required")

	if rec.Header().Get("WWW-Authenticate") == "" {
		t.Error("401 should carry a WWW-Authenticate challenge")
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
}
