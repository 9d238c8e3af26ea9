// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package auth

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tomtom215/gamescore/internal/logging"
)

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"Bearer abc.def.ghi": "abc.def.ghi",
		"bearer  abc ":       "abc",
		"Basic dXNlcjpwYXNz": "",
		"Bearer":             "",
		"":                   "",
	}
	for header, want := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		if got := BearerToken(r); got != want {
			t.Errorf("BearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}

func TestRequireRole(t *testing.T) {
	m := newManager(t)
	admin, _ := m.GenerateToken("ops", RoleAdmin)
	viewer, _ := m.GenerateToken("guest", "viewer")

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantErr    error
		wantLog    string
	}{
		{"admin token", "Bearer " + admin, http.StatusOK, nil, "admin_auth_success"},
		{"missing token", "", http.StatusUnauthorized, ErrNoCredentials, "no_credentials"},
		{"bad token", "Bearer nope", http.StatusUnauthorized, ErrInvalidCredentials, "invalid_credentials"},
		{"wrong role", "Bearer " + viewer, http.StatusForbidden, ErrForbidden, "wrong_role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			security := logging.NewSecurityLoggerWithLogger(logging.NewTestLogger(&logs))

			var denied error
			deny := func(w http.ResponseWriter, r *http.Request, err error) {
				denied = err
				if errors.Is(err, ErrForbidden) {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				w.WriteHeader(http.StatusUnauthorized)
			}

			var subject string
			handler := m.RequireRole(RoleAdmin, security, deny)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if c, ok := ClaimsFromContext(r.Context()); ok {
					subject = c.Subject
				}
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/cache/purge", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantErr == nil {
				if subject != "ops" {
					t.Errorf("claims subject = %q, want ops", subject)
				}
			} else if !errors.Is(denied, tt.wantErr) {
				t.Errorf("deny error = %v, want %v", denied, tt.wantErr)
			}
			if !strings.Contains(logs.String(), tt.wantLog) {
				t.Errorf("security log %q missing %q", logs.String(), tt.wantLog)
			}
		})
	}
}
