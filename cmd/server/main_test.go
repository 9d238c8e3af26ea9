// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tomtom215/gamescore/internal/auth"
	"github.com/tomtom215/gamescore/internal/config"
)

const testSecret = "0123456789abcdef0123456789abcdef-test"

func TestMintAdminToken(t *testing.T) {
	cfg := &config.Config{Admin: config.AdminConfig{JWTSecret: testSecret}}

	var out bytes.Buffer
	if err := mintAdminToken(cfg, "ops", &out); err != nil {
		t.Fatalf("mintAdminToken() error = %v", err)
	}
	token := strings.TrimSpace(out.String())

	m, err := auth.NewJWTManager(testSecret, auth.DefaultTokenTTL)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.Subject != "ops" || claims.Role != auth.RoleAdmin {
		t.Errorf("claims = %q/%q, want ops/%s", claims.Subject, claims.Role, auth.RoleAdmin)
	}
}

func TestMintAdminToken_Errors(t *testing.T) {
	tests := []struct {
		name   string
		secret string
	}{
		{"admin disabled", ""},
		{"weak secret", "short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Admin: config.AdminConfig{JWTSecret: tt.secret}}
			var out bytes.Buffer
			if err := mintAdminToken(cfg, "ops", &out); err == nil {
				t.Error("mintAdminToken() error = nil")
			}
			if out.Len() != 0 {
				t.Errorf("wrote %q on error", out.String())
			}
		})
	}
}
