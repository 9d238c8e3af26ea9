// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSanitizeToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"short", "***"},
		{"exactlytwelv", "***"},
		{"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9", "eyJh...VCJ9"},
		{"1234567890123456", "1234...3456"},
	}

	for _, tt := range tests {
		result := SanitizeToken(tt.input)
		if result != tt.expected {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestSanitizeUserID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"admin", "***"},
		{"user-12345678", "user...5678"},
	}

	for _, tt := range tests {
		if result := SanitizeUserID(tt.input); result != tt.expected {
			t.Errorf("SanitizeUserID(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestSanitizeError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"regular error", "regular error"},
		{"token expired", "authentication error"},
		{"secret key invalid", "authentication error"},
		{"Bearer token missing", "authentication error"},
		{"authorization failed", "authentication error"},
	}

	for _, tt := range tests {
		result := SanitizeError(tt.input)
		if result != tt.expected {
			t.Errorf("SanitizeError(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestSanitizeError_LongError(t *testing.T) {
	t.Parallel()

	result := SanitizeError(strings.Repeat("a", 250))

	if len(result) > 210 {
		t.Errorf("expected truncated error, got length %d", len(result))
	}
	if !strings.HasSuffix(result, "...") {
		t.Error("expected truncation suffix")
	}
}

func TestSanitizeValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key      string
		value    string
		expected string
	}{
		{"name", "Hades", "Hades"},
		{"token", "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9", "eyJh...VCJ9"},
		{"password", "secret123", "***"},
		{"api_key", "key-12345678901234", "key-...1234"},
		{"KEY", "ABCDEF1234567890", "ABCD...7890"},
	}

	for _, tt := range tests {
		result := SanitizeValue(tt.key, tt.value)
		if result != tt.expected {
			t.Errorf("SanitizeValue(%q, %q) = %q, want %q", tt.key, tt.value, result, tt.expected)
		}
	}
}

func TestSanitizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{
			"https://api.example.org/IStoreService/GetAppList/v1/?key=ABCDEF1234567890&last_appid=10",
			"https://api.example.org/IStoreService/GetAppList/v1/?key=ABCD...7890&last_appid=10",
		},
		{
			"https://api.example.org/game/search?criteria=hades",
			"https://api.example.org/game/search?criteria=hades",
		},
		{
			"https://api.example.org/x?api_key=short",
			"https://api.example.org/x?api_key=%2A%2A%2A",
		},
	}

	for _, tt := range tests {
		if result := SanitizeURL(tt.input); result != tt.expected {
			t.Errorf("SanitizeURL(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestSecurityLogger_LogAdminAuth(t *testing.T) {
	var buf bytes.Buffer
	secLog := NewSecurityLoggerWithLogger(zerolog.New(&buf))

	secLog.LogAdminAuth("operator-12345678", "192.168.1.1", "curl/8.0", "/api/v1/admin/cache/purge", true, "")

	output := buf.String()
	for _, want := range []string{"admin_auth_success", "oper...5678", "192.168.1.1", `"component":"auth"`} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output: %s", want, output)
		}
	}
}

func TestSecurityLogger_LogAdminAuth_Failed(t *testing.T) {
	var buf bytes.Buffer
	secLog := NewSecurityLoggerWithLogger(zerolog.New(&buf))

	secLog.LogAdminAuth("", "10.0.0.1", "", "/api/v1/admin/index/rebuild", false, "token signature is invalid")

	output := buf.String()
	if !strings.Contains(output, "admin_auth_failure") {
		t.Errorf("expected failure event in output: %s", output)
	}
	if !strings.Contains(output, `"level":"warn"`) {
		t.Errorf("failures should log at warn: %s", output)
	}
	if strings.Contains(output, "signature") {
		t.Errorf("token errors should be masked: %s", output)
	}
}

func TestNewSecurityLogger(t *testing.T) {
	if NewSecurityLogger() == nil {
		t.Error("expected non-nil security logger")
	}
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is a longer string", 10, "this is a ..."},
	}

	for _, tt := range tests {
		result := truncateString(tt.input, tt.maxLen)
		if result != tt.expected {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, result, tt.expected)
		}
	}
}
