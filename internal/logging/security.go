// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package logging

import (
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

// SecurityEvent represents an admin authentication event for audit logging.
type SecurityEvent struct {
	// Event is the type of event (e.g., "admin_auth_success", "admin_auth_failure").
	Event string
	// Subject is the token subject (if known).
	Subject string
	// IPAddress is the client's IP address.
	IPAddress string
	// UserAgent is the client's user agent (truncated).
	UserAgent string
	// Path is the requested admin route.
	Path    string
	Success bool
	// Error is the failure reason if the operation failed.
	Error string
}

// SecurityLogger logs admin authentication events with sensitive data masked.
type SecurityLogger struct {
	logger zerolog.Logger
}

// NewSecurityLogger creates a new security logger.
func NewSecurityLogger() *SecurityLogger {
	return &SecurityLogger{
		logger: With().Str("component", "auth").Logger(),
	}
}

// NewSecurityLoggerWithLogger creates a security logger with a custom zerolog logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSecurityLoggerWithLogger(logger zerolog.Logger) *SecurityLogger {
	return &SecurityLogger{
		logger: logger.With().Str("component", "auth").Logger(),
	}
}

// LogEvent logs a security event. Failures log at Warn.
func (l *SecurityLogger) LogEvent(event *SecurityEvent) {
	var e *zerolog.Event
	if event.Success {
		e = l.logger.Info()
	} else {
		e = l.logger.Warn()
	}

	e = e.Str("event", event.Event).Bool("success", event.Success)
	if event.Subject != "" {
		e = e.Str("subject", SanitizeUserID(event.Subject))
	}
	if event.IPAddress != "" {
		e = e.Str("ip", event.IPAddress)
	}
	if event.UserAgent != "" {
		e = e.Str("user_agent", truncateString(event.UserAgent, 200))
	}
	if event.Path != "" {
		e = e.Str("path", event.Path)
	}
	if event.Error != "" {
		e = e.Str("error", SanitizeError(event.Error))
	}
	e.Msg("Security event")
}

// LogAdminAuth records the outcome of an admin token check.
func (l *SecurityLogger) LogAdminAuth(subject, ip, userAgent, path string, success bool, reason string) {
	event := "admin_auth_success"
	if !success {
		event = "admin_auth_failure"
	}
	l.LogEvent(&SecurityEvent{
		Event:     event,
		Subject:   subject,
		IPAddress: ip,
		UserAgent: userAgent,
		Path:      path,
		Success:   success,
		Error:     reason,
	})
}

// ============================================================
// Sanitization Functions
// ============================================================

// SanitizeToken masks a token, showing only first and last 4 characters.
// Example: "eyJhbGciOiJSUzI1NiIsInR5cCI6IkpXVCJ9..." -> "eyJh...kpXV"
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizeUserID masks a user ID for privacy.
// Example: "user-12345678" -> "user...5678"
func SanitizeUserID(userID string) string {
	if userID == "" {
		return ""
	}
	if len(userID) <= 8 {
		return "***"
	}
	return userID[:4] + "..." + userID[len(userID)-4:]
}

// SanitizeError replaces error messages that mention credentials with a
// generic message and truncates the rest.
func SanitizeError(err string) string {
	sensitivePatterns := []string{
		"password",
		"secret",
		"token",
		"key",
		"bearer",
		"authorization",
		"cookie",
	}

	lowerErr := strings.ToLower(err)
	for _, pattern := range sensitivePatterns {
		if strings.Contains(lowerErr, pattern) {
			return "authentication error"
		}
	}

	return truncateString(err, 200)
}

// sensitiveKeys lists query parameter and field names whose values are masked.
var sensitiveKeys = map[string]bool{
	"access_token":  true,
	"token":         true,
	"password":      true,
	"secret":        true,
	"key":           true,
	"api_key":       true,
	"apikey":        true,
	"authorization": true,
	"bearer":        true,
	"cookie":        true,
}

// SanitizeValue sanitizes a value based on its key name.
func SanitizeValue(key, value string) string {
	if sensitiveKeys[strings.ToLower(key)] {
		return SanitizeToken(value)
	}
	return value
}

// SanitizeURL masks credential query parameters in rawURL.
// Example: "https://api.example.org/list?key=ABCDEF1234567890" -> "https://api.example.org/list?key=ABCD...7890"
func SanitizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return truncateString(rawURL, 64)
	}
	q := u.Query()
	changed := false
	for name, values := range q {
		if !sensitiveKeys[strings.ToLower(name)] {
			continue
		}
		for i, v := range values {
			values[i] = SanitizeToken(v)
		}
		changed = true
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// truncateString truncates a string to a maximum length.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
