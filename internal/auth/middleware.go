// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/tomtom215/gamescore/internal/logging"
)

// Authentication errors.
var (
	ErrNoCredentials      = errors.New("no credentials provided")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrExpiredCredentials = errors.New("credentials expired")
	ErrForbidden          = errors.New("insufficient role")
)

type claimsKey struct{}

// ClaimsFromContext returns the claims RequireRole stored, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Authenticate validates the request's bearer token.
func (m *JWTManager) Authenticate(r *http.Request) (*Claims, error) {
	token := BearerToken(r)
	if token == "" {
		return nil, ErrNoCredentials
	}
	return m.ValidateToken(token)
}

// DenyFunc writes the response for a rejected request.
type DenyFunc func(w http.ResponseWriter, r *http.Request, err error)

// RequireRole returns a chi middleware admitting only requests whose bearer
// token carries role. Every decision goes to the security log. Rejections
// are written by deny with one of ErrNoCredentials, ErrInvalidCredentials,
// ErrExpiredCredentials or ErrForbidden.
func (m *JWTManager) RequireRole(role string, security *logging.SecurityLogger, deny DenyFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := m.Authenticate(r)
			if err == nil && claims.Role != role {
				err = ErrForbidden
			}

			subject := ""
			if claims != nil {
				subject = claims.Subject
			}
			if err != nil {
				security.LogAdminAuth(subject, r.RemoteAddr, r.UserAgent(), r.URL.Path, false, reason(err))
				deny(w, r, err)
				return
			}

			security.LogAdminAuth(subject, r.RemoteAddr, r.UserAgent(), r.URL.Path, true, "")
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
		})
	}
}

func reason(err error) string {
	switch {
	case errors.Is(err, ErrNoCredentials):
		return "no_credentials"
	case errors.Is(err, ErrExpiredCredentials):
		return "expired"
	case errors.Is(err, ErrForbidden):
		return "wrong_role"
	default:
		return "invalid_credentials"
	}
}
