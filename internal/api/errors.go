// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/gamescore/internal/auth"
	"github.com/tomtom215/gamescore/internal/fetch"
	"github.com/tomtom215/gamescore/internal/upstream"
	"github.com/tomtom215/gamescore/internal/validation"
)

// Upstream names reported in EXTERNAL_SERVICE_FAILED details.
const (
	serviceReviews    = "reviews"
	serviceStorefront = "storefront"
	serviceGrids      = "grids"
)

// failureReason condenses an orchestrator error into a stable client-facing
// reason.
func failureReason(err error) string {
	switch {
	case errors.Is(err, upstream.ErrQuotaExhausted):
		return "quota_exhausted"
	case errors.Is(err, fetch.ErrSuppressed):
		return "recently_failed"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "unavailable"
	}
}

// respondResult maps a fetch.Result onto the envelope: OK is 200 (stale data
// is flagged in meta), NotFound is 404, Error is 502.
func respondResult[T any](rw *ResponseWriter, service, notFoundMsg string, r fetch.Result[T], data func(T) interface{}) {
	switch r.Status {
	case fetch.StatusOK:
		if r.Stale {
			rw.Stale(data(r.Value))
			return
		}
		rw.Success(data(r.Value))
	case fetch.StatusNotFound:
		rw.NotFound(notFoundMsg)
	default:
		rw.ExternalServiceError(service, failureReason(r.Err), r.Err)
	}
}

// respondValidation writes a VALIDATION_FAILED response.
func respondValidation(rw *ResponseWriter, verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	rw.ValidationError(apiErr.Message, apiErr.Details)
}

// respondAuthError writes the rejection of an admin request.
func respondAuthError(w http.ResponseWriter, r *http.Request, err error) {
	rw := NewResponseWriter(w, r)
	switch {
	case errors.Is(err, auth.ErrForbidden):
		rw.Forbidden("Admin role required")
	case errors.Is(err, auth.ErrExpiredCredentials):
		rw.Unauthorized("Token expired")
	case errors.Is(err, auth.ErrNoCredentials):
		rw.Unauthorized("Bearer token required")
	default:
		rw.Unauthorized("Invalid token")
	}
}
