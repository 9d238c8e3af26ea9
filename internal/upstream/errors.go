// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Classification sentinels. Every error returned by a client wraps exactly
// one of these, or a context error.
var (
	// ErrNotFound means the provider answered 404 or returned no match.
	ErrNotFound = errors.New("upstream: not found")

	// ErrTransient means a network failure, a non-2xx status or an open
	// circuit breaker. Worth retrying after a short delay.
	ErrTransient = errors.New("upstream: transient failure")

	// ErrQuotaExhausted means the local daily quota is spent or the provider
	// kept answering 429 after all retries.
	ErrQuotaExhausted = errors.New("upstream: quota exhausted")

	// ErrMalformed means a 2xx response that could not be decoded or lacked
	// required fields.
	ErrMalformed = errors.New("upstream: malformed response")
)

// StatusError is a non-2xx response. It unwraps to ErrNotFound for 404 and
// to ErrTransient otherwise.
type StatusError struct {
	Provider   string
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Provider, e.Endpoint, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return ErrTransient
}

// Outcome maps err to a short label for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrQuotaExhausted):
		return "quota"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "transient"
	}
}

// IsRetryable reports whether err is worth retrying after a short delay.
func IsRetryable(err error) bool {
	switch Outcome(err) {
	case "transient", "quota", "canceled":
		return true
	}
	return false
}

// countsAsFailure reports whether err should trip the circuit breaker.
// Answers that prove the provider is reachable do not count.
func countsAsFailure(err error) bool {
	return Outcome(err) == "transient"
}
