// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package fetch

import (
	"context"
	"errors"

	"github.com/tomtom215/gamescore/internal/cache"
	"github.com/tomtom215/gamescore/internal/metrics"
	"github.com/tomtom215/gamescore/internal/upstream"
)

// Status classifies a Result.
type Status int

const (
	// StatusOK means Value holds the answer.
	StatusOK Status = iota
	// StatusNotFound means the provider has no such record, or answered
	// with something unusable.
	StatusNotFound
	// StatusError means the provider could not be reached and no fallback
	// was available.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not_found"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

var (
	// ErrEmptyKey is returned for input that normalizes to nothing.
	ErrEmptyKey = errors.New("fetch: name normalizes to an empty key")

	// ErrNoMatch is returned when a search produced no acceptable candidate.
	ErrNoMatch = errors.New("fetch: no matching game")

	// ErrInvalidID is returned for non-positive ids.
	ErrInvalidID = errors.New("fetch: invalid id")

	// ErrSuppressed is returned while a recent upstream failure for the
	// same key is remembered.
	ErrSuppressed = errors.New("fetch: recent upstream failure, retry later")
)

// Result is the outcome of an orchestrated lookup. Err carries the cause for
// logs and is never meant for API clients.
type Result[T any] struct {
	Value  T
	Status Status
	Err    error
	// Stale is set when Value came from the durable snapshot because the
	// provider was unavailable.
	Stale bool
}

// OK reports whether Value is usable.
func (r Result[T]) OK() bool {
	return r.Status == StatusOK
}

func found[T any](v T) Result[T] {
	return Result[T]{Value: v, Status: StatusOK}
}

func staleValue[T any](v T, cause error) Result[T] {
	return Result[T]{Value: v, Status: StatusOK, Err: cause, Stale: true}
}

func notFound[T any](err error) Result[T] {
	return Result[T]{Status: StatusNotFound, Err: err}
}

func failed[T any](err error) Result[T] {
	return Result[T]{Status: StatusError, Err: err}
}

// record publishes r under dataset and returns it unchanged.
func record[T any](dataset string, r Result[T]) Result[T] {
	metrics.RecordFetchResult(dataset, r.Status.String(), r.Stale)
	return r
}

// fromGuard converts a live failure sentinel into a Result.
func fromGuard[T any](guard *cache.NegativeGuard, key string) (Result[T], bool) {
	kind, ok := guard.Lookup(key)
	if !ok {
		return Result[T]{}, false
	}
	if kind == cache.MissTransient {
		return failed[T](ErrSuppressed), true
	}
	return notFound[T](upstream.ErrNotFound), true
}

// isFinal reports whether err is a definitive answer from the provider, as
// opposed to a failure to get one.
func isFinal(err error) bool {
	return errors.Is(err, upstream.ErrNotFound) || errors.Is(err, upstream.ErrMalformed)
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
