// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

// Package store is the durable key-value tier behind the in-process caches.
//
// Callers treat the store as optional: ErrNotFound means the key is absent,
// and any other error means the store is unavailable and the lookup should
// continue without it.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key or hash field does not exist or has expired.
var ErrNotFound = errors.New("store: not found")

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store: closed")

// Store is a durable key-value store with flat keys and single-level hashes.
type Store interface {
	// Get returns the value of key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes key. ttl <= 0 stores it without expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// HGet returns one field of a hash.
	HGet(ctx context.Context, hash, field string) ([]byte, error)

	// HSet writes one field of a hash. The field inherits the hash's
	// current expiry, if any.
	HSet(ctx context.Context, hash, field string, value []byte) error

	// Expire sets the expiry of every field of hash, including fields
	// written later by HSet. ttl <= 0 removes the expiry.
	Expire(ctx context.Context, hash string, ttl time.Duration) error

	Close() error
}

// IsUnavailable reports whether err means the store could not answer, as
// opposed to the key being absent.
func IsUnavailable(err error) bool {
	return err != nil && !errors.Is(err, ErrNotFound)
}
