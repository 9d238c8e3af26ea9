// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package cache

import (
	"time"

	"github.com/tomtom215/gamescore/internal/metrics"
)

// MissKind classifies a remembered failure.
type MissKind int

const (
	// MissNotFound means the upstream answered and had no such record.
	MissNotFound MissKind = iota + 1
	// MissTransient means the upstream could not answer (network, 5xx, quota).
	MissTransient
)

func (k MissKind) String() string {
	switch k {
	case MissNotFound:
		return "not_found"
	case MissTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// DefaultTransientTTL is how long an upstream outage suppresses retries.
const DefaultTransientTTL = 60 * time.Second

// GuardConfig holds the TTLs of a NegativeGuard.
type GuardConfig struct {
	// HitTTL is the TTL of the positive cache this guard protects. Every
	// miss TTL is clamped to it.
	HitTTL time.Duration
	// NotFoundTTL applies to RememberNotFound.
	NotFoundTTL time.Duration
	// TransientTTL applies to RememberTransient.
	TransientTTL time.Duration
	// MaxBytes bounds the sentinel cache. Zero means unbounded.
	MaxBytes int
}

// NegativeGuard remembers keys whose lookup recently failed, so repeated
// requests for a nonexistent or unavailable item do not spend upstream quota.
type NegativeGuard struct {
	cache *TTLCache[MissKind]
	cfg   GuardConfig
}

// NewNegativeGuard creates a guard. Zero TTLs fall back to the hit TTL for
// NotFound and DefaultTransientTTL for Transient, both clamped to HitTTL.
func NewNegativeGuard(name string, cfg GuardConfig, clock Clock) *NegativeGuard {
	if cfg.HitTTL <= 0 {
		cfg.HitTTL = DefaultTTL
	}
	if cfg.NotFoundTTL <= 0 {
		cfg.NotFoundTTL = cfg.HitTTL
	}
	if cfg.TransientTTL <= 0 {
		cfg.TransientTTL = DefaultTransientTTL
	}
	g := &NegativeGuard{cfg: cfg}
	g.cfg.NotFoundTTL = g.clamp(cfg.NotFoundTTL)
	g.cfg.TransientTTL = g.clamp(cfg.TransientTTL)

	g.cache = NewTTLCache[MissKind](name,
		WithClock[MissKind](clock),
		WithDefaultTTL[MissKind](g.cfg.NotFoundTTL),
	)
	return g
}

func (g *NegativeGuard) clamp(ttl time.Duration) time.Duration {
	if ttl <= 0 || ttl > g.cfg.HitTTL {
		return g.cfg.HitTTL
	}
	return ttl
}

// RememberMiss stores a NotFound sentinel for key with the given TTL,
// clamped to the hit TTL.
func (g *NegativeGuard) RememberMiss(key string, ttl time.Duration) {
	g.remember(key, MissNotFound, ttl)
}

// RememberNotFound stores a NotFound sentinel with the standard miss TTL.
func (g *NegativeGuard) RememberNotFound(key string) {
	g.remember(key, MissNotFound, g.cfg.NotFoundTTL)
}

// RememberTransient stores a Transient sentinel with the short TTL.
func (g *NegativeGuard) RememberTransient(key string) {
	g.remember(key, MissTransient, g.cfg.TransientTTL)
}

func (g *NegativeGuard) remember(key string, kind MissKind, ttl time.Duration) {
	if key == "" {
		return
	}
	g.cache.Set(key, kind, g.clamp(ttl), g.cfg.MaxBytes)
}

// IsMiss reports whether key has a live sentinel.
func (g *NegativeGuard) IsMiss(key string) bool {
	_, ok := g.Lookup(key)
	return ok
}

// Lookup returns the kind of the live sentinel for key.
func (g *NegativeGuard) Lookup(key string) (MissKind, bool) {
	kind, ok := g.cache.Get(key)
	if ok {
		metrics.RecordNegativeHit(g.cache.Name(), kind.String())
	}
	return kind, ok
}

// Forget clears the sentinel for key, typically after a later success.
func (g *NegativeGuard) Forget(key string) {
	g.cache.Delete(key)
}

// TTLs returns the effective, clamped TTLs.
func (g *NegativeGuard) TTLs() (notFound, transient time.Duration) {
	return g.cfg.NotFoundTTL, g.cfg.TransientTTL
}

// Sweep removes expired sentinels.
func (g *NegativeGuard) Sweep() int {
	return g.cache.Sweep()
}

// Clear removes every sentinel.
func (g *NegativeGuard) Clear() {
	g.cache.Clear()
}

// Len returns the number of stored sentinels.
func (g *NegativeGuard) Len() int {
	return g.cache.Len()
}
