// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional config file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Configuration Categories:
//
//  1. Upstream Providers:
//     - Reviews: critic-review aggregator (search and detail quotas)
//     - Storefront: app list, app details, user reviews, player counts
//     - Grids: cover and banner artwork
//
//  2. Caching:
//     - Cache: per-dataset hit/miss TTLs and byte budgets
//     - Index: chunked persistent name to app id index
//     - Store: durable BadgerDB tier
//     - Breaker: per-provider circuit breaker
//
//  3. Serving:
//     - Server: HTTP listener, CORS, rate limiting
//     - Admin: JWT secret for the admin routes
//     - Logging: level and format
//
// Example - Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	Reviews    ReviewsConfig    `koanf:"reviews"`
	Storefront StorefrontConfig `koanf:"storefront"`
	Grids      GridsConfig      `koanf:"grids"`
	Cache      CacheConfig      `koanf:"cache"`
	Index      IndexConfig      `koanf:"index"`
	Store      StoreConfig      `koanf:"store"`
	Breaker    BreakerConfig    `koanf:"breaker"`
	Admin      AdminConfig      `koanf:"admin"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitReqs requests per RateLimitWindow are allowed per client IP.
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`

	// DebugSampleEvery keeps one in N debug lines. 0 keeps all.
	DebugSampleEvery uint32 `koanf:"debug_sample_every"`
}

// ReviewsConfig configures the critic-review aggregator client.
type ReviewsConfig struct {
	BaseURL      string        `koanf:"base_url"`
	APIKey       string        `koanf:"api_key"`
	APIKeyHeader string        `koanf:"api_key_header"`
	Timeout      time.Duration `koanf:"timeout"`

	// SearchQuota and DetailQuota are requests per day. Zero disables the
	// local limiter for that endpoint.
	SearchQuota int `koanf:"search_quota"`
	DetailQuota int `koanf:"detail_quota"`

	// MatchCutoff is the largest search distance accepted as a match.
	MatchCutoff float64 `koanf:"match_cutoff"`
}

// StorefrontConfig configures the storefront client.
type StorefrontConfig struct {
	APIBaseURL   string        `koanf:"api_base_url"`
	StoreBaseURL string        `koanf:"store_base_url"`
	APIKey       string        `koanf:"api_key"`
	PageSize     int           `koanf:"page_size"`
	Timeout      time.Duration `koanf:"timeout"`
	Country      string        `koanf:"country"`
	Language     string        `koanf:"language"`
}

// GridsConfig configures the grid artwork client.
type GridsConfig struct {
	BaseURL    string        `koanf:"base_url"`
	APIKey     string        `koanf:"api_key"`
	Dimensions []string      `koanf:"dimensions"`
	Styles     []string      `koanf:"styles"`
	Timeout    time.Duration `koanf:"timeout"`
}

// DatasetCacheConfig holds the in-process cache settings of one dataset.
// TransientTTL <= NotFoundTTL <= HitTTL.
type DatasetCacheConfig struct {
	HitTTL       time.Duration `koanf:"hit_ttl"`
	NotFoundTTL  time.Duration `koanf:"not_found_ttl"`
	TransientTTL time.Duration `koanf:"transient_ttl"`

	// MaxBytes is the JSON-encoded byte budget. Zero means unbounded.
	MaxBytes int `koanf:"max_bytes"`
}

// CacheConfig holds per-dataset cache settings.
type CacheConfig struct {
	Names        DatasetCacheConfig `koanf:"names"`
	Details      DatasetCacheConfig `koanf:"details"`
	StoreSummary DatasetCacheConfig `koanf:"store_summary"`
	Grids        DatasetCacheConfig `koanf:"grids"`

	// SweepInterval is how often expired entries are removed in the background.
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// IndexConfig configures the chunked storefront name index.
type IndexConfig struct {
	Hash            string        `koanf:"hash"`
	ChunkSize       int           `koanf:"chunk_size"`
	TTL             time.Duration `koanf:"ttl"`
	RefreshInterval time.Duration `koanf:"refresh_interval"`
	WarmOnStartup   bool          `koanf:"warm_on_startup"`
}

// StoreConfig configures the durable BadgerDB store.
type StoreConfig struct {
	// Path is the data directory. Empty runs the store in memory.
	Path        string        `koanf:"path"`
	SyncWrites  bool          `koanf:"sync_writes"`
	Compression bool          `koanf:"compression"`
	GCInterval  time.Duration `koanf:"gc_interval"`

	// DetailTTL and AliasTTL bound how long snapshots and name aliases
	// survive in the durable store.
	DetailTTL time.Duration `koanf:"detail_ttl"`
	AliasTTL  time.Duration `koanf:"alias_ttl"`
}

// BreakerConfig holds circuit breaker settings shared by all providers.
type BreakerConfig struct {
	MaxRequests  uint32        `koanf:"max_requests"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	MinRequests  uint32        `koanf:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio"`
}

// AdminConfig configures the admin API.
type AdminConfig struct {
	// JWTSecret signs admin bearer tokens (HS256). Empty disables the admin routes.
	JWTSecret string `koanf:"jwt_secret"`
}

// AdminEnabled reports whether the admin routes should be mounted.
func (c *Config) AdminEnabled() bool {
	return c.Admin.JWTSecret != ""
}

// Load reads configuration from multiple sources with the following precedence
// (highest to lowest):
//  1. Environment variables
//  2. Config file (config.yaml if exists, or path specified in CONFIG_PATH env var)
//  3. Built-in defaults
//
// See LoadWithKoanf() for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
