// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/gamescore/config.yaml",
	"/etc/gamescore/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

const (
	day = 24 * time.Hour

	// One megabyte of JSON-encoded cache contents.
	megabyte = 1 << 20
)

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Reviews: ReviewsConfig{
			BaseURL:      "https://opencritic-api.p.rapidapi.com",
			APIKeyHeader: "X-RapidAPI-Key",
			Timeout:      10 * time.Second,
			SearchQuota:  25,
			DetailQuota:  200,
			MatchCutoff:  0.1,
		},
		Storefront: StorefrontConfig{
			APIBaseURL:   "https://api.steampowered.com",
			StoreBaseURL: "https://store.steampowered.com",
			PageSize:     50000,
			Timeout:      30 * time.Second,
			Country:      "us",
			Language:     "english",
		},
		Grids: GridsConfig{
			BaseURL:    "https://www.steamgriddb.com/api/v2",
			Dimensions: []string{"460x215", "920x430"},
			Styles:     []string{"alternate"},
			Timeout:    10 * time.Second,
		},
		Cache: CacheConfig{
			Names: DatasetCacheConfig{
				HitTTL:       7 * day,
				NotFoundTTL:  day,
				TransientTTL: time.Minute,
				MaxBytes:     megabyte,
			},
			Details: DatasetCacheConfig{
				HitTTL:       day,
				NotFoundTTL:  6 * time.Hour,
				TransientTTL: time.Minute,
				MaxBytes:     4 * megabyte,
			},
			StoreSummary: DatasetCacheConfig{
				HitTTL:       6 * time.Hour,
				NotFoundTTL:  time.Hour,
				TransientTTL: time.Minute,
				MaxBytes:     4 * megabyte,
			},
			Grids: DatasetCacheConfig{
				HitTTL:       7 * day,
				NotFoundTTL:  day,
				TransientTTL: time.Minute,
				MaxBytes:     megabyte,
			},
			SweepInterval: 5 * time.Minute,
		},
		Index: IndexConfig{
			Hash:            "applist",
			ChunkSize:       15000,
			TTL:             day,
			RefreshInterval: day,
			WarmOnStartup:   true,
		},
		Store: StoreConfig{
			Path:        "data/store",
			SyncWrites:  false,
			Compression: true,
			GCInterval:  10 * time.Minute,
			DetailTTL:   30 * day,
			AliasTTL:    30 * day,
		},
		Breaker: BreakerConfig{
			MaxRequests:  3,
			Interval:     time.Minute,
			Timeout:      2 * time.Minute,
			MinRequests:  10,
			FailureRatio: 0.6,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// REVIEWS_API_KEY -> reviews.api_key
	// NAMES_HIT_TTL -> cache.names.hit_ttl
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"server.cors_origins",
	"grids.dimensions",
	"grids.styles",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Server mappings
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"cors_origins":          "server.cors_origins",
	"rate_limit_requests":   "server.rate_limit_reqs",
	"rate_limit_window":     "server.rate_limit_window",
	"disable_rate_limit":    "server.rate_limit_disabled",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"log_debug_sample_every": "logging.debug_sample_every",

	// Review aggregator mappings
	"reviews_base_url":       "reviews.base_url",
	"reviews_api_key":        "reviews.api_key",
	"reviews_api_key_header": "reviews.api_key_header",
	"reviews_timeout":        "reviews.timeout",
	"reviews_search_quota":   "reviews.search_quota",
	"reviews_detail_quota":   "reviews.detail_quota",
	"reviews_match_cutoff":   "reviews.match_cutoff",

	// Storefront mappings
	"storefront_api_base_url":   "storefront.api_base_url",
	"storefront_store_base_url": "storefront.store_base_url",
	"storefront_api_key":        "storefront.api_key",
	"storefront_page_size":      "storefront.page_size",
	"storefront_timeout":        "storefront.timeout",
	"storefront_country":        "storefront.country",
	"storefront_language":       "storefront.language",

	// Grid artwork mappings
	"grids_base_url":   "grids.base_url",
	"grids_api_key":    "grids.api_key",
	"grids_dimensions": "grids.dimensions",
	"grids_styles":     "grids.styles",
	"grids_timeout":    "grids.timeout",

	// Cache mappings
	"cache_sweep_interval":        "cache.sweep_interval",
	"names_hit_ttl":               "cache.names.hit_ttl",
	"names_not_found_ttl":         "cache.names.not_found_ttl",
	"names_transient_ttl":         "cache.names.transient_ttl",
	"names_max_bytes":             "cache.names.max_bytes",
	"details_hit_ttl":             "cache.details.hit_ttl",
	"details_not_found_ttl":       "cache.details.not_found_ttl",
	"details_transient_ttl":       "cache.details.transient_ttl",
	"details_max_bytes":           "cache.details.max_bytes",
	"store_summary_hit_ttl":       "cache.store_summary.hit_ttl",
	"store_summary_not_found_ttl": "cache.store_summary.not_found_ttl",
	"store_summary_transient_ttl": "cache.store_summary.transient_ttl",
	"store_summary_max_bytes":     "cache.store_summary.max_bytes",
	"grids_hit_ttl":               "cache.grids.hit_ttl",
	"grids_not_found_ttl":         "cache.grids.not_found_ttl",
	"grids_transient_ttl":         "cache.grids.transient_ttl",
	"grids_max_bytes":             "cache.grids.max_bytes",

	// Index mappings
	"index_hash":             "index.hash",
	"index_chunk_size":       "index.chunk_size",
	"index_ttl":              "index.ttl",
	"index_refresh_interval": "index.refresh_interval",
	"index_warm_on_startup":  "index.warm_on_startup",

	// Durable store mappings
	"store_path":        "store.path",
	"store_sync_writes": "store.sync_writes",
	"store_compression": "store.compression",
	"store_gc_interval": "store.gc_interval",
	"store_detail_ttl":  "store.detail_ttl",
	"store_alias_ttl":   "store.alias_ttl",

	// Circuit breaker mappings
	"breaker_max_requests":  "breaker.max_requests",
	"breaker_interval":      "breaker.interval",
	"breaker_timeout":       "breaker.timeout",
	"breaker_min_requests":  "breaker.min_requests",
	"breaker_failure_ratio": "breaker.failure_ratio",

	// Admin mappings
	"admin_jwt_secret": "admin.jwt_secret",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - REVIEWS_API_KEY -> reviews.api_key
//   - DETAILS_HIT_TTL -> cache.details.hit_ttl
//   - ADMIN_JWT_SECRET -> admin.jwt_secret
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}

// GetKoanfInstance returns a new Koanf instance for advanced usage such as
// custom configuration sources in tests.
func GetKoanfInstance() *koanf.Koanf {
	return koanf.New(".")
}

// WatchConfigFile calls callback whenever the file at path changes.
// The caller is responsible for synchronizing access to any configuration
// it reloads from the callback.
func WatchConfigFile(path string, callback func()) error {
	provider := file.Provider(path)

	return provider.Watch(func(event interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
