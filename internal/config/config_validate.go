// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package config

import (
	"fmt"
	"strings"
	"time"
)

// Rate limit bounds
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

// minJWTSecretLength is the shortest accepted admin signing secret.
const minJWTSecretLength = 32

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateLogging(); err != nil {
		return err
	}

	if err := c.validateReviews(); err != nil {
		return err
	}

	if err := c.validateStorefront(); err != nil {
		return err
	}

	if err := c.validateGrids(); err != nil {
		return err
	}

	if err := c.validateCache(); err != nil {
		return err
	}

	if err := c.validateIndex(); err != nil {
		return err
	}

	if err := c.validateStore(); err != nil {
		return err
	}

	if err := c.validateBreaker(); err != nil {
		return err
	}

	return c.validateAdmin()
}

// validateServer validates the HTTP listener and rate limiter
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return c.validateRateLimits()
}

// validateRateLimits validates rate limiting configuration
func (c *Config) validateRateLimits() error {
	if c.Server.RateLimitDisabled {
		return nil
	}
	if c.Server.RateLimitReqs < minRateLimitRequests || c.Server.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Server.RateLimitWindow < minRateLimitWindow || c.Server.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// validateReviews validates the review aggregator client settings
func (c *Config) validateReviews() error {
	if err := validateHTTPURL(c.Reviews.BaseURL, "REVIEWS_BASE_URL"); err != nil {
		return fmt.Errorf("REVIEWS_BASE_URL is invalid: %w", err)
	}
	if c.Reviews.APIKey != "" && c.Reviews.APIKeyHeader == "" {
		return fmt.Errorf("REVIEWS_API_KEY_HEADER is required when REVIEWS_API_KEY is set")
	}
	if c.Reviews.SearchQuota < 0 || c.Reviews.DetailQuota < 0 {
		return fmt.Errorf("REVIEWS_SEARCH_QUOTA and REVIEWS_DETAIL_QUOTA must not be negative")
	}
	if c.Reviews.MatchCutoff < 0 || c.Reviews.MatchCutoff > 1 {
		return fmt.Errorf("REVIEWS_MATCH_CUTOFF must be between 0 and 1, got %v", c.Reviews.MatchCutoff)
	}
	return nil
}

// validateStorefront validates the storefront client settings
func (c *Config) validateStorefront() error {
	if err := validateHTTPURL(c.Storefront.APIBaseURL, "STOREFRONT_API_BASE_URL"); err != nil {
		return fmt.Errorf("STOREFRONT_API_BASE_URL is invalid: %w", err)
	}
	if err := validateHTTPURL(c.Storefront.StoreBaseURL, "STOREFRONT_STORE_BASE_URL"); err != nil {
		return fmt.Errorf("STOREFRONT_STORE_BASE_URL is invalid: %w", err)
	}
	if c.Storefront.PageSize < 1 {
		return fmt.Errorf("STOREFRONT_PAGE_SIZE must be positive")
	}
	return nil
}

// validateGrids validates the grid artwork client settings
func (c *Config) validateGrids() error {
	if err := validateBaseURL(c.Grids.BaseURL, "GRIDS_BASE_URL"); err != nil {
		return fmt.Errorf("GRIDS_BASE_URL is invalid: %w", err)
	}
	return nil
}

// validateCache validates every dataset's TTL ordering and byte budget
func (c *Config) validateCache() error {
	datasets := []struct {
		name string
		cfg  DatasetCacheConfig
	}{
		{"names", c.Cache.Names},
		{"details", c.Cache.Details},
		{"store_summary", c.Cache.StoreSummary},
		{"grids", c.Cache.Grids},
	}
	for _, d := range datasets {
		if err := d.cfg.validate(d.name); err != nil {
			return err
		}
	}
	if c.Cache.SweepInterval <= 0 {
		return fmt.Errorf("CACHE_SWEEP_INTERVAL must be positive")
	}
	return nil
}

func (d DatasetCacheConfig) validate(name string) error {
	if d.HitTTL <= 0 {
		return fmt.Errorf("cache.%s.hit_ttl must be positive", name)
	}
	if d.NotFoundTTL <= 0 || d.TransientTTL <= 0 {
		return fmt.Errorf("cache.%s miss TTLs must be positive", name)
	}
	if d.NotFoundTTL > d.HitTTL {
		return fmt.Errorf("cache.%s.not_found_ttl (%v) must not exceed hit_ttl (%v)", name, d.NotFoundTTL, d.HitTTL)
	}
	if d.TransientTTL > d.NotFoundTTL {
		return fmt.Errorf("cache.%s.transient_ttl (%v) must not exceed not_found_ttl (%v)", name, d.TransientTTL, d.NotFoundTTL)
	}
	if d.MaxBytes < 0 {
		return fmt.Errorf("cache.%s.max_bytes must not be negative", name)
	}
	return nil
}

// validateIndex validates the storefront name index settings
func (c *Config) validateIndex() error {
	if strings.TrimSpace(c.Index.Hash) == "" {
		return fmt.Errorf("INDEX_HASH is required")
	}
	if c.Index.ChunkSize < 1 {
		return fmt.Errorf("INDEX_CHUNK_SIZE must be positive")
	}
	if c.Index.TTL <= 0 {
		return fmt.Errorf("INDEX_TTL must be positive")
	}
	if c.Index.RefreshInterval < 0 {
		return fmt.Errorf("INDEX_REFRESH_INTERVAL must not be negative")
	}
	return nil
}

// validateStore validates the durable store settings
func (c *Config) validateStore() error {
	if c.Store.DetailTTL < 0 || c.Store.AliasTTL < 0 {
		return fmt.Errorf("STORE_DETAIL_TTL and STORE_ALIAS_TTL must not be negative")
	}
	if c.Store.GCInterval < 0 {
		return fmt.Errorf("STORE_GC_INTERVAL must not be negative")
	}
	return nil
}

// validateBreaker validates circuit breaker configuration
func (c *Config) validateBreaker() error {
	if c.Breaker.MaxRequests == 0 {
		return fmt.Errorf("BREAKER_MAX_REQUESTS must be at least 1")
	}
	if c.Breaker.Timeout <= 0 {
		return fmt.Errorf("BREAKER_TIMEOUT must be positive")
	}
	if c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1 {
		return fmt.Errorf("BREAKER_FAILURE_RATIO must be in (0, 1], got %v", c.Breaker.FailureRatio)
	}
	return nil
}

// validateAdmin validates the admin signing secret when the admin API is enabled
func (c *Config) validateAdmin() error {
	if !c.AdminEnabled() {
		return nil
	}
	if len(c.Admin.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("ADMIN_JWT_SECRET must be at least %d characters for security", minJWTSecretLength)
	}
	if containsPlaceholder(c.Admin.JWTSecret) {
		return fmt.Errorf("ADMIN_JWT_SECRET contains a placeholder value - generate a secure secret with: openssl rand -base64 32")
	}
	return nil
}

// placeholderPatterns defines common placeholder patterns that indicate
// the user forgot to set a real value.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_SECRET",
	"PLACEHOLDER",
	"TODO",
	"FIXME",
	"XXX",
	"EXAMPLE",
}

// containsPlaceholder checks if a value contains common placeholder patterns
func containsPlaceholder(value string) bool {
	upperValue := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upperValue, pattern) {
			return true
		}
	}
	return false
}
