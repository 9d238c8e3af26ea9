// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

/*
Package config provides centralized configuration management for gamescore.

Configuration is layered with Koanf v2. Built-in defaults are loaded first,
then an optional YAML file, then environment variables. The YAML file is
found through CONFIG_PATH or the first existing entry of DefaultConfigPaths.

# Environment Variables

Only explicitly mapped variables are read; anything else in the environment
is ignored.

Server:
  - HTTP_PORT, HTTP_HOST, HTTP_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT
  - CORS_ORIGINS: comma-separated list (default: *)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT

Upstream providers:
  - REVIEWS_BASE_URL, REVIEWS_API_KEY, REVIEWS_API_KEY_HEADER
  - REVIEWS_SEARCH_QUOTA, REVIEWS_DETAIL_QUOTA: requests per day (default: 25, 200)
  - REVIEWS_MATCH_CUTOFF: largest accepted search distance (default: 0.1)
  - STOREFRONT_API_BASE_URL, STOREFRONT_STORE_BASE_URL, STOREFRONT_API_KEY
  - GRIDS_BASE_URL, GRIDS_API_KEY, GRIDS_DIMENSIONS, GRIDS_STYLES

Caching (per dataset: NAMES, DETAILS, STORE_SUMMARY, GRIDS):
  - <DATASET>_HIT_TTL, <DATASET>_NOT_FOUND_TTL, <DATASET>_TRANSIENT_TTL
  - <DATASET>_MAX_BYTES: JSON byte budget, 0 for unbounded
  - CACHE_SWEEP_INTERVAL

Index and durable store:
  - INDEX_HASH, INDEX_CHUNK_SIZE, INDEX_TTL, INDEX_REFRESH_INTERVAL
  - STORE_PATH: Badger directory, empty for in-memory
  - STORE_DETAIL_TTL, STORE_ALIAS_TTL, STORE_GC_INTERVAL

Admin:
  - ADMIN_JWT_SECRET: enables the admin routes (min 32 chars)

# Validation

Validate rejects inconsistent settings at startup. Every dataset must satisfy
transient_ttl <= not_found_ttl <= hit_ttl so a miss is never remembered
longer than a hit.

# Example YAML

	reviews:
	  api_key: "..."
	  search_quota: 25
	cache:
	  details:
	    hit_ttl: 24h
	    not_found_ttl: 6h
	    transient_ttl: 1m
	    max_bytes: 4194304
	store:
	  path: /var/lib/gamescore
*/
package config
