// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

// Command server runs the gamescore HTTP API.
//
// It resolves game names against the reviews aggregator, the storefront
// and the grids provider, caching every answer in memory and keeping
// detail snapshots and the storefront name index in BadgerDB.
//
// # Startup
//
//  1. Configuration: defaults, then config.yaml, then environment (Koanf v2)
//  2. Store: BadgerDB at store.path, or in memory when empty
//  3. Upstream clients with rate limits, quotas and circuit breakers
//  4. Fetch orchestrator over the clients, the name index and the store
//  5. Chi router, plus admin routes when admin.jwt_secret is set
//  6. Supervisor tree: cache sweeper, index warmer, store GC, HTTP server
//
// # Flags
//
//	-admin-token <subject>   print a 24h admin JWT and exit
//
// # Example
//
//	export REVIEWS_API_KEY=...
//	export STORE_PATH=/var/lib/gamescore
//	export ADMIN_JWT_SECRET=$(openssl rand -base64 48)
//	./gamescore
//
//	TOKEN=$(./gamescore -admin-token ops)
//	curl -X POST -H "Authorization: Bearer $TOKEN" localhost:8080/api/v1/admin/index/rebuild
//
// SIGINT and SIGTERM stop the tree; the HTTP server drains for
// server.shutdown_timeout before the store is closed.
package main
