// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

/*
Package services provides the suture.Service implementations the server
runs under its supervisor tree.

  - HTTPServerService: ListenAndServe with graceful Shutdown on cancel
  - PeriodicService: a task on a fixed interval
  - NewCacheSweeperService: drops expired in-memory cache entries
  - NewIndexWarmerService: loads and refreshes the storefront name index
  - NewStoreGCService: badger value-log GC

Each implements fmt.Stringer so suture's log lines name the service.
*/
package services
