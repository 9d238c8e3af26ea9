// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

/*
Package api exposes the lookup layer over HTTP using the chi router.

Routes:

	GET  /api/v1/health[/live|/ready]
	GET  /api/v1/games/resolve?name=       review aggregator id for a title
	GET  /api/v1/games/{id}                review detail record
	GET  /api/v1/store/apps/resolve?name=  storefront app id for a title
	GET  /api/v1/store/apps/{appid}        details, reviews and player count
	GET  /api/v1/store/index               name index size and shard count
	GET  /api/v1/grids?name=&year=         grid artwork
	POST /api/v1/admin/index/rebuild       (admin)
	POST /api/v1/admin/cache/purge         (admin)
	GET  /api/v1/admin/stats               (admin)
	GET  /metrics

Every JSON response uses the APIResponse envelope. Lookup outcomes map as
follows: a found value is 200, with meta.stale set when it came from the
durable snapshot; a definitive miss is 404 NOT_FOUND; an upstream failure is
502 EXTERNAL_SERVICE_FAILED with a reason of quota_exhausted,
recently_failed, timeout or unavailable. Bad input is 400 VALIDATION_FAILED.

The admin routes are mounted only when an admin JWT secret is configured and
require an HS256 bearer token with the admin role.
*/
package api
