// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

// Package auth guards the admin API with HS256 bearer tokens.
//
// Tokens carry a subject and a role; the admin routes require RoleAdmin.
// There is no login flow: operators mint tokens offline with the same secret
// the server is configured with (see the -admin-token flag of cmd/server).
package auth
