// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

// Package logging provides centralized zerolog-based logging for Gamescore.
//
// A single global logger is configured once from main and shared by every
// package. Components derive child loggers with WithComponent, and request
// handlers use Ctx to pick up the request and correlation IDs placed in the
// context by the HTTP middleware.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Msg("Server starting")
//	logging.Ctx(ctx).Warn().Err(err).Str("provider", "reviews").Msg("Upstream failed")
//
// # Configuration
//
// Environment Variables (mapped through internal/config):
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false (default: false)
//
// # slog Bridge
//
// NewSlogLogger returns an *slog.Logger that writes through zerolog. The
// supervisor tree hands it to sutureslog so restart events land in the same
// stream as application logs.
//
// Always terminate log chains with .Msg() or .Send(); an unterminated event
// is never written.
package logging
