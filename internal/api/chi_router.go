// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/gamescore/internal/auth"
	"github.com/tomtom215/gamescore/internal/logging"
	"github.com/tomtom215/gamescore/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	perf          *middleware.PerformanceMonitor

	// admin is nil when the admin API is disabled.
	admin    *auth.JWTManager
	security *logging.SecurityLogger
}

// NewRouter creates a router. admin may be nil to leave the admin routes
// unmounted.
func NewRouter(handler *Handler, mw *ChiMiddleware, admin *auth.JWTManager) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: mw,
		perf:          handler.perf,
		admin:         admin,
		security:      logging.NewSecurityLogger(),
	}
}

// SetupChi builds the HTTP handler.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Applied to all routes, in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusNotFound, ErrCodeNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	})

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCustom("health", RateLimitHealth))
		r.Use(APISecurityHeaders())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit("lookup"))
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		if router.perf != nil {
			r.Use(router.perf.Middleware)
		}
		r.Use(middleware.Compression(middleware.DefaultMinCompressSize))

		r.Get("/api/v1/games/resolve", router.handler.ResolveGame)
		r.Get("/api/v1/games/{id}", router.handler.GameDetail)
		r.Get("/api/v1/store/apps/resolve", router.handler.ResolveApp)
		r.Get("/api/v1/store/apps/{appid}", router.handler.AppSummary)
		r.Get("/api/v1/store/index", router.handler.StoreIndex)
		r.Get("/api/v1/grids", router.handler.GridArtwork)
	})

	if router.admin != nil {
		r.Route("/api/v1/admin", func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitCustom("admin", RateLimitAdmin))
			r.Use(APISecurityHeaders())
			r.Use(middleware.PrometheusMetrics)
			r.Use(router.admin.RequireRole(auth.RoleAdmin, router.security, respondAuthError))

			r.Post("/index/rebuild", router.handler.RebuildIndex)
			r.Post("/cache/purge", router.handler.PurgeCaches)
			r.Get("/stats", router.handler.Stats)
		})
	} else {
		logging.Info().Msg("Admin API disabled (no admin.jwt_secret)")
	}

	r.Handle("/metrics", promhttp.Handler())

	return r
}
