// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/gamescore/internal/api"
	"github.com/tomtom215/gamescore/internal/auth"
	"github.com/tomtom215/gamescore/internal/config"
	"github.com/tomtom215/gamescore/internal/fetch"
	"github.com/tomtom215/gamescore/internal/index"
	"github.com/tomtom215/gamescore/internal/logging"
	"github.com/tomtom215/gamescore/internal/metrics"
	"github.com/tomtom215/gamescore/internal/middleware"
	"github.com/tomtom215/gamescore/internal/store"
	"github.com/tomtom215/gamescore/internal/supervisor"
	"github.com/tomtom215/gamescore/internal/supervisor/services"
	"github.com/tomtom215/gamescore/internal/upstream"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	perfSampleCapacity = 4096
	uptimeInterval     = 15 * time.Second
)

func main() {
	adminSubject := flag.String("admin-token", "", "print an admin JWT for `subject` and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:            cfg.Logging.Level,
		Format:           cfg.Logging.Format,
		Caller:           cfg.Logging.Caller,
		Timestamp:        true,
		Version:          version,
		DebugSampleEvery: cfg.Logging.DebugSampleEvery,
		Output:           os.Stderr,
	})

	if *adminSubject != "" {
		if err := mintAdminToken(cfg, *adminSubject, os.Stdout); err != nil {
			logging.Fatal().Err(err).Msg("Failed to mint admin token")
		}
		return
	}

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server stopped with error")
	}
}

// mintAdminToken writes a signed admin token for subject to w.
func mintAdminToken(cfg *config.Config, subject string, w io.Writer) error {
	if !cfg.AdminEnabled() {
		return errors.New("admin.jwt_secret is not configured")
	}
	jwtManager, err := auth.NewJWTManager(cfg.Admin.JWTSecret, auth.DefaultTokenTTL)
	if err != nil {
		return err
	}
	token, err := jwtManager.GenerateToken(subject, auth.RoleAdmin)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, token)
	return err
}

func run(cfg *config.Config) error {
	startTime := time.Now()
	metrics.SetAppInfo(version)
	logging.Info().
		Str("version", version).
		Str("addr", cfg.Server.Addr()).
		Str("store_path", cfg.Store.Path).
		Bool("admin_enabled", cfg.AdminEnabled()).
		Msg("Starting gamescore")

	badgerStore, err := store.Open(store.Config{
		Path:        cfg.Store.Path,
		SyncWrites:  cfg.Store.SyncWrites,
		Compression: cfg.Store.Compression,
	})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := badgerStore.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()
	if cfg.Store.Path == "" {
		logging.Warn().Msg("store.path is empty; snapshots and the name index will not survive a restart")
	}

	reviews := upstream.NewReviewsClient(cfg.Reviews, cfg.Breaker)
	storefront := upstream.NewStorefrontClient(cfg.Storefront, cfg.Breaker)
	grids := upstream.NewGridsClient(cfg.Grids, cfg.Breaker)

	nameIndex := index.New(storefront, badgerStore, index.Config{
		Hash:      cfg.Index.Hash,
		ChunkSize: cfg.Index.ChunkSize,
		TTL:       cfg.Index.TTL,
	})

	orchestrator := fetch.New(fetch.Deps{
		Reviews:    reviews,
		Storefront: storefront,
		Grids:      grids,
		Index:      nameIndex,
		Store:      badgerStore,
	}, fetch.ConfigFrom(cfg))

	perf := middleware.NewPerformanceMonitor(perfSampleCapacity, middleware.DefaultSlowRequest)
	handler := api.NewHandler(orchestrator, badgerStore, perf, api.HandlerConfig{
		IndexChunkSize: cfg.Index.ChunkSize,
		Version:        version,
	})
	chiMiddleware := api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(cfg.Server))

	var jwtManager *auth.JWTManager
	if cfg.AdminEnabled() {
		jwtManager, err = auth.NewJWTManager(cfg.Admin.JWTSecret, auth.DefaultTokenTTL)
		if err != nil {
			return fmt.Errorf("admin auth: %w", err)
		}
		logging.Info().Msg("Admin endpoints enabled")
	} else {
		logging.Info().Msg("Admin endpoints disabled (admin.jwt_secret not set)")
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(handler, chiMiddleware, jwtManager).SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	tree.AddDataService(services.NewCacheSweeperService(orchestrator, cfg.Cache.SweepInterval))
	tree.AddDataService(services.NewIndexWarmerService(orchestrator, cfg.Index.RefreshInterval, cfg.Index.WarmOnStartup))
	tree.AddDataService(services.NewStoreGCService(badgerStore, cfg.Store.GCInterval))
	tree.AddDataService(services.NewPeriodicService("uptime", uptimeInterval, true, func(context.Context) error {
		metrics.UpdateUptime(startTime)
		return nil
	}))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, stopping services")
	case serveErr = <-errCh:
	}
	for err := range errCh {
		if serveErr == nil {
			serveErr = err
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		return serveErr
	}
	logging.Info().Msg("Gamescore stopped gracefully")
	return nil
}
