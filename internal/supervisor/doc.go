// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

/*
Package supervisor runs the long-lived parts of the server under a
thejerf/suture/v4 tree with sutureslog event logging.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewCacheSweeperService(orchestrator, cfg.Cache.SweepInterval))
	tree.AddDataService(services.NewIndexWarmerService(orchestrator, cfg.Index.RefreshInterval, cfg.Index.WarmOnStartup))
	tree.AddDataService(services.NewStoreGCService(badgerStore, cfg.Store.GCInterval))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	errCh := tree.ServeBackground(ctx)

A service that returns an error or panics is restarted with suture's
backoff. Returning suture.ErrDoNotRestart removes it for good.

On shutdown every service gets ShutdownTimeout to return;
UnstoppedServiceReport names the ones that did not.
*/
package supervisor
