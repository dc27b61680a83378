// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

/*
Package supervisor provides Suture-based process supervision.

The tree has three layers under one root:

	curator (root)
	├── data-layer
	│   └── rebuild-service      periodic and on-demand similarity rebuilds
	├── messaging-layer
	│   └── event-service        NATS ingestion (only when enabled)
	└── api-layer
	    └── http-server          chi router

Each layer restarts its own children with exponential backoff once
FailureThreshold failures accumulate faster than FailureDecay lets them
fade. Supervisor events are logged through sutureslog, which writes to the
zerolog-backed slog handler from the logging package.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(rebuildSvc)
	tree.AddAPIService(services.NewHTTPServerService(srv, cfg.Server.ShutdownTimeout))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    logging.Error().Err(err).Msg("supervisor stopped")
	}

Service wrappers live in the services subpackage.
*/
package supervisor
