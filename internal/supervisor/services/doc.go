// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

/*
Package services provides suture.Service wrappers for Curator components.

Each wrapper implements suture's Serve(ctx) error, returns ctx.Err() after a
graceful stop and identifies itself through fmt.Stringer.

  - RebuildService: startup, periodic and on-demand similarity rebuilds.
    It is also the engine's RebuildScheduler; requests coalesce in a
    one-slot queue and are spaced by a golang.org/x/time/rate limiter.
  - EventService: adapts the event pipeline's Start/Shutdown lifecycle.
  - HTTPServerService: binds the listener, serves, and drains on shutdown.
*/
package services
