// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/curator/internal/api"
	"github.com/tomtom215/curator/internal/config"
	"github.com/tomtom215/curator/internal/database"
	"github.com/tomtom215/curator/internal/logging"
	"github.com/tomtom215/curator/internal/supervisor"
	"github.com/tomtom215/curator/internal/supervisor/services"
)

func main() {
	rebuildOnly := flag.Bool("rebuild-once", false, "run one synchronous rebuild and exit; status 1 if it fails")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	if err := run(cfg, *rebuildOnly); err != nil {
		logging.Fatal().Err(err).Msg("Curator stopped with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

// run owns every resource so deferred closes execute before main exits.
// With rebuildOnly it stops after one rebuild instead of starting the tree.
//
//nolint:gocyclo // sequential setup steps
func run(cfg *config.Config, rebuildOnly bool) error {
	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("edge_store", cfg.Storage.Backend).
		Bool("nats_enabled", cfg.NATS.Enabled).
		Str("environment", cfg.Server.Environment).
		Msg("Starting Curator with supervisor tree")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	edges, err := openEdgeStore(ctx, &cfg.Storage, db)
	if err != nil {
		return fmt.Errorf("open edge store: %w", err)
	}
	defer func() {
		if err := edges.close(); err != nil {
			logging.Error().Err(err).Str("backend", edges.backend).Msg("Error closing edge store")
		}
	}()
	logging.Info().Str("backend", edges.backend).Msg("Edge store ready")

	engine, rebuildSvc, err := initRecommend(&cfg.Recommend, db, db, edges.store, logging.WithComponent("recommend"))
	if err != nil {
		return err
	}
	defer func() {
		if err := engine.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing recommendation engine")
		}
	}()

	if rebuildOnly {
		return rebuildOnce(ctx, engine)
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout + 5*time.Second,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	// === DATA LAYER ===
	tree.AddDataService(rebuildSvc)

	// === MESSAGING LAYER ===
	eventSvc, err := initEvents(&cfg.NATS, db, engine, logging.WithComponent("events"))
	if err != nil {
		return err
	}
	if eventSvc != nil {
		tree.AddMessagingService(eventSvc)
	}

	// === API LAYER ===
	handler := api.NewHandler(engine, db, cfg.Server.Timeout)
	if eventSvc != nil {
		handler.SetEventHealth(eventSvc)
	}
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(&cfg.Security)))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, addr, cfg.Server.ShutdownTimeout, logging.WithComponent("http")))
	logging.Info().Str("addr", addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===
	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// The channel yields exactly one result once the tree has stopped.
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish...")
		err = <-errCh
	case err = <-errCh:
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}
	return nil
}
