// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/curator/internal/config"
	"github.com/tomtom215/curator/internal/eventprocessor"
	"github.com/tomtom215/curator/internal/logging"
	"github.com/tomtom215/curator/internal/supervisor/services"
)

// initEvents builds the NATS ingestion pipeline. It returns nil when event
// ingestion is disabled. Nothing connects until the supervisor starts the
// returned service.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initEvents(
	cfg *config.NATSConfig,
	store eventprocessor.InteractionStore,
	engine eventprocessor.EngineNotifier,
	logger zerolog.Logger,
) (*services.EventService, error) {
	if !cfg.Enabled {
		logger.Info().Msg("Event ingestion disabled (NATS_ENABLED=false)")
		return nil, nil
	}

	epCfg := eventprocessor.FromAppConfig(cfg)
	handlers := eventprocessor.NewHandlers(store, engine, logger)

	pipeline, err := eventprocessor.NewPipeline(&epCfg, handlers, logging.NewWatermillLogger())
	if err != nil {
		return nil, fmt.Errorf("create event pipeline: %w", err)
	}

	logger.Info().
		Bool("embedded", cfg.EmbeddedServer).
		Str("url", cfg.URL).
		Str("stream", cfg.StreamName).
		Msg("Event ingestion configured")

	return services.NewEventService(pipeline), nil
}
