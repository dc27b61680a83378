// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/curator/internal/recommend"
)

// Rebuilder runs one similarity rebuild. Satisfied by *recommend.Engine.
type Rebuilder interface {
	RebuildFor(ctx context.Context, reason string) (recommend.RebuildResult, error)
}

// RebuildServiceConfig holds rebuild scheduling settings.
type RebuildServiceConfig struct {
	// RebuildOnStart runs a rebuild as soon as the service starts.
	RebuildOnStart bool

	// Interval between scheduled rebuilds. Zero disables the schedule.
	Interval time.Duration

	// MinGap is the minimum spacing between on-demand rebuilds. Zero
	// disables the limit.
	MinGap time.Duration

	// Timeout bounds a single rebuild. Default: 30m
	Timeout time.Duration
}

// RebuildService owns rebuild scheduling: the optional startup rebuild, the
// periodic ticker, and on-demand requests from the API and the event
// pipeline. Rebuilds run one at a time on the service goroutine.
//
// On-demand requests go through a one-slot queue, so any number of requests
// made while a rebuild runs collapse into a single follow-up rebuild.
type RebuildService struct {
	engine  Rebuilder
	config  RebuildServiceConfig
	trigger chan string
	limiter *rate.Limiter
	logger  zerolog.Logger
	name    string
}

// NewRebuildService creates the service. Pass it to the engine's
// SetRebuildScheduler so RebuildAsync lands here.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRebuildService(engine Rebuilder, cfg RebuildServiceConfig, logger zerolog.Logger) *RebuildService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Minute
	}
	limit := rate.Inf
	if cfg.MinGap > 0 {
		limit = rate.Every(cfg.MinGap)
	}
	return &RebuildService{
		engine:  engine,
		config:  cfg,
		trigger: make(chan string, 1),
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.With().Str("service", "rebuild").Logger(),
		name:    "rebuild-service",
	}
}

// RequestRebuild queues an on-demand rebuild without blocking. It reports
// false when a request is already queued; that request will cover this one.
func (s *RebuildService) RequestRebuild(reason string) bool {
	select {
	case s.trigger <- reason:
		return true
	default:
		return false
	}
}

// Serve implements suture.Service.
func (s *RebuildService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("rebuild_on_start", s.config.RebuildOnStart).
		Dur("interval", s.config.Interval).
		Dur("min_gap", s.config.MinGap).
		Msg("rebuild service starting")

	if s.config.RebuildOnStart {
		s.rebuild(ctx, "startup")
	}

	var tick <-chan time.Time
	if s.config.Interval > 0 {
		ticker := time.NewTicker(s.config.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("rebuild service shutting down")
			return ctx.Err()

		case <-tick:
			s.rebuild(ctx, "scheduled")

		case reason := <-s.trigger:
			if err := s.limiter.Wait(ctx); err != nil {
				return ctx.Err()
			}
			s.rebuild(ctx, reason)
		}
	}
}

func (s *RebuildService) rebuild(ctx context.Context, reason string) {
	rebuildCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	res, err := s.engine.RebuildFor(rebuildCtx, reason)
	switch {
	case err == nil:
		s.logger.Debug().Str("reason", reason).Int("edges", res.Edges).Msg("rebuild finished")
	case errors.Is(err, recommend.ErrRebuildInProgress):
		s.logger.Debug().Str("reason", reason).Msg("rebuild skipped, another is running")
	case errors.Is(err, recommend.ErrNoFeatures):
		s.logger.Info().Str("reason", reason).Msg("rebuild skipped, catalog is empty")
	default:
		s.logger.Warn().Err(err).Str("reason", reason).Str("status", string(res.Status)).Msg("rebuild failed")
	}
}

// String implements fmt.Stringer.
func (s *RebuildService) String() string {
	return s.name
}
