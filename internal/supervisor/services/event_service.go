// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package services

import (
	"context"
	"fmt"
	"time"
)

// EventPipeline is the Start/Shutdown lifecycle of the ingestion pipeline.
// Satisfied by *eventprocessor.Pipeline.
type EventPipeline interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context)
	IsRunning() bool
}

// EventService adapts the pipeline's Start/Shutdown lifecycle to suture's
// Serve: start, wait for cancellation, shut down on a fresh context.
type EventService struct {
	pipeline        EventPipeline
	shutdownTimeout time.Duration
	name            string
}

// NewEventService wraps pipeline with a 30s shutdown timeout, enough for
// the router to drain in-flight messages.
func NewEventService(pipeline EventPipeline) *EventService {
	return &EventService{
		pipeline:        pipeline,
		shutdownTimeout: 30 * time.Second,
		name:            "event-service",
	}
}

// Serve implements suture.Service. A failed Start is returned so the
// supervisor restarts the service with backoff.
func (s *EventService) Serve(ctx context.Context) error {
	if err := s.pipeline.Start(ctx); err != nil {
		return fmt.Errorf("event pipeline start failed: %w", err)
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	s.pipeline.Shutdown(shutdownCtx)

	return ctx.Err()
}

// Healthy reports whether the pipeline is consuming.
func (s *EventService) Healthy() bool {
	return s.pipeline.IsRunning()
}

// String implements fmt.Stringer.
func (s *EventService) String() string {
	return s.name
}
