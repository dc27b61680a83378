// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package api

import (
	"context"
	"time"

	"github.com/tomtom215/curator/internal/models"
	"github.com/tomtom215/curator/internal/recommend"
)

// Recommender is the query side of the engine. Satisfied by
// *recommend.Engine.
type Recommender interface {
	SimilarItems(ctx context.Context, itemID string, limit int) (recommend.QueryResult[models.ScoredItem], error)
	UserRecommendations(ctx context.Context, userID string, limit int) (recommend.QueryResult[models.ScoredItem], error)
	Trending(ctx context.Context, limit, windowDays int, key recommend.SortKey) (recommend.QueryResult[models.TrendingItem], error)
	RebuildAsync(reason string) recommend.RebuildAck
	Status(ctx context.Context) (recommend.Status, error)
	InvalidateUser(userID string)
}

// Store is the database surface the handlers use. Satisfied by
// *database.DB.
type Store interface {
	Ping(ctx context.Context) error
	CatalogItem(ctx context.Context, id string) (models.CatalogItem, error)
	RecordView(ctx context.Context, v models.View) error
	ToggleLike(ctx context.Context, userID, itemID string) (bool, error)
	RecordPurchase(ctx context.Context, p models.Purchase) error
}

// HealthReporter reports whether an optional component is serving.
type HealthReporter interface {
	Healthy() bool
}

// Handler serves the Curator HTTP API.
type Handler struct {
	engine       Recommender
	store        Store
	events       HealthReporter
	startTime    time.Time
	queryTimeout time.Duration
}

// NewHandler creates a handler. A non-positive queryTimeout selects 10s.
func NewHandler(engine Recommender, store Store, queryTimeout time.Duration) *Handler {
	if queryTimeout <= 0 {
		queryTimeout = 10 * time.Second
	}
	return &Handler{
		engine:       engine,
		store:        store,
		startTime:    time.Now(),
		queryTimeout: queryTimeout,
	}
}

// SetEventHealth makes readiness depend on the event pipeline.
func (h *Handler) SetEventHealth(events HealthReporter) {
	h.events = events
}
