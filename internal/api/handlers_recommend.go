// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/curator/internal/database"
	"github.com/tomtom215/curator/internal/logging"
	"github.com/tomtom215/curator/internal/models"
	"github.com/tomtom215/curator/internal/recommend"
)

// rebuildReasonAPI tags rebuilds requested over HTTP.
const rebuildReasonAPI = "api"

// SimilarItems handles GET /api/v1/recommendations/similar/{itemID}.
// An item missing from the catalog is a 404.
func (h *Handler) SimilarItems(w http.ResponseWriter, r *http.Request) {
	limit, apiErr := queryInt(r, "limit", defaultSimilarLimit)
	if apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}
	req := SimilarRequest{ItemID: chi.URLParam(r, "itemID"), Limit: limit}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	// A failed lookup falls through: the engine degrades on its own.
	if _, err := h.store.CatalogItem(ctx, req.ItemID); err != nil {
		if errors.Is(err, database.ErrItemNotFound) {
			respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Item not found", nil)
			return
		}
		logging.Ctx(ctx).Warn().Err(err).Str("item_id", req.ItemID).Msg("Catalog lookup failed")
	}

	start := time.Now()
	res, err := h.engine.SimilarItems(ctx, req.ItemID, req.Limit)
	if err != nil {
		h.respondEngineError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"item_id": req.ItemID,
		"items":   res.Items,
		"count":   len(res.Items),
	}, queryMetadata(start, res.Cached, res.Degraded()))
}

// UserRecommendations handles GET /api/v1/recommendations/user/{userID}.
func (h *Handler) UserRecommendations(w http.ResponseWriter, r *http.Request) {
	limit, apiErr := queryInt(r, "limit", defaultUserLimit)
	if apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}
	req := UserRecommendationsRequest{UserID: chi.URLParam(r, "userID"), Limit: limit}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	start := time.Now()
	res, err := h.engine.UserRecommendations(ctx, req.UserID, req.Limit)
	if err != nil {
		h.respondEngineError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"user_id": req.UserID,
		"items":   res.Items,
		"count":   len(res.Items),
	}, queryMetadata(start, res.Cached, res.Degraded()))
}

// Trending handles GET /api/v1/recommendations/trending.
func (h *Handler) Trending(w http.ResponseWriter, r *http.Request) {
	limit, apiErr := queryInt(r, "limit", defaultTrendingLimit)
	if apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}
	days, apiErr := queryInt(r, "days", defaultTrendingDays)
	if apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}
	req := TrendingRequest{Limit: limit, Days: days, Sort: r.URL.Query().Get("sort")}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}
	key, err := recommend.ParseSortKey(req.Sort)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	start := time.Now()
	res, err := h.engine.Trending(ctx, req.Limit, req.Days, key)
	if err != nil {
		h.respondEngineError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"days":  req.Days,
		"sort":  key.String(),
		"items": res.Items,
		"count": len(res.Items),
	}, queryMetadata(start, res.Cached, res.Degraded()))
}

// Rebuild handles POST /api/v1/recommendations/rebuild. It never waits for
// the rebuild: the answer is 202 with "accepted" or "already_running", or
// 503 while the engine shuts down.
func (h *Handler) Rebuild(w http.ResponseWriter, r *http.Request) {
	ack := h.engine.RebuildAsync(rebuildReasonAPI)
	logging.Ctx(r.Context()).Info().Str("ack", string(ack)).Msg("Rebuild requested")

	if ack == recommend.RebuildRejected {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Engine is shutting down", nil)
		return
	}
	respondData(w, http.StatusAccepted, map[string]interface{}{"status": ack}, models.Metadata{})
}

// RebuildStatus handles GET /api/v1/recommendations/status.
func (h *Handler) RebuildStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	st, err := h.engine.Status(ctx)
	if err != nil {
		h.respondEngineError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, st, models.Metadata{})
}

// respondEngineError maps engine errors to status codes. Read failures
// never reach here: they come back as degraded results.
func (h *Handler) respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, recommend.ErrInvalidLimit), errors.Is(err, recommend.ErrInvalidWindow):
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
	case errors.Is(err, recommend.ErrEngineClosed):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Engine is shutting down", err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Query timed out", err)
	default:
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Query failed", err)
	}
}

func queryMetadata(start time.Time, cached, degraded bool) models.Metadata {
	return models.Metadata{
		Timestamp:   time.Now(),
		QueryTimeMS: time.Since(start).Milliseconds(),
		Cached:      cached,
		Degraded:    degraded,
	}
}
