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

	"github.com/tomtom215/curator/internal/database"
	"github.com/tomtom215/curator/internal/logging"
	"github.com/tomtom215/curator/internal/models"
)

// RecordView handles POST /api/v1/interactions/views.
func (h *Handler) RecordView(w http.ResponseWriter, r *http.Request) {
	var req ViewRequest
	if !h.bind(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	now := time.Now().UTC()
	err := h.store.RecordView(ctx, models.View{
		UserID:          req.UserID,
		ItemID:          req.ItemID,
		Timestamp:       now,
		DurationSeconds: req.DurationSeconds,
	})
	if err != nil {
		h.respondWriteError(w, r, err)
		return
	}
	h.engine.InvalidateUser(req.UserID)

	respondData(w, http.StatusCreated, map[string]interface{}{
		"user_id":     req.UserID,
		"item_id":     req.ItemID,
		"recorded_at": now,
	}, models.Metadata{})
}

// ToggleLike handles POST /api/v1/interactions/likes/toggle and returns the
// new like state.
func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	var req LikeToggleRequest
	if !h.bind(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	liked, err := h.store.ToggleLike(ctx, req.UserID, req.ItemID)
	if err != nil {
		h.respondWriteError(w, r, err)
		return
	}
	h.engine.InvalidateUser(req.UserID)

	respondData(w, http.StatusOK, map[string]interface{}{
		"user_id": req.UserID,
		"item_id": req.ItemID,
		"liked":   liked,
	}, models.Metadata{})
}

// RecordPurchase handles POST /api/v1/interactions/purchases.
func (h *Handler) RecordPurchase(w http.ResponseWriter, r *http.Request) {
	var req PurchaseRequest
	if !h.bind(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	p := models.Purchase{
		UserID:    req.UserID,
		ItemID:    req.ItemID,
		Timestamp: time.Now().UTC(),
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
	}
	if err := h.store.RecordPurchase(ctx, p); err != nil {
		h.respondWriteError(w, r, err)
		return
	}
	h.engine.InvalidateUser(req.UserID)

	respondData(w, http.StatusCreated, map[string]interface{}{
		"user_id":     p.UserID,
		"item_id":     p.ItemID,
		"quantity":    p.Quantity,
		"total_price": p.TotalPrice(),
		"recorded_at": p.Timestamp,
	}, models.Metadata{})
}

// bind decodes and validates the body, writing the 400 itself on failure.
func (h *Handler) bind(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if apiErr := decodeBody(w, r, dst); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return false
	}
	if apiErr := validateRequest(dst); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return false
	}
	return true
}

func (h *Handler) respondWriteError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, database.ErrItemNotFound):
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Item not found", nil)
	case errors.Is(err, database.ErrInvalidInteraction):
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Write timed out", err)
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Interaction write failed")
		respondError(w, r, http.StatusInternalServerError, ErrCodeDatabaseError, "A database error occurred", nil)
	}
}
