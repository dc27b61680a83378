// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

// Request structs validated with go-playground/validator tags. Query
// parameters are parsed into these before validation; JSON bodies decode
// straight into them.

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/curator/internal/models"
	"github.com/tomtom215/curator/internal/validation"
)

// maxBodyBytes bounds interaction request bodies.
const maxBodyBytes = 64 << 10

// Query parameter defaults.
const (
	defaultSimilarLimit  = 10
	defaultUserLimit     = 20
	defaultTrendingLimit = 10
	defaultTrendingDays  = 7
)

// SimilarRequest is GET /recommendations/similar/{itemID}.
type SimilarRequest struct {
	ItemID string `json:"item_id" validate:"required,itemid"`
	Limit  int    `json:"limit" validate:"min=1,max=50"`
}

// UserRecommendationsRequest is GET /recommendations/user/{userID}.
type UserRecommendationsRequest struct {
	UserID string `json:"user_id" validate:"required,userid"`
	Limit  int    `json:"limit" validate:"min=1,max=100"`
}

// TrendingRequest is GET /recommendations/trending.
type TrendingRequest struct {
	Limit int    `json:"limit" validate:"min=1,max=50"`
	Days  int    `json:"days" validate:"min=1,max=30"`
	Sort  string `json:"sort" validate:"omitempty,oneof=score item_id"`
}

// ViewRequest is POST /interactions/views.
type ViewRequest struct {
	UserID          string `json:"user_id" validate:"required,userid"`
	ItemID          string `json:"item_id" validate:"required,itemid"`
	DurationSeconds int    `json:"duration_seconds" validate:"gte=0"`
}

// LikeToggleRequest is POST /interactions/likes/toggle.
type LikeToggleRequest struct {
	UserID string `json:"user_id" validate:"required,userid"`
	ItemID string `json:"item_id" validate:"required,itemid"`
}

// PurchaseRequest is POST /interactions/purchases.
type PurchaseRequest struct {
	UserID    string  `json:"user_id" validate:"required,userid"`
	ItemID    string  `json:"item_id" validate:"required,itemid"`
	Quantity  int     `json:"quantity" validate:"gte=1"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
}

// validateRequest runs the shared validator and returns the API error for
// the first failure set, or nil.
func validateRequest(v interface{}) *models.APIError {
	if verr := validation.ValidateStruct(v); verr != nil {
		return verr.ToAPIError()
	}
	return nil
}

// queryInt reads an integer query parameter. A missing value yields def; a
// malformed one is a validation error rather than a silent default.
func queryInt(r *http.Request, key string, def int) (int, *models.APIError) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &models.APIError{
			Code:    ErrCodeValidation,
			Message: fmt.Sprintf("%s must be an integer", key),
			Details: map[string]interface{}{"field": key, "value": raw},
		}
	}
	return v, nil
}

// decodeBody decodes a bounded JSON body into dst. Unknown fields are
// rejected.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) *models.APIError {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return &models.APIError{Code: ErrCodeInvalidJSON, Message: "request body is empty"}
		case errors.As(err, &maxErr):
			return &models.APIError{Code: ErrCodeInvalidJSON, Message: "request body too large"}
		default:
			return &models.APIError{Code: ErrCodeInvalidJSON, Message: "request body is not valid JSON"}
		}
	}
	return nil
}
