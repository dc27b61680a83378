// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

// Package validation provides struct validation using go-playground/validator v10.
//
// A thread-safe singleton validator is shared by the HTTP API and the event
// pipeline. Validation failures convert to the API error format with code
// VALIDATION_ERROR.
//
// # Custom Tags
//
//   - itemid: 1-128 printable characters, no whitespace
//   - userid: same rule, named separately so messages read naturally
//
// Fields are reported by their json name, falling back to the Go field name.
//
// # Usage
//
//	type SimilarRequest struct {
//	    ItemID string `json:"item_id" validate:"required,itemid"`
//	    Limit  int    `json:"limit" validate:"min=1,max=50"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
//	    return
//	}
//
// # Error Format
//
// A single failure keeps the field details:
//
//	{"code": "VALIDATION_ERROR", "message": "limit must be at most 50",
//	 "details": {"field": "limit", "tag": "max", "value": 99}}
//
// Several failures are joined and listed under details.fields.
package validation
