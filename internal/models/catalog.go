// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

// Package models defines the data types shared between the database layer,
// the recommendation engine, the event pipeline and the HTTP API.
package models

// CatalogItem is a product as seen by the recommendation engine.
// Price and Rating are nullable in the catalog; nil is treated as 0.
type CatalogItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Brand       string   `json:"brand,omitempty"`
	Category    string   `json:"category,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	Active      bool     `json:"active"`
}

// Float64Ptr is a small helper for building catalog fixtures and payloads.
func Float64Ptr(v float64) *float64 {
	return &v
}
