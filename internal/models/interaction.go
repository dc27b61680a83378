// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package models

import "time"

// InteractionKind identifies the type of a user interaction.
type InteractionKind string

const (
	InteractionView     InteractionKind = "view"
	InteractionLike     InteractionKind = "like"
	InteractionPurchase InteractionKind = "purchase"
)

// View is a single product page view. Views are append-only.
type View struct {
	UserID          string    `json:"user_id"`
	ItemID          string    `json:"item_id"`
	Timestamp       time.Time `json:"timestamp"`
	DurationSeconds int       `json:"duration_seconds"`
}

// Like is the current like state for a (user, item) pair. There is at most one
// like record per pair; toggling flips Active.
type Like struct {
	UserID    string    `json:"user_id"`
	ItemID    string    `json:"item_id"`
	Timestamp time.Time `json:"timestamp"`
	Active    bool      `json:"active"`
}

// Purchase is a completed order line.
type Purchase struct {
	UserID    string    `json:"user_id"`
	ItemID    string    `json:"item_id"`
	Timestamp time.Time `json:"timestamp"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
}

// TotalPrice is quantity times unit price.
func (p *Purchase) TotalPrice() float64 {
	return float64(p.Quantity) * p.UnitPrice
}
