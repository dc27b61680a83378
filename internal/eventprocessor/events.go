// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package eventprocessor

import (
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/curator/internal/models"
)

// Subjects consumed by the pipeline. The stream captures both hierarchies.
const (
	TopicView          = "interactions.view"
	TopicLike          = "interactions.like"
	TopicPurchase      = "interactions.purchase"
	TopicCatalogUpsert = "catalog.upsert"

	// TopicPoison receives messages that still fail after all retries.
	TopicPoison = "dlq.curator"
)

// StreamSubjects returns the subjects bound to the JetStream stream.
func StreamSubjects() []string {
	return []string{"interactions.>", "catalog.>", TopicPoison}
}

// ViewEvent records that a user viewed an item. A zero OccurredAt means
// "when processed".
type ViewEvent struct {
	EventID         string    `json:"event_id"`
	UserID          string    `json:"user_id" validate:"required,userid"`
	ItemID          string    `json:"item_id" validate:"required,itemid"`
	DurationSeconds int       `json:"duration_seconds" validate:"gte=0"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// LikeEvent toggles a user's like on an item.
type LikeEvent struct {
	EventID string `json:"event_id"`
	UserID  string `json:"user_id" validate:"required,userid"`
	ItemID  string `json:"item_id" validate:"required,itemid"`
}

// PurchaseEvent records a purchase.
type PurchaseEvent struct {
	EventID    string    `json:"event_id"`
	UserID     string    `json:"user_id" validate:"required,userid"`
	ItemID     string    `json:"item_id" validate:"required,itemid"`
	Quantity   int       `json:"quantity" validate:"gte=1"`
	UnitPrice  float64   `json:"unit_price" validate:"gte=0"`
	OccurredAt time.Time `json:"occurred_at"`
}

// CatalogUpsertEvent carries a batch of catalog items to insert or replace.
type CatalogUpsertEvent struct {
	EventID string               `json:"event_id"`
	Items   []models.CatalogItem `json:"items" validate:"required,min=1,max=1000"`
}

// NewEventID returns a fresh event identifier. It doubles as the watermill
// message UUID and the JetStream Nats-Msg-Id used for deduplication.
func NewEventID() string {
	return uuid.New().String()
}

// View converts the event into the interaction record the database stores.
func (e *ViewEvent) View() models.View {
	return models.View{
		UserID:          e.UserID,
		ItemID:          e.ItemID,
		Timestamp:       e.OccurredAt,
		DurationSeconds: e.DurationSeconds,
	}
}

// Purchase converts the event into the interaction record the database stores.
func (e *PurchaseEvent) Purchase() models.Purchase {
	return models.Purchase{
		UserID:    e.UserID,
		ItemID:    e.ItemID,
		Timestamp: e.OccurredAt,
		Quantity:  e.Quantity,
		UnitPrice: e.UnitPrice,
	}
}
