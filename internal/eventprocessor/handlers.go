// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/curator/internal/database"
	"github.com/tomtom215/curator/internal/logging"
	"github.com/tomtom215/curator/internal/metrics"
	"github.com/tomtom215/curator/internal/models"
	"github.com/tomtom215/curator/internal/recommend"
)

// InteractionStore persists consumed events. Satisfied by *database.DB.
type InteractionStore interface {
	RecordView(ctx context.Context, v models.View) error
	ToggleLike(ctx context.Context, userID, itemID string) (bool, error)
	RecordPurchase(ctx context.Context, p models.Purchase) error
	UpsertCatalogItems(ctx context.Context, items []models.CatalogItem) (int, error)
}

// EngineNotifier is told about changes that affect recommendations.
// Satisfied by *recommend.Engine.
type EngineNotifier interface {
	InvalidateUser(userID string)
	RebuildAsync(reason string) recommend.RebuildAck
}

// Handlers turns broker messages into database writes and engine
// notifications.
//
// Messages that can never succeed (undecodable payloads, unknown items,
// invalid values) are logged, counted and acknowledged. Any other error is
// returned so the router retries and, eventually, poisons the message.
type Handlers struct {
	store  InteractionStore
	engine EngineNotifier
	logger zerolog.Logger
}

// NewHandlers creates the event handlers.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandlers(store InteractionStore, engine EngineNotifier, logger zerolog.Logger) *Handlers {
	return &Handlers{
		store:  store,
		engine: engine,
		logger: logger.With().Str("component", "event-handlers").Logger(),
	}
}

// Register subscribes every handler on r.
func (h *Handlers) Register(r *Router, sub message.Subscriber) {
	r.AddConsumerHandler("view-handler", TopicView, sub, h.HandleView)
	r.AddConsumerHandler("like-handler", TopicLike, sub, h.HandleLike)
	r.AddConsumerHandler("purchase-handler", TopicPurchase, sub, h.HandlePurchase)
	r.AddConsumerHandler("catalog-handler", TopicCatalogUpsert, sub, h.HandleCatalogUpsert)
}

// HandleView records a view.
func (h *Handlers) HandleView(msg *message.Message) error {
	return h.handle(msg, TopicView, func(ctx context.Context) error {
		ev, err := Decode[ViewEvent](msg.Payload)
		if err != nil {
			return err
		}
		if err := h.store.RecordView(ctx, ev.View()); err != nil {
			return err
		}
		h.engine.InvalidateUser(ev.UserID)
		return nil
	})
}

// HandleLike toggles a like.
func (h *Handlers) HandleLike(msg *message.Message) error {
	return h.handle(msg, TopicLike, func(ctx context.Context) error {
		ev, err := Decode[LikeEvent](msg.Payload)
		if err != nil {
			return err
		}
		active, err := h.store.ToggleLike(ctx, ev.UserID, ev.ItemID)
		if err != nil {
			return err
		}
		h.engine.InvalidateUser(ev.UserID)
		logging.Ctx(ctx).Debug().
			Str("user_id", ev.UserID).
			Str("item_id", ev.ItemID).
			Bool("active", active).
			Msg("Like toggled")
		return nil
	})
}

// HandlePurchase records a purchase.
func (h *Handlers) HandlePurchase(msg *message.Message) error {
	return h.handle(msg, TopicPurchase, func(ctx context.Context) error {
		ev, err := Decode[PurchaseEvent](msg.Payload)
		if err != nil {
			return err
		}
		if err := h.store.RecordPurchase(ctx, ev.Purchase()); err != nil {
			return err
		}
		h.engine.InvalidateUser(ev.UserID)
		return nil
	})
}

// HandleCatalogUpsert writes a catalog batch and requests a rebuild once it
// has committed.
func (h *Handlers) HandleCatalogUpsert(msg *message.Message) error {
	return h.handle(msg, TopicCatalogUpsert, func(ctx context.Context) error {
		ev, err := Decode[CatalogUpsertEvent](msg.Payload)
		if err != nil {
			return err
		}
		written, err := h.store.UpsertCatalogItems(ctx, ev.Items)
		if err != nil {
			return err
		}
		ack := h.engine.RebuildAsync("catalog_upsert")
		h.logger.Info().
			Int("items", written).
			Str("rebuild", string(ack)).
			Msg("Catalog batch applied")
		return nil
	})
}

func (h *Handlers) handle(msg *message.Message, topic string, fn func(ctx context.Context) error) error {
	start := time.Now()
	ctx := logging.ContextWithCorrelationID(msg.Context(), msg.UUID)

	err := fn(ctx)
	metrics.RecordEventIngested(topic, err, time.Since(start))
	if err == nil {
		return nil
	}

	if IsPermanent(err) {
		h.logger.Warn().
			Err(err).
			Str("topic", topic).
			Str("message_uuid", msg.UUID).
			Msg("Dropping event that cannot be applied")
		return nil
	}
	return fmt.Errorf("handle %s message %s: %w", topic, msg.UUID, err)
}

// IsPermanent reports whether redelivering the event could never succeed.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrInvalidEvent) ||
		errors.Is(err, database.ErrInvalidInteraction) ||
		errors.Is(err, database.ErrItemNotFound) ||
		errors.Is(err, database.ErrInvalidProduct)
}
