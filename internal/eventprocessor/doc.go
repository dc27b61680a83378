// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

/*
Package eventprocessor consumes interaction and catalog events from NATS
JetStream through Watermill.

# Subjects

	interactions.view       ViewEvent      -> database RecordView
	interactions.like       LikeEvent      -> database ToggleLike
	interactions.purchase   PurchaseEvent  -> database RecordPurchase
	catalog.upsert          CatalogUpsertEvent -> UpsertCatalogItems, then a rebuild request
	dlq.curator             messages that exhausted their retries

Each interaction invalidates the user's cached recommendations. A catalog
batch requests an asynchronous rebuild, which the engine coalesces with any
rebuild already pending.

# Components

  - EmbeddedServer: optional in-process NATS server with JetStream
  - StreamInitializer: creates or updates the stream before consumers start
  - Subscriber: one durable consumer per subject, bound to the stream
  - Publisher: circuit-breaker wrapped publisher, used for the poison queue
  - Router: Watermill router with Recoverer, PoisonQueue and Retry middleware
  - Handlers: decode, validate and apply events
  - Pipeline: owns all of the above with a Start/Shutdown lifecycle

# Failure Handling

Payloads that fail to decode or validate, and writes the database rejects as
invalid (unknown item, bad quantity), are acknowledged and dropped with a
warning. Other errors are retried with exponential backoff and then routed to
the poison queue. Message UUIDs double as Nats-Msg-Id headers, so a producer
that republishes the same event inside the duplicate window is deduplicated
by JetStream.

# Example

	pipeline, err := eventprocessor.NewPipeline(&cfg, eventprocessor.NewHandlers(db, engine, logger),
	    logging.NewWatermillLogger())
	if err != nil {
	    return err
	}
	tree.AddMessagingService(services.NewEventService(pipeline))
*/
package eventprocessor
