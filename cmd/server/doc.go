// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

// Package main is the entry point for the Curator server.
//
// Curator computes item-to-item similarity from a product catalog (TF-IDF
// over text plus scaled numeric attributes), stores the edges above a
// threshold, and serves similar-item, personalized and trending
// recommendations over HTTP. User interactions arrive through the REST API
// or, optionally, as events on NATS JetStream.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, optional config.yaml, environment (Koanf v2)
//  2. Database: DuckDB catalog and interaction tables
//  3. Edge store: duckdb (shared), memory, badger or redis
//  4. Engine: feature builder, similarity matrix, scorer and result cache
//  5. Events (optional): embedded or external NATS with a Watermill router
//  6. HTTP Server: chi router with rate limiting, CORS and Prometheus metrics
//
// # Supervisor Tree
//
//	root
//	├── data       rebuild scheduler
//	├── messaging  event ingestion (NATS_ENABLED=true)
//	└── api        HTTP server
//
// A crash in one layer is restarted by suture without taking the others
// down. The API keeps serving from the last stored edges while a rebuild or
// the event pipeline is failing.
//
// # Configuration
//
// Frequently used environment variables:
//   - HTTP_HOST, HTTP_PORT: listen address (default 0.0.0.0:8080)
//   - DUCKDB_PATH: database file (default /data/curator.duckdb)
//   - EDGE_STORE: duckdb, memory, badger or redis
//   - SIMILARITY_THRESHOLD: minimum stored edge score (default 0.1)
//   - RECOMMEND_REBUILD_INTERVAL: scheduled rebuild period (default 24h)
//   - NATS_ENABLED, NATS_URL, NATS_EMBEDDED: event ingestion
//   - LOG_LEVEL, LOG_FORMAT: zerolog settings
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context. The HTTP server drains
// in-flight requests within SHUTDOWN_TIMEOUT, the event pipeline closes its
// router and connection, and the edge store and database are closed last.
//
// # Example Usage
//
//	export DUCKDB_PATH=./curator.duckdb
//	export EDGE_STORE=badger
//	export EDGE_STORE_BADGER_PATH=./edges
//	export LOG_FORMAT=console
//	./curator
//
// # One-Shot Rebuild
//
// The -rebuild-once flag opens the database and edge store, runs a single
// rebuild and exits without starting the supervisor tree. The exit status
// is 0 when the new edge set was stored and 1 otherwise, so it can run from
// cron or a deploy hook:
//
//	./curator -rebuild-once
package main
