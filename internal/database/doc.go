// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

// Package database provides the DuckDB data layer for Curator.
//
// # Overview
//
// The package owns the relational schema and serves three consumers:
//
//   - the recommendation engine, through recommend.CatalogProvider and
//     recommend.InteractionProvider
//   - the similarity index, through storage.EdgeStore (the default backend)
//   - the API and event pipeline, which record interactions and upsert
//     catalog items
//
// # File Layout
//
//   - database.go: connection lifecycle (open, initialize, close)
//   - database_connection.go: pool configuration and error classification
//   - database_schema.go: table and index creation
//   - migrations.go: versioned migrations tracked in schema_migrations
//   - database_utils.go: context timeouts, checkpoints, record counts
//   - catalog.go: product reads and batch upserts
//   - interactions.go: views, likes and purchases
//   - edges.go: the similarity_edges table as an EdgeStore
//
// # Tables
//
//   - products: the catalog; only active rows are vectorized
//   - user_views: append-only view log with a sequence id for stable ordering
//   - user_likes: one row per (user, item); ToggleLike flips active
//   - user_purchases: append-only purchase log
//   - similarity_edges: canonical (item_a < item_b) pairs per algorithm tag
//
// # Concurrency
//
// DuckDB serializes writers internally. Multi-statement writes run in a
// transaction and are retried on DuckDB transaction conflicts. ReplaceEdges
// deletes and inserts in one transaction, so readers observe either the old
// or the new edge set.
//
// # Testing
//
// Tests open ":memory:" databases. Database creation is serialized through a
// package-level semaphore because concurrent CGO calls into DuckDB can stall
// under CI load.
package database
