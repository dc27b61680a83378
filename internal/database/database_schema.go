// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

/*
database_schema.go - Database Schema Management

Tables:
  - products: catalog items; price and rating are nullable
  - user_views: view log, ordered by (viewed_at, id)
  - user_likes: one row per (user_id, item_id) with an active flag
  - user_purchases: purchase log; total_price is stored for reporting
  - similarity_edges: canonical pairs (item_a < item_b, enforced by a CHECK)
    per algorithm tag

Index Strategy:
  - Interaction tables are read per user and per time window
  - similarity_edges is read by either endpoint within one algorithm tag
  - similarity_edges carries no unique index: ReplaceEdges deletes and
    reinserts the same keys inside one transaction
  - products and user_likes get no secondary indexes: DuckDB rejects
    upserts and updates that assign to indexed columns
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

// tableCreationQueries returns the table creation SQL statements
func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			brand TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			price DOUBLE,
			rating DOUBLE,
			active BOOLEAN NOT NULL DEFAULT true,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,

		`CREATE SEQUENCE IF NOT EXISTS user_views_seq START 1;`,
		`CREATE TABLE IF NOT EXISTS user_views (
			id BIGINT PRIMARY KEY DEFAULT nextval('user_views_seq'),
			user_id TEXT NOT NULL,
			item_id TEXT NOT NULL,
			viewed_at TIMESTAMP NOT NULL,
			duration_seconds INTEGER NOT NULL DEFAULT 0
		);`,

		`CREATE TABLE IF NOT EXISTS user_likes (
			user_id TEXT NOT NULL,
			item_id TEXT NOT NULL,
			liked_at TIMESTAMP NOT NULL,
			active BOOLEAN NOT NULL DEFAULT true,
			PRIMARY KEY (user_id, item_id)
		);`,

		`CREATE SEQUENCE IF NOT EXISTS user_purchases_seq START 1;`,
		`CREATE TABLE IF NOT EXISTS user_purchases (
			id BIGINT PRIMARY KEY DEFAULT nextval('user_purchases_seq'),
			user_id TEXT NOT NULL,
			item_id TEXT NOT NULL,
			purchased_at TIMESTAMP NOT NULL,
			quantity INTEGER NOT NULL,
			unit_price DOUBLE NOT NULL,
			total_price DOUBLE NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS similarity_edges (
			algorithm TEXT NOT NULL,
			item_a TEXT NOT NULL,
			item_b TEXT NOT NULL,
			score DOUBLE NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CHECK (item_a < item_b)
		);`,
	}
}

// createIndexes creates secondary indexes
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range indexQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}
	return nil
}

func indexQueries() []string {
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_views_user_time ON user_views(user_id, viewed_at);`,
		`CREATE INDEX IF NOT EXISTS idx_views_time ON user_views(viewed_at);`,
		`CREATE INDEX IF NOT EXISTS idx_purchases_user ON user_purchases(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_edges_item_a ON similarity_edges(algorithm, item_a);`,
		`CREATE INDEX IF NOT EXISTS idx_edges_item_b ON similarity_edges(algorithm, item_b);`,
	}
}
