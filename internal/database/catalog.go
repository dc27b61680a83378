// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/curator/internal/metrics"
	"github.com/tomtom215/curator/internal/models"
)

const productColumns = `id, name, description, brand, category, price, rating, active`

// ActiveCatalog returns every active product ordered by id. It implements
// recommend.CatalogProvider.
func (db *DB) ActiveCatalog(ctx context.Context) (items []models.CatalogItem, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", "products", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE active ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query active catalog: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog: %w", err)
	}
	return items, nil
}

// CatalogItem returns one product, active or not.
func (db *DB) CatalogItem(ctx context.Context, id string) (models.CatalogItem, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	item, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CatalogItem{}, ErrItemNotFound
	}
	return item, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(r rowScanner) (models.CatalogItem, error) {
	var (
		item          models.CatalogItem
		price, rating sql.NullFloat64
	)
	if err := r.Scan(&item.ID, &item.Name, &item.Description, &item.Brand, &item.Category,
		&price, &rating, &item.Active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return item, err
		}
		return item, fmt.Errorf("scan product: %w", err)
	}
	if price.Valid {
		item.Price = models.Float64Ptr(price.Float64)
	}
	if rating.Valid {
		item.Rating = models.Float64Ptr(rating.Float64)
	}
	return item, nil
}

// UpsertCatalogItems inserts or updates products in one transaction and
// returns how many rows were written. When a batch names the same id twice
// the last entry wins.
func (db *DB) UpsertCatalogItems(ctx context.Context, items []models.CatalogItem) (written int, err error) {
	if len(items) == 0 {
		return 0, nil
	}
	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert", "products", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	batch := dedupeByID(items)
	for i := range batch {
		if batch[i].ID == "" || batch[i].Name == "" {
			return 0, fmt.Errorf("%w: id and name are required", ErrInvalidProduct)
		}
	}

	now := db.now()
	err = db.withConflictRetry(ctx, "upsert_catalog", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO products (`+productColumns+`, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				description = EXCLUDED.description,
				brand = EXCLUDED.brand,
				category = EXCLUDED.category,
				price = EXCLUDED.price,
				rating = EXCLUDED.rating,
				active = EXCLUDED.active,
				updated_at = EXCLUDED.updated_at`)
		if err != nil {
			return fmt.Errorf("prepare upsert: %w", err)
		}
		defer closeWithLog(stmt, "prepared statement")

		for i := range batch {
			it := &batch[i]
			if _, err := stmt.ExecContext(ctx, it.ID, it.Name, it.Description, it.Brand, it.Category,
				nullFloat(it.Price), nullFloat(it.Rating), it.Active, now); err != nil {
				return fmt.Errorf("upsert product %s: %w", it.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(batch), nil
}

// dedupeByID keeps the last occurrence of each id, preserving first-seen order.
func dedupeByID(items []models.CatalogItem) []models.CatalogItem {
	pos := make(map[string]int, len(items))
	out := make([]models.CatalogItem, 0, len(items))
	for _, it := range items {
		if i, ok := pos[it.ID]; ok {
			out[i] = it
			continue
		}
		pos[it.ID] = len(out)
		out = append(out, it)
	}
	return out
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

// itemExists reports whether a product row exists.
func (db *DB) itemExists(ctx context.Context, q querier, id string) (bool, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE id = ?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("check product %s: %w", id, err)
	}
	return n > 0, nil
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
