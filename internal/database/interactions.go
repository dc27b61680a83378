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

// UserLikes returns the user's active likes ordered by item id.
func (db *DB) UserLikes(ctx context.Context, userID string) (likes []models.Like, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", "user_likes", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT user_id, item_id, liked_at, active
		FROM user_likes
		WHERE user_id = ? AND active
		ORDER BY item_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query likes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l models.Like
		if err := rows.Scan(&l.UserID, &l.ItemID, &l.Timestamp, &l.Active); err != nil {
			return nil, fmt.Errorf("scan like: %w", err)
		}
		likes = append(likes, l)
	}
	return likes, rows.Err()
}

// UserPurchases returns every purchase by the user, oldest first.
func (db *DB) UserPurchases(ctx context.Context, userID string) (purchases []models.Purchase, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", "user_purchases", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT user_id, item_id, purchased_at, quantity, unit_price
		FROM user_purchases
		WHERE user_id = ?
		ORDER BY purchased_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query purchases: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Purchase
		if err := rows.Scan(&p.UserID, &p.ItemID, &p.Timestamp, &p.Quantity, &p.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

// RecentViews returns at most limit views by the user, newest first. Views
// recorded at the same instant are ordered by insertion, latest first.
func (db *DB) RecentViews(ctx context.Context, userID string, limit int) (views []models.View, err error) {
	if limit <= 0 {
		return nil, nil
	}
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", "user_views", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT user_id, item_id, viewed_at, duration_seconds
		FROM user_views
		WHERE user_id = ?
		ORDER BY viewed_at DESC, id DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query views: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v models.View
		if err := rows.Scan(&v.UserID, &v.ItemID, &v.Timestamp, &v.DurationSeconds); err != nil {
			return nil, fmt.Errorf("scan view: %w", err)
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

// InteractionCounts returns view and active-like counts per active product
// since the given time. Every active product is returned, with zero counts
// when it has no interactions in the window. Rows are ordered by item id;
// scoring is left to the caller.
func (db *DB) InteractionCounts(ctx context.Context, since time.Time) (counts []models.TrendingItem, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("aggregate", "user_views", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		WITH v AS (
			SELECT item_id, COUNT(*) AS views
			FROM user_views
			WHERE viewed_at >= ?
			GROUP BY item_id
		),
		l AS (
			SELECT item_id, COUNT(*) AS likes
			FROM user_likes
			WHERE active AND liked_at >= ?
			GROUP BY item_id
		)
		SELECT p.id, COALESCE(v.views, 0), COALESCE(l.likes, 0)
		FROM products p
		LEFT JOIN v ON v.item_id = p.id
		LEFT JOIN l ON l.item_id = p.id
		WHERE p.active
		ORDER BY p.id`, since.UTC(), since.UTC())
	if err != nil {
		return nil, fmt.Errorf("query interaction counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.TrendingItem
		if err := rows.Scan(&c.ItemID, &c.Views, &c.Likes); err != nil {
			return nil, fmt.Errorf("scan interaction count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// RecordView appends a view. A zero Timestamp uses the current time.
func (db *DB) RecordView(ctx context.Context, v models.View) (err error) {
	if v.UserID == "" || v.ItemID == "" || v.DurationSeconds < 0 {
		return fmt.Errorf("%w: view needs user, item and a non-negative duration", ErrInvalidInteraction)
	}
	if v.Timestamp.IsZero() {
		v.Timestamp = db.now()
	}
	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert", "user_views", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	return db.withConflictRetry(ctx, "record_view", func(tx *sql.Tx) error {
		if err := db.requireItem(ctx, tx, v.ItemID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO user_views (user_id, item_id, viewed_at, duration_seconds) VALUES (?, ?, ?, ?)`,
			v.UserID, v.ItemID, v.Timestamp.UTC(), v.DurationSeconds)
		if err != nil {
			return fmt.Errorf("insert view: %w", err)
		}
		return nil
	})
}

// ToggleLike flips the user's like on an item and returns the new state.
// The first toggle creates an active like and sets liked_at; later toggles
// only flip active.
func (db *DB) ToggleLike(ctx context.Context, userID, itemID string) (active bool, err error) {
	if userID == "" || itemID == "" {
		return false, fmt.Errorf("%w: like needs user and item", ErrInvalidInteraction)
	}
	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert", "user_likes", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	now := db.now()
	err = db.withConflictRetry(ctx, "toggle_like", func(tx *sql.Tx) error {
		if err := db.requireItem(ctx, tx, itemID); err != nil {
			return err
		}

		var current bool
		err := tx.QueryRowContext(ctx,
			`SELECT active FROM user_likes WHERE user_id = ? AND item_id = ?`, userID, itemID).Scan(&current)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			active = true
			_, err = tx.ExecContext(ctx,
				`INSERT INTO user_likes (user_id, item_id, liked_at, active) VALUES (?, ?, ?, true)`,
				userID, itemID, now)
		case err != nil:
			return fmt.Errorf("read like: %w", err)
		default:
			active = !current
			_, err = tx.ExecContext(ctx,
				`UPDATE user_likes SET active = ? WHERE user_id = ? AND item_id = ?`,
				active, userID, itemID)
		}
		if err != nil {
			return fmt.Errorf("write like: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return active, nil
}

// RecordPurchase appends a purchase. A zero Timestamp uses the current time.
func (db *DB) RecordPurchase(ctx context.Context, p models.Purchase) (err error) {
	if p.UserID == "" || p.ItemID == "" || p.Quantity < 1 || p.UnitPrice < 0 {
		return fmt.Errorf("%w: purchase needs user, item, quantity >= 1 and a non-negative price", ErrInvalidInteraction)
	}
	if p.Timestamp.IsZero() {
		p.Timestamp = db.now()
	}
	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert", "user_purchases", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	return db.withConflictRetry(ctx, "record_purchase", func(tx *sql.Tx) error {
		if err := db.requireItem(ctx, tx, p.ItemID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO user_purchases (user_id, item_id, purchased_at, quantity, unit_price, total_price)
			VALUES (?, ?, ?, ?, ?, ?)`,
			p.UserID, p.ItemID, p.Timestamp.UTC(), p.Quantity, p.UnitPrice, p.TotalPrice())
		if err != nil {
			return fmt.Errorf("insert purchase: %w", err)
		}
		return nil
	})
}

func (db *DB) requireItem(ctx context.Context, q querier, itemID string) error {
	ok, err := db.itemExists(ctx, q, itemID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	return nil
}
