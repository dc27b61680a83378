// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/curator/internal/logging"
	"github.com/tomtom215/curator/internal/metrics"
	"github.com/tomtom215/curator/internal/models"
)

// edgeInsertBatch is the number of rows per multi-row INSERT.
const edgeInsertBatch = 500

// ReplaceEdges replaces every edge tagged algorithm in one transaction.
// Edges are stored canonically with item_a < item_b. It implements
// storage.EdgeStore.
func (db *DB) ReplaceEdges(ctx context.Context, algorithm string, edges []models.SimilarityEdge) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("replace", "similarity_edges", time.Since(start), err) }()

	// Rebuilds can be large; the default 30s timeout applies only when the
	// caller set no deadline.
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	now := db.now()
	err = db.withConflictRetry(ctx, "replace_edges", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM similarity_edges WHERE algorithm = ?`, algorithm)
		if err != nil {
			return fmt.Errorf("delete edges: %w", err)
		}
		removed, _ := res.RowsAffected()

		for lo := 0; lo < len(edges); lo += edgeInsertBatch {
			hi := min(lo+edgeInsertBatch, len(edges))
			if err := insertEdgeBatch(ctx, tx, algorithm, edges[lo:hi], now); err != nil {
				return err
			}
		}

		logging.Debug().
			Str("algorithm", algorithm).
			Int64("removed", removed).
			Int("inserted", len(edges)).
			Msg("Similarity edges replaced")
		return nil
	})
	return err
}

func insertEdgeBatch(ctx context.Context, tx *sql.Tx, algorithm string, batch []models.SimilarityEdge, now time.Time) error {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO similarity_edges (algorithm, item_a, item_b, score, created_at) VALUES `)
	args := make([]any, 0, len(batch)*5)
	for i := range batch {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?)")
		a, b := batch[i].ItemA, batch[i].ItemB
		if a > b {
			a, b = b, a
		}
		args = append(args, algorithm, a, b, batch[i].Score, now)
	}
	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("insert edges: %w", err)
	}
	return nil
}

// EdgesForItem returns every edge touching itemID ordered by (item_a, item_b).
func (db *DB) EdgesForItem(ctx context.Context, algorithm, itemID string) (edges []models.SimilarityEdge, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", "similarity_edges", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT item_a, item_b, score
		FROM similarity_edges
		WHERE algorithm = ? AND (item_a = ? OR item_b = ?)
		ORDER BY item_a, item_b`, algorithm, itemID, itemID)
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer rows.Close()

	edges = []models.SimilarityEdge{}
	for rows.Next() {
		e := models.SimilarityEdge{Algorithm: algorithm}
		if err := rows.Scan(&e.ItemA, &e.ItemB, &e.Score); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// CountEdges returns the number of edges tagged algorithm.
func (db *DB) CountEdges(ctx context.Context, algorithm string) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var n int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM similarity_edges WHERE algorithm = ?`, algorithm).Scan(&n); err != nil {
		return 0, fmt.Errorf("count edges: %w", err)
	}
	return n, nil
}
