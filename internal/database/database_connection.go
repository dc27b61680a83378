// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

/*
database_connection.go - Connection Pool and Error Classification

Connection Pool Configuration:
  - MaxOpenConns: Based on CPU count for parallelism
  - MaxIdleConns: 2 for efficient connection reuse
  - ConnMaxLifetime: 1 hour to prevent stale connections
  - ConnMaxIdleTime: 5 minutes for idle connection cleanup

Error Classification:
DuckDB reports optimistic concurrency failures as "Transaction conflict".
withConflictRetry reruns a transactional write a bounded number of times
when that happens; any other error is returned immediately.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/tomtom215/curator/internal/logging"
)

// configureConnectionPool sets connection pool parameters
func (db *DB) configureConnectionPool() error {
	db.conn.SetMaxOpenConns(runtime.NumCPU())
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
	return nil
}

// isConnectionError checks if an error indicates database connection loss
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, s := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"bad connection",
		"database is closed",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// isTransactionConflict checks if an error is a DuckDB transaction conflict
func isTransactionConflict(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "Transaction conflict") ||
		strings.Contains(errStr, "Conflict on update") ||
		strings.Contains(errStr, "cannot update a table that has been altered")
}

// withTx runs fn in a transaction, committing on success.
func (db *DB) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !isConnectionError(rbErr) {
			logging.Warn().Err(rbErr).Msg("Rollback failed")
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// withConflictRetry runs a transactional write, retrying on DuckDB
// transaction conflicts with linear backoff.
func (db *DB) withConflictRetry(ctx context.Context, op string, fn func(*sql.Tx) error) error {
	var err error
	for attempt := 0; attempt <= db.maxConflictRetries; attempt++ {
		if attempt > 0 {
			logging.Debug().Str("operation", op).Int("attempt", attempt).Msg("Retrying after transaction conflict")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(db.conflictBackoff * time.Duration(attempt)):
			}
		}
		err = db.withTx(ctx, fn)
		if !isTransactionConflict(err) {
			return err
		}
	}
	return fmt.Errorf("%s: giving up after %d conflicts: %w", op, db.maxConflictRetries+1, err)
}
