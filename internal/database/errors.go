// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package database

import (
	"errors"
	"io"

	"github.com/tomtom215/curator/internal/logging"
)

var (
	// ErrItemNotFound is returned when an interaction references an unknown product.
	ErrItemNotFound = errors.New("item not found")

	// ErrInvalidInteraction is returned for malformed interaction input.
	ErrInvalidInteraction = errors.New("invalid interaction")

	// ErrInvalidProduct is returned for catalog items missing an id or name.
	ErrInvalidProduct = errors.New("invalid product")
)

// closeWithLog closes a resource and logs any error
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource and explicitly ignores any error
// Use this for cleanup operations in error paths where Close() errors are not actionable
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close() // Explicitly ignore error - cleanup is best-effort
	}
}
