// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"errors"

	"github.com/tomtom215/curator/internal/recommend/features"
)

var (
	// ErrNoFeatures means the active catalog was empty; the index is untouched.
	ErrNoFeatures = features.ErrNoFeatures

	// ErrEmptyVocabulary means no catalog term survived document-frequency
	// pruning. The rebuild fails as a build failure and the index is untouched.
	ErrEmptyVocabulary = features.ErrEmptyVocabulary

	// ErrRebuildInProgress is returned when another rebuild holds the lock.
	ErrRebuildInProgress = errors.New("rebuild already in progress")

	// ErrEngineClosed is returned by rebuilds requested after Close.
	ErrEngineClosed = errors.New("recommendation engine closed")

	// ErrInvalidLimit is returned for a non-positive result limit.
	ErrInvalidLimit = errors.New("limit must be positive")

	// ErrInvalidWindow is returned for a non-positive trending window.
	ErrInvalidWindow = errors.New("window days must be positive")
)
