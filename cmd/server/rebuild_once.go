// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/curator/internal/logging"
	"github.com/tomtom215/curator/internal/recommend"
)

// rebuilder is the part of the engine the one-shot mode needs.
type rebuilder interface {
	RebuildFor(ctx context.Context, reason string) (recommend.RebuildResult, error)
}

// rebuildOnce runs a single synchronous rebuild for cron jobs and deploy
// hooks. A non-nil error means the stored edge set was left unchanged.
func rebuildOnce(ctx context.Context, r rebuilder) error {
	res, err := r.RebuildFor(ctx, "cli")
	if err != nil {
		return fmt.Errorf("rebuild %s: %w", res.Status, err)
	}
	logging.Info().
		Str("status", string(res.Status)).
		Int("items", res.Items).
		Int("edges", res.Edges).
		Dur("duration", res.Duration).
		Msg("One-shot rebuild finished")
	return nil
}
