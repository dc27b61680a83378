// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/curator/internal/metrics"
	"github.com/tomtom215/curator/internal/recommend/features"
	"github.com/tomtom215/curator/internal/recommend/similarity"
)

// Rebuild recomputes the similarity index from the active catalog and
// replaces the stored edge set. It returns ErrRebuildInProgress without
// waiting when another rebuild holds the lock.
//
// On any failure the previous edge set stays authoritative. Zero edges above
// the threshold is a success: the empty set replaces the old one.
func (e *Engine) Rebuild(ctx context.Context) (RebuildResult, error) {
	return e.rebuildWithReason(ctx, "manual")
}

func (e *Engine) rebuildWithReason(ctx context.Context, reason string) (RebuildResult, error) {
	if e.closed.Load() {
		return RebuildResult{Status: RebuildBuildFailed, Reason: reason, Err: ErrEngineClosed, Error: ErrEngineClosed.Error()}, ErrEngineClosed
	}
	if err := e.acquireRebuildLock(); err != nil {
		res := RebuildResult{Status: RebuildAlreadyRunning, Reason: reason, Err: err, Error: err.Error()}
		metrics.RecordRebuild(string(res.Status), 0, 0, 0, false)
		return res, err
	}
	defer e.rebuildMu.Unlock()

	res := e.rebuildLocked(ctx, reason)
	return res, res.Err
}

// RebuildFor runs a rebuild on behalf of a scheduler, tagging the result
// with reason.
func (e *Engine) RebuildFor(ctx context.Context, reason string) (RebuildResult, error) {
	return e.rebuildWithReason(ctx, reason)
}

// RebuildAsync requests a rebuild without waiting for it. The acknowledgment
// says whether the request started or queued a rebuild, or was coalesced
// into one that is already running or pending.
func (e *Engine) RebuildAsync(reason string) RebuildAck {
	if e.closed.Load() {
		return RebuildRejected
	}
	if h := e.scheduler.Load(); h != nil {
		// Queue even when a rebuild is running: it may have read the catalog
		// before the change that prompted this request.
		queued := h.s.RequestRebuild(reason)
		if !queued || e.Rebuilding() {
			return RebuildAckAlreadyRunning
		}
		return RebuildAccepted
	}

	if err := e.acquireRebuildLock(); err != nil {
		return RebuildAckAlreadyRunning
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer e.rebuildMu.Unlock()
		e.rebuildLocked(e.baseCtx, reason)
	}()
	return RebuildAccepted
}

// acquireRebuildLock follows the training-lock pattern: never block, report
// contention to the caller instead.
func (e *Engine) acquireRebuildLock() error {
	if !e.rebuildMu.TryLock() {
		return ErrRebuildInProgress
	}
	return nil
}

// rebuildLocked must be called with rebuildMu held. Every intermediate
// structure is local; only the edge set reaches the store.
func (e *Engine) rebuildLocked(ctx context.Context, reason string) RebuildResult {
	e.rebuilding.Store(true)
	defer e.rebuilding.Store(false)

	start := time.Now()
	res := RebuildResult{StartedAt: start, Reason: reason}
	log := e.logger.With().Str("reason", reason).Logger()
	log.Info().Msg("Similarity rebuild started")

	finish := func(status RebuildStatus, err error) RebuildResult {
		res.Status = status
		res.Success = status == RebuildSucceeded
		res.Duration = time.Since(start)
		if err != nil {
			res.Err = err
			res.Error = err.Error()
		}
		metrics.RecordRebuild(string(status), res.Duration, res.Edges, res.Items, res.Success)
		stored := res
		e.lastRebuild.Store(&stored)
		return res
	}

	items, err := e.catalog.ActiveCatalog(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Rebuild aborted: catalog read failed")
		return finish(RebuildBuildFailed, fmt.Errorf("read catalog: %w", err))
	}

	corpus := features.Extract(items)
	res.Items = corpus.Len()

	vecs, err := features.Build(corpus, e.config.Features)
	if errors.Is(err, features.ErrNoFeatures) {
		log.Warn().Msg("Rebuild aborted: no features available, keeping previous index")
		return finish(RebuildNoFeatures, err)
	}
	if err != nil {
		log.Error().Err(err).Msg("Rebuild aborted: vectorization failed")
		return finish(RebuildBuildFailed, fmt.Errorf("build vectors: %w", err))
	}

	matrix, err := similarity.Compute(ctx, vecs, e.config.MatrixWorkers)
	if err != nil {
		log.Error().Err(err).Msg("Rebuild aborted: similarity computation failed")
		return finish(RebuildBuildFailed, fmt.Errorf("compute similarity: %w", err))
	}

	edges, err := similarity.ExtractEdges(matrix, corpus.IDs, e.config.SimilarityThreshold, e.config.AlgorithmTag)
	if err != nil {
		log.Error().Err(err).Msg("Rebuild aborted: edge extraction failed")
		return finish(RebuildBuildFailed, fmt.Errorf("extract edges: %w", err))
	}
	if len(edges) == 0 {
		log.Warn().
			Int("items", res.Items).
			Float64("threshold", e.config.SimilarityThreshold).
			Msg("No item pairs cleared the similarity threshold; replacing index with an empty set")
	}

	if err := e.store.ReplaceEdges(ctx, e.config.AlgorithmTag, edges); err != nil {
		log.Error().Err(err).Msg("Rebuild aborted: edge store write failed, previous index retained")
		return finish(RebuildStoreFailed, fmt.Errorf("replace edges: %w", err))
	}
	res.Edges = len(edges)

	if e.results != nil {
		e.results.purge()
	}

	out := finish(RebuildSucceeded, nil)
	log.Info().
		Int("items", out.Items).
		Int("edges", out.Edges).
		Dur("duration", out.Duration).
		Msg("Similarity rebuild completed")
	return out
}
