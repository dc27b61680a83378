// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/curator/internal/cache"
	"github.com/tomtom215/curator/internal/models"
	"github.com/tomtom215/curator/internal/recommend/storage"
)

// Engine builds the similarity index and answers recommendation queries.
// It is safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger

	catalog      CatalogProvider
	interactions InteractionProvider
	store        storage.EdgeStore

	// Rebuild state. rebuildMu is only ever TryLocked.
	rebuildMu   sync.Mutex
	rebuilding  atomic.Bool
	lastRebuild atomic.Pointer[RebuildResult]
	scheduler   atomic.Pointer[schedulerHolder]

	breaker *gobreaker.CircuitBreaker[any]
	results *resultCache

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	closed  atomic.Bool
}

type schedulerHolder struct {
	s RebuildScheduler
}

// NewEngine creates a recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, catalog CatalogProvider, interactions InteractionProvider, store storage.EdgeStore, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if catalog == nil || interactions == nil || store == nil {
		return nil, errors.New("catalog, interactions and store are required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		config:       cfg.Clone(),
		logger:       logger.With().Str("component", "recommend").Logger(),
		catalog:      catalog,
		interactions: interactions,
		store:        store,
		baseCtx:      ctx,
		cancel:       cancel,
	}
	e.breaker = newReadBreaker(cfg.Breaker, e.logger)
	if cfg.Cache.Size > 0 {
		e.results = newResultCache(cache.NewLRUCache[[]models.ScoredItem](cfg.Cache.Size, cfg.Cache.TTL))
	}
	return e, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// SetRebuildScheduler routes RebuildAsync through s instead of spawning a
// goroutine per request.
func (e *Engine) SetRebuildScheduler(s RebuildScheduler) {
	if s == nil {
		e.scheduler.Store(nil)
		return
	}
	e.scheduler.Store(&schedulerHolder{s: s})
}

// InvalidateUser drops the cached recommendations for userID. Call it after
// recording an interaction. A query already running for the user will not
// cache its result.
func (e *Engine) InvalidateUser(userID string) {
	if e.results != nil {
		e.results.invalidate(userID)
	}
}

// Rebuilding reports whether a rebuild is in progress.
func (e *Engine) Rebuilding() bool {
	return e.rebuilding.Load()
}

// LastRebuild returns the most recent rebuild result, or nil.
func (e *Engine) LastRebuild() *RebuildResult {
	return e.lastRebuild.Load()
}

// Status returns a snapshot of engine state.
func (e *Engine) Status(ctx context.Context) (Status, error) {
	st := Status{
		Algorithm:    e.config.AlgorithmTag,
		Rebuilding:   e.Rebuilding(),
		LastRebuild:  e.LastRebuild(),
		BreakerState: e.breaker.State().String(),
	}
	if e.results != nil {
		stats := e.results.stats()
		st.CacheEntries = stats.Size
		st.CacheHitRate = stats.HitRate()
	}

	n, err := e.store.CountEdges(ctx, e.config.AlgorithmTag)
	if err != nil {
		return st, fmt.Errorf("count edges: %w", err)
	}
	st.Edges = n
	return st, nil
}

// Close rejects further rebuilds, cancels a background rebuild and waits
// for it to finish.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	e.cancel()
	e.wg.Wait()
	return nil
}
