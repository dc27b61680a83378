// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"sync"

	"github.com/tomtom215/curator/internal/cache"
	"github.com/tomtom215/curator/internal/models"
)

// resultCache guards the user recommendation cache against stale fills.
//
// A query takes a ticket before it reads interactions or edges. Any
// invalidation of that user, or a purge after a rebuild, while the query is
// running makes the ticket stale and its result is not stored.
type resultCache struct {
	lru cache.Cacher[[]models.ScoredItem]

	mu      sync.Mutex
	epoch   uint64
	pending map[string]*pendingFill
}

// pendingFill counts queries in flight for one user. The entry is removed
// when the last one finishes, so the map stays bounded by concurrency.
type pendingFill struct {
	version  uint64
	inflight int
}

type fillTicket struct {
	userID  string
	epoch   uint64
	version uint64
}

func newResultCache(lru cache.Cacher[[]models.ScoredItem]) *resultCache {
	return &resultCache{lru: lru, pending: make(map[string]*pendingFill)}
}

func (c *resultCache) get(userID string) ([]models.ScoredItem, bool) {
	return c.lru.Get(userID)
}

// begin registers a query for userID. Every ticket must be passed to
// finish exactly once.
func (c *resultCache) begin(userID string) fillTicket {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending[userID]
	if !ok {
		p = &pendingFill{}
		c.pending[userID] = p
	}
	p.inflight++
	return fillTicket{userID: userID, epoch: c.epoch, version: p.version}
}

// finish stores items when store is set and nothing invalidated the user
// since begin. It reports whether the result was stored.
func (c *resultCache) finish(t fillTicket, items []models.ScoredItem, store bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.pending[t.userID]
	fresh := p != nil && p.version == t.version && c.epoch == t.epoch
	if store && fresh {
		c.lru.Set(t.userID, items)
	}
	if p != nil {
		p.inflight--
		if p.inflight == 0 {
			delete(c.pending, t.userID)
		}
	}
	return store && fresh
}

// invalidate drops userID and makes its in-flight queries stale.
func (c *resultCache) invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.pending[userID]; ok {
		p.version++
	}
	c.lru.Delete(userID)
}

// purge drops every entry and makes every in-flight query stale.
func (c *resultCache) purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.lru.Clear()
}

func (c *resultCache) stats() cache.Stats {
	return c.lru.GetStats()
}
