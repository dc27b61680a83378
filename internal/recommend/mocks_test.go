// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/curator/internal/models"
	"github.com/tomtom215/curator/internal/recommend/storage"
)

var errTransient = errors.New("transient read failure")

// mockCatalog serves a fixed catalog. When block is non-nil ActiveCatalog
// waits on it, which lets tests hold a rebuild open.
type mockCatalog struct {
	mu      sync.Mutex
	items   []models.CatalogItem
	err     error
	block   chan struct{}
	entered chan struct{}
	calls   atomic.Int32
}

func (m *mockCatalog) ActiveCatalog(ctx context.Context) ([]models.CatalogItem, error) {
	m.calls.Add(1)
	if m.entered != nil {
		select {
		case m.entered <- struct{}{}:
		default:
		}
	}
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.CatalogItem, 0, len(m.items))
	for _, it := range m.items {
		if it.Active {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *mockCatalog) set(items []models.CatalogItem) {
	m.mu.Lock()
	m.items = items
	m.mu.Unlock()
}

// mockInteractions serves per-user histories. failures makes the next N
// reads fail. When viewsBlock is non-nil RecentViews reads its snapshot,
// signals viewsEntered and waits on viewsBlock before returning it.
type mockInteractions struct {
	viewsEntered chan struct{}
	viewsBlock   chan struct{}

	mu        sync.Mutex
	likes     map[string][]models.Like
	purchases map[string][]models.Purchase
	views     map[string][]models.View // newest first
	counts    []models.TrendingItem
	failures  int
	viewLimit int
	sinceSeen time.Time
}

func newMockInteractions() *mockInteractions {
	return &mockInteractions{
		likes:     make(map[string][]models.Like),
		purchases: make(map[string][]models.Purchase),
		views:     make(map[string][]models.View),
	}
}

func (m *mockInteractions) fail() error {
	if m.failures > 0 {
		m.failures--
		return errTransient
	}
	return nil
}

func (m *mockInteractions) UserLikes(_ context.Context, userID string) ([]models.Like, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return nil, err
	}
	return m.likes[userID], nil
}

func (m *mockInteractions) UserPurchases(_ context.Context, userID string) ([]models.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return nil, err
	}
	return m.purchases[userID], nil
}

func (m *mockInteractions) RecentViews(_ context.Context, userID string, limit int) ([]models.View, error) {
	m.mu.Lock()
	if err := m.fail(); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	m.viewLimit = limit
	v := m.views[userID]
	if len(v) > limit {
		v = v[:limit]
	}
	v = append([]models.View(nil), v...)
	m.mu.Unlock()

	if m.viewsBlock != nil {
		m.viewsEntered <- struct{}{}
		<-m.viewsBlock
	}
	return v, nil
}

func (m *mockInteractions) InteractionCounts(_ context.Context, since time.Time) ([]models.TrendingItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return nil, err
	}
	m.sinceSeen = since
	return append([]models.TrendingItem(nil), m.counts...), nil
}

func (m *mockInteractions) like(userID, itemID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.likes[userID] = append(m.likes[userID], models.Like{UserID: userID, ItemID: itemID, Active: true, Timestamp: time.Now()})
}

func (m *mockInteractions) purchase(userID, itemID string, qty int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purchases[userID] = append(m.purchases[userID], models.Purchase{UserID: userID, ItemID: itemID, Quantity: qty, UnitPrice: 10})
}

func (m *mockInteractions) view(userID, itemID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := models.View{UserID: userID, ItemID: itemID, Timestamp: time.Now()}
	m.views[userID] = append([]models.View{v}, m.views[userID]...)
}

func (m *mockInteractions) setFailures(n int) {
	m.mu.Lock()
	m.failures = n
	m.mu.Unlock()
}

// failingStore wraps a store and fails writes on demand.
type failingStore struct {
	storage.EdgeStore
	failWrites atomic.Bool
	failReads  atomic.Int32
}

func (f *failingStore) ReplaceEdges(ctx context.Context, algorithm string, edges []models.SimilarityEdge) error {
	if f.failWrites.Load() {
		return errors.New("disk full")
	}
	return f.EdgeStore.ReplaceEdges(ctx, algorithm, edges)
}

func (f *failingStore) EdgesForItem(ctx context.Context, algorithm, itemID string) ([]models.SimilarityEdge, error) {
	if f.failReads.Load() > 0 {
		f.failReads.Add(-1)
		return nil, errTransient
	}
	return f.EdgeStore.EdgesForItem(ctx, algorithm, itemID)
}

// fakeScheduler records requests and reports a pending slot like a
// buffered-1 channel.
type fakeScheduler struct {
	mu      sync.Mutex
	pending bool
	reasons []string
}

func (f *fakeScheduler) RequestRebuild(reason string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reasons = append(f.reasons, reason)
	if f.pending {
		return false
	}
	f.pending = true
	return true
}

func shoeCatalog() []models.CatalogItem {
	return []models.CatalogItem{
		{ID: "red", Name: "Red Running Shoe", Description: "lightweight running shoe", Price: models.Float64Ptr(50), Rating: models.Float64Ptr(4.5), Active: true},
		{ID: "blue", Name: "Blue Running Shoe", Description: "lightweight running shoe", Price: models.Float64Ptr(55), Rating: models.Float64Ptr(4.2), Active: true},
		{ID: "wallet", Name: "Leather Wallet", Description: "genuine leather wallet", Price: models.Float64Ptr(40), Rating: models.Float64Ptr(3.9), Active: true},
	}
}

// redBlueSim is cos(red, blue) for shoeCatalog under the default config.
const redBlueSim = 0.9383431168171101

type fixture struct {
	engine       *Engine
	catalog      *mockCatalog
	interactions *mockInteractions
	store        *failingStore
}

func newFixture(t *testing.T, mutate func(*Config)) *fixture {
	t.Helper()

	cfg := DefaultConfig()
	cfg.QueryRetryBackoff = time.Millisecond
	if mutate != nil {
		mutate(cfg)
	}
	f := &fixture{
		catalog:      &mockCatalog{items: shoeCatalog()},
		interactions: newMockInteractions(),
		store:        &failingStore{EdgeStore: storage.NewMemoryStore()},
	}
	e, err := NewEngine(cfg, f.catalog, f.interactions, f.store, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	t.Cleanup(func() { e.Close() }) //nolint:errcheck
	f.engine = e
	return f
}

func (f *fixture) mustRebuild(t *testing.T) RebuildResult {
	t.Helper()
	res, err := f.engine.Rebuild(context.Background())
	if err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	return res
}
