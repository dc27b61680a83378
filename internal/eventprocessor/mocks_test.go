// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package eventprocessor

import (
	"context"
	"sync"

	"github.com/tomtom215/curator/internal/models"
	"github.com/tomtom215/curator/internal/recommend"
)

// mockStore records writes and returns err from every method when set.
type mockStore struct {
	mu        sync.Mutex
	err       error
	views     []models.View
	likes     map[string]bool
	purchases []models.Purchase
	items     []models.CatalogItem
	written   chan struct{}
}

func newMockStore() *mockStore {
	return &mockStore{
		likes:   make(map[string]bool),
		written: make(chan struct{}, 16),
	}
}

func (m *mockStore) signal() {
	select {
	case m.written <- struct{}{}:
	default:
	}
}

func (m *mockStore) RecordView(_ context.Context, v models.View) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.views = append(m.views, v)
	m.signal()
	return nil
}

func (m *mockStore) ToggleLike(_ context.Context, userID, itemID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	key := userID + "/" + itemID
	m.likes[key] = !m.likes[key]
	m.signal()
	return m.likes[key], nil
}

func (m *mockStore) RecordPurchase(_ context.Context, p models.Purchase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.purchases = append(m.purchases, p)
	m.signal()
	return nil
}

func (m *mockStore) UpsertCatalogItems(_ context.Context, items []models.CatalogItem) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	m.items = append(m.items, items...)
	m.signal()
	return len(items), nil
}

func (m *mockStore) viewCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.views)
}

// mockEngine counts notifications.
type mockEngine struct {
	mu          sync.Mutex
	invalidated []string
	rebuilds    []string
}

func (m *mockEngine) InvalidateUser(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated = append(m.invalidated, userID)
}

func (m *mockEngine) RebuildAsync(reason string) recommend.RebuildAck {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rebuilds = append(m.rebuilds, reason)
	return recommend.RebuildAccepted
}

func (m *mockEngine) snapshot() (invalidated, rebuilds []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.invalidated...), append([]string(nil), m.rebuilds...)
}
