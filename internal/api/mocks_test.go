// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/curator/internal/database"
	"github.com/tomtom215/curator/internal/models"
	"github.com/tomtom215/curator/internal/recommend"
)

// mockEngine records calls and returns canned results.
type mockEngine struct {
	mu sync.Mutex

	similar  recommend.QueryResult[models.ScoredItem]
	user     recommend.QueryResult[models.ScoredItem]
	trending recommend.QueryResult[models.TrendingItem]
	status   recommend.Status
	ack      recommend.RebuildAck
	err      error

	lastLimit   int
	lastDays    int
	lastSort    recommend.SortKey
	invalidated []string
	rebuilds    []string
}

func (m *mockEngine) SimilarItems(_ context.Context, _ string, limit int) (recommend.QueryResult[models.ScoredItem], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLimit = limit
	return m.similar, m.err
}

func (m *mockEngine) UserRecommendations(_ context.Context, _ string, limit int) (recommend.QueryResult[models.ScoredItem], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLimit = limit
	return m.user, m.err
}

func (m *mockEngine) Trending(_ context.Context, limit, days int, key recommend.SortKey) (recommend.QueryResult[models.TrendingItem], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLimit, m.lastDays, m.lastSort = limit, days, key
	return m.trending, m.err
}

func (m *mockEngine) RebuildAsync(reason string) recommend.RebuildAck {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rebuilds = append(m.rebuilds, reason)
	if m.ack == "" {
		return recommend.RebuildAccepted
	}
	return m.ack
}

func (m *mockEngine) Status(context.Context) (recommend.Status, error) {
	return m.status, m.err
}

func (m *mockEngine) InvalidateUser(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated = append(m.invalidated, userID)
}

// mockStore is an in-memory catalog with like state.
type mockStore struct {
	mu sync.Mutex

	items     map[string]bool
	likes     map[string]bool
	views     []models.View
	purchases []models.Purchase
	pingErr   error
	writeErr  error
	lookupErr error
}

func newMockStore(items ...string) *mockStore {
	s := &mockStore{items: make(map[string]bool), likes: make(map[string]bool)}
	for _, id := range items {
		s.items[id] = true
	}
	return s
}

func (s *mockStore) Ping(context.Context) error { return s.pingErr }

func (s *mockStore) CatalogItem(_ context.Context, id string) (models.CatalogItem, error) {
	if s.lookupErr != nil {
		return models.CatalogItem{}, s.lookupErr
	}
	if !s.items[id] {
		return models.CatalogItem{}, database.ErrItemNotFound
	}
	return models.CatalogItem{ID: id, Name: id, Active: true}, nil
}

func (s *mockStore) RecordView(_ context.Context, v models.View) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(v.ItemID); err != nil {
		return err
	}
	s.views = append(s.views, v)
	return nil
}

func (s *mockStore) ToggleLike(_ context.Context, userID, itemID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(itemID); err != nil {
		return false, err
	}
	key := userID + "|" + itemID
	s.likes[key] = !s.likes[key]
	return s.likes[key], nil
}

func (s *mockStore) RecordPurchase(_ context.Context, p models.Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(p.ItemID); err != nil {
		return err
	}
	s.purchases = append(s.purchases, p)
	return nil
}

func (s *mockStore) check(itemID string) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	if !s.items[itemID] {
		return database.ErrItemNotFound
	}
	return nil
}

type staticHealth bool

func (h staticHealth) Healthy() bool { return bool(h) }

// testResponse mirrors models.APIResponse with a raw data payload.
type testResponse struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

func newTestRouter(engine *mockEngine, store *mockStore) http.Handler {
	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitDisabled = true
	return NewRouter(NewHandler(engine, store, time.Second), NewChiMiddleware(cfg))
}

// do sends a request through h and decodes the envelope.
func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, testResponse) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp testResponse
	if ct := rec.Header().Get("Content-Type"); strings.HasPrefix(ct, "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
		}
	}
	return rec, resp
}

func decodeData(t *testing.T, raw json.RawMessage, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(raw, dst); err != nil {
		t.Fatalf("decode data: %v (raw %s)", err, raw)
	}
}
