// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/curator/internal/models"
	"github.com/tomtom215/curator/internal/recommend/storage"
)

func TestNewEngine(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryStore()
	tests := []struct {
		name    string
		cfg     *Config
		catalog CatalogProvider
		inter   InteractionProvider
		store   storage.EdgeStore
		wantErr bool
	}{
		{"nil config uses defaults", nil, &mockCatalog{}, newMockInteractions(), store, false},
		{"invalid config", &Config{}, &mockCatalog{}, newMockInteractions(), store, true},
		{"missing catalog", DefaultConfig(), nil, newMockInteractions(), store, true},
		{"missing store", DefaultConfig(), &mockCatalog{}, newMockInteractions(), nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, err := NewEngine(tt.cfg, tt.catalog, tt.inter, tt.store, zerolog.Nop())
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewEngine() error = %v, wantErr %v", err, tt.wantErr)
			}
			if e != nil {
				e.Close() //nolint:errcheck
			}
		})
	}
}

func TestRebuild_ShoeCatalog(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	res := f.mustRebuild(t)

	if !res.Success || res.Status != RebuildSucceeded {
		t.Fatalf("Rebuild() = %+v, want succeeded", res)
	}
	if res.Items != 3 || res.Edges != 1 {
		t.Errorf("Rebuild() items=%d edges=%d, want 3/1", res.Items, res.Edges)
	}

	edges, err := f.store.EdgesForItem(context.Background(), "content_based", "red")
	if err != nil {
		t.Fatal(err)
	}
	if len(edges) != 1 {
		t.Fatalf("edges for red = %+v, want 1", edges)
	}
	e := edges[0]
	if e.ItemA != "blue" || e.ItemB != "red" || e.Algorithm != "content_based" {
		t.Errorf("edge = %+v, want blue-red content_based", e)
	}
	if math.Abs(e.Score-redBlueSim) > 1e-9 {
		t.Errorf("edge score = %v, want %v", e.Score, redBlueSim)
	}

	if wallet, _ := f.store.EdgesForItem(context.Background(), "content_based", "wallet"); len(wallet) != 0 {
		t.Errorf("wallet edges = %+v, want none", wallet)
	}
	if f.engine.LastRebuild() == nil || f.engine.LastRebuild().Status != RebuildSucceeded {
		t.Errorf("LastRebuild() = %+v", f.engine.LastRebuild())
	}
}

func TestRebuild_Deterministic(t *testing.T) {
	t.Parallel()

	f := newFixture(t, func(c *Config) { c.SimilarityThreshold = -1 })
	var items []models.CatalogItem
	for i := 0; i < 25; i++ {
		items = append(items, models.CatalogItem{
			ID:          fmt.Sprintf("sku-%02d", i),
			Name:        []string{"Trail Shoe", "Road Shoe", "Wool Sock", "Running Sock", "Canvas Bag"}[i%5],
			Description: []string{"durable trail grip", "light road running", "warm wool blend", "breathable running fabric"}[i%4],
			Brand:       []string{"Acme", "Peak"}[i%2],
			Price:       models.Float64Ptr(float64(10 + i*3)),
			Rating:      models.Float64Ptr(float64(i%5) + 0.5),
			Active:      true,
		})
	}
	f.catalog.set(items)

	snapshot := func() map[string][]models.SimilarityEdge {
		out := make(map[string][]models.SimilarityEdge)
		for _, it := range items {
			edges, err := f.store.EdgesForItem(context.Background(), "content_based", it.ID)
			if err != nil {
				t.Fatal(err)
			}
			out[it.ID] = edges
		}
		return out
	}

	f.mustRebuild(t)
	first := snapshot()
	f.mustRebuild(t)
	second := snapshot()

	if !reflect.DeepEqual(first, second) {
		t.Error("consecutive rebuilds produced different edge sets")
	}
	// Threshold -1 keeps every pair exactly once.
	n, _ := f.store.CountEdges(context.Background(), "content_based")
	if want := 25 * 24 / 2; n != want {
		t.Errorf("CountEdges() = %d, want %d", n, want)
	}
}

func TestRebuild_EdgeInvariants(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.mustRebuild(t)

	for _, item := range shoeCatalog() {
		edges, err := f.store.EdgesForItem(context.Background(), "content_based", item.ID)
		if err != nil {
			t.Fatal(err)
		}
		for _, e := range edges {
			if e.ItemA >= e.ItemB {
				t.Errorf("edge %+v not canonical", e)
			}
			if e.Score < 0.1 {
				t.Errorf("edge %+v below threshold", e)
			}
			// Symmetric lookup from the other endpoint.
			back, _ := f.store.EdgesForItem(context.Background(), "content_based", e.Other(item.ID))
			found := false
			for _, b := range back {
				if b.Other(e.Other(item.ID)) == item.ID && b.Score == e.Score {
					found = true
				}
			}
			if !found {
				t.Errorf("edge %+v not visible from %s", e, e.Other(item.ID))
			}
		}
	}
}

func TestRebuild_NoFeaturesKeepsIndex(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.mustRebuild(t)

	f.catalog.set(nil)
	res, err := f.engine.Rebuild(context.Background())
	if !errors.Is(err, ErrNoFeatures) {
		t.Fatalf("Rebuild() error = %v, want ErrNoFeatures", err)
	}
	if res.Success || res.Status != RebuildNoFeatures {
		t.Errorf("Rebuild() = %+v, want no_features", res)
	}
	if n, _ := f.store.CountEdges(context.Background(), "content_based"); n != 1 {
		t.Errorf("CountEdges() = %d, want previous index (1)", n)
	}
}

func TestRebuild_InactiveItemsExcluded(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	items := shoeCatalog()
	items[1].Active = false
	f.catalog.set(items)

	res := f.mustRebuild(t)
	if res.Items != 2 {
		t.Errorf("Items = %d, want 2", res.Items)
	}
}

func TestRebuild_ZeroEdgesReplacesIndex(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.mustRebuild(t)

	// Shared terms keep a vocabulary, but no pair is close to identical.
	f.engine.config.SimilarityThreshold = 0.99
	f.catalog.set([]models.CatalogItem{
		{ID: "a", Name: "Red Shoe", Price: models.Float64Ptr(10), Active: true},
		{ID: "b", Name: "Red Hat", Price: models.Float64Ptr(20), Active: true},
		{ID: "c", Name: "Blue Shoe", Price: models.Float64Ptr(30), Active: true},
		{ID: "d", Name: "Blue Hat", Price: models.Float64Ptr(40), Active: true},
		{ID: "e", Name: "Green Lamp", Price: models.Float64Ptr(50), Active: true},
	})
	res := f.mustRebuild(t)
	if !res.Success || res.Edges != 0 {
		t.Errorf("Rebuild() = %+v, want success with 0 edges", res)
	}
	if n, _ := f.store.CountEdges(context.Background(), "content_based"); n != 0 {
		t.Errorf("CountEdges() = %d, want 0", n)
	}
}

func TestRebuild_EmptyVocabularyKeepsIndex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		items []models.CatalogItem
	}{
		{"no shared terms", []models.CatalogItem{
			{ID: "wallet", Name: "Leather Wallet", Price: models.Float64Ptr(40), Rating: models.Float64Ptr(3.9), Active: true},
			{ID: "shoe", Name: "Running Shoe", Price: models.Float64Ptr(50), Rating: models.Float64Ptr(4.5), Active: true},
			{ID: "lamp", Name: "Desk Lamp", Price: models.Float64Ptr(52), Rating: models.Float64Ptr(4.4), Active: true},
		}},
		{"catalog too small for min_df", []models.CatalogItem{
			{ID: "a", Name: "Anvil", Price: models.Float64Ptr(10), Active: true},
			{ID: "b", Name: "Banjo", Price: models.Float64Ptr(20), Active: true},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, nil)
			f.mustRebuild(t)

			f.catalog.set(tt.items)
			res, err := f.engine.Rebuild(context.Background())
			if !errors.Is(err, ErrEmptyVocabulary) {
				t.Fatalf("Rebuild() error = %v, want ErrEmptyVocabulary", err)
			}
			if res.Success || res.Status != RebuildBuildFailed {
				t.Errorf("Rebuild() = %+v, want build_failed", res)
			}
			edges, _ := f.store.EdgesForItem(context.Background(), "content_based", "red")
			if len(edges) != 1 || edges[0].Other("red") != "blue" {
				t.Errorf("EdgesForItem(red) = %+v, want previous red/blue edge", edges)
			}
		})
	}
}

func TestRebuild_StoreFailureKeepsIndex(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.mustRebuild(t)

	f.store.failWrites.Store(true)
	f.catalog.set(append(shoeCatalog(), models.CatalogItem{ID: "sock", Name: "Running Sock", Active: true}))

	res, err := f.engine.Rebuild(context.Background())
	if err == nil || res.Status != RebuildStoreFailed {
		t.Fatalf("Rebuild() = %+v, %v, want store_failed", res, err)
	}
	if n, _ := f.store.CountEdges(context.Background(), "content_based"); n != 1 {
		t.Errorf("CountEdges() = %d, want previous index (1)", n)
	}
}

func TestRebuild_CatalogFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.catalog.err = errors.New("connection reset")

	res, err := f.engine.Rebuild(context.Background())
	if err == nil || res.Status != RebuildBuildFailed || res.Error == "" {
		t.Errorf("Rebuild() = %+v, %v, want build_failed", res, err)
	}
}

func TestRebuild_Serialized(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.catalog.block = make(chan struct{})
	f.catalog.entered = make(chan struct{}, 1)

	done := make(chan error, 1)
	go func() {
		_, err := f.engine.Rebuild(context.Background())
		done <- err
	}()
	<-f.catalog.entered

	if !f.engine.Rebuilding() {
		t.Error("Rebuilding() = false during a rebuild")
	}
	res, err := f.engine.Rebuild(context.Background())
	if !errors.Is(err, ErrRebuildInProgress) || res.Status != RebuildAlreadyRunning {
		t.Errorf("concurrent Rebuild() = %+v, %v, want ErrRebuildInProgress", res, err)
	}
	if ack := f.engine.RebuildAsync("test"); ack != RebuildAckAlreadyRunning {
		t.Errorf("RebuildAsync() during rebuild = %q, want already_running", ack)
	}

	close(f.catalog.block)
	if err := <-done; err != nil {
		t.Fatalf("first Rebuild() error = %v", err)
	}
	if f.catalog.calls.Load() != 1 {
		t.Errorf("catalog read %d times, want 1", f.catalog.calls.Load())
	}
}

func TestRebuildAsync_Goroutine(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	if ack := f.engine.RebuildAsync("startup"); ack != RebuildAccepted {
		t.Fatalf("RebuildAsync() = %q, want accepted", ack)
	}

	deadline := time.After(5 * time.Second)
	for f.engine.LastRebuild() == nil {
		select {
		case <-deadline:
			t.Fatal("async rebuild did not finish")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if got := f.engine.LastRebuild(); got.Status != RebuildSucceeded || got.Reason != "startup" {
		t.Errorf("LastRebuild() = %+v, want succeeded/startup", got)
	}
}

func TestRebuildAsync_Scheduler(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	s := &fakeScheduler{}
	f.engine.SetRebuildScheduler(s)

	if ack := f.engine.RebuildAsync("api"); ack != RebuildAccepted {
		t.Errorf("first RebuildAsync() = %q, want accepted", ack)
	}
	if ack := f.engine.RebuildAsync("api"); ack != RebuildAckAlreadyRunning {
		t.Errorf("second RebuildAsync() = %q, want already_running", ack)
	}
	if len(s.reasons) != 2 {
		t.Errorf("scheduler saw %d requests, want 2", len(s.reasons))
	}
	if f.catalog.calls.Load() != 0 {
		t.Error("RebuildAsync with a scheduler must not rebuild inline")
	}
}

func TestEngine_Close(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	if err := f.engine.Close(); err != nil {
		t.Fatal(err)
	}
	if ack := f.engine.RebuildAsync("late"); ack != RebuildRejected {
		t.Errorf("RebuildAsync() after Close = %q, want rejected", ack)
	}
	if _, err := f.engine.Rebuild(context.Background()); !errors.Is(err, ErrEngineClosed) {
		t.Errorf("Rebuild() after Close error = %v, want ErrEngineClosed", err)
	}
}

func TestEngine_Status(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.mustRebuild(t)

	st, err := f.engine.Status(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if st.Edges != 1 || st.Algorithm != "content_based" || st.Rebuilding {
		t.Errorf("Status() = %+v", st)
	}
	if st.LastRebuild == nil || !st.LastRebuild.Success {
		t.Errorf("Status().LastRebuild = %+v", st.LastRebuild)
	}
	if st.BreakerState != "closed" {
		t.Errorf("BreakerState = %q, want closed", st.BreakerState)
	}
}
