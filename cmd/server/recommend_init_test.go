// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/curator/internal/config"
	"github.com/tomtom215/curator/internal/models"
	"github.com/tomtom215/curator/internal/recommend/storage"
)

func testRecommendConfig() config.RecommendConfig {
	return config.RecommendConfig{
		SimilarityThreshold: 0.15,
		AlgorithmTag:        "content_based",
		MaxFeatures:         1000,
		MinDF:               1,
		MaxDF:               0.9,
		NgramMax:            3,
		TextWeight:          0.7,
		NumericWeight:       0.3,
		LikeWeight:          3,
		PurchaseWeight:      2.5,
		ViewWindow:          40,
		ViewDecay:           0.05,
		SimilarFanout:       15,
		TrendingLikeWeight:  2,
		RebuildInterval:     time.Hour,
		RebuildOnStart:      true,
		RebuildMinGap:       time.Minute,
		MatrixWorkers:       4,
		QueryRetryBackoff:   20 * time.Millisecond,
		CacheTTL:            time.Hour,
		CacheSize:           500,
	}
}

func TestBuildEngineConfig(t *testing.T) {
	t.Parallel()

	rc := testRecommendConfig()
	ec := buildEngineConfig(&rc)

	if err := ec.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if ec.SimilarityThreshold != 0.15 || ec.AlgorithmTag != "content_based" {
		t.Errorf("edge settings = %v/%q", ec.SimilarityThreshold, ec.AlgorithmTag)
	}
	tf := ec.Features.TFIDF
	if tf.MaxFeatures != 1000 || tf.MinDF != 1 || tf.MaxDF != 0.9 || tf.NgramMin != 1 || tf.NgramMax != 3 {
		t.Errorf("TFIDF = %+v", tf)
	}
	if ec.Features.TextWeight != 0.7 || ec.Features.NumericWeight != 0.3 {
		t.Errorf("weights = %v/%v", ec.Features.TextWeight, ec.Features.NumericWeight)
	}
	sc := ec.Scoring
	if sc.LikeWeight != 3 || sc.PurchaseWeight != 2.5 || sc.ViewWindow != 40 ||
		sc.ViewDecay != 0.05 || sc.SimilarFanout != 15 || sc.TrendingLikeWeight != 2 {
		t.Errorf("Scoring = %+v", sc)
	}
	if ec.MatrixWorkers != 4 || ec.QueryRetryBackoff != 20*time.Millisecond {
		t.Errorf("workers/backoff = %d/%v", ec.MatrixWorkers, ec.QueryRetryBackoff)
	}
	if ec.Cache.Size != 500 || ec.Cache.TTL != time.Hour {
		t.Errorf("Cache = %+v", ec.Cache)
	}
	if ec.Breaker.FailureThreshold == 0 {
		t.Error("breaker settings should keep engine defaults")
	}
}

func TestBuildEngineConfig_KeepsDefaultsForUnset(t *testing.T) {
	t.Parallel()

	rc := testRecommendConfig()
	rc.AlgorithmTag = ""
	rc.QueryRetryBackoff = 0
	ec := buildEngineConfig(&rc)

	if ec.AlgorithmTag == "" {
		t.Error("empty AlgorithmTag should keep the default tag")
	}
	if ec.QueryRetryBackoff <= 0 {
		t.Error("zero QueryRetryBackoff should keep the default")
	}
}

func TestBuildRebuildServiceConfig(t *testing.T) {
	t.Parallel()

	rc := testRecommendConfig()
	got := buildRebuildServiceConfig(&rc)
	if !got.RebuildOnStart || got.Interval != time.Hour || got.MinGap != time.Minute {
		t.Errorf("buildRebuildServiceConfig() = %+v", got)
	}
}

func TestOpenEdgeStore(t *testing.T) {
	t.Parallel()

	shared := storage.NewMemoryStore()

	tests := []struct {
		name        string
		backend     string
		wantBackend string
		wantShared  bool
	}{
		{"default uses database", "", "duckdb", true},
		{"duckdb", "duckdb", "duckdb", true},
		{"memory", "memory", "memory", false},
		{"badger", "badger", "badger", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := &config.StorageConfig{
				Backend:    tt.backend,
				BadgerPath: filepath.Join(t.TempDir(), "edges"),
			}

			h, err := openEdgeStore(context.Background(), cfg, shared)
			if err != nil {
				t.Fatalf("openEdgeStore() error = %v", err)
			}
			defer func() {
				if err := h.close(); err != nil {
					t.Errorf("close() = %v", err)
				}
			}()

			if h.backend != tt.wantBackend {
				t.Errorf("backend = %q, want %q", h.backend, tt.wantBackend)
			}
			if isShared := h.store == storage.EdgeStore(shared); isShared != tt.wantShared {
				t.Errorf("shared store = %v, want %v", isShared, tt.wantShared)
			}

			if tt.wantShared {
				return
			}
			ctx := context.Background()
			edges := []models.SimilarityEdge{{ItemA: "a", ItemB: "b", Score: 0.5, Algorithm: "content_based"}}
			if err := h.store.ReplaceEdges(ctx, "content_based", edges); err != nil {
				t.Fatalf("ReplaceEdges() = %v", err)
			}
			n, err := h.store.CountEdges(ctx, "content_based")
			if err != nil || n != 1 {
				t.Errorf("CountEdges() = %d, %v; want 1", n, err)
			}
		})
	}
}

func TestOpenEdgeStore_UnknownBackend(t *testing.T) {
	t.Parallel()

	_, err := openEdgeStore(context.Background(), &config.StorageConfig{Backend: "cassandra"}, storage.NewMemoryStore())
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
