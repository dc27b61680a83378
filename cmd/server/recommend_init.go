// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/curator/internal/config"
	"github.com/tomtom215/curator/internal/recommend"
	"github.com/tomtom215/curator/internal/recommend/features"
	"github.com/tomtom215/curator/internal/recommend/storage"
	"github.com/tomtom215/curator/internal/supervisor/services"
)

// edgeStoreHandle is the selected edge backend and how to release it.
type edgeStoreHandle struct {
	store   storage.EdgeStore
	backend string
	close   func() error
}

// openEdgeStore selects the edge backend. duckdb reuses the catalog
// database, so its close is a no-op.
func openEdgeStore(ctx context.Context, cfg *config.StorageConfig, duck storage.EdgeStore) (*edgeStoreHandle, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case "", "duckdb":
		return &edgeStoreHandle{store: duck, backend: "duckdb", close: noop}, nil

	case "memory":
		return &edgeStoreHandle{store: storage.NewMemoryStore(), backend: "memory", close: noop}, nil

	case "badger":
		s, err := storage.OpenBadgerStore(storage.BadgerOptions{Path: cfg.BadgerPath})
		if err != nil {
			return nil, err
		}
		return &edgeStoreHandle{store: s, backend: "badger", close: s.Close}, nil

	case "redis":
		s, err := storage.OpenRedisStore(ctx, storage.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
			Grace:    cfg.RedisGrace,
		})
		if err != nil {
			return nil, err
		}
		return &edgeStoreHandle{store: s, backend: "redis", close: s.Close}, nil

	default:
		return nil, fmt.Errorf("unknown edge store backend %q", cfg.Backend)
	}
}

// buildEngineConfig maps application config onto the engine config. Fields
// the application does not expose keep the engine defaults.
func buildEngineConfig(cfg *config.RecommendConfig) *recommend.Config {
	ec := recommend.DefaultConfig()

	ec.SimilarityThreshold = cfg.SimilarityThreshold
	if cfg.AlgorithmTag != "" {
		ec.AlgorithmTag = cfg.AlgorithmTag
	}

	ec.Features = features.Config{
		TFIDF: features.TFIDFConfig{
			MaxFeatures: cfg.MaxFeatures,
			MinDF:       cfg.MinDF,
			MaxDF:       cfg.MaxDF,
			NgramMin:    ec.Features.TFIDF.NgramMin,
			NgramMax:    cfg.NgramMax,
		},
		TextWeight:    cfg.TextWeight,
		NumericWeight: cfg.NumericWeight,
	}

	ec.Scoring = recommend.ScoringConfig{
		LikeWeight:         cfg.LikeWeight,
		PurchaseWeight:     cfg.PurchaseWeight,
		ViewWindow:         cfg.ViewWindow,
		ViewDecay:          cfg.ViewDecay,
		SimilarFanout:      cfg.SimilarFanout,
		TrendingLikeWeight: cfg.TrendingLikeWeight,
	}

	ec.MatrixWorkers = cfg.MatrixWorkers
	if cfg.QueryRetryBackoff > 0 {
		ec.QueryRetryBackoff = cfg.QueryRetryBackoff
	}
	ec.Cache = recommend.CacheConfig{
		Size: cfg.CacheSize,
		TTL:  cfg.CacheTTL,
	}
	return ec
}

func buildRebuildServiceConfig(cfg *config.RecommendConfig) services.RebuildServiceConfig {
	return services.RebuildServiceConfig{
		RebuildOnStart: cfg.RebuildOnStart,
		Interval:       cfg.RebuildInterval,
		MinGap:         cfg.RebuildMinGap,
	}
}

// initRecommend creates the engine and its rebuild service, and routes the
// engine's asynchronous rebuild requests through that service.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initRecommend(
	cfg *config.RecommendConfig,
	catalog recommend.CatalogProvider,
	interactions recommend.InteractionProvider,
	store storage.EdgeStore,
	logger zerolog.Logger,
) (*recommend.Engine, *services.RebuildService, error) {
	engine, err := recommend.NewEngine(buildEngineConfig(cfg), catalog, interactions, store, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("create recommendation engine: %w", err)
	}

	svc := services.NewRebuildService(engine, buildRebuildServiceConfig(cfg), logger)
	engine.SetRebuildScheduler(svc)

	logger.Info().
		Float64("similarity_threshold", cfg.SimilarityThreshold).
		Dur("rebuild_interval", cfg.RebuildInterval).
		Bool("rebuild_on_start", cfg.RebuildOnStart).
		Int("cache_size", cfg.CacheSize).
		Msg("Recommendation engine initialized")

	return engine, svc, nil
}
