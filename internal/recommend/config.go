// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"fmt"
	"time"

	"github.com/tomtom215/curator/internal/recommend/features"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// SimilarityThreshold is the minimum cosine score persisted as an edge.
	SimilarityThreshold float64 `json:"similarity_threshold"`

	// AlgorithmTag labels the edge set written by this engine.
	AlgorithmTag string `json:"algorithm_tag"`

	// Features configures vectorization.
	Features features.Config `json:"features"`

	// Scoring contains the interaction weights.
	Scoring ScoringConfig `json:"scoring"`

	// MatrixWorkers bounds parallel similarity rows. 0 uses GOMAXPROCS.
	MatrixWorkers int `json:"matrix_workers"`

	// QueryRetryBackoff is the pause before retrying a failed read.
	QueryRetryBackoff time.Duration `json:"query_retry_backoff"`

	// Breaker configures the circuit breaker around collaborator reads.
	Breaker BreakerConfig `json:"breaker"`

	// Cache contains user recommendation caching parameters.
	Cache CacheConfig `json:"cache"`
}

// ScoringConfig holds the interaction weights used for personalization and
// trending.
type ScoringConfig struct {
	// LikeWeight is added once per actively liked item.
	LikeWeight float64 `json:"like_weight"`

	// PurchaseWeight is added once per purchased item, regardless of quantity.
	PurchaseWeight float64 `json:"purchase_weight"`

	// ViewWindow is how many of the newest views are considered.
	ViewWindow int `json:"view_window"`

	// ViewDecay is the per-position decay: view i adds max(0, 1-ViewDecay*i).
	ViewDecay float64 `json:"view_decay"`

	// SimilarFanout is how many neighbours each interacted item contributes.
	SimilarFanout int `json:"similar_fanout"`

	// TrendingLikeWeight multiplies likes in the trending score.
	TrendingLikeWeight float64 `json:"trending_like_weight"`
}

// BreakerConfig configures the read circuit breaker.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens it.
	FailureThreshold uint32 `json:"failure_threshold"`

	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration `json:"open_timeout"`

	// MaxHalfOpen is the number of trial requests while half-open.
	MaxHalfOpen uint32 `json:"max_half_open"`
}

// CacheConfig contains user recommendation caching parameters.
type CacheConfig struct {
	// Size is the maximum number of cached users. 0 disables the cache.
	Size int `json:"size"`

	// TTL is how long a cached list is served.
	TTL time.Duration `json:"ttl"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		SimilarityThreshold: 0.1,
		AlgorithmTag:        "content_based",
		Features:            features.DefaultConfig(),
		Scoring: ScoringConfig{
			LikeWeight:         3.0,
			PurchaseWeight:     2.5,
			ViewWindow:         50,
			ViewDecay:          0.02,
			SimilarFanout:      20,
			TrendingLikeWeight: 2.0,
		},
		MatrixWorkers:     0,
		QueryRetryBackoff: 50 * time.Millisecond,
		Breaker: BreakerConfig{
			FailureThreshold: 5,
			OpenTimeout:      30 * time.Second,
			MaxHalfOpen:      1,
		},
		Cache: CacheConfig{
			Size: 10000,
			TTL:  24 * time.Hour,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.SimilarityThreshold < -1 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold must be in [-1, 1], got %f", c.SimilarityThreshold)
	}
	if c.AlgorithmTag == "" {
		return fmt.Errorf("algorithm_tag is required")
	}
	if err := c.Features.Validate(); err != nil {
		return fmt.Errorf("features: %w", err)
	}

	if c.Scoring.LikeWeight < 0 {
		return fmt.Errorf("scoring.like_weight must be non-negative, got %f", c.Scoring.LikeWeight)
	}
	if c.Scoring.PurchaseWeight < 0 {
		return fmt.Errorf("scoring.purchase_weight must be non-negative, got %f", c.Scoring.PurchaseWeight)
	}
	if c.Scoring.ViewWindow < 0 {
		return fmt.Errorf("scoring.view_window must be non-negative, got %d", c.Scoring.ViewWindow)
	}
	if c.Scoring.ViewDecay < 0 {
		return fmt.Errorf("scoring.view_decay must be non-negative, got %f", c.Scoring.ViewDecay)
	}
	if c.Scoring.SimilarFanout < 1 {
		return fmt.Errorf("scoring.similar_fanout must be positive, got %d", c.Scoring.SimilarFanout)
	}
	if c.Scoring.TrendingLikeWeight < 0 {
		return fmt.Errorf("scoring.trending_like_weight must be non-negative, got %f", c.Scoring.TrendingLikeWeight)
	}

	if c.MatrixWorkers < 0 {
		return fmt.Errorf("matrix_workers must be non-negative, got %d", c.MatrixWorkers)
	}
	if c.QueryRetryBackoff < 0 {
		return fmt.Errorf("query_retry_backoff must be non-negative, got %s", c.QueryRetryBackoff)
	}
	if c.Breaker.FailureThreshold < 1 {
		return fmt.Errorf("breaker.failure_threshold must be positive, got %d", c.Breaker.FailureThreshold)
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("cache.size must be non-negative, got %d", c.Cache.Size)
	}
	if c.Cache.Size > 0 && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive when the cache is enabled, got %s", c.Cache.TTL)
	}
	return nil
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	// All nested structs contain only value types.
	clone := *c
	return &clone
}
