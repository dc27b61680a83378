// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package config

import (
	"fmt"
	"strings"

	"github.com/tomtom215/curator/internal/logging"
)

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateDatabase,
		c.validateLogging,
		c.validateRecommend,
		c.validateStorage,
		c.validateNATS,
		c.validateSecurity,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("ENVIRONMENT must be development, staging or production, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be >= 0, got %d", c.Database.Threads)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

//nolint:gocyclo // flat list of independent range checks
func (c *Config) validateRecommend() error {
	r := &c.Recommend
	if r.SimilarityThreshold < -1 || r.SimilarityThreshold > 1 {
		return fmt.Errorf("SIMILARITY_THRESHOLD must be within [-1, 1], got %v", r.SimilarityThreshold)
	}
	if r.AlgorithmTag == "" {
		return fmt.Errorf("recommend.algorithm_tag is required")
	}
	if r.MaxFeatures <= 0 {
		return fmt.Errorf("RECOMMEND_MAX_FEATURES must be positive, got %d", r.MaxFeatures)
	}
	if r.MinDF < 1 {
		return fmt.Errorf("RECOMMEND_MIN_DF must be >= 1, got %d", r.MinDF)
	}
	if r.MaxDF <= 0 || r.MaxDF > 1 {
		return fmt.Errorf("RECOMMEND_MAX_DF must be within (0, 1], got %v", r.MaxDF)
	}
	if r.NgramMax < 1 || r.NgramMax > 3 {
		return fmt.Errorf("recommend.ngram_max must be 1, 2 or 3, got %d", r.NgramMax)
	}
	if r.TextWeight < 0 || r.NumericWeight < 0 || r.TextWeight+r.NumericWeight == 0 {
		return fmt.Errorf("text and numeric weights must be non-negative and not both zero")
	}
	if r.ViewWindow < 0 {
		return fmt.Errorf("RECOMMEND_VIEW_WINDOW must be >= 0, got %d", r.ViewWindow)
	}
	if r.SimilarFanout <= 0 {
		return fmt.Errorf("RECOMMEND_SIMILAR_FANOUT must be positive, got %d", r.SimilarFanout)
	}
	if r.RebuildInterval < 0 {
		return fmt.Errorf("RECOMMEND_REBUILD_INTERVAL must be >= 0, got %v", r.RebuildInterval)
	}
	if r.MatrixWorkers < 0 {
		return fmt.Errorf("RECOMMEND_MATRIX_WORKERS must be >= 0, got %d", r.MatrixWorkers)
	}
	if r.CacheSize < 0 {
		return fmt.Errorf("RECOMMEND_CACHE_SIZE must be >= 0, got %d", r.CacheSize)
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case "duckdb", "memory":
	case "badger":
		if c.Storage.BadgerPath == "" {
			return fmt.Errorf("EDGE_STORE_BADGER_PATH is required when EDGE_STORE=badger")
		}
	case "redis":
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when EDGE_STORE=redis")
		}
	default:
		return fmt.Errorf("EDGE_STORE must be duckdb, memory, badger or redis, got %q", c.Storage.Backend)
	}
	return nil
}

func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}
	if !c.NATS.EmbeddedServer && c.NATS.URL == "" {
		return fmt.Errorf("NATS_URL is required when NATS_EMBEDDED=false")
	}
	if c.NATS.StreamName == "" {
		return fmt.Errorf("NATS_STREAM_NAME is required")
	}
	if c.NATS.MaxDeliver < 1 {
		return fmt.Errorf("nats.max_deliver must be >= 1, got %d", c.NATS.MaxDeliver)
	}
	if c.NATS.RetentionDays < 1 {
		return fmt.Errorf("nats.retention_days must be >= 1, got %d", c.NATS.RetentionDays)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive, got %d", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %v", c.Security.RateLimitWindow)
	}
	return nil
}

// ShouldWarnAboutCORS reports a wildcard origin in production.
func (c *Config) ShouldWarnAboutCORS() bool {
	if !c.IsProduction() {
		return false
	}
	for _, o := range c.Security.CORSOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}
