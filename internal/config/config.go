// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

// Package config loads Curator configuration with Koanf v2.
//
// Sources are layered, highest priority last:
//
//  1. Built-in defaults (defaultConfig)
//  2. YAML file: CONFIG_PATH, or the first of DefaultConfigPaths that exists
//  3. Environment variables, through the explicit mapping in envTransformFunc
//
// Unknown environment variables are ignored so that the process environment
// cannot leak into the configuration tree.
package config

import (
	"time"
)

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Logging   LoggingConfig   `koanf:"logging"`
	Recommend RecommendConfig `koanf:"recommend"`
	Storage   StorageConfig   `koanf:"storage"`
	NATS      NATSConfig      `koanf:"nats"`
	Security  SecurityConfig  `koanf:"security"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`          // read/write timeout per request
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"` // graceful drain on SIGTERM
	Environment     string        `koanf:"environment"`      // development, staging, production
}

// DatabaseConfig holds DuckDB settings. The catalog, the interaction log and
// (with the default storage backend) the similarity edges all live here.
//
// Environment Variables:
//   - DUCKDB_PATH: database file, ":memory:" for an ephemeral database
//   - DUCKDB_MAX_MEMORY: DuckDB memory limit (default: 1GB)
//   - DUCKDB_THREADS: worker threads, 0 uses runtime.NumCPU()
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json (production) or console (development).
	Format string `koanf:"format"`

	// Caller adds file:line to each entry.
	Caller bool `koanf:"caller"`
}

// RecommendConfig holds the content-based engine settings.
//
// The weighting constants default to the values the product catalog was tuned
// with; change them only together with a full rebuild.
//
// Environment Variables:
//   - SIMILARITY_THRESHOLD: minimum cosine score persisted as an edge (default: 0.1)
//   - RECOMMEND_REBUILD_INTERVAL: periodic rebuild, 0 disables (default: 24h)
//   - RECOMMEND_REBUILD_ON_START: rebuild once when the service starts (default: true)
//   - RECOMMEND_REBUILD_MIN_GAP: minimum time between two rebuild runs (default: 30s)
//   - RECOMMEND_CACHE_TTL: user recommendation cache lifetime (default: 24h)
//   - RECOMMEND_MATRIX_WORKERS: parallel similarity rows, 0 uses NumCPU
type RecommendConfig struct {
	SimilarityThreshold float64 `koanf:"similarity_threshold"`
	AlgorithmTag        string  `koanf:"algorithm_tag"`

	// Vectorizer
	MaxFeatures int     `koanf:"max_features"`
	MinDF       int     `koanf:"min_df"`
	MaxDF       float64 `koanf:"max_df"`
	NgramMax    int     `koanf:"ngram_max"`

	TextWeight    float64 `koanf:"text_weight"`
	NumericWeight float64 `koanf:"numeric_weight"`

	// Scoring
	LikeWeight         float64 `koanf:"like_weight"`
	PurchaseWeight     float64 `koanf:"purchase_weight"`
	ViewWindow         int     `koanf:"view_window"`
	ViewDecay          float64 `koanf:"view_decay"`
	SimilarFanout      int     `koanf:"similar_fanout"`
	TrendingLikeWeight float64 `koanf:"trending_like_weight"`

	// Rebuild scheduling
	RebuildInterval time.Duration `koanf:"rebuild_interval"`
	RebuildOnStart  bool          `koanf:"rebuild_on_start"`
	RebuildMinGap   time.Duration `koanf:"rebuild_min_gap"`
	MatrixWorkers   int           `koanf:"matrix_workers"`

	// Query resilience
	QueryRetryBackoff time.Duration `koanf:"query_retry_backoff"`

	// Result cache
	CacheTTL  time.Duration `koanf:"cache_ttl"`
	CacheSize int           `koanf:"cache_size"`
}

// StorageConfig selects where similarity edges are persisted.
//
// Environment Variables:
//   - EDGE_STORE: duckdb, memory, badger or redis (default: duckdb)
//   - EDGE_STORE_BADGER_PATH: badger directory
//   - REDIS_ADDR, REDIS_PASSWORD, REDIS_DB: redis connection
type StorageConfig struct {
	Backend       string        `koanf:"backend"`
	BadgerPath    string        `koanf:"badger_path"`
	RedisAddr     string        `koanf:"redis_addr"`
	RedisPassword string        `koanf:"redis_password"`
	RedisDB       int           `koanf:"redis_db"`
	RedisPrefix   string        `koanf:"redis_prefix"`
	RedisGrace    time.Duration `koanf:"redis_grace"` // how long a superseded edge version stays readable
}

// NATSConfig holds event ingestion settings.
//
// Environment Variables:
//   - NATS_ENABLED: consume interaction and catalog events (default: false)
//   - NATS_URL: broker URL (default: nats://127.0.0.1:4222)
//   - NATS_EMBEDDED: run an embedded JetStream server (default: true)
//   - NATS_STORE_DIR: JetStream storage for the embedded server
type NATSConfig struct {
	Enabled        bool          `koanf:"enabled"`
	URL            string        `koanf:"url"`
	EmbeddedServer bool          `koanf:"embedded_server"`
	Host           string        `koanf:"host"`
	Port           int           `koanf:"port"`
	StoreDir       string        `koanf:"store_dir"`
	MaxMemory      int64         `koanf:"max_memory"`
	MaxStore       int64         `koanf:"max_store"`
	StreamName     string        `koanf:"stream_name"`
	DurableName    string        `koanf:"durable_name"`
	AckWaitTimeout time.Duration `koanf:"ack_wait_timeout"`
	MaxDeliver     int           `koanf:"max_deliver"`
	RetentionDays  int           `koanf:"retention_days"`
}

// SecurityConfig holds HTTP hardening settings. There is no authentication;
// the API is expected to sit behind a gateway.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// Load reads configuration from defaults, file and environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
