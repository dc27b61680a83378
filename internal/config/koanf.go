// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order; the first existing file wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/curator/config.yaml",
	"/etc/curator/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Database: DatabaseConfig{
			Path:      "/data/curator.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Recommend: RecommendConfig{
			SimilarityThreshold: 0.1,
			AlgorithmTag:        "content_based",
			MaxFeatures:         5000,
			MinDF:               2,
			MaxDF:               0.8,
			NgramMax:            2,
			TextWeight:          0.8,
			NumericWeight:       0.2,
			LikeWeight:          3.0,
			PurchaseWeight:      2.5,
			ViewWindow:          50,
			ViewDecay:           0.02,
			SimilarFanout:       20,
			TrendingLikeWeight:  2.0,
			RebuildInterval:     24 * time.Hour,
			RebuildOnStart:      true,
			RebuildMinGap:       30 * time.Second,
			MatrixWorkers:       0,
			QueryRetryBackoff:   50 * time.Millisecond,
			CacheTTL:            24 * time.Hour,
			CacheSize:           10000,
		},
		Storage: StorageConfig{
			Backend:     "duckdb",
			BadgerPath:  "/data/edges",
			RedisAddr:   "127.0.0.1:6379",
			RedisDB:     0,
			RedisPrefix: "curator:edges",
			RedisGrace:  5 * time.Minute,
		},
		NATS: NATSConfig{
			Enabled:        false,
			URL:            "nats://127.0.0.1:4222",
			EmbeddedServer: true,
			Host:           "127.0.0.1",
			Port:           4222,
			StoreDir:       "/data/nats/jetstream",
			MaxMemory:      256 << 20, // 256MB
			MaxStore:       2 << 30,   // 2GB
			StreamName:     "CURATOR_EVENTS",
			DurableName:    "curator-ingest",
			AckWaitTimeout: 30 * time.Second,
			MaxDeliver:     5,
			RetentionDays:  7,
		},
		Security: SecurityConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
	}
}

// LoadWithKoanf builds the configuration from defaults, an optional YAML file
// and the environment, then validates it.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths arrive from the environment as comma-separated strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_host":        "server.host",
	"http_port":        "server.port",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Recommendation engine
	"similarity_threshold":           "recommend.similarity_threshold",
	"recommend_algorithm_tag":        "recommend.algorithm_tag",
	"recommend_ngram_max":            "recommend.ngram_max",
	"recommend_max_features":         "recommend.max_features",
	"recommend_min_df":               "recommend.min_df",
	"recommend_max_df":               "recommend.max_df",
	"recommend_text_weight":          "recommend.text_weight",
	"recommend_numeric_weight":       "recommend.numeric_weight",
	"recommend_like_weight":          "recommend.like_weight",
	"recommend_purchase_weight":      "recommend.purchase_weight",
	"recommend_view_window":          "recommend.view_window",
	"recommend_view_decay":           "recommend.view_decay",
	"recommend_similar_fanout":       "recommend.similar_fanout",
	"recommend_trending_like_weight": "recommend.trending_like_weight",
	"recommend_rebuild_interval":     "recommend.rebuild_interval",
	"recommend_rebuild_on_start":     "recommend.rebuild_on_start",
	"recommend_rebuild_min_gap":      "recommend.rebuild_min_gap",
	"recommend_matrix_workers":       "recommend.matrix_workers",
	"recommend_query_retry_backoff":  "recommend.query_retry_backoff",
	"recommend_cache_ttl":            "recommend.cache_ttl",
	"recommend_cache_size":           "recommend.cache_size",

	// Edge storage
	"edge_store":             "storage.backend",
	"edge_store_badger_path": "storage.badger_path",
	"redis_addr":             "storage.redis_addr",
	"redis_password":         "storage.redis_password",
	"redis_db":               "storage.redis_db",
	"redis_prefix":           "storage.redis_prefix",
	"redis_grace":            "storage.redis_grace",

	// NATS
	"nats_enabled":      "nats.enabled",
	"nats_url":          "nats.url",
	"nats_embedded":     "nats.embedded_server",
	"nats_store_dir":    "nats.store_dir",
	"nats_stream_name":  "nats.stream_name",
	"nats_durable_name": "nats.durable_name",

	// Security
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",
}

// envTransformFunc returns "" for unmapped variables so they are skipped.
//
//   - HTTP_PORT -> server.port
//   - SIMILARITY_THRESHOLD -> recommend.similarity_threshold
//   - EDGE_STORE -> storage.backend
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
