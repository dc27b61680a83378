// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

// Package metrics registers the Prometheus collectors for the service.
//
// All collectors are package-level promauto variables registered with the
// default registry and exposed by the API on /metrics. Callers use the
// Record* helpers rather than touching label values directly, so label sets
// stay consistent.
//
// # Metric families
//
//   - duckdb_*: query latency and errors per operation and table
//   - api_*: request count, latency, in-flight gauge, rate limit rejections
//   - recommend_rebuild_*: rebuild duration and outcome, edge and catalog size
//   - recommend_query_*: query latency per operation and outcome, retries
//   - recommend_cache_*: user recommendation cache hits and misses
//   - events_*: ingested interaction and catalog events
package metrics
