// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)
)

// =============================================================================
// Recommendation Engine Metrics
// =============================================================================

var (
	RebuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_rebuild_duration_seconds",
			Help:    "Duration of similarity index rebuilds in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"status"},
	)

	RebuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_rebuilds_total",
			Help: "Total number of rebuild attempts by outcome",
		},
		[]string{"status"},
	)

	SimilarityEdges = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_similarity_edges",
			Help: "Number of edges in the current similarity index",
		},
	)

	CatalogItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_catalog_items",
			Help: "Number of active catalog items seen by the last rebuild",
		},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_query_duration_seconds",
			Help:    "Duration of recommendation queries in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation", "outcome"},
	)

	QueryRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_query_retries_total",
			Help: "Total number of collaborator reads retried after a failure",
		},
		[]string{"operation"},
	)

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_cache_hits_total",
			Help: "Total number of user recommendation cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_cache_misses_total",
			Help: "Total number of user recommendation cache misses",
		},
	)
)

// =============================================================================
// Event Ingestion Metrics
// =============================================================================

var (
	EventsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_ingested_total",
			Help: "Total number of ingested events by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	EventProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "events_processing_duration_seconds",
			Help:    "Time to apply one ingested event",
			Buckets: prometheus.DefBuckets,
		},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of events published to the broker",
		},
		[]string{"type", "outcome"},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit records a request rejected by the rate limiter.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordRebuild records one rebuild attempt. edges and items are only
// applied to the gauges when the rebuild replaced the index.
func RecordRebuild(status string, duration time.Duration, edges, items int, replaced bool) {
	RebuildDuration.WithLabelValues(status).Observe(duration.Seconds())
	RebuildsTotal.WithLabelValues(status).Inc()
	if replaced {
		SimilarityEdges.Set(float64(edges))
		CatalogItems.Set(float64(items))
	}
}

// RecordQuery records a recommendation query.
func RecordQuery(operation, outcome string, duration time.Duration) {
	QueryDuration.WithLabelValues(operation, outcome).Observe(duration.Seconds())
}

// RecordQueryRetry records a retried collaborator read.
func RecordQueryRetry(operation string) {
	QueryRetries.WithLabelValues(operation).Inc()
}

// RecordCacheLookup records a user recommendation cache lookup.
func RecordCacheLookup(hit bool) {
	if hit {
		CacheHits.Inc()
	} else {
		CacheMisses.Inc()
	}
}

// RecordEventIngested records an event taken off the broker or the API.
func RecordEventIngested(eventType string, err error, duration time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	EventsIngested.WithLabelValues(eventType, outcome).Inc()
	EventProcessingDuration.Observe(duration.Seconds())
}

// RecordEventPublished records a publish attempt.
func RecordEventPublished(eventType string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	EventsPublished.WithLabelValues(eventType, outcome).Inc()
}
