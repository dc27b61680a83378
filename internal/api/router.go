// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/curator/internal/middleware"
)

// NewRouter wires handler and middleware into a Chi router.
func NewRouter(h *Handler, mw *ChiMiddleware) http.Handler {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS())
	r.Use(middleware.Compression)

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1/recommendations", func(r chi.Router) {
		r.Use(mw.RateLimit("recommendations"))
		r.Use(middleware.PrometheusMetrics)

		r.Get("/similar/{itemID}", h.SimilarItems)
		r.Get("/user/{userID}", h.UserRecommendations)
		r.Get("/trending", h.Trending)
		r.Post("/rebuild", h.Rebuild)
		r.Get("/status", h.RebuildStatus)
	})

	r.Route("/api/v1/interactions", func(r chi.Router) {
		r.Use(mw.RateLimit("interactions"))
		r.Use(middleware.PrometheusMetrics)

		r.Post("/views", h.RecordView)
		r.Post("/likes/toggle", h.ToggleLike)
		r.Post("/purchases", h.RecordPurchase)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
