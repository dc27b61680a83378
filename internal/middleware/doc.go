// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

/*
Package middleware provides HTTP middleware for the Curator API.

Every middleware has the chi-compatible signature func(http.Handler) http.Handler
and is installed with router.Use.

Key Components:

  - RequestID: accepts X-Request-ID from a proxy or generates a UUID, echoes it
    in the response and stores it (plus a correlation id) in the context used
    by logging.Ctx
  - PrometheusMetrics: request count, latency histogram and in-flight gauge,
    labelled by chi route pattern
  - Compression: gzip for clients that send Accept-Encoding: gzip

Middleware Stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.Compression)

PrometheusMetrics reads the route pattern after the handler runs, so it must
be installed on the router itself rather than wrapped around it.
*/
package middleware
