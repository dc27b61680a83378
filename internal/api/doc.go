// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

/*
Package api provides the HTTP surface of Curator using the Chi router.

# Endpoints

Health (no rate limit):

	GET  /api/v1/health/live      process is up
	GET  /api/v1/health/ready     database reachable, event pipeline consuming

Recommendations:

	GET  /api/v1/recommendations/similar/{itemID}?limit=10     (1..50)
	GET  /api/v1/recommendations/user/{userID}?limit=20        (1..100)
	GET  /api/v1/recommendations/trending?limit=10&days=7&sort=score
	POST /api/v1/recommendations/rebuild                        202 Accepted
	GET  /api/v1/recommendations/status

Interactions:

	POST /api/v1/interactions/views
	POST /api/v1/interactions/likes/toggle
	POST /api/v1/interactions/purchases

Prometheus metrics are served at /metrics.

# Middleware

Applied globally, outermost first: request id (also placed in the logging
context), RealIP, Recoverer, CORS and gzip compression. The recommendation
and interaction groups add per-IP rate limiting via go-chi/httprate and
request metrics labelled by route pattern.

# Response Format

Every JSON response uses models.APIResponse. A recommendation query whose
backing reads failed still answers 200 with an empty list and
metadata.degraded set.
*/
package api
