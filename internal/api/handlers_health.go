// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/curator/internal/models"
)

// readinessTimeout bounds the database ping.
const readinessTimeout = 2 * time.Second

// HealthLive answers 200 while the process is running, regardless of
// dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondData(w, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, models.Metadata{})
}

// HealthReady answers 200 only when the database responds and, if
// configured, the event pipeline is consuming. Otherwise 503.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	checks := map[string]bool{
		"database": h.store.Ping(ctx) == nil,
	}
	if h.events != nil {
		checks["events"] = h.events.Healthy()
	}

	ready := true
	for _, ok := range checks {
		ready = ready && ok
	}

	if !ready {
		respondJSON(w, http.StatusServiceUnavailable, &models.APIResponse{
			Status:   "error",
			Data:     map[string]interface{}{"ready": false, "checks": checks},
			Metadata: models.Metadata{Timestamp: time.Now()},
			Error:    &models.APIError{Code: ErrCodeServiceUnavailable, Message: "Service not ready"},
		})
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{"ready": true, "checks": checks}, models.Metadata{})
}
