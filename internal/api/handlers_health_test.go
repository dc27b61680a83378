// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package api

import (
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestHealthLive(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	store.pingErr = errors.New("database closed")
	rec, resp := do(t, newTestRouter(&mockEngine{}, store), http.MethodGet, "/api/v1/health/live", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, liveness must ignore dependencies", rec.Code)
	}
	var data struct {
		Alive bool `json:"alive"`
	}
	decodeData(t, resp.Data, &data)
	if !data.Alive {
		t.Error("alive = false")
	}
}

func TestHealthReady(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		pingErr    error
		events     HealthReporter
		wantStatus int
	}{
		{"database up", nil, nil, http.StatusOK},
		{"database down", errors.New("closed"), nil, http.StatusServiceUnavailable},
		{"events consuming", nil, staticHealth(true), http.StatusOK},
		{"events stopped", nil, staticHealth(false), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := newMockStore()
			store.pingErr = tt.pingErr
			h := NewHandler(&mockEngine{}, store, time.Second)
			if tt.events != nil {
				h.SetEventHealth(tt.events)
			}
			cfg := DefaultChiMiddlewareConfig()
			cfg.RateLimitDisabled = true

			rec, resp := do(t, NewRouter(h, NewChiMiddleware(cfg)), http.MethodGet, "/api/v1/health/ready", "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var data struct {
				Ready  bool            `json:"ready"`
				Checks map[string]bool `json:"checks"`
			}
			decodeData(t, resp.Data, &data)
			if data.Ready != (tt.wantStatus == http.StatusOK) {
				t.Errorf("ready = %v", data.Ready)
			}
			if _, ok := data.Checks["events"]; ok != (tt.events != nil) {
				t.Errorf("checks = %v", data.Checks)
			}
		})
	}
}
