// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/tomtom215/curator/internal/models"
	"github.com/tomtom215/curator/internal/recommend"
)

type listData[T any] struct {
	ItemID string `json:"item_id"`
	UserID string `json:"user_id"`
	Sort   string `json:"sort"`
	Days   int    `json:"days"`
	Items  []T    `json:"items"`
	Count  int    `json:"count"`
}

func TestSimilarItems(t *testing.T) {
	t.Parallel()

	engine := &mockEngine{similar: recommend.QueryResult[models.ScoredItem]{
		Items:   []models.ScoredItem{{ItemID: "b", Score: 0.9}, {ItemID: "c", Score: 0.4}},
		Outcome: recommend.OutcomeOK,
	}}
	h := newTestRouter(engine, newMockStore("a", "b", "c"))

	rec, resp := do(t, h, http.MethodGet, "/api/v1/recommendations/similar/a", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var data listData[models.ScoredItem]
	decodeData(t, resp.Data, &data)
	if data.ItemID != "a" || data.Count != 2 || data.Items[0].ItemID != "b" {
		t.Errorf("data = %+v", data)
	}
	if engine.lastLimit != defaultSimilarLimit {
		t.Errorf("limit = %d, want default %d", engine.lastLimit, defaultSimilarLimit)
	}
	if resp.Metadata.Degraded || resp.Metadata.Cached {
		t.Errorf("metadata = %+v", resp.Metadata)
	}
}

func TestSimilarItems_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantCode   string
	}{
		{"limit at max", "/api/v1/recommendations/similar/a?limit=50", http.StatusOK, ""},
		{"limit too large", "/api/v1/recommendations/similar/a?limit=51", http.StatusBadRequest, ErrCodeValidation},
		{"limit zero", "/api/v1/recommendations/similar/a?limit=0", http.StatusBadRequest, ErrCodeValidation},
		{"limit not a number", "/api/v1/recommendations/similar/a?limit=ten", http.StatusBadRequest, ErrCodeValidation},
		{"unknown item", "/api/v1/recommendations/similar/zzz", http.StatusNotFound, ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newTestRouter(&mockEngine{}, newMockStore("a"))
			rec, resp := do(t, h, http.MethodGet, tt.target, "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantCode != "" && (resp.Error == nil || resp.Error.Code != tt.wantCode) {
				t.Errorf("error = %+v, want code %s", resp.Error, tt.wantCode)
			}
		})
	}
}

func TestSimilarItems_LookupFailureFallsThrough(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	store.lookupErr = errors.New("connection reset")
	engine := &mockEngine{similar: recommend.QueryResult[models.ScoredItem]{
		Items:   []models.ScoredItem{},
		Outcome: recommend.OutcomeDegraded,
	}}
	rec, resp := do(t, newTestRouter(engine, store), http.MethodGet, "/api/v1/recommendations/similar/a", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !resp.Metadata.Degraded {
		t.Error("expected degraded metadata")
	}
}

func TestUserRecommendations(t *testing.T) {
	t.Parallel()

	engine := &mockEngine{user: recommend.QueryResult[models.ScoredItem]{
		Items:   []models.ScoredItem{{ItemID: "x", Score: 2.5}},
		Outcome: recommend.OutcomeOK,
		Cached:  true,
	}}
	h := newTestRouter(engine, newMockStore())

	rec, resp := do(t, h, http.MethodGet, "/api/v1/recommendations/user/u-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var data listData[models.ScoredItem]
	decodeData(t, resp.Data, &data)
	if data.UserID != "u-1" || data.Count != 1 {
		t.Errorf("data = %+v", data)
	}
	if engine.lastLimit != defaultUserLimit {
		t.Errorf("limit = %d, want %d", engine.lastLimit, defaultUserLimit)
	}
	if !resp.Metadata.Cached {
		t.Error("expected cached metadata")
	}

	rec, _ = do(t, h, http.MethodGet, "/api/v1/recommendations/user/u-1?limit=100", "")
	if rec.Code != http.StatusOK {
		t.Errorf("limit=100 status = %d", rec.Code)
	}
	rec, _ = do(t, h, http.MethodGet, "/api/v1/recommendations/user/u-1?limit=101", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("limit=101 status = %d, want 400", rec.Code)
	}
}

func TestUserRecommendations_EngineErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{recommend.ErrEngineClosed, http.StatusServiceUnavailable},
		{recommend.ErrInvalidLimit, http.StatusBadRequest},
		{errors.New("unexpected"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		h := newTestRouter(&mockEngine{err: tt.err}, newMockStore())
		rec, _ := do(t, h, http.MethodGet, "/api/v1/recommendations/user/u-1", "")
		if rec.Code != tt.want {
			t.Errorf("%v: status = %d, want %d", tt.err, rec.Code, tt.want)
		}
	}
}

func TestTrending(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantLimit  int
		wantDays   int
		wantSort   recommend.SortKey
	}{
		{"defaults", "", http.StatusOK, 10, 7, recommend.SortByScore},
		{"explicit", "?limit=50&days=30&sort=item_id", http.StatusOK, 50, 30, recommend.SortByItemID},
		{"days too large", "?days=31", http.StatusBadRequest, 0, 0, 0},
		{"days zero", "?days=0", http.StatusBadRequest, 0, 0, 0},
		{"bad sort", "?sort=price", http.StatusBadRequest, 0, 0, 0},
		{"days not a number", "?days=week", http.StatusBadRequest, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			engine := &mockEngine{trending: recommend.QueryResult[models.TrendingItem]{
				Items:   []models.TrendingItem{{ItemID: "a", Views: 3, Likes: 1, Score: 5}},
				Outcome: recommend.OutcomeOK,
			}}
			rec, resp := do(t, newTestRouter(engine, newMockStore()), http.MethodGet, "/api/v1/recommendations/trending"+tt.query, "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			if engine.lastLimit != tt.wantLimit || engine.lastDays != tt.wantDays || engine.lastSort != tt.wantSort {
				t.Errorf("engine got limit=%d days=%d sort=%v", engine.lastLimit, engine.lastDays, engine.lastSort)
			}
			var data listData[models.TrendingItem]
			decodeData(t, resp.Data, &data)
			if data.Sort != tt.wantSort.String() || data.Items[0].Score != 5 {
				t.Errorf("data = %+v", data)
			}
		})
	}
}

func TestRebuild(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ack        recommend.RebuildAck
		wantStatus int
	}{
		{recommend.RebuildAccepted, http.StatusAccepted},
		{recommend.RebuildAckAlreadyRunning, http.StatusAccepted},
		{recommend.RebuildRejected, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		engine := &mockEngine{ack: tt.ack}
		rec, resp := do(t, newTestRouter(engine, newMockStore()), http.MethodPost, "/api/v1/recommendations/rebuild", "")
		if rec.Code != tt.wantStatus {
			t.Errorf("%s: status = %d, want %d", tt.ack, rec.Code, tt.wantStatus)
			continue
		}
		if len(engine.rebuilds) != 1 || engine.rebuilds[0] != rebuildReasonAPI {
			t.Errorf("%s: rebuilds = %v", tt.ack, engine.rebuilds)
		}
		if tt.wantStatus == http.StatusAccepted {
			var data struct {
				Status string `json:"status"`
			}
			decodeData(t, resp.Data, &data)
			if data.Status != string(tt.ack) {
				t.Errorf("data.status = %q, want %q", data.Status, tt.ack)
			}
		}
	}
}

func TestRebuild_RequiresPost(t *testing.T) {
	t.Parallel()

	rec, resp := do(t, newTestRouter(&mockEngine{}, newMockStore()), http.MethodGet, "/api/v1/recommendations/rebuild", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != ErrCodeMethodNotAllowed {
		t.Errorf("error = %+v", resp.Error)
	}
}

func TestRebuildStatus(t *testing.T) {
	t.Parallel()

	engine := &mockEngine{status: recommend.Status{
		Algorithm:    "content_based",
		Edges:        42,
		BreakerState: "closed",
		LastRebuild:  &recommend.RebuildResult{Success: true, Status: recommend.RebuildSucceeded, Edges: 42},
	}}
	rec, resp := do(t, newTestRouter(engine, newMockStore()), http.MethodGet, "/api/v1/recommendations/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var st recommend.Status
	decodeData(t, resp.Data, &st)
	if st.Edges != 42 || st.Algorithm != "content_based" || st.LastRebuild == nil || st.LastRebuild.Status != recommend.RebuildSucceeded {
		t.Errorf("status = %+v", st)
	}
}
