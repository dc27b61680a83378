// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"cmp"
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/curator/internal/models"
)

// CatalogProvider supplies the catalog snapshot for a rebuild.
type CatalogProvider interface {
	// ActiveCatalog returns every active item.
	ActiveCatalog(ctx context.Context) ([]models.CatalogItem, error)
}

// InteractionProvider supplies interaction history. It is typically
// implemented by the database layer.
type InteractionProvider interface {
	// UserLikes returns the user's active likes.
	UserLikes(ctx context.Context, userID string) ([]models.Like, error)

	// UserPurchases returns all of the user's purchases.
	UserPurchases(ctx context.Context, userID string) ([]models.Purchase, error)

	// RecentViews returns at most limit views, newest first.
	RecentViews(ctx context.Context, userID string, limit int) ([]models.View, error)

	// InteractionCounts returns per-item view and active-like counts since
	// the given time, for active items that have at least one of either.
	InteractionCounts(ctx context.Context, since time.Time) ([]models.TrendingItem, error)
}

// RebuildScheduler accepts out-of-band rebuild requests. RequestRebuild must
// not block; it reports false when a request is already pending.
type RebuildScheduler interface {
	RequestRebuild(reason string) bool
}

// SortKey selects the ordering of a result list.
type SortKey int

const (
	// SortByScore orders by descending score, ties by ascending item id.
	SortByScore SortKey = iota
	// SortByItemID orders by ascending item id.
	SortByItemID
)

// String returns the wire name of the sort key.
func (k SortKey) String() string {
	switch k {
	case SortByScore:
		return "score"
	case SortByItemID:
		return "item_id"
	default:
		return "unknown"
	}
}

// ParseSortKey maps a wire name to a SortKey. An empty string selects
// SortByScore.
func ParseSortKey(s string) (SortKey, error) {
	switch s {
	case "", "score":
		return SortByScore, nil
	case "item_id":
		return SortByItemID, nil
	default:
		return SortByScore, fmt.Errorf("unknown sort key %q", s)
	}
}

var scoredComparators = map[SortKey]func(a, b models.ScoredItem) int{
	SortByScore: func(a, b models.ScoredItem) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.ItemID, b.ItemID)
	},
	SortByItemID: func(a, b models.ScoredItem) int {
		return cmp.Compare(a.ItemID, b.ItemID)
	},
}

// Trending comparators are applied with a stable sort over input already
// ordered by item id, so equal scores keep id order.
var trendingComparators = map[SortKey]func(a, b models.TrendingItem) int{
	SortByScore: func(a, b models.TrendingItem) int {
		return cmp.Compare(b.Score, a.Score)
	},
	SortByItemID: func(a, b models.TrendingItem) int {
		return cmp.Compare(a.ItemID, b.ItemID)
	},
}

// QueryOutcome describes how a query result was produced.
type QueryOutcome string

const (
	// OutcomeOK means every read succeeded.
	OutcomeOK QueryOutcome = "ok"
	// OutcomeDegraded means a read failed twice and the result is empty.
	OutcomeDegraded QueryOutcome = "degraded"
)

// QueryResult is the result of a recommendation query.
type QueryResult[T any] struct {
	Items   []T          `json:"items"`
	Outcome QueryOutcome `json:"outcome"`
	Cached  bool         `json:"cached"`
}

// Degraded reports whether the result is an empty fallback.
func (r QueryResult[T]) Degraded() bool {
	return r.Outcome == OutcomeDegraded
}

// RebuildStatus is the outcome of a rebuild.
type RebuildStatus string

const (
	RebuildSucceeded      RebuildStatus = "succeeded"
	RebuildNoFeatures     RebuildStatus = "no_features"
	RebuildBuildFailed    RebuildStatus = "build_failed"
	RebuildStoreFailed    RebuildStatus = "store_failed"
	RebuildAlreadyRunning RebuildStatus = "already_running"
)

// RebuildResult reports one rebuild. Success is true only when the index
// was replaced.
type RebuildResult struct {
	Success   bool          `json:"success"`
	Status    RebuildStatus `json:"status"`
	Items     int           `json:"items"`
	Edges     int           `json:"edges"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	Reason    string        `json:"reason,omitempty"`
	Error     string        `json:"error,omitempty"`
	Err       error         `json:"-"`
}

// RebuildAck is the immediate answer to an asynchronous rebuild request.
type RebuildAck string

const (
	// RebuildAccepted means a rebuild was started or queued.
	RebuildAccepted RebuildAck = "accepted"
	// RebuildAckAlreadyRunning means one is running or already queued; the
	// request was coalesced into it.
	RebuildAckAlreadyRunning RebuildAck = "already_running"
	// RebuildRejected means the engine is shutting down.
	RebuildRejected RebuildAck = "rejected"
)

// Status is a snapshot of engine state for operators.
type Status struct {
	Algorithm    string         `json:"algorithm"`
	Rebuilding   bool           `json:"rebuilding"`
	Edges        int            `json:"edges"`
	LastRebuild  *RebuildResult `json:"last_rebuild,omitempty"`
	BreakerState string         `json:"breaker_state"`
	CacheEntries int            `json:"cache_entries"`
	CacheHitRate float64        `json:"cache_hit_rate"`
}
