// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"context"
	"math"
	"slices"
	"sort"
	"time"

	"github.com/tomtom215/curator/internal/metrics"
	"github.com/tomtom215/curator/internal/models"
)

// SimilarItems returns up to limit items most similar to itemID, by
// descending score with ties broken by item id. An unknown item yields an
// empty list.
func (e *Engine) SimilarItems(ctx context.Context, itemID string, limit int) (QueryResult[models.ScoredItem], error) {
	const op = "similar_items"
	if limit <= 0 {
		return QueryResult[models.ScoredItem]{}, ErrInvalidLimit
	}
	start := time.Now()

	items, err := e.similarTo(ctx, itemID, limit)
	if err != nil {
		return e.degraded(ctx, op, start, err, "item_id", itemID)
	}

	metrics.RecordQuery(op, string(OutcomeOK), time.Since(start))
	return QueryResult[models.ScoredItem]{Items: items, Outcome: OutcomeOK}, nil
}

// similarTo reads the neighbours of itemID and returns the top n.
func (e *Engine) similarTo(ctx context.Context, itemID string, n int) ([]models.ScoredItem, error) {
	edges, err := readWithRetry(ctx, e, "edges_for_item", func(ctx context.Context) ([]models.SimilarityEdge, error) {
		return e.store.EdgesForItem(ctx, e.config.AlgorithmTag, itemID)
	})
	if err != nil {
		return nil, err
	}

	out := make([]models.ScoredItem, 0, len(edges))
	for i := range edges {
		other := edges[i].Other(itemID)
		if other == "" || other == itemID {
			continue
		}
		out = append(out, models.ScoredItem{ItemID: other, Score: edges[i].Score})
	}
	slices.SortFunc(out, scoredComparators[SortByScore])
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// UserRecommendations returns up to limit items for userID, never including
// an item the user has liked, purchased or viewed. A user without
// interactions gets an empty list.
func (e *Engine) UserRecommendations(ctx context.Context, userID string, limit int) (QueryResult[models.ScoredItem], error) {
	const op = "user_recommendations"
	if limit <= 0 {
		return QueryResult[models.ScoredItem]{}, ErrInvalidLimit
	}
	start := time.Now()

	if e.results != nil {
		cached, ok := e.results.get(userID)
		metrics.RecordCacheLookup(ok)
		if ok {
			metrics.RecordQuery(op, string(OutcomeOK), time.Since(start))
			return QueryResult[models.ScoredItem]{Items: truncated(cached, limit), Outcome: OutcomeOK, Cached: true}, nil
		}

		// The ticket is taken before any read so a concurrent invalidation
		// or rebuild keeps this result out of the cache.
		ticket := e.results.begin(userID)
		res, err := e.scoreUser(ctx, op, start, userID, limit)
		e.results.finish(ticket, res.ranked, err == nil && res.Outcome == OutcomeOK)
		return res.QueryResult, err
	}

	res, err := e.scoreUser(ctx, op, start, userID, limit)
	return res.QueryResult, err
}

// userScores is a query result plus the full ranking for the cache.
type userScores struct {
	QueryResult[models.ScoredItem]
	ranked []models.ScoredItem
}

func (e *Engine) scoreUser(ctx context.Context, op string, start time.Time, userID string, limit int) (userScores, error) {
	weights, err := e.interactionWeights(ctx, userID)
	if err != nil {
		res, err := e.degraded(ctx, op, start, err, "user_id", userID)
		return userScores{QueryResult: res}, err
	}

	// Deterministic accumulation order keeps float sums reproducible.
	interacted := make([]string, 0, len(weights))
	for id := range weights {
		interacted = append(interacted, id)
	}
	sort.Strings(interacted)

	scores := make(map[string]float64)
	for _, id := range interacted {
		neighbours, err := e.similarTo(ctx, id, e.config.Scoring.SimilarFanout)
		if err != nil {
			res, err := e.degraded(ctx, op, start, err, "user_id", userID)
			return userScores{QueryResult: res}, err
		}
		w := weights[id]
		for _, n := range neighbours {
			if _, seen := weights[n.ItemID]; seen {
				continue
			}
			scores[n.ItemID] += w * n.Score
		}
	}

	ranked := make([]models.ScoredItem, 0, len(scores))
	for id, s := range scores {
		ranked = append(ranked, models.ScoredItem{ItemID: id, Score: s})
	}
	slices.SortFunc(ranked, scoredComparators[SortByScore])

	metrics.RecordQuery(op, string(OutcomeOK), time.Since(start))
	return userScores{
		QueryResult: QueryResult[models.ScoredItem]{Items: truncated(ranked, limit), Outcome: OutcomeOK},
		ranked:      ranked,
	}, nil
}

// interactionWeights accumulates the per-item affinity of a user.
func (e *Engine) interactionWeights(ctx context.Context, userID string) (map[string]float64, error) {
	sc := e.config.Scoring

	likes, err := readWithRetry(ctx, e, "user_likes", func(ctx context.Context) ([]models.Like, error) {
		return e.interactions.UserLikes(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	purchases, err := readWithRetry(ctx, e, "user_purchases", func(ctx context.Context) ([]models.Purchase, error) {
		return e.interactions.UserPurchases(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	var views []models.View
	if sc.ViewWindow > 0 {
		views, err = readWithRetry(ctx, e, "recent_views", func(ctx context.Context) ([]models.View, error) {
			return e.interactions.RecentViews(ctx, userID, sc.ViewWindow)
		})
		if err != nil {
			return nil, err
		}
	}

	weights := make(map[string]float64)
	for i := range likes {
		if likes[i].Active {
			weights[likes[i].ItemID] += sc.LikeWeight
		}
	}
	for i := range purchases {
		weights[purchases[i].ItemID] += sc.PurchaseWeight
	}
	for i := range views {
		if i >= sc.ViewWindow {
			break
		}
		// A fully decayed view still marks the item as seen.
		weights[views[i].ItemID] += ViewWeight(i, sc.ViewDecay)
	}
	return weights, nil
}

// ViewWeight is the contribution of the i-th newest view: max(0, 1-decay*i).
func ViewWeight(i int, decay float64) float64 {
	return math.Max(0, 1.0-decay*float64(i))
}

// Trending returns up to limit active items ranked by
// views + TrendingLikeWeight*likes over the trailing windowDays.
func (e *Engine) Trending(ctx context.Context, limit, windowDays int, key SortKey) (QueryResult[models.TrendingItem], error) {
	const op = "trending"
	if limit <= 0 {
		return QueryResult[models.TrendingItem]{}, ErrInvalidLimit
	}
	if windowDays <= 0 {
		return QueryResult[models.TrendingItem]{}, ErrInvalidWindow
	}
	cmpFn, ok := trendingComparators[key]
	if !ok {
		cmpFn = trendingComparators[SortByScore]
	}
	start := time.Now()
	since := start.Add(-time.Duration(windowDays) * 24 * time.Hour)

	counts, err := readWithRetry(ctx, e, "interaction_counts", func(ctx context.Context) ([]models.TrendingItem, error) {
		return e.interactions.InteractionCounts(ctx, since)
	})
	if err != nil {
		if ctx.Err() != nil {
			return QueryResult[models.TrendingItem]{}, ctx.Err()
		}
		e.logger.Warn().Err(err).Str("operation", op).Msg("Query degraded to empty result")
		metrics.RecordQuery(op, string(OutcomeDegraded), time.Since(start))
		return QueryResult[models.TrendingItem]{Items: []models.TrendingItem{}, Outcome: OutcomeDegraded}, nil
	}

	items := make([]models.TrendingItem, 0, len(counts))
	for _, c := range counts {
		c.Score = float64(c.Views) + e.config.Scoring.TrendingLikeWeight*float64(c.Likes)
		items = append(items, c)
	}
	slices.SortStableFunc(items, trendingComparators[SortByItemID])
	slices.SortStableFunc(items, cmpFn)
	if len(items) > limit {
		items = items[:limit]
	}

	metrics.RecordQuery(op, string(OutcomeOK), time.Since(start))
	return QueryResult[models.TrendingItem]{Items: items, Outcome: OutcomeOK}, nil
}

// degraded logs a failed read and returns the empty fallback result, or the
// context error when the caller gave up.
func (e *Engine) degraded(ctx context.Context, op string, start time.Time, err error, key, value string) (QueryResult[models.ScoredItem], error) {
	if ctx.Err() != nil {
		metrics.RecordQuery(op, "cancelled", time.Since(start))
		return QueryResult[models.ScoredItem]{}, ctx.Err()
	}
	e.logger.Warn().Err(err).
		Str("operation", op).
		Str(key, value).
		Msg("Query degraded to empty result")
	metrics.RecordQuery(op, string(OutcomeDegraded), time.Since(start))
	return QueryResult[models.ScoredItem]{Items: []models.ScoredItem{}, Outcome: OutcomeDegraded}, nil
}

// truncated returns a copy of at most n items so callers cannot alias the
// cached slice.
func truncated(items []models.ScoredItem, n int) []models.ScoredItem {
	if len(items) < n {
		n = len(items)
	}
	out := make([]models.ScoredItem, n)
	copy(out, items[:n])
	return out
}
