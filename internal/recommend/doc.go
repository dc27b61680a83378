// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

// Package recommend implements the content-based recommendation engine.
//
// # Architecture
//
// A rebuild turns the active catalog into a persisted similarity index:
//
//	catalog -> features.Extract -> features.Build -> similarity.Compute
//	        -> similarity.ExtractEdges -> storage.EdgeStore.ReplaceEdges
//
// Every intermediate (corpus, vectors, matrix) lives on the rebuild's stack;
// only the edge set escapes into shared storage. Queries read the edge store
// and the interaction log and never wait for a rebuild.
//
// # Queries
//
//   - SimilarItems: neighbours of one item, by descending similarity
//   - UserRecommendations: interaction-weighted propagation over the index,
//     excluding everything the user has already engaged with
//   - Trending: views + 2*likes over a trailing window
//
// Collaborator reads are wrapped in a circuit breaker and retried once. A
// read that still fails yields an empty result with OutcomeDegraded rather
// than an error: recommendations are best effort.
//
// # Thread Safety
//
// The engine is safe for concurrent use. Rebuilds are serialized with a
// TryLock; a second caller gets ErrRebuildInProgress immediately instead of
// queueing behind a long O(n²) computation.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), db, db, store, logger)
//	if err != nil {
//	    return err
//	}
//	res, err := engine.Rebuild(ctx)
//	recs, err := engine.UserRecommendations(ctx, "user-1", 20)
package recommend
