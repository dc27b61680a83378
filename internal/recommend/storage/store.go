// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

// Package storage persists similarity edge sets.
//
// Every backend implements EdgeStore. ReplaceEdges swaps the complete edge
// set for one algorithm tag: a concurrent reader observes either the old set
// or the new set, never a mix of the two.
//
// # Backends
//
//   - MemoryStore: copy-on-write index behind an atomic pointer. Used in
//     tests and for single-process deployments that rebuild on start.
//   - BadgerStore: versioned key prefixes plus a pointer record, swapped in
//     one transaction. Readers resolve the pointer and scan inside a single
//     snapshot.
//   - RedisStore: versioned sorted sets plus a pointer key. A Lua script
//     resolves the pointer and reads the set atomically; superseded versions
//     expire after a grace period.
//
// The DuckDB-backed store lives in internal/database next to the rest of the
// relational schema.
package storage

import (
	"context"
	"errors"
	"sort"

	"github.com/tomtom215/curator/internal/models"
)

// ErrStoreClosed is returned by operations on a closed store.
var ErrStoreClosed = errors.New("edge store closed")

// EdgeStore persists similarity edges per algorithm tag.
type EdgeStore interface {
	// ReplaceEdges atomically replaces every edge tagged algorithm.
	ReplaceEdges(ctx context.Context, algorithm string, edges []models.SimilarityEdge) error

	// EdgesForItem returns every edge touching itemID, as either endpoint.
	// An unknown item yields an empty slice.
	EdgesForItem(ctx context.Context, algorithm, itemID string) ([]models.SimilarityEdge, error)

	// CountEdges returns the size of the current edge set.
	CountEdges(ctx context.Context, algorithm string) (int, error)
}

// canonical returns e with ItemA < ItemB.
func canonical(e models.SimilarityEdge) models.SimilarityEdge {
	if e.ItemA > e.ItemB {
		e.ItemA, e.ItemB = e.ItemB, e.ItemA
	}
	return e
}

// sortEdges orders edges by (ItemA, ItemB) so reads are reproducible.
func sortEdges(edges []models.SimilarityEdge) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].ItemA != edges[j].ItemA {
			return edges[i].ItemA < edges[j].ItemA
		}
		return edges[i].ItemB < edges[j].ItemB
	})
}
