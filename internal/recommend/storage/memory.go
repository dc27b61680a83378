// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package storage

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/tomtom215/curator/internal/models"
)

// edgeIndex is an immutable edge set keyed by endpoint.
type edgeIndex struct {
	byItem map[string][]models.SimilarityEdge
	count  int
}

func newEdgeIndex(algorithm string, edges []models.SimilarityEdge) *edgeIndex {
	idx := &edgeIndex{byItem: make(map[string][]models.SimilarityEdge), count: len(edges)}
	for _, e := range edges {
		e = canonical(e)
		e.Algorithm = algorithm
		idx.byItem[e.ItemA] = append(idx.byItem[e.ItemA], e)
		idx.byItem[e.ItemB] = append(idx.byItem[e.ItemB], e)
	}
	for _, list := range idx.byItem {
		sortEdges(list)
	}
	return idx
}

// MemoryStore keeps edge sets in process memory. Each ReplaceEdges builds a
// fresh index and publishes it with a single pointer store.
type MemoryStore struct {
	writeMu sync.Mutex
	sets    atomic.Pointer[map[string]*edgeIndex]
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	empty := make(map[string]*edgeIndex)
	s.sets.Store(&empty)
	return s
}

// ReplaceEdges implements EdgeStore.
func (s *MemoryStore) ReplaceEdges(ctx context.Context, algorithm string, edges []models.SimilarityEdge) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	idx := newEdgeIndex(algorithm, edges)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current := *s.sets.Load()
	next := make(map[string]*edgeIndex, len(current)+1)
	for k, v := range current {
		next[k] = v
	}
	next[algorithm] = idx
	s.sets.Store(&next)
	return nil
}

// EdgesForItem implements EdgeStore.
func (s *MemoryStore) EdgesForItem(ctx context.Context, algorithm, itemID string) ([]models.SimilarityEdge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	idx, ok := (*s.sets.Load())[algorithm]
	if !ok {
		return []models.SimilarityEdge{}, nil
	}
	return append([]models.SimilarityEdge{}, idx.byItem[itemID]...), nil
}

// CountEdges implements EdgeStore.
func (s *MemoryStore) CountEdges(ctx context.Context, algorithm string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if idx, ok := (*s.sets.Load())[algorithm]; ok {
		return idx.count, nil
	}
	return 0, nil
}
