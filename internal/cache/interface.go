// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package cache

import "time"

// Cacher is the contract the recommendation engine depends on, so tests can
// substitute a fake and the LRU can be swapped for another backend.
type Cacher[V any] interface {
	Get(key string) (V, bool)
	Set(key string, value V)
	SetWithTTL(key string, value V, ttl time.Duration)
	Delete(key string) bool
	Clear()
	GetStats() Stats
	HitRate() float64
}

// Stats is a point-in-time view of cache counters.
type Stats struct {
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
	Size     int   `json:"size"`
	Capacity int   `json:"capacity"`
}

// HitRate returns the hit percentage in [0,100].
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

var _ Cacher[int] = (*LRUCache[int])(nil)
