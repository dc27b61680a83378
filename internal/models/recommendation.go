// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package models

// SimilarityEdge is one persisted pairwise similarity. ItemA < ItemB always
// holds, so each unordered pair is stored once and never as a self edge.
type SimilarityEdge struct {
	ItemA     string  `json:"item_a"`
	ItemB     string  `json:"item_b"`
	Score     float64 `json:"score"`
	Algorithm string  `json:"algorithm"`
}

// Other returns the endpoint that is not itemID, or "" if the edge does not
// touch itemID.
func (e *SimilarityEdge) Other(itemID string) string {
	switch itemID {
	case e.ItemA:
		return e.ItemB
	case e.ItemB:
		return e.ItemA
	default:
		return ""
	}
}

// ScoredItem is a recommendation result: an item and its score.
type ScoredItem struct {
	ItemID string  `json:"item_id"`
	Score  float64 `json:"score"`
}

// TrendingItem carries the windowed interaction counts behind a trending score.
type TrendingItem struct {
	ItemID string  `json:"item_id"`
	Views  int     `json:"views"`
	Likes  int     `json:"likes"`
	Score  float64 `json:"score"`
}
