// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package models

import "testing"

func TestSimilarityEdgeOther(t *testing.T) {
	t.Parallel()

	e := SimilarityEdge{ItemA: "a", ItemB: "b", Score: 0.5}
	tests := []struct {
		anchor string
		want   string
	}{
		{"a", "b"},
		{"b", "a"},
		{"c", ""},
	}
	for _, tt := range tests {
		if got := e.Other(tt.anchor); got != tt.want {
			t.Errorf("Other(%q) = %q, want %q", tt.anchor, got, tt.want)
		}
	}
}

func TestPurchaseTotalPrice(t *testing.T) {
	t.Parallel()

	p := Purchase{Quantity: 3, UnitPrice: 19.5}
	if got := p.TotalPrice(); got != 58.5 {
		t.Errorf("TotalPrice() = %v, want 58.5", got)
	}
}
