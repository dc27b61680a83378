// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package features

import (
	"math"

	"github.com/tomtom215/curator/internal/models"
)

// MaxRating is the upper bound ratings are clamped to.
const MaxRating = 5.0

// Corpus is the feature snapshot for one rebuild. All four slices share the
// same index: row i of every later matrix describes IDs[i].
type Corpus struct {
	IDs     []string
	Texts   []string
	Prices  []float64
	Ratings []float64
}

// Len returns the number of rows.
func (c *Corpus) Len() int {
	return len(c.IDs)
}

// Extract builds a Corpus from the active items, preserving input order.
// Inactive items are skipped. An item whose text normalizes to "" is kept.
//
//nolint:gocritic // rangeValCopy: CatalogItem passed by value in range, acceptable for clarity
func Extract(items []models.CatalogItem) *Corpus {
	c := &Corpus{
		IDs:     make([]string, 0, len(items)),
		Texts:   make([]string, 0, len(items)),
		Prices:  make([]float64, 0, len(items)),
		Ratings: make([]float64, 0, len(items)),
	}
	for _, item := range items {
		if !item.Active {
			continue
		}
		c.IDs = append(c.IDs, item.ID)
		c.Texts = append(c.Texts, NormalizeText(item.Name+" "+item.Description+" "+item.Brand))
		c.Prices = append(c.Prices, orZero(item.Price))
		c.Ratings = append(c.Ratings, clamp(orZero(item.Rating), 0, MaxRating))
	}
	return c
}

func orZero(v *float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0
	}
	return *v
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
