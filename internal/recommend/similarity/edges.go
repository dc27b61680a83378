// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package similarity

import (
	"fmt"

	"github.com/tomtom215/curator/internal/models"
)

// ExtractEdges enumerates pairs i<j of m, keeps those with score >= threshold
// and returns them with ItemA < ItemB. ids must be indexed like m.
func ExtractEdges(m *Matrix, ids []string, threshold float64, tag string) ([]models.SimilarityEdge, error) {
	if m.Size() != len(ids) {
		return nil, fmt.Errorf("matrix size %d does not match %d ids", m.Size(), len(ids))
	}

	edges := make([]models.SimilarityEdge, 0)
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			score := m.At(i, j)
			if score < threshold {
				continue
			}
			a, b := ids[i], ids[j]
			switch {
			case a == b:
				continue
			case a > b:
				a, b = b, a
			}
			edges = append(edges, models.SimilarityEdge{
				ItemA:     a,
				ItemB:     b,
				Score:     score,
				Algorithm: tag,
			})
		}
	}
	return edges, nil
}
