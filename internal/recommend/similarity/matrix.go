// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

// Package similarity computes the pairwise cosine matrix over composite item
// vectors and turns it into thresholded, canonical similarity edges.
package similarity

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/curator/internal/recommend/features"
)

// Matrix is a dense symmetric n×n similarity matrix in row-major order.
type Matrix struct {
	n    int
	data []float64
}

// Size returns n.
func (m *Matrix) Size() int {
	return m.n
}

// At returns sim[i][j].
func (m *Matrix) At(i, j int) float64 {
	return m.data[i*m.n+j]
}

func (m *Matrix) set(i, j int, v float64) {
	m.data[i*m.n+j] = v
	m.data[j*m.n+i] = v
}

// Compute builds the cosine matrix. Rows of the upper triangle are spread
// over at most workers goroutines (GOMAXPROCS when workers <= 0) and
// mirrored into the lower triangle. A zero-norm vector has similarity 0
// with everything, including itself.
func Compute(ctx context.Context, vecs []features.CompositeVector, workers int) (*Matrix, error) {
	n := len(vecs)
	m := &Matrix{n: n, data: make([]float64, n*n)}
	if n == 0 {
		return m, nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ni := vecs[i].Norm()
			if ni == 0 {
				return nil
			}
			// Each goroutine writes only cells (i, j>=i) and their mirror
			// (j, i), which no other row touches.
			m.set(i, i, 1)
			for j := i + 1; j < n; j++ {
				nj := vecs[j].Norm()
				if nj == 0 {
					continue
				}
				m.set(i, j, math.Max(-1, math.Min(1, vecs[i].Dot(vecs[j])/(ni*nj))))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m, nil
}
