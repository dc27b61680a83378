// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package features

import "math"

// StandardScaler standardizes columns to zero mean and unit variance using
// the population standard deviation. A constant column scales by 1.
type StandardScaler struct {
	Mean  []float64
	Scale []float64
}

// FitStandardScaler fits one mean and scale per column of rows. NaN and
// infinite values count as 0.
func FitStandardScaler(rows [][]float64) *StandardScaler {
	if len(rows) == 0 {
		return &StandardScaler{}
	}
	dims := len(rows[0])
	s := &StandardScaler{Mean: make([]float64, dims), Scale: make([]float64, dims)}
	n := float64(len(rows))

	for _, r := range rows {
		for d := 0; d < dims; d++ {
			s.Mean[d] += finite(r[d])
		}
	}
	for d := range s.Mean {
		s.Mean[d] /= n
	}

	for _, r := range rows {
		for d := 0; d < dims; d++ {
			diff := finite(r[d]) - s.Mean[d]
			s.Scale[d] += diff * diff
		}
	}
	for d := range s.Scale {
		std := math.Sqrt(s.Scale[d] / n)
		if std == 0 {
			std = 1
		}
		s.Scale[d] = std
	}
	return s
}

// Transform returns the standardized copy of row.
func (s *StandardScaler) Transform(row []float64) []float64 {
	out := make([]float64, len(s.Mean))
	for d := range s.Mean {
		out[d] = (finite(row[d]) - s.Mean[d]) / s.Scale[d]
	}
	return out
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
