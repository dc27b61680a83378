// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package features

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNoFeatures is returned when the corpus has no rows to vectorize.
	ErrNoFeatures = errors.New("no features available")

	// ErrEmptyVocabulary is returned when document-frequency pruning leaves
	// no terms. Similarity would then rest on price and rating alone.
	ErrEmptyVocabulary = errors.New("no terms remain after pruning")
)

// Config configures the vector space.
type Config struct {
	TFIDF         TFIDFConfig `json:"tfidf"`
	TextWeight    float64     `json:"text_weight"`
	NumericWeight float64     `json:"numeric_weight"`
}

// DefaultConfig biases similarity 0.8/0.2 toward text over price and rating.
func DefaultConfig() Config {
	return Config{
		TFIDF:         DefaultTFIDFConfig(),
		TextWeight:    0.8,
		NumericWeight: 0.2,
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if err := c.TFIDF.Validate(); err != nil {
		return err
	}
	if c.TextWeight < 0 || c.NumericWeight < 0 {
		return fmt.Errorf("block weights must be non-negative, got text=%f numeric=%f", c.TextWeight, c.NumericWeight)
	}
	if c.TextWeight+c.NumericWeight == 0 {
		return errors.New("text_weight and numeric_weight cannot both be zero")
	}
	return nil
}

// CompositeVector is the weighted concatenation [text, numeric] for one item.
type CompositeVector struct {
	Text    SparseVector
	Numeric []float64
	norm    float64
}

// NewCompositeVector builds a vector and caches its norm.
func NewCompositeVector(text SparseVector, numeric []float64) CompositeVector {
	sq := text.SquaredNorm()
	for _, x := range numeric {
		sq += x * x
	}
	return CompositeVector{Text: text, Numeric: numeric, norm: math.Sqrt(sq)}
}

// Norm returns the Euclidean norm.
func (v CompositeVector) Norm() float64 {
	return v.norm
}

// Dot returns the inner product of two composite vectors.
func (v CompositeVector) Dot(o CompositeVector) float64 {
	sum := v.Text.Dot(o.Text)
	for i := 0; i < len(v.Numeric) && i < len(o.Numeric); i++ {
		sum += v.Numeric[i] * o.Numeric[i]
	}
	return sum
}

// Build vectorizes a corpus: TF-IDF over Texts, a standard scaler over
// (price, rating), each block multiplied by its weight. The returned slice
// is indexed like c.IDs.
func Build(c *Corpus, cfg Config) ([]CompositeVector, error) {
	if c == nil || c.Len() == 0 {
		return nil, ErrNoFeatures
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid feature config: %w", err)
	}

	_, textRows, err := FitTransform(c.Texts, cfg.TFIDF)
	if err != nil {
		return nil, fmt.Errorf("tfidf: %w", err)
	}

	numeric := make([][]float64, c.Len())
	for i := range numeric {
		numeric[i] = []float64{c.Prices[i], c.Ratings[i]}
	}
	scaler := FitStandardScaler(numeric)

	vecs := make([]CompositeVector, c.Len())
	for i := range vecs {
		scaled := scaler.Transform(numeric[i])
		for d := range scaled {
			scaled[d] *= cfg.NumericWeight
		}
		vecs[i] = NewCompositeVector(textRows[i].Scale(cfg.TextWeight), scaled)
	}
	return vecs, nil
}
