// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package features

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// TFIDFConfig controls vocabulary construction.
type TFIDFConfig struct {
	// MaxFeatures caps the vocabulary by corpus-wide term count. 0 means no cap.
	MaxFeatures int `json:"max_features"`

	// MinDF is the minimum number of documents a term must appear in.
	MinDF int `json:"min_df"`

	// MaxDF is the maximum fraction of documents a term may appear in.
	MaxDF float64 `json:"max_df"`

	// NgramMin and NgramMax bound the n-gram sizes, inclusive.
	NgramMin int `json:"ngram_min"`
	NgramMax int `json:"ngram_max"`
}

// DefaultTFIDFConfig returns 5000 features, unigrams and bigrams,
// min_df=2 and max_df=0.8.
func DefaultTFIDFConfig() TFIDFConfig {
	return TFIDFConfig{
		MaxFeatures: 5000,
		MinDF:       2,
		MaxDF:       0.8,
		NgramMin:    1,
		NgramMax:    2,
	}
}

// Validate checks the configuration for errors.
func (c TFIDFConfig) Validate() error {
	if c.MaxFeatures < 0 {
		return fmt.Errorf("max_features must be non-negative, got %d", c.MaxFeatures)
	}
	if c.MinDF < 1 {
		return fmt.Errorf("min_df must be at least 1, got %d", c.MinDF)
	}
	if c.MaxDF <= 0 || c.MaxDF > 1 {
		return fmt.Errorf("max_df must be in (0, 1], got %f", c.MaxDF)
	}
	if c.NgramMin < 1 || c.NgramMax < c.NgramMin {
		return fmt.Errorf("invalid ngram range (%d, %d)", c.NgramMin, c.NgramMax)
	}
	return nil
}

// SparseVector holds the non-zero entries of a row, Indices ascending.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Dot returns the inner product of two sparse vectors.
func (v SparseVector) Dot(o SparseVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(v.Indices) && j < len(o.Indices) {
		switch {
		case v.Indices[i] == o.Indices[j]:
			sum += v.Values[i] * o.Values[j]
			i++
			j++
		case v.Indices[i] < o.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// SquaredNorm returns the sum of squared entries.
func (v SparseVector) SquaredNorm() float64 {
	var sum float64
	for _, x := range v.Values {
		sum += x * x
	}
	return sum
}

// Scale returns a copy of v multiplied by f.
func (v SparseVector) Scale(f float64) SparseVector {
	out := SparseVector{
		Indices: append([]int(nil), v.Indices...),
		Values:  make([]float64, len(v.Values)),
	}
	for i, x := range v.Values {
		out.Values[i] = x * f
	}
	return out
}

// TFIDF is a fitted term-weighting model.
type TFIDF struct {
	Vocabulary []string
	index      map[string]int
	idf        []float64
}

// Tokenize splits normalized text into tokens of two or more characters.
func Tokenize(text string) []string {
	fields := strings.Fields(text)
	out := fields[:0]
	for _, f := range fields {
		if len(f) >= 2 {
			out = append(out, f)
		}
	}
	return out
}

// Analyze turns text into its n-gram terms. Stopwords are dropped before
// n-grams are formed, so "shoe for running" yields the bigram "shoe running".
func Analyze(text string, ngramMin, ngramMax int) []string {
	tokens := Tokenize(text)
	kept := tokens[:0]
	for _, t := range tokens {
		if !IsStopWord(t) {
			kept = append(kept, t)
		}
	}

	var terms []string
	for n := ngramMin; n <= ngramMax; n++ {
		for i := 0; i+n <= len(kept); i++ {
			terms = append(terms, strings.Join(kept[i:i+n], " "))
		}
	}
	return terms
}

// FitTransform learns the vocabulary and idf weights from docs and returns
// one L2-normalized row per document.
//
// It returns ErrEmptyVocabulary when pruning leaves no terms, including when
// max_df covers fewer documents than min_df.
func FitTransform(docs []string, cfg TFIDFConfig) (*TFIDF, []SparseVector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	n := len(docs)
	analyzed := make([][]string, n)
	df := make(map[string]int)
	total := make(map[string]int)
	for i, doc := range docs {
		terms := Analyze(doc, cfg.NgramMin, cfg.NgramMax)
		analyzed[i] = terms
		seen := make(map[string]struct{}, len(terms))
		for _, t := range terms {
			total[t]++
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				df[t]++
			}
		}
	}

	maxDocCount := cfg.MaxDF * float64(n)
	vocab := make([]string, 0, len(df))
	if maxDocCount >= float64(cfg.MinDF) {
		for t, d := range df {
			if d >= cfg.MinDF && float64(d) <= maxDocCount {
				vocab = append(vocab, t)
			}
		}
	}

	if cfg.MaxFeatures > 0 && len(vocab) > cfg.MaxFeatures {
		sort.Slice(vocab, func(i, j int) bool {
			ti, tj := total[vocab[i]], total[vocab[j]]
			if ti != tj {
				return ti > tj
			}
			return vocab[i] < vocab[j]
		})
		vocab = vocab[:cfg.MaxFeatures]
	}
	if len(vocab) == 0 {
		return nil, nil, fmt.Errorf("%w (documents=%d, min_df=%d, max_df=%.2f)",
			ErrEmptyVocabulary, n, cfg.MinDF, cfg.MaxDF)
	}
	sort.Strings(vocab)

	model := &TFIDF{
		Vocabulary: vocab,
		index:      make(map[string]int, len(vocab)),
		idf:        make([]float64, len(vocab)),
	}
	for i, t := range vocab {
		model.index[t] = i
		model.idf[i] = math.Log(float64(1+n)/float64(1+df[t])) + 1
	}

	rows := make([]SparseVector, n)
	for i, terms := range analyzed {
		rows[i] = model.transformTerms(terms)
	}
	return model, rows, nil
}

// Transform weights a new document with the fitted vocabulary.
func (m *TFIDF) Transform(doc string, ngramMin, ngramMax int) SparseVector {
	return m.transformTerms(Analyze(doc, ngramMin, ngramMax))
}

func (m *TFIDF) transformTerms(terms []string) SparseVector {
	counts := make(map[int]int)
	for _, t := range terms {
		if idx, ok := m.index[t]; ok {
			counts[idx]++
		}
	}
	if len(counts) == 0 {
		return SparseVector{}
	}

	indices := make([]int, 0, len(counts))
	for idx := range counts {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	values := make([]float64, len(indices))
	var sq float64
	for k, idx := range indices {
		values[k] = float64(counts[idx]) * m.idf[idx]
		sq += values[k] * values[k]
	}
	norm := math.Sqrt(sq)
	for k := range values {
		values[k] /= norm
	}
	return SparseVector{Indices: indices, Values: values}
}
