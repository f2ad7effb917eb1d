// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embed

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/minio/highwayhash"
)

// hashKey is the fixed HighwayHash key for token bucketing. It must
// never change: cached vectors and reproducibility depend on it.
var hashKey = []byte("docrank.embeddings.hashing.v1..0")

// DefaultDimension is the vector size used when the config leaves it
// unset.
const DefaultDimension = 256

// Hashing is a local, deterministic feature-hashing vectorizer. Tokens
// are lower-cased words, stopwords removed, hashed into a fixed number
// of buckets; the bucket counts are L2-normalized. It needs no corpus
// preparation and no network, which keeps pipeline runs reproducible
// and offline by default.
type Hashing struct {
	dimension    int
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewHashing creates a hashing embedder with the given vector size.
func NewHashing(dimension int) *Hashing {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &Hashing{
		dimension:    dimension,
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		stopwords:    defaultStopwords(),
	}
}

// Name returns the identifier of this embedder implementation.
func (h *Hashing) Name() string { return "hashing" }

// Dimension returns the dimensionality of the produced vectors.
func (h *Hashing) Dimension() int { return h.dimension }

// Embed computes the feature-hashing embedding for the given text.
// Text with no usable tokens yields the zero vector.
func (h *Hashing) Embed(_ context.Context, text string) ([]float64, error) {
	vec := make([]float64, h.dimension)
	for _, tok := range h.tokenize(text) {
		bucket := highwayhash.Sum64([]byte(tok), hashKey) % uint64(h.dimension)
		vec[bucket]++
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}

func (h *Hashing) tokenize(text string) []string {
	raw := h.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := h.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for",
		"to", "of", "in", "on", "at", "by", "with", "as", "is", "are",
		"was", "were", "be", "been", "being", "it", "this", "that",
		"these", "those", "from", "up", "down", "over", "under", "again",
		"further", "than", "so", "such", "into", "about", "between",
		"through", "during", "before", "after", "above", "below", "out",
		"off", "own", "same", "too", "very", "can", "will", "just",
		"should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
