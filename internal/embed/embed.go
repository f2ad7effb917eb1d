// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package embed maps text to fixed-length vectors and compares them by
// cosine similarity. Backends are pluggable: a local deterministic
// feature-hashing vectorizer and a client for OpenAI-compatible
// embeddings APIs, optionally wrapped in a SQLite cache.
package embed

import (
	"context"
	"math"
	"strings"
)

// Embedder converts free text into a numeric vector representation.
type Embedder interface {
	// Name identifies the implementation, for cache keys and logs.
	Name() string

	// Embed returns the embedding vector for text.
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Cosine returns the cosine similarity of a and b: 1 for identical
// direction, 0 for orthogonal vectors. Vectors of mismatched length are
// compared over the shorter prefix; a zero vector scores 0 against
// anything.
func Cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	for _, v := range a {
		na += v * v
	}
	for _, v := range b {
		nb += v * v
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// QueryText builds the relevance query for a persona and its
// job-to-be-done. Both stages of the pipeline score against the same
// query.
func QueryText(persona, job string) string {
	return strings.TrimSpace(persona + " " + job)
}
