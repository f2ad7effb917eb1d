// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ranking orders heading candidates by semantic relevance to a
// persona's query and selects the top distinct sections.
package ranking

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/Mihir205/Challenge-1b/internal/embed"
	"github.com/Mihir205/Challenge-1b/internal/heading"
	"github.com/Mihir205/Challenge-1b/pkg/types"
)

// Ranker scores section candidates against a query vector.
type Ranker struct {
	embedder embed.Embedder
	cfg      types.RankingConfig
}

// NewRanker creates a Ranker using the given embedder.
func NewRanker(embedder embed.Embedder, cfg types.RankingConfig) *Ranker {
	return &Ranker{embedder: embedder, cfg: cfg}
}

// scored pairs a candidate with its similarity to the query.
type scored struct {
	candidate types.SectionCandidate
	score     float64
}

// Rank embeds every candidate title, scores it by cosine similarity
// against queryVec, and returns the top distinct sections tagged with
// a dense importance rank starting at 1. The sort is stable, so equal
// scores keep the original candidate order; sections repeating an
// already-kept normalized title are passed over.
func (r *Ranker) Rank(ctx context.Context, candidates []types.SectionCandidate, queryVec []float64) ([]types.RankedSection, error) {
	topN := r.cfg.TopSections
	if topN <= 0 {
		topN = 5
	}

	ranked := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		vec, err := r.embedder.Embed(ctx, c.Title)
		if err != nil {
			return nil, fmt.Errorf("embedding section title %q: %w", c.Title, err)
		}
		ranked = append(ranked, scored{candidate: c, score: embed.Cosine(queryVec, vec)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	seenTitles := make(map[string]struct{}, topN)
	var sections []types.RankedSection
	for _, s := range ranked {
		if len(sections) >= topN {
			break
		}
		normalized := heading.NormalizeTitle(s.candidate.Title)
		if _, dup := seenTitles[normalized]; dup {
			continue
		}
		seenTitles[normalized] = struct{}{}
		sections = append(sections, types.RankedSection{
			Document:       filepath.Base(s.candidate.SourcePath),
			SectionTitle:   s.candidate.Title,
			ImportanceRank: len(sections) + 1,
			PageNumber:     s.candidate.PageNumber,
		})
	}
	return sections, nil
}
