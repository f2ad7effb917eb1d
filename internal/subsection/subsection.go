// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package subsection extracts paragraph-level passages from ranked
// sections, scores them against the persona query, and keeps the top
// distinct passages.
package subsection

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/Mihir205/Challenge-1b/internal/embed"
	"github.com/Mihir205/Challenge-1b/internal/layout"
	"github.com/Mihir205/Challenge-1b/pkg/types"
)

// Extractor turns ranked sections into refined, scored passages.
type Extractor struct {
	parser   layout.Parser
	embedder embed.Embedder
	cfg      types.SubsectionConfig
}

// NewExtractor creates an Extractor over the given parser and embedder.
func NewExtractor(parser layout.Parser, embedder embed.Embedder, cfg types.SubsectionConfig) *Extractor {
	return &Extractor{parser: parser, embedder: embedder, cfg: cfg}
}

// candidate is a scored passage before final selection.
type candidate struct {
	passage types.Passage
	score   float64
}

// Extract re-opens each ranked section's page under docsRoot, segments
// it into paragraphs, refines and scores them, then returns the top
// distinct passages in descending similarity order. A failure on one
// section is logged to w and does not stop the remaining sections.
func (e *Extractor) Extract(ctx context.Context, docsRoot string, sections []types.RankedSection, queryVec []float64, w io.Writer) []types.Passage {
	var all []candidate

	for _, sec := range sections {
		passages, err := e.extractSection(ctx, docsRoot, sec, queryVec)
		if err != nil {
			fmt.Fprintf(w, "skipped section %q (%s p.%d): %v\n",
				sec.SectionTitle, sec.Document, sec.PageNumber, err)
			continue
		}
		all = append(all, passages...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].score > all[j].score
	})

	return e.selectDistinct(all)
}

// extractSection produces scored passage candidates for one section.
func (e *Extractor) extractSection(ctx context.Context, docsRoot string, sec types.RankedSection, queryVec []float64) ([]candidate, error) {
	path, err := LocateDocument(docsRoot, sec.Document)
	if err != nil {
		return nil, err
	}

	doc, err := e.parser.Parse(path)
	if err != nil {
		return nil, err
	}

	pageIdx := sec.PageNumber - 1
	if pageIdx < 0 || pageIdx >= len(doc.Pages) {
		return nil, fmt.Errorf("page %d out of range (document has %d pages)", sec.PageNumber, len(doc.Pages))
	}

	var out []candidate
	for _, paragraph := range e.splitParagraphs(doc.Pages[pageIdx].Text) {
		refined, ok := e.refine(paragraph)
		if !ok {
			continue
		}
		vec, err := e.embedder.Embed(ctx, refined)
		if err != nil {
			return nil, fmt.Errorf("embedding passage: %w", err)
		}
		out = append(out, candidate{
			passage: types.Passage{
				Document:    sec.Document,
				PageNumber:  sec.PageNumber,
				RefinedText: refined,
			},
			score: embed.Cosine(queryVec, vec),
		})
	}
	return out, nil
}

// splitParagraphs segments page text in two tiers: blank-line
// boundaries first, then line-by-line accumulation with sentence-end
// and length flushes when blank lines yield fewer than two paragraphs.
func (e *Extractor) splitParagraphs(pageText string) []string {
	var paragraphs []string
	for _, segment := range strings.Split(pageText, "\n\n") {
		segment = strings.TrimSpace(segment)
		if len(segment) > e.cfg.MinParagraphChars {
			paragraphs = append(paragraphs, segment)
		}
	}
	if len(paragraphs) >= 2 {
		return paragraphs
	}

	paragraphs = nil
	var buffer []string
	flush := func() {
		if len(buffer) == 0 {
			return
		}
		joined := strings.TrimSpace(strings.Join(buffer, " "))
		if len(joined) > e.cfg.MinKeptChars {
			paragraphs = append(paragraphs, joined)
		}
		buffer = nil
	}

	for _, line := range strings.Split(pageText, "\n") {
		line = strings.TrimSpace(line)
		if len(line) <= e.cfg.MinLineChars {
			continue
		}
		buffer = append(buffer, line)
		if endsSentence(line) || len(strings.Join(buffer, " ")) > e.cfg.FlushAtChars {
			flush()
		}
	}
	flush()
	return paragraphs
}

// refine cleans a paragraph and accumulates its sentences up to the
// length cap, stopping at the first sentence that would exceed it.
func (e *Extractor) refine(paragraph string) (string, bool) {
	if len(strings.TrimSpace(paragraph)) < e.cfg.MinKeptChars {
		return "", false
	}
	cleaned := collapseWhitespace(paragraph)

	var kept []string
	total := 0
	for _, sentence := range splitSentences(cleaned) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if total+len(sentence) >= e.cfg.RefineMaxChars {
			break
		}
		kept = append(kept, sentence)
		total += len(sentence)
	}

	refined := strings.TrimSpace(strings.Join(kept, " "))
	if len(refined) <= e.cfg.RefineMinChars {
		return "", false
	}
	return refined, true
}

// selectDistinct walks score-ordered candidates and keeps the top ones
// that are not near-duplicates of an already-kept passage. The kept
// list is tiny (at most TopPassages), so the pairwise comparison the
// approximate predicate requires stays cheap.
func (e *Extractor) selectDistinct(all []candidate) []types.Passage {
	topN := e.cfg.TopPassages
	if topN <= 0 {
		topN = 5
	}

	var kept []types.Passage
	var keptNormalized []string
	for _, c := range all {
		if len(kept) >= topN {
			break
		}
		normalized := normalizeForDedup(c.passage.RefinedText)
		if e.isNearDuplicate(normalized, keptNormalized) {
			continue
		}
		keptNormalized = append(keptNormalized, normalized)
		kept = append(kept, c.passage)
	}
	return kept
}

// isNearDuplicate reports whether normalized repeats any kept passage:
// one string containing the other, or a token-set overlap above the
// threshold for texts long enough for token overlap to mean anything.
// The overlap denominator is the candidate's token count, duplicates
// included.
func (e *Extractor) isNearDuplicate(normalized string, kept []string) bool {
	tokens := strings.Fields(normalized)
	tokenSet := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		tokenSet[t] = struct{}{}
	}

	for _, seen := range kept {
		if strings.Contains(seen, normalized) || strings.Contains(normalized, seen) {
			return true
		}
		if len(normalized) <= e.cfg.DedupMinChars {
			continue
		}
		seenSet := make(map[string]struct{})
		for _, t := range strings.Fields(seen) {
			seenSet[t] = struct{}{}
		}
		overlap := 0
		for t := range tokenSet {
			if _, ok := seenSet[t]; ok {
				overlap++
			}
		}
		if float64(overlap) > e.cfg.DedupOverlap*float64(len(tokens)) {
			return true
		}
	}
	return false
}

// LocateDocument finds the first file named basename under root, in
// lexical walk order. Ambiguous basenames across nested folders resolve
// to the first match; callers relying on a different resolution must
// disambiguate upstream.
func LocateDocument(root, basename string) (string, error) {
	var found string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == basename {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("searching for %s under %s: %w", basename, root, err)
	}
	if found == "" {
		return "", fmt.Errorf("document %s not found under %s", basename, root)
	}
	return found, nil
}

var (
	whitespaceRE  = regexp.MustCompile(`\s+`)
	sentenceEndRE = regexp.MustCompile(`([.!?])\s+`)
	punctRE       = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
)

// collapseWhitespace squeezes runs of whitespace into single spaces.
func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(s, " "))
}

// splitSentences breaks text at sentence-ending punctuation followed by
// whitespace, keeping the punctuation with its sentence.
func splitSentences(s string) []string {
	marked := sentenceEndRE.ReplaceAllString(s, "$1\x00")
	return strings.Split(marked, "\x00")
}

// endsSentence reports whether a line ends at a sentence boundary.
func endsSentence(line string) bool {
	return strings.HasSuffix(line, ".") || strings.HasSuffix(line, "!") || strings.HasSuffix(line, "?")
}

// normalizeForDedup lower-cases text, strips punctuation, and collapses
// whitespace, producing the comparison form for near-duplicate checks.
func normalizeForDedup(s string) string {
	return collapseWhitespace(punctRE.ReplaceAllString(strings.ToLower(s), ""))
}
