// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package heading detects section headings in document page layout
// using typographic signals. Detection is an OR over independent
// signals, so one firing signal is enough to emit a candidate.
package heading

import (
	"sort"
	"strings"
	"unicode"

	"github.com/Mihir205/Challenge-1b/internal/layout"
	"github.com/Mihir205/Challenge-1b/pkg/types"
)

// Extractor finds heading candidates in parsed documents.
type Extractor struct {
	cfg types.HeadingConfig
}

// NewExtractor creates an Extractor with the given thresholds.
func NewExtractor(cfg types.HeadingConfig) *Extractor {
	return &Extractor{cfg: cfg}
}

// Extract returns the document's heading candidates in reading order,
// deduplicated by (normalized title, page number). Font statistics are
// per page, not per document: collections mix cover pages, dense pages
// and sparse pages with very different typography.
//
// Each page gets a single pass: the signal pass first, then, on the
// first page or when the signal pass emitted nothing for the page, a
// fallback that takes the first plausible plain-text line as the title.
func (e *Extractor) Extract(doc *layout.Document) []types.SectionCandidate {
	var candidates []types.SectionCandidate

	for i, page := range doc.Pages {
		pageNumber := i + 1

		median, max, ok := pageFontStats(page)
		if !ok {
			continue
		}

		emitted := 0
		for _, line := range page.Lines {
			text := line.Text()
			if !e.passesLineFilter(text) {
				continue
			}
			avg, hasBold, ok := lineFontProfile(line)
			if !ok {
				continue
			}
			if e.isHeading(text, avg, hasBold, median, max) {
				candidates = append(candidates, types.SectionCandidate{
					Title:      text,
					PageNumber: pageNumber,
					SourcePath: doc.Path,
				})
				emitted++
			}
		}

		if pageNumber == 1 || emitted == 0 {
			if title, ok := e.fallbackTitle(page.Text); ok {
				candidates = append(candidates, types.SectionCandidate{
					Title:      title,
					PageNumber: pageNumber,
					SourcePath: doc.Path,
				})
			}
		}
	}

	return dedupe(candidates)
}

// passesLineFilter applies the cheap lexical filters that weed out
// body-text lines: word count bounds and punctuation density.
func (e *Extractor) passesLineFilter(text string) bool {
	if text == "" {
		return false
	}
	words := len(strings.Fields(text))
	if words < e.cfg.MinWords || words > e.cfg.MaxWords {
		return false
	}
	if strings.Count(text, ".") > e.cfg.MaxPeriods {
		return false
	}
	if strings.Count(text, ",") > e.cfg.MaxCommas {
		return false
	}
	return true
}

// isHeading combines the typographic signals. Any one suffices.
func (e *Extractor) isHeading(text string, avgSize float64, bold bool, median, max float64) bool {
	return e.exceedsMedian(avgSize, median) ||
		bold ||
		isAllUpper(text) ||
		e.nearMax(avgSize, max)
}

// exceedsMedian fires for font sizes strictly above the median ratio.
func (e *Extractor) exceedsMedian(avgSize, median float64) bool {
	return avgSize > median*e.cfg.MedianRatio
}

// nearMax fires for font sizes at or above the fraction of the page
// maximum.
func (e *Extractor) nearMax(avgSize, max float64) bool {
	return avgSize >= max*e.cfg.MaxRatio
}

// fallbackTitle scans the leading plain-text lines for a usable title.
// A line that ends with a period and runs long is rejected as a body
// sentence rather than a title.
func (e *Extractor) fallbackTitle(pageText string) (string, bool) {
	lines := strings.Split(pageText, "\n")
	if len(lines) > e.cfg.FallbackScanLines {
		lines = lines[:e.cfg.FallbackScanLines]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) <= e.cfg.FallbackMinChars {
			continue
		}
		if len(strings.Fields(line)) < e.cfg.FallbackMinWords {
			continue
		}
		if strings.HasSuffix(line, ".") && len(line) > e.cfg.FallbackBodyChars {
			continue
		}
		return line, true
	}
	return "", false
}

// pageFontStats computes the page's median and maximum span font size.
// Pages without sized text are skipped by the caller.
func pageFontStats(page layout.Page) (median, max float64, ok bool) {
	var sizes []float64
	for _, line := range page.Lines {
		for _, span := range line.Spans {
			if span.FontSize > 0 {
				sizes = append(sizes, span.FontSize)
			}
		}
	}
	if len(sizes) == 0 {
		return 0, 0, false
	}

	sort.Float64s(sizes)
	mid := len(sizes) / 2
	if len(sizes)%2 == 0 {
		median = (sizes[mid-1] + sizes[mid]) / 2
	} else {
		median = sizes[mid]
	}
	return median, sizes[len(sizes)-1], true
}

// lineFontProfile returns the average span font size and whether any
// span is bold. Lines without sized spans produce no profile.
func lineFontProfile(line layout.Line) (avg float64, bold bool, ok bool) {
	var sum float64
	var n int
	for _, span := range line.Spans {
		if span.FontSize > 0 {
			sum += span.FontSize
			n++
		}
		if span.Bold {
			bold = true
		}
	}
	if n == 0 {
		return 0, false, false
	}
	return sum / float64(n), bold, true
}

// isAllUpper reports whether text is entirely upper-case: at least one
// cased letter and no lower-case ones.
func isAllUpper(text string) bool {
	hasUpper := false
	for _, r := range text {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasUpper = true
		}
	}
	return hasUpper
}

// dedupe removes candidates repeating a (normalized title, page) pair,
// preserving first-seen order.
func dedupe(candidates []types.SectionCandidate) []types.SectionCandidate {
	type key struct {
		title string
		page  int
	}
	seen := make(map[key]struct{}, len(candidates))
	out := candidates[:0]
	for _, c := range candidates {
		k := key{title: NormalizeTitle(c.Title), page: c.PageNumber}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, c)
	}
	return out
}

// NormalizeTitle lower-cases a title and collapses its whitespace, for
// use as a deduplication key.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}
