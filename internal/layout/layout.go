// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package layout exposes per-page document layout: text lines grouped
// into styled spans, plus a plain-text rendition of each page. Heading
// detection consumes the spans; passage extraction consumes the plain
// text.
package layout

import "strings"

// Span is a run of text sharing one font within a line.
type Span struct {
	// Text is the span's text content.
	Text string

	// FontSize is the span's font size in points.
	FontSize float64

	// Bold reports whether the span's font is a bold face.
	Bold bool
}

// Line is one visual text line composed of spans.
type Line struct {
	Spans []Span
}

// Text returns the line's text: the spans' text joined by single
// spaces, trimmed.
func (l Line) Text() string {
	parts := make([]string, 0, len(l.Spans))
	for _, s := range l.Spans {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// Page is one document page.
type Page struct {
	// Lines are the page's text lines in reading order.
	Lines []Line

	// Text is the page's plain text. Blank lines separate visually
	// distinct blocks where the source layout allows telling them apart.
	Text string
}

// Document is a parsed document.
type Document struct {
	// Path is the location the document was read from.
	Path string

	// Pages holds the document's pages in order.
	Pages []Page
}

// Parser turns a document file into its page layout.
type Parser interface {
	Parse(path string) (*Document, error)
}
