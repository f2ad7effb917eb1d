// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// rowTolerance is the vertical distance in points within which two text
// fragments count as the same line.
const rowTolerance = 2.0

// blockGapFactor marks a paragraph break: a vertical gap between lines
// larger than this factor of the median line gap.
const blockGapFactor = 1.8

// PDFParser parses PDF files using their embedded text layer. Scanned
// (image-only) PDFs yield empty pages; OCR is not attempted.
type PDFParser struct{}

// NewPDFParser returns a Parser for PDF files.
func NewPDFParser() *PDFParser {
	return &PDFParser{}
}

// Parse reads the PDF at path and assembles its page layout.
func (p *PDFParser) Parse(path string) (*Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer f.Close()

	doc := &Document{Path: path}
	for i := 1; i <= r.NumPage(); i++ {
		pg := r.Page(i)
		if pg.V.IsNull() {
			doc.Pages = append(doc.Pages, Page{})
			continue
		}
		doc.Pages = append(doc.Pages, buildPage(pg.Content().Text))
	}
	return doc, nil
}

// buildPage groups raw text fragments into lines and spans and renders
// the page's plain text.
func buildPage(texts []pdf.Text) Page {
	rows := groupRows(texts)

	var page Page
	for _, row := range rows {
		page.Lines = append(page.Lines, Line{Spans: mergeSpans(row)})
	}
	page.Text = renderText(rows)
	return page
}

// groupRows buckets fragments into visual rows by Y position, top of
// page first, left to right within a row.
func groupRows(texts []pdf.Text) [][]pdf.Text {
	if len(texts) == 0 {
		return nil
	}

	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var rows [][]pdf.Text
	var current []pdf.Text
	currentY := 0.0
	for _, t := range sorted {
		if t.S == "" {
			continue
		}
		if current == nil || currentY-t.Y > rowTolerance {
			if current != nil {
				rows = append(rows, current)
			}
			current = []pdf.Text{t}
			currentY = t.Y
			continue
		}
		current = append(current, t)
	}
	if current != nil {
		rows = append(rows, current)
	}

	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
	}
	return rows
}

// mergeSpans joins consecutive fragments that share a font into spans.
// A horizontal gap wider than a fraction of the font size becomes a
// space; the text layer often omits explicit space glyphs.
func mergeSpans(row []pdf.Text) []Span {
	var spans []Span
	var b strings.Builder
	var cur pdf.Text
	open := false

	flush := func() {
		if !open {
			return
		}
		spans = append(spans, Span{
			Text:     b.String(),
			FontSize: cur.FontSize,
			Bold:     isBoldFont(cur.Font),
		})
		b.Reset()
		open = false
	}

	for _, t := range row {
		if open && (t.Font != cur.Font || t.FontSize != cur.FontSize) {
			flush()
		}
		if open {
			if gap := t.X - (cur.X + cur.W); gap > cur.FontSize*0.2 {
				b.WriteByte(' ')
			}
		}
		b.WriteString(t.S)
		cur = t
		open = true
	}
	flush()
	return spans
}

// renderText joins rows into plain text, inserting a blank line where
// the vertical gap between rows is well above the page's median gap.
func renderText(rows [][]pdf.Text) string {
	if len(rows) == 0 {
		return ""
	}

	gaps := make([]float64, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		if g := rows[i-1][0].Y - rows[i][0].Y; g > 0 {
			gaps = append(gaps, g)
		}
	}
	breakAt := 0.0
	if len(gaps) > 0 {
		sorted := make([]float64, len(gaps))
		copy(sorted, gaps)
		sort.Float64s(sorted)
		breakAt = sorted[len(sorted)/2] * blockGapFactor
	}

	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
			if breakAt > 0 && rows[i-1][0].Y-row[0].Y > breakAt {
				b.WriteByte('\n')
			}
		}
		b.WriteString(Line{Spans: mergeSpans(row)}.Text())
	}
	return b.String()
}

// isBoldFont reports whether a PDF font name denotes a bold face
// (e.g. "Helvetica-Bold", "TimesNewRomanPS-BoldMT").
func isBoldFont(name string) bool {
	return strings.Contains(strings.ToLower(name), "bold")
}
