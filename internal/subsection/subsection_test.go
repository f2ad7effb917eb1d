package subsection

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Mihir205/Challenge-1b/internal/embed"
	"github.com/Mihir205/Challenge-1b/internal/layout"
	"github.com/Mihir205/Challenge-1b/pkg/types"
)

// fakeParser serves canned documents keyed by basename.
type fakeParser struct {
	docs map[string]*layout.Document
}

func (f *fakeParser) Parse(path string) (*layout.Document, error) {
	if d, ok := f.docs[filepath.Base(path)]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("no fixture for %s", path)
}

func testExtractor(parser layout.Parser) *Extractor {
	return NewExtractor(parser, embed.NewHashing(0), types.DefaultPipelineConfig().Subsection)
}

func textDoc(pages ...string) *layout.Document {
	doc := &layout.Document{Path: "fixture.pdf"}
	for _, p := range pages {
		doc.Pages = append(doc.Pages, layout.Page{Text: p})
	}
	return doc
}

// touch creates an empty placeholder file.
func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
}

// --- paragraph segmentation ---

func TestSplitParagraphsBlankLineTier(t *testing.T) {
	e := testExtractor(nil)

	first := "this opening paragraph is comfortably longer than the twenty character minimum"
	second := "a closing paragraph that also clears the minimum length comfortably enough"
	got := e.splitParagraphs(first + "\n\ntiny\n\n" + second)

	want := []string{first, second}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("splitParagraphs() = %v, want %v", got, want)
	}
}

func TestSplitParagraphsLineAccumulationFallback(t *testing.T) {
	e := testExtractor(nil)

	// No blank lines, so the blank-line tier yields one segment and the
	// line tier takes over: lines accumulate until a sentence ending.
	text := strings.Join([]string{
		"The first line of the paragraph continues",
		"and the second line finishes the thought.",
		"A following paragraph starts on this line and",
		"wraps once more before it too comes to an end.",
	}, "\n")

	got := e.splitParagraphs(text)
	if len(got) != 2 {
		t.Fatalf("splitParagraphs() = %d paragraphs (%v), want 2", len(got), got)
	}
	if !strings.HasSuffix(got[0], "finishes the thought.") {
		t.Errorf("first paragraph = %q, want it closed at the sentence end", got[0])
	}
}

func TestSplitParagraphsAccumulationSkipsTrivialLines(t *testing.T) {
	e := testExtractor(nil)

	text := strings.Join([]string{
		"12",
		"- -",
		"An actual sentence of content that is long enough to keep.",
	}, "\n")

	got := e.splitParagraphs(text)
	if len(got) != 1 || strings.Contains(got[0], "12") {
		t.Fatalf("splitParagraphs() = %v, want trivial lines dropped", got)
	}
}

func TestSplitParagraphsFlushesLongBuffer(t *testing.T) {
	e := testExtractor(nil)

	// Lines without sentence endings flush once the joined buffer
	// passes the length threshold.
	wrapped := []string{
		"a line of wrapped text that never quite reaches any terminal punctuation at all",
		"another line of wrapped text that also avoids punctuation entirely for a while",
		"a trailing fragment kept by the final flush because it is long enough",
	}
	got := e.splitParagraphs(strings.Join(wrapped, "\n"))
	if len(got) < 2 {
		t.Fatalf("splitParagraphs() = %v, want length-based flush to split the run", got)
	}
}

// --- refinement ---

func TestRefineCapsAtMaxChars(t *testing.T) {
	e := testExtractor(nil)

	sentence := "This sentence carries roughly sixty characters of content here. "
	refined, ok := e.refine(strings.Repeat(sentence, 12))
	if !ok {
		t.Fatal("refine() rejected a healthy paragraph")
	}
	if len(refined) >= e.cfg.RefineMaxChars {
		t.Errorf("refined length = %d, want under %d", len(refined), e.cfg.RefineMaxChars)
	}
	if !strings.HasSuffix(refined, ".") {
		t.Errorf("refined text = %q, want it to end on a sentence boundary", refined)
	}
}

func TestRefineDropsShortParagraphs(t *testing.T) {
	e := testExtractor(nil)
	if _, ok := e.refine("too short to keep"); ok {
		t.Error("refine() kept a paragraph below the minimum length")
	}
}

func TestRefineCollapsesWhitespace(t *testing.T) {
	e := testExtractor(nil)
	refined, ok := e.refine("spaced   out\ttext   with  messy   gaps that still has plenty of length to keep around.")
	if !ok {
		t.Fatal("refine() rejected the paragraph")
	}
	if strings.Contains(refined, "  ") {
		t.Errorf("refined text %q still contains doubled spaces", refined)
	}
}

// --- near-duplicate predicate ---

func TestIsNearDuplicate(t *testing.T) {
	e := testExtractor(nil)

	tests := []struct {
		name      string
		candidate string
		kept      []string
		want      bool
	}{
		{
			name:      "substring containment",
			candidate: "the quick brown fox",
			kept:      []string{"the quick brown fox jumps over the lazy dog"},
			want:      true,
		},
		{
			name:      "superstring containment",
			candidate: "the quick brown fox jumps over the lazy dog",
			kept:      []string{"quick brown fox"},
			want:      true,
		},
		{
			name:      "high token overlap",
			candidate: "packing light for extended travel keeps luggage manageable always",
			kept:      []string{"packing light for extended travel keeps luggage manageable on trips"},
			want:      true,
		},
		{
			name:      "low token overlap",
			candidate: "coastal towns offer seafood markets and harbour walks daily",
			kept:      []string{"packing light for extended travel keeps luggage manageable on trips"},
			want:      false,
		},
		{
			name:      "short text skips the overlap test",
			candidate: "light travel packing",
			kept:      []string{"travel packing light luggage trips extras"},
			want:      false,
		},
		{
			name:      "nothing kept yet",
			candidate: "anything at all",
			kept:      nil,
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.isNearDuplicate(tt.candidate, tt.kept); got != tt.want {
				t.Errorf("isNearDuplicate(%q) = %v, want %v", tt.candidate, got, tt.want)
			}
		})
	}
}

func TestNormalizeForDedup(t *testing.T) {
	got := normalizeForDedup("Hello, World!  It's   1:30pm.")
	want := "hello world its 130pm"
	if got != want {
		t.Errorf("normalizeForDedup() = %q, want %q", got, want)
	}
}

// --- document lookup ---

func TestLocateDocument_FirstMatchWins(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "alpha", "guide.pdf"))
	touch(t, filepath.Join(root, "beta", "guide.pdf"))

	got, err := LocateDocument(root, "guide.pdf")
	if err != nil {
		t.Fatalf("LocateDocument() error: %v", err)
	}
	if want := filepath.Join(root, "alpha", "guide.pdf"); got != want {
		t.Errorf("LocateDocument() = %q, want lexically first match %q", got, want)
	}
}

func TestLocateDocument_NotFound(t *testing.T) {
	if _, err := LocateDocument(t.TempDir(), "missing.pdf"); err == nil {
		t.Fatal("LocateDocument() expected error for a missing document")
	}
}

// --- end-to-end extraction ---

func TestExtractScoresAndOrders(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "guide.pdf"))

	cooking := "Slow cooking rich stews rewards patience, layering braised vegetables and tender meat into deep flavour."
	taxes := "Quarterly filings require reconciling ledgers, receipts and invoices before the accounting deadline arrives."
	parser := &fakeParser{docs: map[string]*layout.Document{
		"guide.pdf": textDoc(cooking + "\n\n" + taxes),
	}}
	e := testExtractor(parser)

	queryVec, err := embed.NewHashing(0).Embed(context.Background(), "home cook braised stews slow cooking flavour")
	if err != nil {
		t.Fatal(err)
	}

	sections := []types.RankedSection{
		{Document: "guide.pdf", SectionTitle: "Cooking", ImportanceRank: 1, PageNumber: 1},
	}

	var log bytes.Buffer
	got := e.Extract(context.Background(), root, sections, queryVec, &log)
	if len(got) != 2 {
		t.Fatalf("Extract() = %d passages (%v), want 2", len(got), got)
	}
	if !strings.Contains(got[0].RefinedText, "Slow cooking") {
		t.Errorf("top passage = %q, want the cooking paragraph first", got[0].RefinedText)
	}
	if got[0].Document != "guide.pdf" || got[0].PageNumber != 1 {
		t.Errorf("passage provenance = %s p.%d, want guide.pdf p.1", got[0].Document, got[0].PageNumber)
	}
}

func TestExtractSkipsPageOutOfRange(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "guide.pdf"))

	parser := &fakeParser{docs: map[string]*layout.Document{
		"guide.pdf": textDoc("A single page of perfectly reasonable content that is long enough to score."),
	}}
	e := testExtractor(parser)

	sections := []types.RankedSection{
		{Document: "guide.pdf", SectionTitle: "Ghost Chapter", ImportanceRank: 1, PageNumber: 9},
		{Document: "guide.pdf", SectionTitle: "Real Chapter", ImportanceRank: 2, PageNumber: 1},
	}

	var log bytes.Buffer
	got := e.Extract(context.Background(), root, sections, []float64{1}, &log)
	if len(got) == 0 {
		t.Fatal("Extract() returned nothing; the in-range section should still be processed")
	}
	if !strings.Contains(log.String(), "Ghost Chapter") {
		t.Errorf("log = %q, want the skipped section mentioned", log.String())
	}
}

func TestExtractSkipsMissingDocument(t *testing.T) {
	e := testExtractor(&fakeParser{})

	sections := []types.RankedSection{
		{Document: "absent.pdf", SectionTitle: "Nowhere", ImportanceRank: 1, PageNumber: 1},
	}

	var log bytes.Buffer
	got := e.Extract(context.Background(), t.TempDir(), sections, []float64{1}, &log)
	if len(got) != 0 {
		t.Fatalf("Extract() = %v, want none", got)
	}
	if log.Len() == 0 {
		t.Error("expected a log line for the missing document")
	}
}

func TestExtractDeduplicatesAcrossSections(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.pdf"))
	touch(t, filepath.Join(root, "b.pdf"))

	repeated := "Identical advice about keeping receipts organized appears in both documents word for word, twice over."
	parser := &fakeParser{docs: map[string]*layout.Document{
		"a.pdf": textDoc(repeated + "\n\nEntirely different content about booking travel insurance early to avoid last minute premiums."),
		"b.pdf": textDoc(repeated + "\n\nMore distinct material covering hotel loyalty programmes and their renewal windows each season."),
	}}
	e := testExtractor(parser)

	queryVec, err := embed.NewHashing(0).Embed(context.Background(), "organized receipts advice")
	if err != nil {
		t.Fatal(err)
	}

	sections := []types.RankedSection{
		{Document: "a.pdf", SectionTitle: "One", ImportanceRank: 1, PageNumber: 1},
		{Document: "b.pdf", SectionTitle: "Two", ImportanceRank: 2, PageNumber: 1},
	}

	var log bytes.Buffer
	got := e.Extract(context.Background(), root, sections, queryVec, &log)

	seen := 0
	for _, p := range got {
		if strings.Contains(p.RefinedText, "Identical advice") {
			seen++
		}
	}
	if seen != 1 {
		t.Errorf("repeated passage kept %d times, want exactly once; passages: %v", seen, got)
	}
}

func TestExtractCapsAtTopN(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "long.pdf"))

	paragraphs := []string{
		"Mountain trails reward early starts with cooler air and quieter paths before crowds arrive.",
		"Harbour restaurants serve grilled sardines alongside chilled white wine through summer evenings.",
		"Museum passes bundle entry fees and usually skip ticket queues during peak holiday weeks.",
		"Night trains between cities trade hotel costs for sleeper berths and arrive refreshed at dawn.",
		"Street markets open before sunrise when vendors unload produce and bargaining is easiest.",
		"Coastal cycling routes follow old rail corridors with gentle gradients suitable for families.",
		"Thermal baths require swim caps in certain pools and towels rent separately at the entrance.",
		"Vineyard tours finish with tastings where drivers receive grape juice instead of wine samples.",
		"Island ferries cut schedules sharply outside high season so departures need checking twice.",
	}
	parser := &fakeParser{docs: map[string]*layout.Document{
		"long.pdf": textDoc(strings.Join(paragraphs, "\n\n")),
	}}
	e := testExtractor(parser)

	sections := []types.RankedSection{
		{Document: "long.pdf", SectionTitle: "Everything", ImportanceRank: 1, PageNumber: 1},
	}

	var log bytes.Buffer
	got := e.Extract(context.Background(), root, sections, []float64{1}, &log)
	if len(got) > 5 {
		t.Errorf("Extract() kept %d passages, want at most 5", len(got))
	}
}
