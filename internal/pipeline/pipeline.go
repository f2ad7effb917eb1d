// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates the batch run: it discovers persona
// request files, runs heading extraction, ranking, and subsection
// extraction per request, and persists one result file per request.
// Every unit of work (request, document, section) has its own failure
// boundary; nothing aborts sibling units.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/Mihir205/Challenge-1b/internal/embed"
	"github.com/Mihir205/Challenge-1b/internal/heading"
	"github.com/Mihir205/Challenge-1b/internal/layout"
	"github.com/Mihir205/Challenge-1b/internal/ranking"
	"github.com/Mihir205/Challenge-1b/internal/subsection"
	"github.com/Mihir205/Challenge-1b/pkg/types"
)

const summaryFile = "summary.yaml"

// Runner executes the pipeline over a directory of request files.
type Runner struct {
	parser   layout.Parser
	embedder embed.Embedder
	cfg      types.PipelineConfig

	headings    *heading.Extractor
	ranker      *ranking.Ranker
	subsections *subsection.Extractor
}

// NewRunner wires the pipeline stages. The embedding model is injected
// once and shared read-only by ranking and subsection extraction.
func NewRunner(parser layout.Parser, embedder embed.Embedder, cfg types.PipelineConfig) *Runner {
	return &Runner{
		parser:      parser,
		embedder:    embedder,
		cfg:         cfg,
		headings:    heading.NewExtractor(cfg.Heading),
		ranker:      ranking.NewRanker(embedder, cfg.Ranking),
		subsections: subsection.NewExtractor(parser, embedder, cfg.Subsection),
	}
}

// RequestOutcome records how one request file fared.
type RequestOutcome struct {
	// Request is the request file's basename.
	Request string `json:"request" yaml:"request"`

	// Status is "processed", "skipped", or "failed".
	Status string `json:"status" yaml:"status"`

	// Detail explains a skip or failure.
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`

	// Sections and Passages count the persisted result's entries.
	Sections int `json:"sections" yaml:"sections"`
	Passages int `json:"passages" yaml:"passages"`
}

// RunSummary holds counts from a batch run.
type RunSummary struct {
	Processed int              `json:"processed" yaml:"processed"`
	Skipped   int              `json:"skipped" yaml:"skipped"`
	Failed    int              `json:"failed" yaml:"failed"`
	Requests  []RequestOutcome `json:"requests" yaml:"requests"`
}

// Total returns the number of requests seen.
func (s RunSummary) Total() int {
	return s.Processed + s.Skipped + s.Failed
}

// HasFailures reports whether any requests failed.
func (s RunSummary) HasFailures() bool {
	return s.Failed > 0
}

// Run processes every request file in the input directory, writing one
// result per request to the results directory and a summary.yaml after
// the batch. Per-request progress lines go to w.
func (r *Runner) Run(ctx context.Context, w io.Writer) (RunSummary, error) {
	requestFiles, err := filepath.Glob(filepath.Join(r.cfg.InputDir, "*.json"))
	if err != nil {
		return RunSummary{}, fmt.Errorf("listing request files: %w", err)
	}

	var summary RunSummary
	if len(requestFiles) == 0 {
		fmt.Fprintf(w, "no request files found in %s\n", r.cfg.InputDir)
		return summary, nil
	}

	for _, reqFile := range requestFiles {
		outcome := r.processRequest(ctx, reqFile, w)
		switch outcome.Status {
		case "processed":
			summary.Processed++
		case "skipped":
			summary.Skipped++
		default:
			summary.Failed++
		}
		summary.Requests = append(summary.Requests, outcome)
	}

	fmt.Fprintf(w, "\nBatch summary: %d processed, %d skipped, %d failed (total: %d)\n",
		summary.Processed, summary.Skipped, summary.Failed, summary.Total())

	if err := r.writeSummary(summary); err != nil {
		fmt.Fprintf(w, "warning: could not write %s: %v\n", summaryFile, err)
	}
	return summary, nil
}

// processRequest runs the full three-stage pipeline for one request
// file. Skips and failures are local to the request.
func (r *Runner) processRequest(ctx context.Context, reqFile string, w io.Writer) RequestOutcome {
	base := filepath.Base(reqFile)
	outcome := RequestOutcome{Request: base}

	fail := func(detail string) RequestOutcome {
		fmt.Fprintf(w, "failed  %s: %s\n", base, detail)
		outcome.Status = "failed"
		outcome.Detail = detail
		return outcome
	}
	skip := func(detail string) RequestOutcome {
		fmt.Fprintf(w, "skipped %s: %s\n", base, detail)
		outcome.Status = "skipped"
		outcome.Detail = detail
		return outcome
	}

	data, err := os.ReadFile(reqFile)
	if err != nil {
		return fail(fmt.Sprintf("reading request: %v", err))
	}
	req, err := ParseRequest(data)
	if err != nil {
		return fail(err.Error())
	}

	prefix := strings.TrimSuffix(base, filepath.Ext(base))
	docFolder := filepath.Join(r.cfg.DocsDir, prefix)
	if info, err := os.Stat(docFolder); err != nil || !info.IsDir() {
		return skip(fmt.Sprintf("document folder not found: %s", docFolder))
	}

	pdfFiles, err := filepath.Glob(filepath.Join(docFolder, "*.pdf"))
	if err != nil || len(pdfFiles) == 0 {
		return skip(fmt.Sprintf("no documents found in %s", docFolder))
	}

	queryVec, err := r.embedder.Embed(ctx, embed.QueryText(req.Persona, req.Job))
	if err != nil {
		return fail(fmt.Sprintf("embedding query: %v", err))
	}

	var candidates []types.SectionCandidate
	for _, pdfPath := range pdfFiles {
		doc, err := r.parser.Parse(pdfPath)
		if err != nil {
			fmt.Fprintf(w, "skipped document %s: %v\n", filepath.Base(pdfPath), err)
			continue
		}
		candidates = append(candidates, r.headings.Extract(doc)...)
	}
	if len(candidates) == 0 {
		return skip("no sections extracted")
	}

	ranked, err := r.ranker.Rank(ctx, candidates, queryVec)
	if err != nil {
		return fail(fmt.Sprintf("ranking sections: %v", err))
	}

	passages := r.subsections.Extract(ctx, docFolder, ranked, queryVec, w)

	result := types.PipelineResult{
		Metadata: types.Metadata{
			InputDocuments:      basenames(pdfFiles),
			Persona:             req.Persona,
			JobToBeDone:         req.Job,
			ProcessingTimestamp: time.Now().Format(time.RFC3339),
		},
		ExtractedSections:  ranked,
		SubsectionAnalysis: passages,
	}

	outPath := filepath.Join(r.cfg.ResultsDir, prefix+".json")
	if err := writeResult(outPath, result); err != nil {
		return fail(fmt.Sprintf("writing result: %v", err))
	}

	fmt.Fprintf(w, "processed %s -> %s (%d sections, %d passages)\n",
		base, outPath, len(ranked), len(passages))
	outcome.Status = "processed"
	outcome.Sections = len(ranked)
	outcome.Passages = len(passages)
	return outcome
}

// writeResult persists a result as indented UTF-8 JSON.
func writeResult(path string, result types.PipelineResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating results directory: %w", err)
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// writeSummary records the batch outcome next to the results.
func (r *Runner) writeSummary(summary RunSummary) error {
	if err := os.MkdirAll(r.cfg.ResultsDir, 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(summary)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(r.cfg.ResultsDir, summaryFile), data, 0o644)
}

func basenames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}
