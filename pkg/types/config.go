// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// EmbeddingConfig holds settings for the embedding backend.
type EmbeddingConfig struct {
	// Provider selects the embedder: "hashing" (local, deterministic)
	// or "openai" (any OpenAI-compatible embeddings endpoint).
	Provider string `json:"provider" yaml:"provider"`

	// Model is the model identifier sent to a remote provider.
	Model string `json:"model" yaml:"model"`

	// BaseURL is the API base for a remote provider
	// (e.g. "https://api.openai.com/v1" or an Ollama host).
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Dimension is the vector size of the local hashing embedder.
	Dimension int `json:"dimension" yaml:"dimension"`

	// Timeout is the HTTP timeout for remote embedding calls.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// MaxRetries bounds retries of rate-limited embedding calls.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// CachePath, when non-empty, enables the SQLite embedding cache at
	// the given path.
	CachePath string `json:"cache_path,omitempty" yaml:"cache_path,omitempty"`
}

// HeadingConfig holds the heading-detection thresholds. The detector is
// an OR of independent signals; a line is a heading candidate when any
// signal fires.
type HeadingConfig struct {
	// MedianRatio is the factor over the page median font size above
	// which a line's average font size signals a heading. The boundary
	// is exclusive: exactly MedianRatio times the median does not fire.
	MedianRatio float64 `json:"median_ratio" yaml:"median_ratio"`

	// MaxRatio is the factor of the page maximum font size at or above
	// which a line's average font size signals a heading. The boundary
	// is inclusive.
	MaxRatio float64 `json:"max_ratio" yaml:"max_ratio"`

	// MinWords and MaxWords bound the word count of a candidate line.
	MinWords int `json:"min_words" yaml:"min_words"`
	MaxWords int `json:"max_words" yaml:"max_words"`

	// MaxPeriods and MaxCommas filter out body-text lines by
	// punctuation density.
	MaxPeriods int `json:"max_periods" yaml:"max_periods"`
	MaxCommas  int `json:"max_commas" yaml:"max_commas"`

	// FallbackScanLines is how many leading plain-text lines are
	// scanned when the signal pass yields nothing for a page.
	FallbackScanLines int `json:"fallback_scan_lines" yaml:"fallback_scan_lines"`

	// FallbackMinChars and FallbackMinWords qualify a fallback title.
	FallbackMinChars int `json:"fallback_min_chars" yaml:"fallback_min_chars"`
	FallbackMinWords int `json:"fallback_min_words" yaml:"fallback_min_words"`

	// FallbackBodyChars rejects a fallback line that ends with a period
	// and is longer than this, to avoid truncated body sentences.
	FallbackBodyChars int `json:"fallback_body_chars" yaml:"fallback_body_chars"`
}

// RankingConfig holds settings for section ranking.
type RankingConfig struct {
	// TopSections is the maximum number of sections kept per request.
	TopSections int `json:"top_sections" yaml:"top_sections"`
}

// SubsectionConfig holds the passage extraction thresholds.
type SubsectionConfig struct {
	// TopPassages is the maximum number of passages kept per request.
	TopPassages int `json:"top_passages" yaml:"top_passages"`

	// MinParagraphChars drops blank-line-separated segments at or below
	// this length.
	MinParagraphChars int `json:"min_paragraph_chars" yaml:"min_paragraph_chars"`

	// MinLineChars drops lines at or below this length during
	// line-by-line accumulation.
	MinLineChars int `json:"min_line_chars" yaml:"min_line_chars"`

	// FlushAtChars closes an accumulating paragraph once its joined
	// length exceeds this.
	FlushAtChars int `json:"flush_at_chars" yaml:"flush_at_chars"`

	// MinKeptChars drops accumulated paragraphs at or below this length.
	MinKeptChars int `json:"min_kept_chars" yaml:"min_kept_chars"`

	// RefineMaxChars caps the refined passage length; sentence
	// accumulation stops at the first sentence that would exceed it.
	RefineMaxChars int `json:"refine_max_chars" yaml:"refine_max_chars"`

	// RefineMinChars drops refined passages at or below this length.
	RefineMinChars int `json:"refine_min_chars" yaml:"refine_min_chars"`

	// DedupOverlap is the token-set overlap fraction above which two
	// passages count as near-duplicates.
	DedupOverlap float64 `json:"dedup_overlap" yaml:"dedup_overlap"`

	// DedupMinChars gates the token-overlap test: only normalized texts
	// longer than this participate in it.
	DedupMinChars int `json:"dedup_min_chars" yaml:"dedup_min_chars"`
}

// PipelineConfig holds settings for a batch pipeline run.
type PipelineConfig struct {
	// InputDir contains one JSON request file per persona/task.
	InputDir string `json:"input_dir" yaml:"input_dir"`

	// DocsDir contains one folder of PDFs per request, named after the
	// request file's prefix.
	DocsDir string `json:"docs_dir" yaml:"docs_dir"`

	// ResultsDir receives one <prefix>.json result per request.
	ResultsDir string `json:"results_dir" yaml:"results_dir"`

	Heading    HeadingConfig    `json:"heading" yaml:"heading"`
	Ranking    RankingConfig    `json:"ranking" yaml:"ranking"`
	Subsection SubsectionConfig `json:"subsection" yaml:"subsection"`
	Embedding  EmbeddingConfig  `json:"embedding" yaml:"embedding"`
}

// DefaultPipelineConfig returns the pipeline defaults. The heading and
// subsection thresholds are tuned for recall: a false heading candidate
// is cheap because ranking discounts it, a missed heading cannot be
// recovered.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		InputDir:   "input",
		DocsDir:    "pdfs",
		ResultsDir: "output",
		Heading: HeadingConfig{
			MedianRatio:       1.1,
			MaxRatio:          0.9,
			MinWords:          1,
			MaxWords:          20,
			MaxPeriods:        3,
			MaxCommas:         5,
			FallbackScanLines: 10,
			FallbackMinChars:  10,
			FallbackMinWords:  2,
			FallbackBodyChars: 100,
		},
		Ranking: RankingConfig{TopSections: 5},
		Subsection: SubsectionConfig{
			TopPassages:       5,
			MinParagraphChars: 20,
			MinLineChars:      5,
			FlushAtChars:      150,
			MinKeptChars:      30,
			RefineMaxChars:    500,
			RefineMinChars:    15,
			DedupOverlap:      0.7,
			DedupMinChars:     20,
		},
		Embedding: EmbeddingConfig{
			Provider:   "hashing",
			Model:      "text-embedding-3-small",
			BaseURL:    "https://api.openai.com/v1",
			Dimension:  256,
			Timeout:    30 * time.Second,
			MaxRetries: 5,
		},
	}
}
