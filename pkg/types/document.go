// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SectionCandidate is a heading detected in a source document, before
// relevance ranking. Candidates are deduplicated per document by the
// pair (normalized title, page number).
type SectionCandidate struct {
	// Title is the heading text as it appears in the document.
	Title string `json:"title" yaml:"title"`

	// PageNumber is the 1-based page the heading was found on.
	PageNumber int `json:"page_number" yaml:"page_number"`

	// SourcePath is the path of the document the heading came from.
	SourcePath string `json:"source_document" yaml:"source_document"`
}

// RankedSection is a section selected as relevant to a persona request.
// ImportanceRank runs 1..N with no gaps; rank 1 is the most relevant.
type RankedSection struct {
	// Document is the basename of the source document.
	Document string `json:"document" yaml:"document"`

	// SectionTitle is the heading text of the selected section.
	SectionTitle string `json:"section_title" yaml:"section_title"`

	// ImportanceRank orders sections by relevance, starting at 1.
	ImportanceRank int `json:"importance_rank" yaml:"importance_rank"`

	// PageNumber is the 1-based page the section starts on.
	PageNumber int `json:"page_number" yaml:"page_number"`
}

// Passage is a refined text passage extracted from a ranked section.
// The similarity score used during selection is not part of the output.
type Passage struct {
	// Document is the basename of the source document.
	Document string `json:"document" yaml:"document"`

	// PageNumber is the 1-based page the passage was taken from.
	PageNumber int `json:"page_number" yaml:"page_number"`

	// RefinedText is the cleaned, sentence-bounded passage text.
	RefinedText string `json:"refined_text" yaml:"refined_text"`
}

// Metadata describes a pipeline run for one persona request.
type Metadata struct {
	// InputDocuments lists the basenames of every document found in the
	// request's document folder, whether or not it contributed a section.
	InputDocuments []string `json:"input_documents" yaml:"input_documents"`

	// Persona is the reader role used to bias relevance.
	Persona string `json:"persona" yaml:"persona"`

	// JobToBeDone is the task the persona is trying to accomplish.
	JobToBeDone string `json:"job_to_be_done" yaml:"job_to_be_done"`

	// ProcessingTimestamp is an RFC 3339 timestamp taken when the
	// result was assembled.
	ProcessingTimestamp string `json:"processing_timestamp" yaml:"processing_timestamp"`
}

// PipelineResult is the unit persisted per persona request.
type PipelineResult struct {
	Metadata           Metadata        `json:"metadata" yaml:"metadata"`
	ExtractedSections  []RankedSection `json:"extracted_sections" yaml:"extracted_sections"`
	SubsectionAnalysis []Passage       `json:"subsection_analysis" yaml:"subsection_analysis"`
}

// Request is a parsed persona request file.
type Request struct {
	// Persona is the reader role. Request files may give it as a plain
	// string or as an object with a "role" key.
	Persona string

	// Job is the job-to-be-done. Request files may give it under "job"
	// or "job_to_be_done", as a plain string or an object with a "task"
	// key. An absent job is the empty string.
	Job string
}
