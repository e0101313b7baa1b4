package models

import "fmt"

// Warning is an edge-case flag attached to an answer. Flags are independent
// and not mutually exclusive.
type Warning string

const (
	// WarningInsufficient means no candidate cleared the relevance floor.
	WarningInsufficient Warning = "insufficient_evidence"
	// WarningConflicting means selected chunks disagree on the same topic.
	WarningConflicting Warning = "conflicting_sources"
	// WarningOutdated means the top chunk is stale and newer same-topic material
	// exists lower in the ranking.
	WarningOutdated Warning = "outdated"
	// WarningVersionMismatch means the query names a version the top chunk
	// does not cover.
	WarningVersionMismatch Warning = "version_mismatch"
)

// BoostEntry records one applied score adjustment for traceability.
type BoostEntry struct {
	Name   string  `json:"name"`
	Before float64 `json:"before"`
	After  float64 `json:"after"`
}

// Candidate is a chunk plus retrieval-time scores. Candidates are created
// fresh per query and discarded after the answer is composed.
type Candidate struct {
	Chunk *Chunk `json:"chunk"`
	// SemanticScore is the raw similarity from the semantic adapter ([0,1]).
	SemanticScore float64 `json:"semantic_score"`
	// LexicalScore is the raw BM25 score (unbounded, non-negative).
	LexicalScore float64 `json:"lexical_score"`
	// SemanticNorm and LexicalNorm are min-max normalized over the result set.
	SemanticNorm float64 `json:"semantic_norm"`
	LexicalNorm  float64 `json:"lexical_norm"`
	// FusedScore is the weighted combination after boosts.
	FusedScore float64 `json:"fused_score"`
	// BoostLog is the ordered sequence of applied adjustments.
	BoostLog []BoostEntry `json:"boost_log,omitempty"`
}

// Citation points at one selected chunk.
type Citation struct {
	Title   string `json:"title"`
	ChunkID string `json:"chunk_id"`
	DocID   string `json:"doc_id"`
	Section string `json:"section,omitempty"`
	Version string `json:"version,omitempty"`
}

// String renders the citation in the fixed format
// "{title} ({doc_id}) | section: {section|-} | version: {version|-}".
func (c Citation) String() string {
	return fmt.Sprintf("%s (%s) | section: %s | version: %s",
		c.Title, c.DocID, orDash(c.Section), orDash(c.Version))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// AnswerResult is the final output of the answer pipeline.
type AnswerResult struct {
	Query      string     `json:"query"`
	Answer     string     `json:"answer"`
	Citations  []Citation `json:"citations"`
	Confidence float64    `json:"confidence"`
	Warnings   []Warning  `json:"warnings,omitempty"`
}

// HasWarning reports whether w is present in the result's warning set.
func (r *AnswerResult) HasWarning(w Warning) bool {
	for _, have := range r.Warnings {
		if have == w {
			return true
		}
	}
	return false
}
