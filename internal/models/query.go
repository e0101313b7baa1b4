package models

import (
	"fmt"
	"strings"
)

// TopK bounds. DefaultTopK fills an unset request; MaxTopK is the hard
// protocol cap, which configuration may lower but never raise.
const (
	DefaultTopK = 6
	MaxTopK     = 20
)

// AnswerQuery is a question posed to the answer pipeline.
type AnswerQuery struct {
	Query string `json:"query"`
	// TopK is the number of candidates the re-ranker keeps. Defaults to 6.
	TopK int `json:"top_k,omitempty"`
	// Version is an optional caller-declared product version context.
	// It takes precedence over any version token extracted from the query text.
	Version string `json:"version,omitempty"`
}

// Validate ensures the query has valid fields and sets defaults.
func (q *AnswerQuery) Validate() error {
	if strings.TrimSpace(q.Query) == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if q.TopK <= 0 {
		q.TopK = DefaultTopK
	}
	if q.TopK > MaxTopK {
		q.TopK = MaxTopK
	}
	return nil
}
