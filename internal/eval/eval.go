// Package eval runs a fixture of test queries through the full answer
// pipeline and reports how many meet their expectations.
package eval

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/hyperjump/kotae/internal/engine"
	"github.com/hyperjump/kotae/internal/models"
)

// TestQuery is one evaluation case: the query to run, the source ids at least
// one citation must come from, and substrings the answer must contain.
type TestQuery struct {
	ID                     string   `json:"id"`
	Query                  string   `json:"query"`
	ExpectedSources        []string `json:"expected_sources"`
	ExpectedAnswerContains []string `json:"expected_answer_contains"`
}

type testQueriesFile struct {
	TestQueries []TestQuery `json:"test_queries"`
}

// Load reads test queries from a JSON file.
func Load(path string) ([]TestQuery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read test queries: %w", err)
	}
	var file testQueriesFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse test queries: %w", err)
	}
	return file.TestQueries, nil
}

// Report summarizes one evaluation run.
type Report struct {
	Passed int      `json:"passed"`
	Total  int      `json:"total"`
	Notes  []string `json:"notes,omitempty"`
}

// Run executes every query and checks its expectations: a citation from one
// of the expected source documents, and the expected substrings in the answer
// body (case-insensitive).
func Run(ctx context.Context, eng *engine.Engine, queries []TestQuery, topK int) (*Report, error) {
	report := &Report{Total: len(queries)}
	for _, tq := range queries {
		res, err := eng.Answer(ctx, &models.AnswerQuery{Query: tq.Query, TopK: topK})
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", tq.ID, err)
		}

		citationOK := len(tq.ExpectedSources) == 0
		for _, c := range res.Citations {
			for _, want := range tq.ExpectedSources {
				if c.DocID == want {
					citationOK = true
				}
			}
		}

		containsOK := true
		lowerAnswer := strings.ToLower(res.Answer)
		for _, term := range tq.ExpectedAnswerContains {
			if !strings.Contains(lowerAnswer, strings.ToLower(term)) {
				containsOK = false
			}
		}

		if citationOK && containsOK {
			report.Passed++
		} else {
			report.Notes = append(report.Notes, fmt.Sprintf(
				"%s: citation_ok=%t contains_ok=%t confidence=%.2f warnings=%v",
				tq.ID, citationOK, containsOK, res.Confidence, res.Warnings))
		}
	}
	return report, nil
}
