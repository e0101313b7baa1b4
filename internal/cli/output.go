// Package cli provides output helpers for the kotae command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/kotae/internal/eval"
	"github.com/hyperjump/kotae/internal/models"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseFormat maps a -output flag value to an OutputFormat.
func ParseFormat(s string) (OutputFormat, error) {
	switch s {
	case "", "text":
		return OutputText, nil
	case "json":
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

// WriteAnswer writes an answer result to w in the given format.
func WriteAnswer(w io.Writer, res *models.AnswerResult, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	writeAnswerText(w, res)
	return nil
}

func writeAnswerText(w io.Writer, res *models.AnswerResult) {
	fmt.Fprintf(w, "\n%s\n", res.Answer)
	fmt.Fprintf(w, "\nConfidence: %.2f\n", res.Confidence)
	if len(res.Warnings) > 0 {
		fmt.Fprintf(w, "Warnings: %s\n", strings.Join(warningStrings(res.Warnings), ", "))
	}
	if len(res.Citations) > 0 {
		fmt.Fprintln(w, "\nSources:")
		for i, c := range res.Citations {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, c.String())
		}
	}
	fmt.Fprintln(w)
}

func warningStrings(warnings []models.Warning) []string {
	out := make([]string, len(warnings))
	for i, warn := range warnings {
		out[i] = string(warn)
	}
	return out
}

// WriteEvalReport writes an evaluation report to w in the given format.
func WriteEvalReport(w io.Writer, report *eval.Report, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	fmt.Fprintf(w, "\nPassed %d of %d queries\n", report.Passed, report.Total)
	for _, note := range report.Notes {
		fmt.Fprintf(w, "  - %s\n", note)
	}
	fmt.Fprintln(w)
	return nil
}
