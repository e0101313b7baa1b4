package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/kotae/internal/eval"
	"github.com/hyperjump/kotae/internal/models"
)

func sampleAnswer() *models.AnswerResult {
	return &models.AnswerResult{
		Query:      "how do I reset my password",
		Answer:     "Here are the steps:\n1. Open the password page\n2. Click the reset link",
		Confidence: 0.72,
		Warnings:   []models.Warning{models.WarningOutdated},
		Citations: []models.Citation{
			{DocID: "doc-001", ChunkID: "doc-001#000", Title: "Password Reset", Section: "Reset", Version: "2.0"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	cases := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"json", OutputJSON, false},
		{"yaml", "", true},
	}
	for _, tc := range cases {
		got, err := ParseFormat(tc.in)
		if tc.wantErr != (err != nil) {
			t.Errorf("ParseFormat(%q) error = %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestWriteAnswerText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAnswer(&buf, sampleAnswer(), OutputText); err != nil {
		t.Fatalf("WriteAnswer: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Here are the steps:",
		"Confidence: 0.72",
		"Warnings: outdated",
		"[1] Password Reset (doc-001) | section: Reset | version: 2.0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteAnswerJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAnswer(&buf, sampleAnswer(), OutputJSON); err != nil {
		t.Fatalf("WriteAnswer: %v", err)
	}
	var decoded models.AnswerResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Confidence != 0.72 || len(decoded.Citations) != 1 {
		t.Errorf("round-trip mismatch: %+v", decoded)
	}
}

func TestWriteEvalReport(t *testing.T) {
	report := &eval.Report{Passed: 2, Total: 3, Notes: []string{"q3: missing expected source doc-009"}}

	var buf bytes.Buffer
	if err := WriteEvalReport(&buf, report, OutputText); err != nil {
		t.Fatalf("WriteEvalReport: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Passed 2 of 3") || !strings.Contains(out, "doc-009") {
		t.Errorf("unexpected report output:\n%s", out)
	}
}
