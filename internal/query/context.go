// Package query parses raw user queries into the structured form the ranking
// and answer layers consume: tokenized terms, synonym expansions, version
// mentions, negation cues, and an intent label.
package query

import (
	"strings"

	"github.com/hyperjump/kotae/internal/lexical"
	"github.com/hyperjump/kotae/internal/version"
)

// Context is the parsed form of a user query.
type Context struct {
	// Raw is the original query text.
	Raw string
	// Terms are the tokenized query terms, without synonym expansion.
	Terms []string
	// Expanded is Terms plus synonym-group members, for lexical matching.
	Expanded []string
	// Version is the normalized version mentioned in the query text, if any.
	Version string
	// DeclaredVersion is a normalized version supplied out of band, for
	// example from the request payload. It wins over Version.
	DeclaredVersion string
	// Negated is true when the query carries a negation cue.
	Negated bool
	// Intent is the classifier label, or "" when no classifier ran.
	Intent string
}

// Parse builds a Context from raw text. declaredVersion may be empty; clf may
// be nil, in which case Intent stays empty.
func Parse(raw, declaredVersion string, clf Classifier) *Context {
	qc := &Context{
		Raw:             strings.TrimSpace(raw),
		DeclaredVersion: version.Normalize(declaredVersion),
		Negated:         ContainsNegation(raw),
	}
	qc.Terms = lexical.Tokenize(qc.Raw)
	qc.Expanded = ExpandSynonyms(qc.Terms)
	if v, ok := version.Extract(qc.Raw); ok {
		qc.Version = v
	}
	if clf != nil {
		qc.Intent = clf.Classify(qc.Raw)
	}
	return qc
}

// EffectiveVersion returns the version the ranker should match against:
// the declared version when present, otherwise the one found in the text.
func (qc *Context) EffectiveVersion() string {
	if qc.DeclaredVersion != "" {
		return qc.DeclaredVersion
	}
	return qc.Version
}
