// Package version parses product version tokens from free text and metadata.
//
// The token grammar is the one format contract shared between queries and chunk
// metadata: an optional leading "v"/"V", then one or two dot-separated
// non-negative integers ("2", "2.1", "v2.0").
package version

import (
	"regexp"
	"strings"
)

var tokenRE = regexp.MustCompile(`^[vV]?\d+(\.\d+)?$`)

// surrounding punctuation stripped before a word is tested against the grammar
const trimCutset = "()[]{}\"'.,;:!?"

// Valid reports whether token matches the version grammar.
func Valid(token string) bool {
	return tokenRE.MatchString(token)
}

// Normalize lowercases the token and strips the optional leading "v" so that
// "v2.0", "V2.0", and "2.0" all normalize to "2.0". Tokens that do not match
// the grammar normalize to the empty string (treated as "no version").
func Normalize(token string) string {
	if !Valid(token) {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(token), "v")
}

// Extract scans free text for the first word matching the version grammar and
// returns it normalized. The first occurrence wins; later or more specific
// tokens are ignored. Returns ("", false) when no token matches.
func Extract(text string) (string, bool) {
	for _, field := range strings.Fields(text) {
		tok := strings.Trim(field, trimCutset)
		if tok == "" {
			continue
		}
		if Valid(tok) {
			return Normalize(tok), true
		}
	}
	return "", false
}
