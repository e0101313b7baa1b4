package query

import (
	"strings"

	"github.com/hyperjump/kotae/internal/lexical"
)

// synonymGroups maps a canonical term to its alternate spellings. When a query
// mentions any member, the whole group joins the expanded term set.
var synonymGroups = map[string][]string{
	"login":  {"sign-in", "sign in", "log in", "signin"},
	"sync":   {"synchronization", "synchronise", "synchronize"},
	"folder": {"directory"},
	"2fa":    {"two-factor", "two factor", "multi-factor", "mfa"},
}

// negationCues are phrases that flip the sense of a statement. Detection runs
// on raw lowercased text because contractions do not survive tokenization.
var negationCues = []string{
	"not ", "not.", " no ", "isn't", "cannot", "can't", "won't", "don't",
	"doesn't", "aren't", "unable", "without",
}

// ExpandSynonyms returns terms plus every member of any synonym group a term
// belongs to. Multi-word synonyms contribute their individual tokens. The
// returned slice keeps the input order, with expansions appended.
func ExpandSynonyms(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	for _, t := range terms {
		group := lookupGroup(t)
		if group == "" {
			continue
		}
		for _, member := range append([]string{group}, synonymGroups[group]...) {
			for _, tok := range lexical.Tokenize(member) {
				if !seen[tok] {
					seen[tok] = true
					out = append(out, tok)
				}
			}
		}
	}
	return out
}

// lookupGroup returns the canonical key whose group contains term, or "".
func lookupGroup(term string) string {
	for key, members := range synonymGroups {
		if term == key {
			return key
		}
		for _, m := range members {
			for _, tok := range lexical.Tokenize(m) {
				if term == tok {
					return key
				}
			}
		}
	}
	return ""
}

// SharesSynonymGroup reports whether text mentions any member of a synonym
// group that the given terms also touch. Used to reward chunks that answer a
// query through an alternate spelling.
func SharesSynonymGroup(terms []string, text string) bool {
	groups := make(map[string]bool)
	for _, t := range terms {
		if g := lookupGroup(t); g != "" {
			groups[g] = true
		}
	}
	if len(groups) == 0 {
		return false
	}
	lower := strings.ToLower(text)
	for g := range groups {
		for _, member := range append([]string{g}, synonymGroups[g]...) {
			if strings.Contains(lower, member) {
				return true
			}
		}
	}
	return false
}

// ContainsNegation reports whether text carries a negation cue.
func ContainsNegation(text string) bool {
	lower := " " + strings.ToLower(text) + " "
	for _, cue := range negationCues {
		if strings.Contains(lower, cue) {
			return true
		}
	}
	return false
}
