package lexical

import (
	"regexp"
	"strings"
)

var wordRE = regexp.MustCompile(`[a-z0-9_]+`)

// stopwords is deliberately small: only glue words that carry no retrieval
// signal for support queries. Terms like "how" and "not" are kept because
// they matter downstream (intent, negation).
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {},
	"and": {}, "or": {},
	"is": {}, "are": {}, "was": {}, "be": {},
	"to": {}, "of": {}, "in": {}, "on": {}, "at": {}, "for": {}, "with": {},
	"it": {}, "this": {}, "that": {},
	"i": {}, "my": {}, "your": {},
	"do": {}, "does": {},
}

// Tokenize applies the fixed corpus tokenization: lowercase, strip
// punctuation, split on word boundaries, drop stopwords.
func Tokenize(text string) []string {
	raw := wordRE.FindAllString(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if _, stop := stopwords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}
