package search

import (
	"strings"
	"unicode"
)

// stopWords is the fixed set of terms dropped during tokenization, the
// classic Lucene English list. Keeping the set fixed keeps scores
// reproducible across runs.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "but": {}, "by": {}, "for": {}, "if": {}, "in": {},
	"into": {}, "is": {}, "it": {}, "no": {}, "not": {}, "of": {},
	"on": {}, "or": {}, "such": {}, "that": {}, "the": {}, "their": {},
	"then": {}, "there": {}, "these": {}, "they": {}, "this": {},
	"to": {}, "was": {}, "will": {}, "with": {},
}

// Tokenize lowercases text, splits it on non-alphanumeric boundaries, and
// drops stop words. No stemming is applied: every returned token is a
// literal lowercase substring of the input, so matched terms can be shown
// to a caller as-is.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := fields[:0]
	for _, field := range fields {
		if _, stop := stopWords[field]; stop {
			continue
		}
		tokens = append(tokens, field)
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}
