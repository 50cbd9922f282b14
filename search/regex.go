package search

import (
	"context"
	"regexp"
)

// RegexStrategy matches a case-insensitive pattern against each document's
// name and description. Every match scores 1.0 and results keep corpus
// order, so it acts as an exact-keyword filter rather than a ranking.
type RegexStrategy struct{}

// NewRegexStrategy returns the regex fallback strategy.
func NewRegexStrategy() *RegexStrategy {
	return &RegexStrategy{}
}

// Rank returns the documents whose name or description matches the query
// pattern. A query that does not compile as a regular expression is
// retried as a literal string, so inputs like "c++" still match.
func (s *RegexStrategy) Rank(_ context.Context, query string, c *Corpus) (Matches, error) {
	re, err := regexp.Compile("(?i)" + query)
	if err != nil {
		re = regexp.MustCompile("(?i)" + regexp.QuoteMeta(query))
	}

	var matches Matches
	for i := range c.Docs {
		doc := &c.Docs[i]
		if !re.MatchString(doc.Name) && !re.MatchString(doc.Description) {
			continue
		}
		fragment := re.FindString(doc.Name)
		if fragment == "" {
			fragment = re.FindString(doc.Description)
		}
		var matched []string
		if fragment != "" {
			matched = []string{fragment}
		}
		matches = append(matches, Match{
			Name:         doc.Name,
			Score:        1.0,
			MatchedTerms: matched,
		})
	}
	return matches, nil
}
