package search

import "context"

// SearchType selects the ranking strategy for one search call.
type SearchType string

// Search types understood by the provider. BM25 and regex are built in;
// semantic and hybrid require a strategy to be plugged in through
// ProviderOptions.Strategies.
const (
	TypeBM25     SearchType = "bm25"
	TypeRegex    SearchType = "regex"
	TypeSemantic SearchType = "semantic"
	TypeHybrid   SearchType = "hybrid"
)

// Match is one ranked search hit.
type Match struct {
	// Name is the registered tool name.
	Name string `json:"name"`
	// Score is the relevance score assigned by the strategy.
	Score float64 `json:"score"`
	// MatchedTerms lists the query terms found in the document, in query
	// order. The regex strategy reports the matched fragment instead.
	MatchedTerms []string `json:"matched_terms,omitempty"`
}

// Matches is an ordered list of search hits, best first.
type Matches []Match

// Names returns the matched tool names in rank order.
func (m Matches) Names() []string {
	if len(m) == 0 {
		return nil
	}
	names := make([]string, len(m))
	for i, match := range m {
		names[i] = match.Name
	}
	return names
}

// Limit returns at most n leading matches. It returns m unchanged when n
// is negative or not smaller than the match count.
func (m Matches) Limit(n int) Matches {
	if n < 0 || n >= len(m) {
		return m
	}
	return m[:n]
}

// MinScore returns the matches scoring at least threshold, preserving
// order.
func (m Matches) MinScore(threshold float64) Matches {
	if len(m) == 0 {
		return m
	}
	kept := make(Matches, 0, len(m))
	for _, match := range m {
		if match.Score >= threshold {
			kept = append(kept, match)
		}
	}
	return kept
}

// Strategy ranks a corpus against a query. Implementations must be
// deterministic: identical (query, corpus) inputs return identical
// ordered results, with ties resolved by corpus order.
type Strategy interface {
	Rank(ctx context.Context, query string, c *Corpus) (Matches, error)
}
