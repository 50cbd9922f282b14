package semantic

import (
	"context"
	"sort"

	"github.com/jonwraymond/tooldefer/search"
)

// DefaultAlpha is the lexical weight used when composing a hybrid
// strategy with conventional settings: 40% lexical, 60% semantic.
const DefaultAlpha = 0.4

// HybridStrategy blends a lexical strategy with a semantic one. The
// lexical contribution is rank-reciprocal (1/(rank+1)) rather than the
// raw BM25 score, which puts both signals on a comparable 0..1 scale;
// the final score is alpha*lexical + (1-alpha)*semantic. It implements
// [search.Strategy].
type HybridStrategy struct {
	lexical  search.Strategy
	semantic search.Strategy
	alpha    float64
}

// NewHybridStrategy combines lexical and semantic ranking with lexical
// weight alpha in [0, 1]. Both strategies must be non-nil.
func NewHybridStrategy(lexical, semantic search.Strategy, alpha float64) (*HybridStrategy, error) {
	if lexical == nil || semantic == nil {
		return nil, ErrInvalidHybridConfig
	}
	if alpha < 0 || alpha > 1 {
		return nil, ErrInvalidHybridConfig
	}
	return &HybridStrategy{lexical: lexical, semantic: semantic, alpha: alpha}, nil
}

// Rank runs both component strategies and merges their results by tool
// name. A tool found by either component appears in the output; ties
// keep corpus order. Matched terms come from the lexical component.
func (s *HybridStrategy) Rank(ctx context.Context, query string, c *search.Corpus) (search.Matches, error) {
	lexical, err := s.lexical.Rank(ctx, query, c)
	if err != nil {
		return nil, err
	}
	semantic, err := s.semantic.Rank(ctx, query, c)
	if err != nil {
		return nil, err
	}

	scores := make(map[string]float64, len(lexical)+len(semantic))
	terms := make(map[string][]string, len(lexical))
	for rank, m := range lexical {
		scores[m.Name] += s.alpha / float64(rank+1)
		terms[m.Name] = m.MatchedTerms
	}
	for _, m := range semantic {
		scores[m.Name] += (1 - s.alpha) * m.Score
	}

	// Walk the corpus so equal scores fall back to insertion order.
	matches := make(search.Matches, 0, len(scores))
	for i := range c.Docs {
		name := c.Docs[i].Name
		score, found := scores[name]
		if !found {
			continue
		}
		matches = append(matches, search.Match{
			Name:         name,
			Score:        score,
			MatchedTerms: terms[name],
		})
	}
	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Score > matches[b].Score
	})
	return matches, nil
}
