package search

import (
	"context"
	"math"
	"sort"
)

// Conventional BM25 parameter defaults.
const (
	DefaultK1 = 1.2
	DefaultB  = 0.75
)

// BM25Params tunes term-frequency saturation (K1) and document-length
// normalization (B). The zero value selects the conventional defaults.
type BM25Params struct {
	K1 float64
	B  float64
}

// BM25Strategy ranks documents with Okapi BM25 scoring over the corpus
// statistics. Only documents with a positive score are returned; equal
// scores keep corpus order, so repeated identical queries produce
// identical orderings.
type BM25Strategy struct {
	k1 float64
	b  float64
}

// NewBM25Strategy returns a BM25 strategy with the given parameters,
// substituting DefaultK1 and DefaultB for unset values.
func NewBM25Strategy(params BM25Params) *BM25Strategy {
	k1 := params.K1
	if k1 <= 0 {
		k1 = DefaultK1
	}
	b := params.B
	if b <= 0 {
		b = DefaultB
	}
	return &BM25Strategy{k1: k1, b: b}
}

// Rank scores every corpus document against the tokenized query and
// returns the matching documents, best first.
func (s *BM25Strategy) Rank(_ context.Context, query string, c *Corpus) (Matches, error) {
	terms := uniqueTerms(Tokenize(query))
	if len(terms) == 0 || len(c.Docs) == 0 {
		return nil, nil
	}

	matches := make(Matches, 0, len(c.Docs))
	for i := range c.Docs {
		var score float64
		var matched []string
		for _, term := range terms {
			tf := c.TermFreq[i][term]
			if tf == 0 {
				continue
			}
			matched = append(matched, term)
			score += s.idf(term, c) * s.termScore(tf, c.DocLen[i], c.AvgDocLen)
		}
		if score <= 0 {
			continue
		}
		matches = append(matches, Match{
			Name:         c.Docs[i].Name,
			Score:        score,
			MatchedTerms: matched,
		})
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Score > matches[b].Score
	})
	return matches, nil
}

// idf computes ln((N - df + 0.5) / (df + 0.5) + 1). The trailing +1 keeps
// the value positive even for terms present in most documents.
func (s *BM25Strategy) idf(term string, c *Corpus) float64 {
	n := float64(len(c.Docs))
	df := float64(c.DocFreq[term])
	return math.Log((n-df+0.5)/(df+0.5) + 1)
}

// termScore computes tf*(k1+1) / (tf + k1*(1 - b + b*dl/avgdl)).
func (s *BM25Strategy) termScore(tf, docLen int, avgDocLen float64) float64 {
	if avgDocLen == 0 {
		return 0
	}
	f := float64(tf)
	norm := 1 - s.b + s.b*float64(docLen)/avgDocLen
	return f * (s.k1 + 1) / (f + s.k1*norm)
}

// uniqueTerms removes duplicate query terms while preserving first
// occurrence order, so MatchedTerms report in the order the caller wrote
// them.
func uniqueTerms(terms []string) []string {
	if len(terms) < 2 {
		return terms
	}
	seen := make(map[string]struct{}, len(terms))
	unique := terms[:0]
	for _, term := range terms {
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		unique = append(unique, term)
	}
	return unique
}
