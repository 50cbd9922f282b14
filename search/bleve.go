package search

import (
	"context"
	"sort"
	"sync"

	"github.com/blevesearch/bleve/v2"
)

// DefaultNameBoost is the boost applied to name-field matches by
// BleveStrategy when BleveConfig.NameBoost is unset.
const DefaultNameBoost = 3.0

// BleveConfig customizes BleveStrategy field boosts and safety limits.
type BleveConfig struct {
	// NameBoost multiplies the score of matches in the tool name field.
	// Zero selects DefaultNameBoost.
	NameBoost float64

	// MaxDocs limits how many corpus documents are indexed (0 = all).
	MaxDocs int

	// MaxDocTextLen truncates document text before indexing (0 = no
	// truncation). Content beyond the limit cannot match.
	MaxDocTextLen int
}

// BleveStrategy ranks documents with a bleve in-memory index instead of
// the built-in BM25 statistics, trading exact score reproducibility for
// bleve's analyzers and field boosts. The index is cached by corpus
// fingerprint and rebuilt only when document content changes.
//
// Rank serializes callers; the expected corpus size keeps queries fast
// enough that this does not matter in practice.
type BleveStrategy struct {
	cfg BleveConfig

	mu          sync.Mutex
	index       bleve.Index
	fingerprint string
}

// NewBleveStrategy returns a strategy with the given configuration.
func NewBleveStrategy(cfg BleveConfig) *BleveStrategy {
	if cfg.NameBoost <= 0 {
		cfg.NameBoost = DefaultNameBoost
	}
	return &BleveStrategy{cfg: cfg}
}

// Rank queries the cached index, rebuilding it first when the corpus
// fingerprint changed. Matched terms are collected from hit locations and
// sorted for deterministic output.
func (s *BleveStrategy) Rank(ctx context.Context, query string, c *Corpus) (Matches, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := c.Docs
	if s.cfg.MaxDocs > 0 && len(docs) > s.cfg.MaxDocs {
		docs = docs[:s.cfg.MaxDocs]
	}
	if err := s.ensureIndex(docs); err != nil {
		return nil, err
	}

	nameQuery := bleve.NewMatchQuery(query)
	nameQuery.SetField("name")
	nameQuery.SetBoost(s.cfg.NameBoost)
	textQuery := bleve.NewMatchQuery(query)
	textQuery.SetField("text")

	req := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(nameQuery, textQuery))
	req.Size = len(docs)
	req.IncludeLocations = true

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, err
	}

	matches := make(Matches, 0, len(res.Hits))
	for _, hit := range res.Hits {
		seen := make(map[string]struct{})
		var terms []string
		for _, termLocations := range hit.Locations {
			for term := range termLocations {
				if _, dup := seen[term]; dup {
					continue
				}
				seen[term] = struct{}{}
				terms = append(terms, term)
			}
		}
		sort.Strings(terms)
		matches = append(matches, Match{
			Name:         hit.ID,
			Score:        hit.Score,
			MatchedTerms: terms,
		})
	}
	return matches, nil
}

// Close releases the cached index. The strategy may be reused afterwards;
// the next Rank rebuilds.
func (s *BleveStrategy) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return nil
	}
	err := s.index.Close()
	s.index = nil
	s.fingerprint = ""
	return err
}

// ensureIndex rebuilds the in-memory index when the document fingerprint
// differs from the cached one. Callers must hold s.mu.
func (s *BleveStrategy) ensureIndex(docs []Document) error {
	fp := Fingerprint(docs)
	if s.index != nil && s.fingerprint == fp {
		return nil
	}

	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return err
	}
	for _, doc := range docs {
		text := doc.Text
		if s.cfg.MaxDocTextLen > 0 && len(text) > s.cfg.MaxDocTextLen {
			text = text[:s.cfg.MaxDocTextLen]
		}
		if err := idx.Index(doc.Name, map[string]any{
			"name": doc.Name,
			"text": text,
		}); err != nil {
			idx.Close()
			return err
		}
	}

	if s.index != nil {
		s.index.Close()
	}
	s.index = idx
	s.fingerprint = fp
	return nil
}
