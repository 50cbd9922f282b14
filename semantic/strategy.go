package semantic

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/jonwraymond/tooldefer/search"
)

// Error values for consistent error handling by callers.
var (
	// ErrInvalidEmbedder indicates a nil embedder where one is required.
	ErrInvalidEmbedder = errors.New("invalid embedder")

	// ErrInvalidHybridConfig indicates a hybrid strategy built with a nil
	// component strategy or a weight outside [0, 1].
	ErrInvalidHybridConfig = errors.New("invalid hybrid configuration")
)

// EmbeddingStrategy ranks documents by cosine similarity between the
// query embedding and each document's embedding. It implements
// [search.Strategy].
//
// Document vectors are cached by corpus fingerprint, so a catalog that
// has not changed costs one query embedding per call rather than a full
// re-embed of every tool.
type EmbeddingStrategy struct {
	embedder Embedder

	mu          sync.Mutex
	fingerprint string
	vectors     [][]float32
}

// NewEmbeddingStrategy returns a strategy backed by embedder. A nil
// embedder is reported as ErrInvalidEmbedder on the first Rank call.
func NewEmbeddingStrategy(embedder Embedder) *EmbeddingStrategy {
	return &EmbeddingStrategy{embedder: embedder}
}

// Rank embeds the query, brings the document vectors up to date, and
// returns documents with positive similarity, best first. Ties keep
// corpus order. Matched terms are not reported: similarity is not a
// term-level signal.
func (s *EmbeddingStrategy) Rank(ctx context.Context, query string, c *search.Corpus) (search.Matches, error) {
	if s.embedder == nil {
		return nil, ErrInvalidEmbedder
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	vectors, err := s.documentVectors(ctx, c)
	if err != nil {
		return nil, err
	}

	matches := make(search.Matches, 0, len(c.Docs))
	for i := range c.Docs {
		score := cosineSimilarity(queryVec, vectors[i])
		if score <= 0 {
			continue
		}
		matches = append(matches, search.Match{Name: c.Docs[i].Name, Score: score})
	}
	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Score > matches[b].Score
	})
	return matches, nil
}

// documentVectors returns cached embeddings for the corpus documents,
// re-embedding only when the corpus fingerprint changed. The returned
// slice is never mutated after caching, so it is safe to read without
// the lock.
func (s *EmbeddingStrategy) documentVectors(ctx context.Context, c *search.Corpus) ([][]float32, error) {
	fp := search.Fingerprint(c.Docs)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vectors != nil && s.fingerprint == fp {
		return s.vectors, nil
	}

	vectors := make([][]float32, len(c.Docs))
	for i := range c.Docs {
		vec, err := s.embedder.Embed(ctx, c.Docs[i].Text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	s.fingerprint = fp
	s.vectors = vectors
	return vectors, nil
}
