package search

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jonwraymond/tooldefer/registry"
)

// ProviderOptions configures a Provider. The zero value is usable: the
// built-in BM25 and regex strategies with default parameters.
type ProviderOptions struct {
	// BM25 tunes the built-in BM25 strategy.
	BM25 BM25Params

	// Strategies adds or replaces strategy table entries, keyed by search
	// type. This is how semantic and hybrid strategies plug in. Nil
	// entries are ignored.
	Strategies map[SearchType]Strategy
}

// Provider serves ranked tool searches over a registry's current
// contents. It holds the corpus behind an atomically-swapped immutable
// snapshot: readers see either the previous corpus or the fully rebuilt
// one, never a partial rebuild, and a corpus older than the registry
// version is rebuilt before it is ever used to answer a query.
type Provider struct {
	reg        *registry.Registry
	strategies map[SearchType]Strategy

	corpus    atomic.Pointer[Corpus]
	rebuildMu sync.Mutex
	// rebuilds counts corpus builds, for tests that assert snapshot reuse.
	rebuilds int
}

// NewProvider builds a provider over reg. The built-in BM25 and regex
// strategies are always registered; opts.Strategies adds or overrides
// entries.
func NewProvider(reg *registry.Registry, opts ProviderOptions) *Provider {
	p := &Provider{
		reg: reg,
		strategies: map[SearchType]Strategy{
			TypeBM25:  NewBM25Strategy(opts.BM25),
			TypeRegex: NewRegexStrategy(),
		},
	}
	for typ, strategy := range opts.Strategies {
		if strategy == nil {
			continue
		}
		p.strategies[typ] = strategy
	}
	return p
}

// Search ranks registered tools against query using the strategy selected
// by searchType and returns at most maxResults matches, best first. An
// empty searchType selects BM25. A query matching nothing returns an
// empty, non-error result.
func (p *Provider) Search(ctx context.Context, query string, maxResults int, searchType SearchType) (Matches, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query must not be empty", ErrInvalidQuery)
	}
	if maxResults <= 0 {
		return nil, fmt.Errorf("%w: max results must be positive, got %d", ErrInvalidArgument, maxResults)
	}
	if searchType == "" {
		searchType = TypeBM25
	}
	strategy, ok := p.strategies[searchType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSearchType, searchType)
	}

	matches, err := strategy.Rank(ctx, query, p.currentCorpus())
	if err != nil {
		return nil, err
	}
	return matches.Limit(maxResults), nil
}

// Strategy returns the strategy registered for typ, or ErrUnknownSearchType.
func (p *Provider) Strategy(typ SearchType) (Strategy, error) {
	strategy, ok := p.strategies[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSearchType, typ)
	}
	return strategy, nil
}

// Refresh rebuilds the corpus immediately instead of waiting for the next
// query to notice the registry changed.
func (p *Provider) Refresh() {
	p.rebuild()
}

// Corpus returns the current snapshot, rebuilding it first if the
// registry changed. The returned corpus is immutable and safe to share.
func (p *Provider) Corpus() *Corpus {
	return p.currentCorpus()
}

// Close releases resources held by strategies, such as in-memory bleve
// indexes. The provider must not be used after Close.
func (p *Provider) Close() error {
	var firstErr error
	for _, strategy := range p.strategies {
		closer, ok := strategy.(interface{ Close() error })
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// currentCorpus returns a corpus matching the registry's current version.
// Staleness is detected as errStaleCorpus and handled here by rebuilding;
// it never propagates to callers.
func (p *Provider) currentCorpus() *Corpus {
	c := p.corpus.Load()
	if err := p.checkFresh(c); err != nil {
		return p.rebuild()
	}
	return c
}

// checkFresh reports errStaleCorpus when c predates the registry's
// current version or was never built.
func (p *Provider) checkFresh(c *Corpus) error {
	if c == nil || c.Version != p.reg.Version() {
		return errStaleCorpus
	}
	return nil
}

// rebuild builds a corpus from a fresh registry snapshot and swaps it in.
// Rebuilds are serialized; concurrent readers keep the previous snapshot
// until the swap completes.
func (p *Provider) rebuild() *Corpus {
	p.rebuildMu.Lock()
	defer p.rebuildMu.Unlock()

	// Another goroutine may have rebuilt while this one waited.
	if c := p.corpus.Load(); p.checkFresh(c) == nil {
		return c
	}

	defs, version := p.reg.Snapshot()
	c := BuildCorpus(defs, version)
	p.corpus.Store(c)
	p.rebuilds++
	return c
}
