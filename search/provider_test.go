package search

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/jonwraymond/tooldefer/registry"
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.NewRegistry()
	for _, result := range reg.RegisterMany(testDefinitions()) {
		if result.Err != nil {
			t.Fatalf("register %s: %v", result.Name, result.Err)
		}
	}
	return reg
}

func TestProvider_Search(t *testing.T) {
	p := NewProvider(testRegistry(t), ProviderOptions{})

	matches, err := p.Search(context.Background(), "live streaming event", 5, TypeBM25)
	if err != nil {
		t.Fatalf("Search error = %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("no matches for a relevant query")
	}
	for _, m := range matches {
		if m.Name == "get_revenue_report" {
			t.Errorf("irrelevant tool matched: %v", m)
		}
	}
}

func TestProvider_EmptyQuery(t *testing.T) {
	p := NewProvider(testRegistry(t), ProviderOptions{})

	for _, query := range []string{"", "   ", "\t\n"} {
		if _, err := p.Search(context.Background(), query, 5, TypeBM25); !errors.Is(err, ErrInvalidQuery) {
			t.Errorf("Search(%q) error = %v, want ErrInvalidQuery", query, err)
		}
	}
}

func TestProvider_InvalidMaxResults(t *testing.T) {
	p := NewProvider(testRegistry(t), ProviderOptions{})

	for _, limit := range []int{0, -1} {
		if _, err := p.Search(context.Background(), "event", limit, TypeBM25); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Search(limit=%d) error = %v, want ErrInvalidArgument", limit, err)
		}
	}
}

func TestProvider_UnknownSearchType(t *testing.T) {
	p := NewProvider(testRegistry(t), ProviderOptions{})

	if _, err := p.Search(context.Background(), "event", 5, SearchType("bogus")); !errors.Is(err, ErrUnknownSearchType) {
		t.Errorf("error = %v, want ErrUnknownSearchType", err)
	}
	// Semantic is known but not plugged in here.
	if _, err := p.Search(context.Background(), "event", 5, TypeSemantic); !errors.Is(err, ErrUnknownSearchType) {
		t.Errorf("error = %v, want ErrUnknownSearchType for unplugged semantic", err)
	}
}

func TestProvider_ZeroMatchesIsNotAnError(t *testing.T) {
	p := NewProvider(testRegistry(t), ProviderOptions{})

	matches, err := p.Search(context.Background(), "zzzznotaword", 5, TypeBM25)
	if err != nil {
		t.Fatalf("Search error = %v, want nil for zero matches", err)
	}
	if len(matches) != 0 {
		t.Errorf("matches = %v, want empty", matches)
	}
}

func TestProvider_TruncatesToMaxResults(t *testing.T) {
	reg := registry.NewRegistry()
	for i := 0; i < 10; i++ {
		def := registry.NewDefinition(fmt.Sprintf("tool_%d", i), "shared stream keyword", nil, nil, nil)
		if _, err := reg.Register(def); err != nil {
			t.Fatal(err)
		}
	}
	p := NewProvider(reg, ProviderOptions{})

	matches, err := p.Search(context.Background(), "stream", 3, TypeBM25)
	if err != nil {
		t.Fatalf("Search error = %v", err)
	}
	if len(matches) != 3 {
		t.Errorf("matches = %d, want 3", len(matches))
	}
}

func TestProvider_DefaultsToBM25(t *testing.T) {
	p := NewProvider(testRegistry(t), ProviderOptions{})

	typed, err := p.Search(context.Background(), "streaming event", 5, TypeBM25)
	if err != nil {
		t.Fatal(err)
	}
	untyped, err := p.Search(context.Background(), "streaming event", 5, "")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(typed, untyped) {
		t.Errorf("empty search type diverged from bm25:\n%v\n%v", typed, untyped)
	}
}

func TestProvider_RebuildsAfterReplacement(t *testing.T) {
	reg := registry.NewRegistry()
	def := registry.NewDefinition("fetch_data", "Queries the warehouse for nightly exports", nil, nil, nil)
	if _, err := reg.Register(def); err != nil {
		t.Fatal(err)
	}
	p := NewProvider(reg, ProviderOptions{})

	matches, err := p.Search(context.Background(), "warehouse", 5, TypeBM25)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Fatalf("matches before replacement = %d, want 1", len(matches))
	}

	// Re-register under the same name with a different description. The
	// old description's terms must stop matching without any explicit
	// refresh call.
	replacement := registry.NewDefinition("fetch_data", "Streams rows from the primary database", nil, nil, nil)
	if _, err := reg.Register(replacement); err != nil {
		t.Fatal(err)
	}

	matches, err = p.Search(context.Background(), "warehouse", 5, TypeBM25)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Errorf("stale match after replacement: %v", matches)
	}

	matches, err = p.Search(context.Background(), "database", 5, TypeBM25)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Errorf("replacement description not matched, matches = %v", matches)
	}
}

func TestProvider_CorpusReusedAcrossQueries(t *testing.T) {
	p := NewProvider(testRegistry(t), ProviderOptions{})

	for i := 0; i < 5; i++ {
		if _, err := p.Search(context.Background(), "event", 5, TypeBM25); err != nil {
			t.Fatal(err)
		}
	}
	if p.rebuilds != 1 {
		t.Errorf("rebuilds after repeated queries = %d, want 1", p.rebuilds)
	}
}

func TestProvider_StalenessIsInternal(t *testing.T) {
	reg := testRegistry(t)
	p := NewProvider(reg, ProviderOptions{})

	// Before any build the corpus is stale by definition.
	if err := p.checkFresh(p.corpus.Load()); !errors.Is(err, errStaleCorpus) {
		t.Errorf("checkFresh on empty provider = %v, want errStaleCorpus", err)
	}

	// A registration after a build makes the snapshot stale again, but
	// Search must absorb that and answer from a fresh corpus.
	p.Refresh()
	if _, err := reg.Register(registry.NewDefinition("stop_event", "Stop a running event", nil, nil, nil)); err != nil {
		t.Fatal(err)
	}
	if err := p.checkFresh(p.corpus.Load()); !errors.Is(err, errStaleCorpus) {
		t.Errorf("checkFresh after registration = %v, want errStaleCorpus", err)
	}

	matches, err := p.Search(context.Background(), "stop", 5, TypeBM25)
	if err != nil {
		t.Fatalf("Search error = %v, staleness must never surface", err)
	}
	if len(matches) != 1 || matches[0].Name != "stop_event" {
		t.Errorf("matches = %v, want the newly registered tool", matches.Names())
	}
}

func TestProvider_CustomStrategy(t *testing.T) {
	fixed := strategyFunc(func(_ context.Context, _ string, c *Corpus) (Matches, error) {
		if len(c.Docs) == 0 {
			return nil, nil
		}
		return Matches{{Name: c.Docs[0].Name, Score: 42}}, nil
	})
	p := NewProvider(testRegistry(t), ProviderOptions{
		Strategies: map[SearchType]Strategy{TypeSemantic: fixed},
	})

	matches, err := p.Search(context.Background(), "anything", 5, TypeSemantic)
	if err != nil {
		t.Fatalf("Search error = %v", err)
	}
	if len(matches) != 1 || matches[0].Score != 42 {
		t.Errorf("matches = %v, want the plugged strategy's result", matches)
	}
}

func TestProvider_ConcurrentSearches(t *testing.T) {
	reg := testRegistry(t)
	p := NewProvider(reg, ProviderOptions{})

	var wg sync.WaitGroup
	errCh := make(chan error, 30)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.Search(context.Background(), "event", 5, TypeBM25); err != nil {
				errCh <- err
			}
		}()
	}
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			def := registry.NewDefinition(fmt.Sprintf("extra_%d", n), "Concurrently registered tool", nil, nil, nil)
			if _, err := reg.Register(def); err != nil {
				errCh <- err
			}
		}(i)
	}

	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Errorf("concurrent operation error: %v", err)
	}
}

// strategyFunc adapts a function to the Strategy interface for tests.
type strategyFunc func(ctx context.Context, query string, c *Corpus) (Matches, error)

func (f strategyFunc) Rank(ctx context.Context, query string, c *Corpus) (Matches, error) {
	return f(ctx, query, c)
}
