package search

import (
	"context"
	"testing"

	"github.com/jonwraymond/tooldefer/registry"
)

func TestBleveStrategy_Search(t *testing.T) {
	s := NewBleveStrategy(BleveConfig{})
	defer s.Close()

	c := BuildCorpus(testDefinitions(), 1)
	matches, err := s.Rank(context.Background(), "revenue", c)
	if err != nil {
		t.Fatalf("Rank error = %v", err)
	}
	if len(matches) != 1 || matches[0].Name != "get_revenue_report" {
		t.Fatalf("matches = %v, want get_revenue_report", matches.Names())
	}
	if matches[0].Score <= 0 {
		t.Errorf("score = %v, want positive", matches[0].Score)
	}
	if len(matches[0].MatchedTerms) == 0 {
		t.Error("MatchedTerms empty, want located terms")
	}
}

func TestBleveStrategy_NameBoost(t *testing.T) {
	s := NewBleveStrategy(BleveConfig{})
	defer s.Close()

	defs := []registry.Definition{
		registry.NewDefinition("viewer_count", "Report concurrent transcode jobs", nil, nil, nil),
		registry.NewDefinition("transcode", "Convert uploaded media", nil, nil, nil),
	}
	c := BuildCorpus(defs, 1)

	matches, err := s.Rank(context.Background(), "transcode", c)
	if err != nil {
		t.Fatalf("Rank error = %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(matches))
	}
	if matches[0].Name != "transcode" {
		t.Errorf("top match = %q, want the name-field hit", matches[0].Name)
	}
}

func TestBleveStrategy_IndexCachedByFingerprint(t *testing.T) {
	s := NewBleveStrategy(BleveConfig{})
	defer s.Close()

	c1 := BuildCorpus(testDefinitions(), 1)
	if _, err := s.Rank(context.Background(), "event", c1); err != nil {
		t.Fatal(err)
	}
	first := s.index

	// Same content under a different registry version reuses the index.
	c2 := BuildCorpus(testDefinitions(), 2)
	if _, err := s.Rank(context.Background(), "event", c2); err != nil {
		t.Fatal(err)
	}
	if s.index != first {
		t.Error("index rebuilt although document content did not change")
	}

	// Changed content forces a rebuild.
	defs := append(testDefinitions(),
		registry.NewDefinition("stop_event", "Stop a running event", nil, nil, nil))
	c3 := BuildCorpus(defs, 3)
	if _, err := s.Rank(context.Background(), "event", c3); err != nil {
		t.Fatal(err)
	}
	if s.index == first {
		t.Error("index not rebuilt after document content changed")
	}
}

func TestBleveStrategy_CloseAndReuse(t *testing.T) {
	s := NewBleveStrategy(BleveConfig{})

	c := BuildCorpus(testDefinitions(), 1)
	if _, err := s.Rank(context.Background(), "event", c); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close error = %v", err)
	}

	matches, err := s.Rank(context.Background(), "event", c)
	if err != nil {
		t.Fatalf("Rank after Close error = %v", err)
	}
	if len(matches) == 0 {
		t.Error("no matches after reopen")
	}
	s.Close()
}

func TestBleveStrategy_MaxDocs(t *testing.T) {
	s := NewBleveStrategy(BleveConfig{MaxDocs: 1})
	defer s.Close()

	c := BuildCorpus(testDefinitions(), 1)
	matches, err := s.Rank(context.Background(), "streaming", c)
	if err != nil {
		t.Fatal(err)
	}
	// Only the first document is indexed; start_event is out of reach.
	for _, m := range matches {
		if m.Name != "create_event" {
			t.Errorf("unexpected match %q beyond MaxDocs", m.Name)
		}
	}
}
