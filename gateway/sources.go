package gateway

import (
	"errors"
	"sort"
	"sync"

	"github.com/jonwraymond/toolfoundation/adapter"
)

// Error values for consistent error handling by callers.
var (
	ErrSourceNotFound  = errors.New("source not found")
	ErrInvalidSource   = errors.New("invalid source")
	ErrInvalidSourceID = errors.New("invalid source id")
)

// SourceStore records the upstream servers whose tools were ingested
// into the catalog. Safe for concurrent use.
type SourceStore struct {
	mu      sync.RWMutex
	sources map[string]adapter.CanonicalProvider
}

// NewSourceStore creates an empty store.
func NewSourceStore() *SourceStore {
	return &SourceStore{sources: make(map[string]adapter.CanonicalProvider)}
}

// SourceID returns the stable ID for a name/version pair.
func SourceID(name, version string) string {
	if name == "" {
		return ""
	}
	if version == "" {
		return name
	}
	return name + ":" + version
}

// Register stores a source under id, deriving the ID from the source's
// name and version when id is empty. It returns the resolved ID.
func (s *SourceStore) Register(id string, source adapter.CanonicalProvider) (string, error) {
	if source.Name == "" {
		return "", ErrInvalidSource
	}
	if id == "" {
		id = SourceID(source.Name, source.Version)
	}
	if id == "" {
		return "", ErrInvalidSourceID
	}

	s.mu.Lock()
	s.sources[id] = source
	s.mu.Unlock()
	return id, nil
}

// Describe returns the source stored under id.
func (s *SourceStore) Describe(id string) (adapter.CanonicalProvider, error) {
	if id == "" {
		return adapter.CanonicalProvider{}, ErrInvalidSourceID
	}

	s.mu.RLock()
	source, ok := s.sources[id]
	s.mu.RUnlock()

	if !ok {
		return adapter.CanonicalProvider{}, ErrSourceNotFound
	}
	return source, nil
}

// Remove deletes the source stored under id. Removing an unknown ID is
// not an error.
func (s *SourceStore) Remove(id string) {
	s.mu.Lock()
	delete(s.sources, id)
	s.mu.Unlock()
}

// List returns all sources ordered by ID.
func (s *SourceStore) List() []adapter.CanonicalProvider {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sources))
	for id := range s.sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]adapter.CanonicalProvider, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.sources[id])
	}
	return out
}
