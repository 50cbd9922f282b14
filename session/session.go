package session

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/jonwraymond/tooldefer/registry"
	"github.com/jonwraymond/tooldefer/search"
)

// Config holds per-session policy knobs.
type Config struct {
	// AutoExpandTopK expands the top K hits of every search automatically,
	// saving the model a second round trip per discovered tool. Zero or
	// negative leaves expansion to explicit requests.
	AutoExpandTopK int
}

// Session tracks which tools have been expanded (full schema sent) versus
// still deferred (stub only) across one conversation. The expanded set is
// monotonic: tools enter it and never leave, so context size cannot
// oscillate and the model never loses a schema it has already seen.
//
// A Session is not safe for concurrent use. See the package documentation.
type Session struct {
	id       string
	expanded map[string]struct{}
	queries  []string
	turns    int
}

// New creates an empty session with a fresh conversation ID.
func New() *Session {
	return &Session{
		id:       uuid.New().String(),
		expanded: make(map[string]struct{}),
	}
}

// ID returns the conversation ID.
func (s *Session) ID() string { return s.id }

// Expand moves the named tool from deferred to expanded. It reports whether
// the call changed the session: false with a nil error means the tool was
// already expanded. Naming a tool the registry does not hold fails with
// registry.ErrNotFound and leaves the session unchanged and usable.
func (s *Session) Expand(reg *registry.Registry, name string) (bool, error) {
	if !reg.Has(name) {
		return false, fmt.Errorf("expand %q: %w", name, registry.ErrNotFound)
	}
	if _, ok := s.expanded[name]; ok {
		return false, nil
	}
	s.expanded[name] = struct{}{}
	return true, nil
}

// ExpandTopK expands the first k matches, skipping names that are no longer
// registered. It returns the names newly expanded by this call, in match
// order. k <= 0 expands nothing.
func (s *Session) ExpandTopK(reg *registry.Registry, matches search.Matches, k int) []string {
	if k <= 0 {
		return nil
	}
	if k > len(matches) {
		k = len(matches)
	}
	var added []string
	for _, m := range matches[:k] {
		changed, err := s.Expand(reg, m.Name)
		if err == nil && changed {
			added = append(added, m.Name)
		}
	}
	return added
}

// IsExpanded reports whether the named tool is in the expanded set.
func (s *Session) IsExpanded(name string) bool {
	_, ok := s.expanded[name]
	return ok
}

// Expanded returns the expanded tool names in sorted order.
func (s *Session) Expanded() []string {
	if len(s.expanded) == 0 {
		return nil
	}
	out := make([]string, 0, len(s.expanded))
	for name := range s.expanded {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// RecordSearch appends query to the session's search log.
func (s *Session) RecordSearch(query string) {
	s.queries = append(s.queries, query)
}

// Queries returns a copy of the search log, oldest first.
func (s *Session) Queries() []string {
	if len(s.queries) == 0 {
		return nil
	}
	out := make([]string, len(s.queries))
	copy(out, s.queries)
	return out
}

// AdvanceTurn increments the turn counter and returns the new value.
// Orchestrators call it once per processed model action.
func (s *Session) AdvanceTurn() int {
	s.turns++
	return s.turns
}

// Turns returns how many actions this session has processed.
func (s *Session) Turns() int { return s.turns }
