package session

import "github.com/google/uuid"

// Snapshot is a serializable copy of a session's state, suitable for
// persisting between the turns of a conversation.
type Snapshot struct {
	ID       string   `json:"id"`
	Expanded []string `json:"expanded,omitempty"`
	Queries  []string `json:"queries,omitempty"`
	Turns    int      `json:"turns,omitempty"`
}

// Snapshot captures the session's current state. Expanded names are sorted.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		ID:       s.id,
		Expanded: s.Expanded(),
		Queries:  s.Queries(),
		Turns:    s.turns,
	}
}

// Restore rebuilds a session from a snapshot. A snapshot with an empty ID
// gets a freshly generated one.
func Restore(snap Snapshot) *Session {
	s := &Session{
		id:       snap.ID,
		expanded: make(map[string]struct{}, len(snap.Expanded)),
		turns:    snap.Turns,
	}
	if s.id == "" {
		s.id = uuid.New().String()
	}
	for _, name := range snap.Expanded {
		s.expanded[name] = struct{}{}
	}
	if len(snap.Queries) > 0 {
		s.queries = make([]string, len(snap.Queries))
		copy(s.queries, snap.Queries)
	}
	return s
}
