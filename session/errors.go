package session

import "errors"

// Error values for consistent error handling by callers.
var (
	// ErrNotExpanded indicates an attempt to invoke a tool the session has
	// not expanded. Callers recover by searching for the tool and expanding
	// it before retrying.
	ErrNotExpanded = errors.New("tool not expanded")
)
