package client

import "errors"

// Error values for consistent error handling by callers.
var (
	// ErrInvalidOptions indicates an Orchestrator built without a registry
	// or search provider.
	ErrInvalidOptions = errors.New("invalid orchestrator options")

	// ErrNoHandler indicates an invocation of a tool that has no registered
	// handler.
	ErrNoHandler = errors.New("no handler registered")

	// ErrUnknownAction indicates an action the orchestrator cannot process.
	ErrUnknownAction = errors.New("unknown action")
)
