package registry

import (
	"errors"
	"fmt"
)

// Error values for consistent error handling by callers.
var (
	// ErrNotFound indicates the named tool is not registered.
	ErrNotFound = errors.New("tool not found")

	// ErrInvalidDefinition indicates a definition missing a required field.
	ErrInvalidDefinition = errors.New("invalid tool definition")

	// ErrInvalidDetail indicates an unknown detail level.
	ErrInvalidDetail = errors.New("invalid detail level")

	// ErrInvalidSchema indicates an input schema that could not be compiled.
	ErrInvalidSchema = errors.New("invalid input schema")
)

// ValidationError reports an input example that failed to validate against
// its tool's input schema at registration time. The definition carrying the
// example is rejected and not stored.
type ValidationError struct {
	// Tool is the name of the rejected definition.
	Tool string
	// ExampleIndex identifies the offending entry in InputExamples.
	ExampleIndex int
	// Detail describes the violated constraint.
	Detail string

	cause error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("tool %q: input example %d: %s", e.Tool, e.ExampleIndex, e.Detail)
}

// Unwrap returns the underlying schema-validator error, if any.
func (e *ValidationError) Unwrap() error { return e.cause }
