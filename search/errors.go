package search

import "errors"

// Error values for consistent error handling by callers.
var (
	// ErrInvalidQuery indicates an empty or blank search query.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrInvalidArgument indicates a malformed search argument, such as a
	// non-positive result limit.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnknownSearchType indicates a search type with no configured
	// strategy.
	ErrUnknownSearchType = errors.New("unknown search type")
)

// errStaleCorpus signals that the cached corpus no longer matches the
// registry version. It never reaches callers of Search: the provider
// reacts by rebuilding and answering from the fresh corpus.
var errStaleCorpus = errors.New("stale corpus")
