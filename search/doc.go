// Package search ranks registered tools against natural-language queries.
//
// The primary type is [Provider], which builds a searchable corpus from a
// registry snapshot and serves queries through pluggable ranking
// strategies:
//
//	provider := search.NewProvider(reg, search.ProviderOptions{})
//	matches, err := provider.Search(ctx, "create live stream", 5, search.TypeBM25)
//
// # Strategies
//
// Two strategies are built in. [BM25Strategy] scores documents with Okapi
// BM25 over hand-maintained term statistics, which keeps every score
// explainable from the formula. [RegexStrategy] is a case-insensitive
// pattern filter over names and descriptions. Additional strategies
// implement [Strategy] and plug in through [ProviderOptions.Strategies];
// [BleveStrategy] is provided for callers that want bleve's analyzers
// instead of the built-in statistics, and the semantic package adds
// embedding and hybrid ranking.
//
// # Freshness
//
// The corpus is an immutable snapshot tagged with the registry version it
// was built from. The provider compares versions on every call and
// rebuilds before answering when the registry changed, so a query never
// sees rankings computed from definitions that are no longer registered.
//
// # Thread Safety
//
// Provider is safe for concurrent use. The current corpus sits behind an
// atomic pointer: readers see either the previous snapshot or the fully
// rebuilt one, and rebuilds are serialized.
//
// # Behavior
//
// Empty queries are rejected with [ErrInvalidQuery] rather than matching
// everything, and a non-positive result limit is rejected with
// [ErrInvalidArgument]. A well-formed query that matches nothing returns
// an empty, non-error result. For a fixed registry, identical queries
// return identical ordered results; ties keep registry insertion order.
package search
