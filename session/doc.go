// Package session tracks deferred tool loading for a single conversation.
//
// With deferred loading the first model-facing request carries only a
// minimal catalog: the search_tools meta-tool plus one stub per registered
// tool. As the model discovers tools through search, Expand moves them into
// the session's expanded set and later payloads carry their full schemas:
//
//	s := session.New()
//	tools := session.BuildPayload(reg, s) // meta-tool + stubs
//
//	s.Expand(reg, "create_event")
//	tools = session.BuildPayload(reg, s) // meta-tool + full create_event
//
// # Expansion
//
// Expansion is idempotent and monotonic. Expanding a tool twice changes
// nothing, and no operation removes a tool from the expanded set. Expanding
// a name the registry does not hold fails with registry.ErrNotFound and
// leaves the session usable; a conversation survives the model asking for
// a tool that does not exist.
//
// Auto-expansion of the top K search hits is a policy choice, not a fixed
// behavior: callers opt in through Config.AutoExpandTopK or by calling
// ExpandTopK directly.
//
// # Concurrency
//
// A Session is exclusively owned by its conversation and is not safe for
// concurrent use. Callers that share one session across goroutines must
// synchronize access themselves. The registry and search layers carry their
// own synchronization and need no such care.
package session
