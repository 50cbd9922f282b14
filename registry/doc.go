// Package registry owns the catalog of tool definitions behind deferred
// tool loading: full definitions for expansion, minimal stubs for the
// first model-facing payload, and the API payload shapes in between.
//
// # Basic Usage
//
// Create a registry and register definitions:
//
//	reg := registry.NewRegistry()
//	replaced, err := reg.Register(registry.Definition{
//		Name:        "create_event",
//		Description: "Create a new live streaming event",
//		InputSchema: map[string]any{
//			"type": "object",
//			"properties": map[string]any{
//				"title": map[string]any{"type": "string"},
//			},
//			"required": []string{"title"},
//		},
//		InputExamples: []map[string]any{
//			{"title": "Friday Night Jam"},
//		},
//	})
//
// Every input example is validated against the input schema at registration
// time. A definition with a failing example is rejected with a
// *ValidationError naming the offending example index; nothing is stored.
// RegisterMany collects per-item outcomes instead of aborting the batch.
//
// # Stubs and API Payloads
//
// Stubs returns the minimal catalog: one (name, short description) pair per
// tool in insertion order, with descriptions truncated to
// MaxStubDescriptionLen. ToolsForAPI returns full definitions in the
// external tool-schema shape, optionally restricted by name and optionally
// carrying examples. Describe serves a single tool at stub, schema, or full
// detail.
//
// # Change Notification
//
// OnChange subscribes to mutations:
//
//	unsubscribe := reg.OnChange(func(e registry.ChangeEvent) {
//		// e.Type, e.Name, e.Version
//	})
//	defer unsubscribe()
//
// Version returns a monotonic counter; search layers compare it against the
// version captured in their snapshots to detect staleness.
//
// # Concurrency
//
// All methods are safe for concurrent use. Reads take a shared lock;
// mutations are expected to be rare (startup or administrative).
// Definitions are deep-copied on the way in and out, so a held Definition
// or APITool never changes under its holder.
package registry
