// Package client orchestrates deferred tool loading over a conversation.
//
// The model's side of the loop is reduced to four actions: search the
// catalog, expand a discovered tool, invoke an expanded tool, and respond
// with final text. An Orchestrator applies each action to a session and
// returns the effect the model should see next:
//
//	orch, _ := client.New(client.Options{Registry: reg, Provider: provider})
//	s := session.New()
//
//	effect, _ := orch.Step(ctx, s, client.SearchAction{Query: "live stream"})
//	results := effect.(client.SearchResults)
//
// tool_use blocks coming off the wire are classified with ClassifyToolUse.
//
// # Deferred Discipline
//
// Invoking a tool that has not been expanded fails with
// session.ErrNotExpanded. The model is expected to search, expand, then
// invoke; the orchestrator holds that order. Expanding a name the registry
// does not hold is reported in the effect's Missing list and the session
// continues.
//
// # Simulation
//
// Simulator replays the search half of a conversation without a live
// model, producing tool_result blocks with sequential sim_N IDs, and
// EstimateTokenSavings reports what the deferred first payload saves over
// sending every schema up front.
package client
