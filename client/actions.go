package client

import (
	"github.com/jonwraymond/tooldefer/registry"
	"github.com/jonwraymond/tooldefer/search"
	"github.com/jonwraymond/tooldefer/session"
)

// Action is one model-emitted step the orchestrator can process. The
// concrete types are SearchAction, ExpandAction, InvokeAction and
// RespondAction.
type Action interface{ isAction() }

// SearchAction asks the catalog for tools matching a query.
type SearchAction struct {
	Query string
	// MaxResults caps the matches returned; zero means DefaultMaxResults.
	MaxResults int
	// Type names the strategy to use. Empty means BM25, or per-query
	// detection when the orchestrator has AutoDetectType set.
	Type search.SearchType
}

// ExpandAction requests the full schema of a discovered tool.
type ExpandAction struct {
	Name string
}

// InvokeAction calls an expanded tool.
type InvokeAction struct {
	Name string
	Args map[string]any
}

// RespondAction carries the model's final text; it ends the loop.
type RespondAction struct {
	Text string
}

func (SearchAction) isAction()  {}
func (ExpandAction) isAction()  {}
func (InvokeAction) isAction()  {}
func (RespondAction) isAction() {}

// Effect is the orchestrator's reply to one action. The concrete types
// are SearchResults, Expanded, InvocationResult and FinalResponse.
type Effect interface{ isEffect() }

// SearchResults carries the ranked matches for a search and their wire
// references. AutoExpanded lists tools the top-K policy expanded as part
// of the same step.
type SearchResults struct {
	Matches      search.Matches
	References   []ToolReference
	AutoExpanded []string
}

// Expanded carries the full definitions of requested tools. Missing lists
// requested names the registry does not hold; their presence is not an
// error and the session continues.
type Expanded struct {
	Tools   []registry.APITool
	Missing []string
}

// InvocationResult reports one tool call. Err is the handler's failure,
// kept inside the effect so the conversation can carry it back to the
// model as a failed tool_result.
type InvocationResult struct {
	Name  string
	Value any
	Err   error
}

// FinalResponse is the model's closing text.
type FinalResponse struct {
	Text string
}

func (SearchResults) isEffect()    {}
func (Expanded) isEffect()         {}
func (InvocationResult) isEffect() {}
func (FinalResponse) isEffect()    {}

// ReferenceType tags a ToolReference block on the wire.
const ReferenceType = "tool_reference"

// ToolReference names a discovered tool without carrying its schema.
type ToolReference struct {
	Type     string `json:"type"`
	ToolName string `json:"tool_name"`
}

// References converts matches into wire reference blocks.
func References(matches search.Matches) []ToolReference {
	if len(matches) == 0 {
		return nil
	}
	out := make([]ToolReference, len(matches))
	for i, m := range matches {
		out[i] = ToolReference{Type: ReferenceType, ToolName: m.Name}
	}
	return out
}

// ClassifyToolUse maps a model tool_use block onto an Action: the
// meta-tool becomes a SearchAction, an expansion request becomes an
// ExpandAction, and anything else is an invocation of the named tool.
func ClassifyToolUse(name string, args map[string]any) Action {
	switch name {
	case session.MetaToolName:
		act := SearchAction{}
		if q, ok := args["query"].(string); ok {
			act.Query = q
		}
		switch v := args["max_results"].(type) {
		case int:
			act.MaxResults = v
		case float64:
			act.MaxResults = int(v)
		}
		return act
	case session.ExpandToolName:
		act := ExpandAction{}
		if n, ok := args["name"].(string); ok {
			act.Name = n
		}
		return act
	default:
		return InvokeAction{Name: name, Args: args}
	}
}
