package session

import "github.com/jonwraymond/tooldefer/registry"

// MetaToolName is the name of the synthetic search tool present in every
// deferred payload. The model calls it to discover tools by query.
const MetaToolName = "search_tools"

// ExpandToolName is the wire name of the explicit expansion request that
// gateways accept alongside the meta-tool when auto-expansion is off.
const ExpandToolName = "expand_tool"

// MetaTool returns the definition of the search capability itself, in the
// external tool shape. It is always sent in full, never deferred, and never
// counted as part of the stub catalog.
func MetaTool() registry.APITool {
	return registry.APITool{
		Name:        MetaToolName,
		Description: "Search the tool catalog and return the names of matching tools. Call this to discover tools before requesting one that is not yet available in full.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "What the tool should be able to do.",
				},
				"max_results": map[string]any{
					"type":        "integer",
					"description": "Maximum number of matches to return.",
				},
			},
			"required": []string{"query"},
		},
	}
}

// BuildPayload assembles the model-facing tools array for the session's
// next request. Until the first expansion the payload is the meta-tool
// followed by every registered tool as a stub with defer_loading set; after
// that it is the meta-tool followed by the full definitions of the expanded
// set, examples included, in registry insertion order. Expanded names no
// longer present in the registry are skipped. A nil session yields the
// initial deferred payload.
func BuildPayload(reg *registry.Registry, s *Session) []registry.APITool {
	if s == nil || len(s.expanded) == 0 {
		stubs := reg.Stubs()
		tools := make([]registry.APITool, 0, len(stubs)+1)
		tools = append(tools, MetaTool())
		for _, st := range stubs {
			tools = append(tools, registry.APITool{
				Name:         st.Name,
				Description:  st.Description,
				DeferLoading: true,
			})
		}
		return tools
	}

	full := reg.ToolsForAPI(registry.APIOptions{
		IncludeExamples: true,
		Names:           s.Expanded(),
	})
	tools := make([]registry.APITool, 0, len(full)+1)
	tools = append(tools, MetaTool())
	return append(tools, full...)
}
