package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jonwraymond/tooldefer/client"
	"github.com/jonwraymond/tooldefer/registry"
	"github.com/jonwraymond/tooldefer/search"
	"github.com/jonwraymond/tooldefer/session"
	"github.com/jonwraymond/toolfoundation/model"
)

// MCPRequest is an incoming JSON-RPC request in the MCP shape.
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse is a JSON-RPC response.
type MCPResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id"`
	Result  any       `json:"result,omitempty"`
	Error   *MCPError `json:"error,omitempty"`
}

// MCPError is a JSON-RPC error object.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func resultResponse(id any, result any) MCPResponse {
	return MCPResponse{JSONRPC: "2.0", ID: id, Result: result}
}

func errorResponse(id any, code int, message string) MCPResponse {
	return MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &MCPError{Code: code, Message: message},
	}
}

// HandleRequest processes one request and returns its response.
func (g *Gateway) HandleRequest(ctx context.Context, req MCPRequest) MCPResponse {
	switch req.Method {
	case "initialize":
		return g.handleInitialize(req.ID)
	case "tools/list":
		return g.handleToolsList(req.ID)
	case "tools/call":
		return g.handleToolsCall(ctx, req.ID, req.Params)
	default:
		return errorResponse(req.ID, ErrCodeMethodNotFound, fmt.Sprintf("method %s not found", req.Method))
	}
}

func (g *Gateway) handleInitialize(id any) MCPResponse {
	return resultResponse(id, map[string]any{
		"protocolVersion": model.MCPVersion,
		"capabilities": map[string]any{
			"tools": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    g.config.ServerInfo.Name,
			"version": g.config.ServerInfo.Version,
		},
	})
}

// handleToolsList returns the deferred payload for the serving session:
// the search tool plus stubs, or plus the full definitions of whatever
// the session has expanded.
func (g *Gateway) handleToolsList(id any) MCPResponse {
	g.mu.RLock()
	payload := session.BuildPayload(g.reg, g.session)
	g.mu.RUnlock()
	return resultResponse(id, map[string]any{"tools": payload})
}

type toolsCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

func (g *Gateway) handleToolsCall(ctx context.Context, id any, params json.RawMessage) MCPResponse {
	var call toolsCallParams
	if err := json.Unmarshal(params, &call); err != nil {
		return errorResponse(id, ErrCodeInvalidParams, err.Error())
	}

	switch call.Name {
	case session.MetaToolName:
		return g.handleSearchCall(ctx, id, call.Arguments)
	case session.ExpandToolName:
		return g.handleExpandCall(id, call.Arguments)
	}

	result, err := g.Execute(ctx, call.Name, call.Arguments)
	if err != nil {
		code := ErrCodeToolExecFailed
		if errors.Is(err, ErrToolNotFound) || errors.Is(err, session.ErrNotExpanded) {
			code = ErrCodeToolNotFound
		}
		return errorResponse(id, code, err.Error())
	}
	return resultResponse(id, result)
}

// handleSearchCall runs the catalog search behind the meta-tool: rank,
// record the query on the serving session, apply the auto-expansion
// policy, and answer with tool references.
func (g *Gateway) handleSearchCall(ctx context.Context, id any, args map[string]any) MCPResponse {
	query, _ := args["query"].(string)
	maxResults := client.DefaultMaxResults
	switch v := args["max_results"].(type) {
	case float64:
		maxResults = int(v)
	case int:
		maxResults = v
	}
	if maxResults <= 0 {
		maxResults = client.DefaultMaxResults
	}

	matches, err := g.provider.Search(ctx, query, maxResults, g.searchType(query))
	if err != nil {
		code := ErrCodeInternal
		if errors.Is(err, search.ErrInvalidQuery) || errors.Is(err, search.ErrInvalidArgument) {
			code = ErrCodeInvalidParams
		}
		return errorResponse(id, code, err.Error())
	}

	g.mu.Lock()
	g.session.RecordSearch(query)
	autoExpanded := g.session.ExpandTopK(g.reg, matches, g.config.Session.AutoExpandTopK)
	g.mu.Unlock()

	result := map[string]any{
		"content": client.References(matches),
	}
	if len(autoExpanded) > 0 {
		result["auto_expanded"] = autoExpanded
	}
	return resultResponse(id, result)
}

// searchType resolves the search type for a query. Detection is opt-in
// and only selects types the provider actually has a strategy for.
func (g *Gateway) searchType(query string) search.SearchType {
	if !g.config.AutoDetectType {
		return search.TypeBM25
	}
	typ := search.DetectType(query)
	if _, err := g.provider.Strategy(typ); err != nil {
		return search.TypeBM25
	}
	return typ
}

// handleExpandCall promotes one stub to its full definition in the
// serving session. Unknown names answer with the tool-not-found code and
// leave the session serving.
func (g *Gateway) handleExpandCall(id any, args map[string]any) MCPResponse {
	name, _ := args["name"].(string)
	if name == "" {
		return errorResponse(id, ErrCodeInvalidParams, "name is required")
	}

	tool, err := g.Expand(name)
	if err != nil {
		return errorResponse(id, ErrCodeToolNotFound, fmt.Sprintf("tool not found: %s", name))
	}
	return resultResponse(id, map[string]any{
		"tools": []registry.APITool{tool},
	})
}
