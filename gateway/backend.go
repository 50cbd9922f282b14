package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jonwraymond/tooldefer/registry"
	"github.com/jonwraymond/toolfoundation/adapter"
	"github.com/jonwraymond/toolfoundation/model"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// BackendConfig describes an MCP backend connection.
type BackendConfig struct {
	// Name is a unique identifier for the backend.
	Name string
	// URL is the MCP server URL (http(s)://, sse://, stdio://).
	URL string
	// Headers are optional HTTP headers for authenticated backends.
	Headers map[string]string
	// MaxRetries controls reconnect attempts for streamable HTTP transport.
	MaxRetries int
	// RetryInterval is reserved for future use.
	RetryInterval time.Duration
	// Transport overrides URL handling when provided (useful for tests).
	Transport mcp.Transport
	// PrefixTools registers each ingested tool as name_tool, keeping
	// catalogs with overlapping tool names unambiguous.
	PrefixTools bool
}

type mcpBackend struct {
	config    BackendConfig
	client    *mcp.Client
	session   *mcp.ClientSession
	tools     []model.Tool
	results   []registry.RegisterResult
	mu        sync.RWMutex
	connected bool
}

// RegisterBackend registers an upstream MCP server. Its tools are
// ingested into the catalog on Start, or immediately when the gateway is
// already running.
func (g *Gateway) RegisterBackend(cfg BackendConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("%w: backend name is required", ErrInvalidRequest)
	}

	g.mu.Lock()
	if _, exists := g.backends[cfg.Name]; exists {
		g.mu.Unlock()
		return fmt.Errorf("backend %s already registered", cfg.Name)
	}
	backend := &mcpBackend{config: cfg}
	g.backends[cfg.Name] = backend
	started := g.started
	g.mu.Unlock()

	if started {
		if err := backend.connect(context.Background()); err != nil {
			return fmt.Errorf("connect backend %s: %w", cfg.Name, err)
		}
		g.ingest(backend)
	}
	return nil
}

// UnregisterBackend disconnects a backend and removes its tools and
// source record from the catalog.
func (g *Gateway) UnregisterBackend(name string) error {
	g.mu.Lock()
	backend, exists := g.backends[name]
	if !exists {
		g.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrBackendNotFound, name)
	}
	delete(g.backends, name)
	removed := make([]string, 0)
	for toolName, rt := range g.routes {
		if rt.backend == name {
			delete(g.routes, toolName)
			removed = append(removed, toolName)
		}
	}
	g.mu.Unlock()

	for _, toolName := range removed {
		_ = g.reg.Remove(toolName)
	}
	g.sources.Remove(name)

	return backend.disconnect()
}

// IngestResults returns the per-tool outcomes of the most recent
// ingestion for backend name.
func (g *Gateway) IngestResults(name string) ([]registry.RegisterResult, error) {
	g.mu.RLock()
	backend, ok := g.backends[name]
	g.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBackendNotFound, name)
	}
	return backend.ingestResults(), nil
}

// ingest converts a connected backend's tools into catalog definitions.
// Each tool registers independently; one bad tool does not block the
// rest. Outcomes are kept on the backend and the backend is recorded as
// a source.
func (g *Gateway) ingest(backend *mcpBackend) {
	cfg := backend.config
	tools := backend.toolsSnapshot()

	results := make([]registry.RegisterResult, 0, len(tools))
	for _, tool := range tools {
		def, err := definitionFromTool(tool, cfg)
		if err != nil {
			results = append(results, registry.RegisterResult{Name: tool.Name, Err: err})
			continue
		}
		replaced, err := g.reg.Register(def)
		results = append(results, registry.RegisterResult{Name: def.Name, Replaced: replaced, Err: err})
		if err != nil {
			continue
		}
		g.mu.Lock()
		g.routes[def.Name] = route{backend: cfg.Name, remoteName: tool.Name}
		g.mu.Unlock()
	}

	backend.setResults(results)
	g.sources.Register(cfg.Name, adapter.CanonicalProvider{
		Name:        cfg.Name,
		Description: backendDescription(cfg),
	})
}

func backendDescription(cfg BackendConfig) string {
	if strings.TrimSpace(cfg.URL) != "" {
		return "MCP server at " + cfg.URL
	}
	return "MCP server over custom transport"
}

// definitionFromTool converts an ingested MCP tool into a catalog
// definition. The registered name carries the backend prefix when the
// backend asks for one.
func definitionFromTool(tool model.Tool, cfg BackendConfig) (registry.Definition, error) {
	schema, err := normalizeSchema(tool.InputSchema)
	if err != nil {
		return registry.Definition{}, err
	}
	if schema == nil {
		schema = map[string]any{"type": "object", "properties": map[string]any{}}
	}

	name := tool.Name
	if cfg.PrefixTools {
		name = cfg.Name + "_" + tool.Name
	}
	return registry.Definition{
		Name:        name,
		Description: tool.Description,
		InputSchema: schema,
	}, nil
}

// normalizeSchema coerces a schema value into the map form the registry
// stores. Schemas arrive as maps from local registration and as raw JSON
// or typed values from remote servers.
func normalizeSchema(v any) (map[string]any, error) {
	switch s := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return s, nil
	case json.RawMessage:
		var out map[string]any
		if err := json.Unmarshal(s, &out); err != nil {
			return nil, fmt.Errorf("invalid input schema: %w", err)
		}
		return out, nil
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("invalid input schema: %w", err)
		}
		var out map[string]any
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("invalid input schema: %w", err)
		}
		return out, nil
	}
}

func (b *mcpBackend) connect(ctx context.Context) error {
	b.mu.Lock()
	if b.connected {
		b.mu.Unlock()
		return nil
	}
	b.mu.Unlock()

	transport, err := b.transport()
	if err != nil {
		return err
	}

	client := mcp.NewClient(&mcp.Implementation{Name: "tooldefer-gateway"}, nil)
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return err
	}

	res, err := session.ListTools(ctx, nil)
	if err != nil {
		_ = session.Close()
		return err
	}

	tools := make([]model.Tool, 0, len(res.Tools))
	for _, tool := range res.Tools {
		if tool == nil {
			continue
		}
		tools = append(tools, model.Tool{Tool: *tool})
	}

	b.mu.Lock()
	b.client = client
	b.session = session
	b.tools = tools
	b.connected = true
	b.mu.Unlock()
	return nil
}

func (b *mcpBackend) disconnect() error {
	b.mu.Lock()
	if !b.connected {
		b.mu.Unlock()
		return nil
	}
	session := b.session
	b.client = nil
	b.session = nil
	b.connected = false
	b.mu.Unlock()

	if session != nil {
		return session.Close()
	}
	return nil
}

func (b *mcpBackend) callTool(ctx context.Context, name string, args map[string]any) (any, error) {
	b.mu.RLock()
	session := b.session
	connected := b.connected
	b.mu.RUnlock()

	if !connected || session == nil {
		return nil, fmt.Errorf("%w: backend not connected", ErrBackendNotFound)
	}

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExecutionFailed, err)
	}
	if result == nil {
		return nil, nil
	}
	if result.IsError {
		return nil, fmt.Errorf("%w: %s", ErrExecutionFailed, toolResultError(result))
	}
	return toolResultValue(result), nil
}

func (b *mcpBackend) toolsSnapshot() []model.Tool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.tools) == 0 {
		return nil
	}
	out := make([]model.Tool, len(b.tools))
	copy(out, b.tools)
	return out
}

func (b *mcpBackend) setResults(results []registry.RegisterResult) {
	b.mu.Lock()
	b.results = results
	b.mu.Unlock()
}

func (b *mcpBackend) ingestResults() []registry.RegisterResult {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.results) == 0 {
		return nil
	}
	out := make([]registry.RegisterResult, len(b.results))
	copy(out, b.results)
	return out
}

func (b *mcpBackend) isConnected() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.connected
}

func (b *mcpBackend) transport() (mcp.Transport, error) {
	if b.config.Transport != nil {
		return b.config.Transport, nil
	}
	if strings.TrimSpace(b.config.URL) == "" {
		return nil, errors.New("backend URL is required")
	}

	parsed, err := url.Parse(b.config.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}

	httpClient := httpClientWithHeaders(b.config.Headers)

	switch parsed.Scheme {
	case "http", "https":
		return &mcp.StreamableClientTransport{
			Endpoint:   b.config.URL,
			HTTPClient: httpClient,
			MaxRetries: b.config.MaxRetries,
		}, nil
	case "sse":
		parsed.Scheme = "http"
		return &mcp.SSEClientTransport{
			Endpoint:   parsed.String(),
			HTTPClient: httpClient,
		}, nil
	case "stdio":
		return &mcp.StdioTransport{}, nil
	default:
		return nil, fmt.Errorf("unsupported backend URL scheme %q", parsed.Scheme)
	}
}

func httpClientWithHeaders(headers map[string]string) *http.Client {
	if len(headers) == 0 {
		return nil
	}
	clone := make(map[string]string, len(headers))
	for k, v := range headers {
		if strings.TrimSpace(k) == "" {
			continue
		}
		clone[k] = v
	}
	if len(clone) == 0 {
		return nil
	}
	return &http.Client{
		Transport: &headerRoundTripper{
			base:    http.DefaultTransport,
			headers: clone,
		},
	}
}

type headerRoundTripper struct {
	base    http.RoundTripper
	headers map[string]string
}

func (h *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	base := h.base
	if base == nil {
		base = http.DefaultTransport
	}
	for key, value := range h.headers {
		if req.Header.Get(key) == "" {
			req.Header.Set(key, value)
		}
	}
	return base.RoundTrip(req)
}

func toolResultValue(result *mcp.CallToolResult) any {
	if result == nil {
		return nil
	}
	if result.StructuredContent != nil {
		return result.StructuredContent
	}
	if len(result.Content) == 1 {
		if text, ok := result.Content[0].(*mcp.TextContent); ok {
			return text.Text
		}
	}
	return result.Content
}

func toolResultError(result *mcp.CallToolResult) string {
	if result == nil {
		return "tool execution failed"
	}
	for _, content := range result.Content {
		if text, ok := content.(*mcp.TextContent); ok && text.Text != "" {
			return text.Text
		}
	}
	if result.StructuredContent != nil {
		return fmt.Sprintf("%v", result.StructuredContent)
	}
	return "tool execution failed"
}
