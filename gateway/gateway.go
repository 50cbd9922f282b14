package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonwraymond/tooldefer/registry"
	"github.com/jonwraymond/tooldefer/search"
	"github.com/jonwraymond/tooldefer/session"
	"github.com/jonwraymond/toolfoundation/adapter"
	"github.com/jonwraymond/toolfoundation/model"
)

// Config configures a Gateway.
type Config struct {
	// ServerInfo is reported in the initialize response.
	ServerInfo ServerInfo
	// Search configures the search provider, including any extra
	// strategies such as semantic or hybrid ranking.
	Search search.ProviderOptions
	// Session sets the serving session's expansion policy.
	Session session.Config
	// AutoDetectType picks the search type from the query's shape on
	// search calls, falling back to BM25 when the detected type has no
	// strategy plugged in.
	AutoDetectType bool
}

// ServerInfo identifies this server in the initialize response.
type ServerInfo struct {
	Name    string
	Version string
}

// Gateway serves a deferred tool catalog over MCP-shaped JSON-RPC.
// Definitions live in a registry; tools/list returns the deferred payload
// for the gateway's serving session, and tools/call refuses to run a tool
// the session has not expanded. Tools come from local registration or
// from ingested MCP backends.
type Gateway struct {
	reg      *registry.Registry
	provider *search.Provider
	config   Config

	mu       sync.RWMutex
	session  *session.Session
	handlers map[string]Handler
	routes   map[string]route
	backends map[string]*mcpBackend
	sources  *SourceStore

	started bool
}

// route maps a registered tool name to its execution target. An empty
// backend means a local handler.
type route struct {
	backend string
	// remoteName is the tool's name on the backend, which differs from
	// the registered name when the backend prefixes its tools.
	remoteName string
}

// New creates a Gateway with an empty catalog and a fresh serving session.
func New(cfg Config) *Gateway {
	reg := registry.NewRegistry()
	return &Gateway{
		reg:      reg,
		provider: search.NewProvider(reg, cfg.Search),
		config:   cfg,
		session:  session.New(),
		handlers: make(map[string]Handler),
		routes:   make(map[string]route),
		backends: make(map[string]*mcpBackend),
		sources:  NewSourceStore(),
	}
}

// Registry returns the backing tool registry.
func (g *Gateway) Registry() *registry.Registry { return g.reg }

// Provider returns the search provider over the registry.
func (g *Gateway) Provider() *search.Provider { return g.provider }

// Sources returns the upstream servers whose tools were ingested,
// ordered by ID.
func (g *Gateway) Sources() []adapter.CanonicalProvider { return g.sources.List() }

// SessionSnapshot returns the serving session's current state.
func (g *Gateway) SessionSnapshot() session.Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.session.Snapshot()
}

// ResetSession replaces the serving session, returning the catalog to
// its deferred state for the next conversation. It returns the new
// session's ID.
func (g *Gateway) ResetSession() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.session = session.New()
	return g.session.ID()
}

// RegisterLocal registers a tool with a local execution handler.
func (g *Gateway) RegisterLocal(tool model.Tool, handler Handler) error {
	return g.registerLocal(tool, nil, handler)
}

// RegisterLocalFunc is a convenience for inline tool definition.
func (g *Gateway) RegisterLocalFunc(
	name, description string,
	inputSchema map[string]any,
	handler Handler,
	opts ...LocalToolOption,
) error {
	cfg := applyLocalToolOptions(opts)
	tool := buildLocalTool(name, description, inputSchema, cfg)
	return g.registerLocal(tool, cfg.examples, handler)
}

func (g *Gateway) registerLocal(tool model.Tool, examples []map[string]any, handler Handler) error {
	if err := tool.Validate(); err != nil {
		return fmt.Errorf("invalid tool: %w", err)
	}
	if handler == nil {
		return fmt.Errorf("%w: handler is required for %s", ErrInvalidRequest, tool.Name)
	}

	schema, err := normalizeSchema(tool.InputSchema)
	if err != nil {
		return fmt.Errorf("tool %s: %w", tool.Name, err)
	}
	if schema == nil {
		schema = map[string]any{"type": "object", "properties": map[string]any{}}
	}

	if _, err := g.reg.Register(registry.Definition{
		Name:          tool.Name,
		Description:   tool.Description,
		InputSchema:   schema,
		InputExamples: examples,
	}); err != nil {
		return err
	}

	g.mu.Lock()
	g.handlers[tool.Name] = handler
	g.routes[tool.Name] = route{}
	g.mu.Unlock()
	return nil
}

// Expand marks name as expanded in the serving session and returns its
// full definition. Unknown names return registry.ErrNotFound and leave
// the session untouched.
func (g *Gateway) Expand(name string) (registry.APITool, error) {
	g.mu.Lock()
	_, err := g.session.Expand(g.reg, name)
	g.mu.Unlock()
	if err != nil {
		return registry.APITool{}, err
	}
	return g.reg.Describe(name, registry.DetailFull)
}

// Execute runs an expanded tool by name, dispatching to its local
// handler or its backend. Deferred tools are not callable: a tool the
// serving session has not expanded fails with session.ErrNotExpanded.
func (g *Gateway) Execute(ctx context.Context, name string, args map[string]any) (any, error) {
	g.mu.RLock()
	rt, known := g.routes[name]
	expanded := g.session.IsExpanded(name)
	g.mu.RUnlock()

	if !known || !g.reg.Has(name) {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	if !expanded {
		return nil, fmt.Errorf("call %q: %w", name, session.ErrNotExpanded)
	}

	if rt.backend == "" {
		g.mu.RLock()
		handler, ok := g.handlers[name]
		g.mu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrHandlerNotFound, name)
		}
		return handler(ctx, args)
	}

	g.mu.RLock()
	backend, ok := g.backends[rt.backend]
	g.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBackendNotFound, rt.backend)
	}
	return backend.callTool(ctx, rt.remoteName, args)
}

// Start connects registered MCP backends and ingests their tools into
// the catalog. A backend that fails to connect rolls back the others and
// leaves the gateway stopped; individual tools that fail to register do
// not, their outcomes are kept per backend.
func (g *Gateway) Start(ctx context.Context) error {
	g.mu.Lock()
	if g.started {
		g.mu.Unlock()
		return ErrAlreadyStarted
	}
	g.started = true
	backends := make(map[string]*mcpBackend, len(g.backends))
	for name, backend := range g.backends {
		backends[name] = backend
	}
	g.mu.Unlock()

	connected := make([]string, 0, len(backends))
	for name, backend := range backends {
		if err := backend.connect(ctx); err != nil {
			for _, connectedName := range connected {
				_ = backends[connectedName].disconnect()
			}
			g.mu.Lock()
			g.started = false
			g.mu.Unlock()
			return fmt.Errorf("connect backend %s: %w", name, err)
		}
		connected = append(connected, name)
		g.ingest(backend)
	}
	return nil
}

// Stop disconnects all backends. The catalog keeps its definitions;
// remote tools fail to execute until the next Start.
func (g *Gateway) Stop() error {
	g.mu.Lock()
	if !g.started {
		g.mu.Unlock()
		return nil
	}
	g.started = false
	backends := make(map[string]*mcpBackend, len(g.backends))
	for name, backend := range g.backends {
		backends[name] = backend
	}
	g.mu.Unlock()

	for name, backend := range backends {
		if err := backend.disconnect(); err != nil {
			return fmt.Errorf("disconnect backend %s: %w", name, err)
		}
	}
	return nil
}

// GatewayStats summarizes the gateway's catalog.
type GatewayStats struct {
	TotalTools      int
	LocalTools      int
	RemoteTools     int
	Backends        int
	ExpandedTools   int
	RegistryVersion uint64
}

// Stats returns catalog statistics.
func (g *Gateway) Stats() GatewayStats {
	g.mu.RLock()
	defer g.mu.RUnlock()

	local, remote := 0, 0
	for _, rt := range g.routes {
		if rt.backend == "" {
			local++
		} else {
			remote++
		}
	}
	return GatewayStats{
		TotalTools:      g.reg.Len(),
		LocalTools:      local,
		RemoteTools:     remote,
		Backends:        len(g.backends),
		ExpandedTools:   len(g.session.Expanded()),
		RegistryVersion: g.reg.Version(),
	}
}

// HealthCheck reports nil when the gateway is started and every backend
// holds a live connection.
func (g *Gateway) HealthCheck(ctx context.Context) error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.started {
		return ErrNotStarted
	}
	for name, backend := range g.backends {
		if !backend.isConnected() {
			return fmt.Errorf("backend %s not connected", name)
		}
	}
	return nil
}

// Refresh rebuilds the search corpus immediately instead of on the next
// search call.
func (g *Gateway) Refresh() {
	g.provider.Refresh()
}
