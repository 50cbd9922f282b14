// Package gateway serves a deferred tool catalog as an MCP server.
//
// A Gateway wraps a registry, its search provider, and one serving
// session behind JSON-RPC handlers for initialize, tools/list, and
// tools/call. tools/list answers with the deferred payload: the search
// meta-tool plus lightweight stubs, or the full definitions of whatever
// the serving session has expanded. tools/call routes the meta-tool to
// catalog search, the expand tool to session expansion, and every other
// name to its handler or backend, refusing tools the session has not
// expanded yet.
//
// Tools come from two places: local registration with a handler, and
// ingestion from upstream MCP servers registered as backends. Ingested
// tools execute by proxying the call to their backend.
//
//	g := gateway.New(gateway.Config{
//	    ServerInfo: gateway.ServerInfo{Name: "event-tools", Version: "1.0.0"},
//	})
//
//	g.RegisterLocalFunc(
//	    "start_event",
//	    "Start a live event and begin streaming to viewers.",
//	    map[string]any{
//	        "type": "object",
//	        "properties": map[string]any{
//	            "event_id": map[string]any{"type": "string"},
//	        },
//	    },
//	    func(ctx context.Context, args map[string]any) (any, error) {
//	        return map[string]any{"status": "live"}, nil
//	    },
//	)
//
//	ctx := context.Background()
//	g.Start(ctx)
//	defer g.Stop()
//
//	gateway.ServeStdio(ctx, g)
//
// # Transports
//
// ServeStdio speaks newline-delimited JSON-RPC over stdin and stdout.
// ServeHTTP serves POSTed requests, ServeSSE frames each response as a
// server-sent event. All three share HandleRequest, which can also be
// called directly.
//
// # Concurrency
//
// A Gateway is safe for concurrent use. It guards its serving session
// with its own mutex; the registry and provider carry their own
// synchronization.
package gateway
