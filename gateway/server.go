package gateway

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
)

// ServeLines runs the JSON-RPC loop over newline-delimited requests,
// writing one response line per request. It returns when in is exhausted
// or ctx is cancelled. Blank lines are skipped.
func ServeLines(ctx context.Context, g *Gateway, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	encoder := json.NewEncoder(out)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			if err := encoder.Encode(errorResponse(nil, ErrCodeParseError, err.Error())); err != nil {
				return fmt.Errorf("encode error response: %w", err)
			}
			continue
		}
		if err := encoder.Encode(g.HandleRequest(ctx, req)); err != nil {
			return fmt.Errorf("encode response: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read requests: %w", err)
	}
	return nil
}

// ServeStdio runs the gateway as an MCP server over stdio. It blocks
// until stdin closes or ctx is cancelled.
func ServeStdio(ctx context.Context, g *Gateway) error {
	return ServeLines(ctx, g, os.Stdin, os.Stdout)
}

// ServeHTTP returns an http.Handler speaking JSON-RPC over POST bodies.
// Other methods answer 405.
func ServeHTTP(g *Gateway) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var mcpReq MCPRequest
		if err := json.NewDecoder(req.Body).Decode(&mcpReq); err != nil {
			writeJSON(w, errorResponse(nil, ErrCodeParseError, err.Error()))
			return
		}
		writeJSON(w, g.HandleRequest(req.Context(), mcpReq))
	})
}

func writeJSON(w http.ResponseWriter, resp MCPResponse) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// ServeSSE returns an http.Handler that answers each POSTed request with
// a server-sent event stream carrying the response.
func ServeSSE(g *Gateway) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "SSE not supported", http.StatusInternalServerError)
			return
		}

		var mcpReq MCPRequest
		if err := json.NewDecoder(req.Body).Decode(&mcpReq); err != nil {
			writeSSEEvent(w, flusher, "error", errorResponse(nil, ErrCodeParseError, err.Error()))
			return
		}
		writeSSEEvent(w, flusher, "message", g.HandleRequest(req.Context(), mcpReq))
	})
}

func writeSSEEvent(w http.ResponseWriter, f http.Flusher, event string, data any) {
	payload, _ := json.Marshal(data)
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return
	}
	f.Flush()
}
