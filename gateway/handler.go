package gateway

import (
	"context"

	"github.com/jonwraymond/toolfoundation/model"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Handler executes a locally-registered tool. It receives the arguments
// parsed from the tools/call request and returns the value written back
// on the wire, or an error when execution fails.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// LocalToolOption configures local tool registration.
type LocalToolOption func(*localToolConfig)

type localToolConfig struct {
	namespace string
	tags      []string
	version   string
	examples  []map[string]any
}

// WithNamespace sets the namespace recorded on a local tool.
func WithNamespace(ns string) LocalToolOption {
	return func(c *localToolConfig) {
		c.namespace = ns
	}
}

// WithTags sets the tags recorded on a local tool.
func WithTags(tags ...string) LocalToolOption {
	return func(c *localToolConfig) {
		c.tags = tags
	}
}

// WithVersion sets the version recorded on a local tool.
func WithVersion(v string) LocalToolOption {
	return func(c *localToolConfig) {
		c.version = v
	}
}

// WithExamples attaches example argument sets to a local tool. Each
// example must validate against the tool's input schema; a failing
// example rejects the registration.
func WithExamples(examples ...map[string]any) LocalToolOption {
	return func(c *localToolConfig) {
		c.examples = examples
	}
}

func applyLocalToolOptions(opts []LocalToolOption) localToolConfig {
	cfg := localToolConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func buildLocalTool(name, description string, inputSchema map[string]any, cfg localToolConfig) model.Tool {
	return model.Tool{
		Tool: mcp.Tool{
			Name:        name,
			Description: description,
			InputSchema: inputSchema,
		},
		Namespace: cfg.namespace,
		Version:   cfg.version,
		Tags:      model.NormalizeTags(cfg.tags),
	}
}
