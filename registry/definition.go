package registry

import "fmt"

// MaxStubDescriptionLen is the maximum length of a stub description.
// Longer descriptions are truncated when stubs are produced.
const MaxStubDescriptionLen = 120

// Definition describes one callable tool: its identity, the free-text
// description used as the primary search signal, the JSON schema its
// arguments must satisfy, and optional example argument sets.
//
// A Definition is never mutated after registration. Updates are modeled as
// re-registration under the same name, which replaces the stored definition
// wholesale so that concurrently-held index snapshots stay consistent.
type Definition struct {
	// Name uniquely identifies the tool across the registry's lifetime.
	Name string
	// Description is free text shown to the model and indexed for search.
	Description string
	// InputSchema is the JSON-schema contract for the tool's arguments.
	// The registry treats it as opaque beyond example validation.
	InputSchema map[string]any
	// InputExamples are example argument sets, each of which must validate
	// against InputSchema. Order is preserved.
	InputExamples []map[string]any
}

// Clone returns a deep copy of the definition.
func (d Definition) Clone() Definition {
	out := Definition{Name: d.Name, Description: d.Description}
	if d.InputSchema != nil {
		out.InputSchema = cloneMap(d.InputSchema)
	}
	if d.InputExamples != nil {
		out.InputExamples = make([]map[string]any, len(d.InputExamples))
		for i, ex := range d.InputExamples {
			out.InputExamples[i] = cloneMap(ex)
		}
	}
	return out
}

func (d Definition) validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDefinition)
	}
	if d.Description == "" {
		return fmt.Errorf("%w: %s: description is required", ErrInvalidDefinition, d.Name)
	}
	if d.InputSchema == nil {
		return fmt.Errorf("%w: %s: input_schema is required", ErrInvalidDefinition, d.Name)
	}
	return nil
}

// NewDefinition builds a Definition with an object input schema assembled
// from the given properties and required field names. Examples may be nil.
func NewDefinition(name, description string, properties map[string]any, required []string, examples []map[string]any) Definition {
	if properties == nil {
		properties = map[string]any{}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return Definition{
		Name:          name,
		Description:   description,
		InputSchema:   schema,
		InputExamples: examples,
	}
}

// Stub is the minimal catalog representation of a tool: name and a short
// description, nothing else. Stubs never carry schemas or examples.
type Stub struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// APITool is the external tool-schema shape consumed by the model-facing
// API. Stub entries omit InputSchema and set DeferLoading; expanded entries
// carry the full schema and, optionally, the examples.
type APITool struct {
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	InputSchema   map[string]any   `json:"input_schema,omitempty"`
	InputExamples []map[string]any `json:"input_examples,omitempty"`
	DeferLoading  bool             `json:"defer_loading,omitempty"`
}

// APIOptions controls ToolsForAPI output.
type APIOptions struct {
	// IncludeExamples attaches each tool's InputExamples to its APITool.
	IncludeExamples bool
	// Names restricts output to the given tools. Unknown names are skipped.
	// Nil means all registered tools.
	Names []string
}

// DetailLevel selects how much of a tool's definition Describe reveals.
type DetailLevel string

const (
	// DetailStub returns only the name and truncated description.
	DetailStub DetailLevel = "stub"
	// DetailSchema adds the full description and input schema.
	DetailSchema DetailLevel = "schema"
	// DetailFull adds the input examples.
	DetailFull DetailLevel = "full"
)

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	case []map[string]any:
		out := make([]map[string]any, len(t))
		for i, item := range t {
			out[i] = cloneMap(item)
		}
		return out
	default:
		return v
	}
}

func truncateDescription(s string) string {
	if len(s) <= MaxStubDescriptionLen {
		return s
	}
	cut := MaxStubDescriptionLen - 3
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut] + "..."
}
