package registry

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestValidateExamples_TooMany(t *testing.T) {
	examples := make([]map[string]any, MaxExamples+1)
	for i := range examples {
		examples[i] = map[string]any{"event_id": fmt.Sprintf("evt_%d", i)}
	}
	def := makeTestDefinition("create_event", "Create a new live streaming event")
	def.InputExamples = examples

	err := validateExamples(def)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if ve.ExampleIndex != MaxExamples {
		t.Errorf("ExampleIndex = %d, want %d", ve.ExampleIndex, MaxExamples)
	}
	if !strings.Contains(ve.Error(), "create_event") {
		t.Errorf("error message %q does not name the tool", ve.Error())
	}
}

func TestValidateExamples_TooDeep(t *testing.T) {
	nested := map[string]any{"leaf": "value"}
	for i := 0; i < MaxExampleDepth+1; i++ {
		nested = map[string]any{"level": nested}
	}
	def := makeTestDefinition("create_event", "Create a new live streaming event")
	def.InputExamples = []map[string]any{nested}

	err := validateExamples(def)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if ve.ExampleIndex != 0 {
		t.Errorf("ExampleIndex = %d, want 0", ve.ExampleIndex)
	}
}

func TestValidateExamples_TooManyKeys(t *testing.T) {
	wide := map[string]any{}
	for i := 0; i < MaxExampleKeys+1; i++ {
		wide[fmt.Sprintf("key_%d", i)] = i
	}
	def := makeTestDefinition("create_event", "Create a new live streaming event")
	def.InputExamples = []map[string]any{wide}

	if err := validateExamples(def); err == nil {
		t.Fatal("expected error for example exceeding key budget")
	}
}

func TestValidateExamples_NestedArrayCountsKeys(t *testing.T) {
	// Keys inside array elements count toward the budget too.
	items := make([]any, 0, MaxExampleKeys)
	for i := 0; i < MaxExampleKeys; i++ {
		items = append(items, map[string]any{fmt.Sprintf("k%d", i): i})
	}
	def := makeTestDefinition("create_event", "Create a new live streaming event")
	def.InputExamples = []map[string]any{{"items": items}}

	if err := validateExamples(def); err == nil {
		t.Fatal("expected error: array element keys exceed key budget")
	}
}

func TestValidateExamples_SchemaViolationDetail(t *testing.T) {
	def := Definition{
		Name:        "start_event",
		Description: "Start streaming for a scheduled event",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"event_id": map[string]any{"type": "string"},
				"quality":  map[string]any{"type": "string", "enum": []any{"720p", "1080p", "4k"}},
			},
			"required": []any{"event_id"},
		},
		InputExamples: []map[string]any{
			{"event_id": "evt_1", "quality": "1080p"},
			{"quality": "8k"},
		},
	}

	err := validateExamples(def)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if ve.ExampleIndex != 1 {
		t.Errorf("ExampleIndex = %d, want 1 (first conforming example must pass)", ve.ExampleIndex)
	}
	if ve.Detail == "" {
		t.Error("ValidationError.Detail is empty, want the violated constraint")
	}
	if ve.Unwrap() == nil {
		t.Error("ValidationError.Unwrap() = nil, want the underlying cause")
	}
}

func TestValidateExamples_BadSchema(t *testing.T) {
	def := Definition{
		Name:        "broken",
		Description: "Tool with a schema that does not compile",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"x": map[string]any{"type": "no_such_type"},
			},
		},
		InputExamples: []map[string]any{{"x": 1}},
	}

	if err := validateExamples(def); !errors.Is(err, ErrInvalidSchema) {
		t.Errorf("error = %v, want ErrInvalidSchema", err)
	}
}

func TestValidateExamples_NoExamplesSkipsCompilation(t *testing.T) {
	// Definitions without examples are not schema-compiled at
	// registration time, matching lazy compilation on the hot path.
	def := Definition{
		Name:        "lazy",
		Description: "Tool registered without examples",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"x": map[string]any{"type": "no_such_type"},
			},
		},
	}
	if err := validateExamples(def); err != nil {
		t.Errorf("validateExamples without examples error = %v, want nil", err)
	}
}

func TestValidationError_Message(t *testing.T) {
	ve := &ValidationError{
		Tool:         "create_event",
		ExampleIndex: 2,
		Detail:       "/quality: value must be one of \"720p\", \"1080p\", \"4k\"",
	}
	msg := ve.Error()
	for _, want := range []string{"create_event", "2", "/quality"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}
