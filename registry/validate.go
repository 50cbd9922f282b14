package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Limits on input examples. Oversized examples are rejected at registration
// rather than trimmed, so what the registry serves is exactly what was
// accepted.
const (
	// MaxExamples is the maximum number of input examples per tool.
	MaxExamples = 10
	// MaxExampleDepth bounds nesting inside one example's arguments.
	MaxExampleDepth = 5
	// MaxExampleKeys bounds the total number of keys inside one example.
	MaxExampleKeys = 50
)

// validateExamples checks every input example against the definition's
// input schema. The first failure is returned as a *ValidationError naming
// the offending example index; the definition must not be stored.
func validateExamples(def Definition) error {
	if len(def.InputExamples) == 0 {
		return nil
	}
	if len(def.InputExamples) > MaxExamples {
		return &ValidationError{
			Tool:         def.Name,
			ExampleIndex: MaxExamples,
			Detail:       fmt.Sprintf("too many examples: %d exceeds limit of %d", len(def.InputExamples), MaxExamples),
		}
	}

	schema, err := compileSchema(def.InputSchema)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidSchema, def.Name, err)
	}

	for i, example := range def.InputExamples {
		if err := checkExampleSize(example); err != nil {
			return &ValidationError{Tool: def.Name, ExampleIndex: i, Detail: err.Error()}
		}
		instance, err := toJSONValue(example)
		if err != nil {
			return &ValidationError{Tool: def.Name, ExampleIndex: i, Detail: "example is not valid JSON", cause: err}
		}
		if err := schema.Validate(instance); err != nil {
			return &ValidationError{
				Tool:         def.Name,
				ExampleIndex: i,
				Detail:       constraintDetail(err),
				cause:        err,
			}
		}
	}
	return nil
}

func compileSchema(schema map[string]any) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	return compiler.Compile("schema.json")
}

// toJSONValue round-trips a value through JSON so the validator sees the
// same representation the wire would carry.
func toJSONValue(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// constraintDetail extracts the most specific violated constraint from a
// validator error.
func constraintDetail(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	loc := leaf.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return fmt.Sprintf("%s: %s", loc, leaf.Message)
}

func checkExampleSize(example map[string]any) error {
	keys := 0
	if err := walkExample(example, 1, &keys); err != nil {
		return err
	}
	return nil
}

func walkExample(v any, depth int, keys *int) error {
	if depth > MaxExampleDepth {
		return fmt.Errorf("arguments nested deeper than %d levels", MaxExampleDepth)
	}
	switch t := v.(type) {
	case map[string]any:
		*keys += len(t)
		if *keys > MaxExampleKeys {
			return fmt.Errorf("arguments contain more than %d keys", MaxExampleKeys)
		}
		for _, item := range t {
			if err := walkExample(item, depth+1, keys); err != nil {
				return err
			}
		}
	case []any:
		for _, item := range t {
			if err := walkExample(item, depth+1, keys); err != nil {
				return err
			}
		}
	}
	return nil
}
