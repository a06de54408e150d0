package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/abhisek/mathsheet/internal/worksheet"
)

// paramProperties describes worksheet.Params. Every field is optional;
// missing fields fall back to the preset or the configured defaults.
func paramProperties() map[string]any {
	return map[string]any{
		"problem_type": map[string]any{"type": "string", "enum": []any{"simple_calculation", "find_missing_number"}},
		"max_number":   map[string]any{"type": "integer", "minimum": 1, "maximum": worksheet.MaxNumberLimit},
		"num_operands": map[string]any{"type": "integer", "minimum": 2, "maximum": worksheet.MaxOperandsLimit},
		"operators":    map[string]any{"type": "string", "enum": []any{"add_subtract", "multiply_divide", "all"}},
		"num_problems": map[string]any{"type": "integer", "minimum": 1, "maximum": worksheet.MaxProblemsLimit},
		"op_mode":      map[string]any{"type": "string", "enum": []any{"mixed", "sequential"}},
	}
}

// worksheetRequestSchema validates the body of POST /api/worksheets.
func worksheetRequestSchema() map[string]any {
	props := paramProperties()
	props["seed"] = map[string]any{"type": "integer", "minimum": 0}
	props["preset"] = map[string]any{"type": "string", "minLength": 1}
	props["columns"] = map[string]any{"type": "integer", "minimum": 1, "maximum": 6}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
}

// presetSchema validates the body of PUT /api/presets/{name}.
func presetSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           paramProperties(),
		"additionalProperties": false,
	}
}

// schemaCache caches compiled JSON schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// validateBody checks raw against the named schema. The returned error
// message is safe to show to API clients.
func validateBody(name string, def map[string]any, raw []byte) error {
	compiled, err := compiledSchema(name, def)
	if err != nil {
		return err
	}

	// jsonschema wants numbers decoded as json.Number to tell integers apart.
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := compiled.Validate(inst); err != nil {
		return fmt.Errorf("request does not match schema: %w", err)
	}
	return nil
}

func compiledSchema(name string, def map[string]any) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// Round-trip through JSON so the compiler sees plain decoded values.
	defBytes, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	defParsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(defBytes))
	if err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(schemaURL, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(name, compiled)
	return compiled, nil
}
