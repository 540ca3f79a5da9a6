package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/cufe-extractor/internal/cufe"
)

// RecordsSchema returns the JSON-Schema (draft 2020-12 subset) of Document as a generic map.
func RecordsSchema() map[string]any {
	record := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"id":         map[string]any{"type": "integer", "minimum": 1},
			"file_name":  map[string]any{"type": "string", "minLength": 1},
			"page_count": map[string]any{"type": "integer", "minimum": 0},
			"identifier": map[string]any{
				"type":    []string{"string", "null"},
				"pattern": cufe.Pattern(),
			},
			"file_size":    map[string]any{"type": "string", "pattern": `^(\d+ B|\d+\.\d{2} (KB|MB))$`},
			"extracted_at": map[string]any{"type": "string", "minLength": 1},
		},
		"required": []string{"id", "file_name", "page_count", "identifier", "file_size", "extracted_at"},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"generated_at": map[string]any{"type": "string"},
			"count":        map[string]any{"type": "integer", "minimum": 0},
			"records":      map[string]any{"type": "array", "items": record},
		},
		"required": []string{"generated_at", "count", "records"},
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
