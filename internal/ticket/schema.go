package ticket

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/cinelog/ticket-scanner/constants"
)

// BuildTicketJSONSchema returns a JSON-Schema (draft 2020-12 subset) for the
// eleven-key wire shape: every key string-or-null, no extras.
func BuildTicketJSONSchema() map[string]any {
	props := map[string]any{}
	for _, key := range constants.FieldKeys() {
		props[key] = map[string]any{"type": []string{"string", "null"}}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
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

// ValidateWireShape checks a marshaled Fields value round-trips through the
// canonical schema. Used at the provider seam before trusting parsed output.
func ValidateWireShape(f Fields) error {
	b, err := json.Marshal(f.ToMap())
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}
	return ValidateJSONAgainstSchema(BuildTicketJSONSchema(), b)
}
