// internal/common/validation/schema.go
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// ValidationError describes one schema violation in an inbound payload.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult collects violations for a payload.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// orderContextSchema is the contract the collaborator layer must satisfy
// when opening a session. Quantities and prices are whole non-negative
// numbers; items must carry a non-empty name.
const orderContextSchema = `{
	"type": "object",
	"required": ["items"],
	"additionalProperties": true,
	"properties": {
		"items": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["name", "price"],
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"price": {"type": "integer", "minimum": 0},
					"quantity": {"type": "integer", "minimum": 1}
				}
			}
		},
		"maintenanceAddOn": {"type": "boolean"},
		"insuranceAddOn": {"type": "boolean"},
		"termMonths": {"type": "integer", "minimum": 1, "maximum": 84},
		"downPayment": {"type": "integer", "minimum": 0},
		"customerEmail": {"type": "string", "format": "email"}
	}
}`

var orderSchema = gojsonschema.NewStringLoader(orderContextSchema)

// ValidateOrderContext checks a raw order-context JSON document against the
// inbound schema.
func ValidateOrderContext(raw []byte) (*ValidationResult, error) {
	result, err := gojsonschema.Validate(orderSchema, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("order context validation: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return out, nil
}

// Summary flattens the violations into one line for error details.
func (r *ValidationResult) Summary() string {
	if r.Valid {
		return ""
	}
	s := ""
	for i, e := range r.Errors {
		if i > 0 {
			s += "; "
		}
		s += fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return s
}
