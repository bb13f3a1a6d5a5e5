package llm

import "github.com/joseph-ayodele/po-invoice-matcher/internal/entity"

// BuildComparisonJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// It is embedded in the prompt and used locally to validate the reply.
func BuildComparisonJSONSchema() map[string]any {
	values := map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	}
	difference := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"type": map[string]any{
				"type": "string",
				"enum": []string{
					string(entity.DifferenceAmount),
					string(entity.DifferenceDate),
					string(entity.DifferenceDescription),
				},
			},
			"poValues":      values,
			"invoiceValues": values,
			"match":         map[string]any{"type": "boolean"},
		},
		"required": []string{"type", "poValues", "invoiceValues", "match"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"differences": map[string]any{
				"type":  "array",
				"items": difference,
			},
			"recommendations": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []string{"differences", "recommendations"},
	}
}
