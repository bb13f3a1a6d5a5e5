package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// StripCodeFences removes a surrounding markdown code fence (```json ... ```).
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the info string ("json") on the opening fence line
		if !strings.ContainsAny(s[:nl], "{[") {
			s = s[nl+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// NormalizeComparisonJSON
// - Strips markdown fences
// - Drops overallFlag (recomputed locally, never trusted)
// - Lower-cases difference types
// - Coerces numeric entries in poValues/invoiceValues to strings
// Anything structurally wrong is left for schema validation to reject.
func NormalizeComparisonJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(StripCodeFences(string(raw))), &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 2)
	if _, ok := m["overallFlag"]; ok {
		delete(m, "overallFlag")
		dropped = append(dropped, "overallFlag")
	}

	if diffs, ok := m["differences"].([]any); ok {
		for _, d := range diffs {
			dm, ok := d.(map[string]any)
			if !ok {
				continue
			}
			if t, ok := dm["type"].(string); ok {
				dm["type"] = strings.ToLower(strings.TrimSpace(t))
			}
			for _, k := range []string{"poValues", "invoiceValues"} {
				vals, ok := dm[k].([]any)
				if !ok {
					continue
				}
				for i, v := range vals {
					if f, ok := v.(float64); ok {
						vals[i] = strconv.FormatFloat(f, 'f', -1, 64)
					}
				}
			}
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Debug("llm.compare.normalize_sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}

// ParseComparison turns a raw reasoner reply into a ComparisonResponse. It
// fails closed: any decode or schema violation yields ErrInvalidResponse.
func ParseComparison(raw string, logger *slog.Logger) (ComparisonResponse, error) {
	cleaned, _, err := NormalizeComparisonJSON([]byte(raw), logger)
	if err != nil {
		return ComparisonResponse{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if err := ValidateJSONAgainstSchema(BuildComparisonJSONSchema(), cleaned); err != nil {
		return ComparisonResponse{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	var out ComparisonResponse
	if err := json.Unmarshal(cleaned, &out); err != nil {
		return ComparisonResponse{}, fmt.Errorf("%w: unmarshal: %v", ErrInvalidResponse, err)
	}
	return out, nil
}
