package strategy

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"google.golang.org/genai"
)

// ValidateOutput parses text as JSON and checks it against schema: every
// required property must be present and non-null, and every present property
// must have the declared type, recursively.
func ValidateOutput(text string, schema *genai.Schema) error {
	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	if schema == nil {
		return nil
	}

	if problem := check(doc, schema, "$"); problem != "" {
		return fmt.Errorf("%w: %s", ErrContractViolation, problem)
	}
	return nil
}

// check returns a description of the first mismatch under path, or "".
func check(v any, s *genai.Schema, path string) string {
	if s == nil {
		return ""
	}

	switch s.Type {
	case genai.TypeString:
		if _, ok := v.(string); !ok {
			return mismatch(path, "string", v)
		}

	case genai.TypeNumber:
		if _, ok := v.(float64); !ok {
			return mismatch(path, "number", v)
		}

	case genai.TypeInteger:
		f, ok := v.(float64)
		if !ok || f != math.Trunc(f) {
			return mismatch(path, "integer", v)
		}

	case genai.TypeBoolean:
		if _, ok := v.(bool); !ok {
			return mismatch(path, "boolean", v)
		}

	case genai.TypeArray:
		items, ok := v.([]any)
		if !ok {
			return mismatch(path, "array", v)
		}
		if s.Items == nil {
			return ""
		}
		for i, item := range items {
			if problem := check(item, s.Items, fmt.Sprintf("%s[%d]", path, i)); problem != "" {
				return problem
			}
		}

	case genai.TypeObject:
		obj, ok := v.(map[string]any)
		if !ok {
			return mismatch(path, "object", v)
		}
		for _, name := range s.Required {
			if val, present := obj[name]; !present || val == nil {
				return fmt.Sprintf("%s.%s is required", path, name)
			}
		}
		for _, name := range propertyNames(s) {
			val, present := obj[name]
			if !present || val == nil {
				continue
			}
			if problem := check(val, s.Properties[name], path+"."+name); problem != "" {
				return problem
			}
		}
	}

	return ""
}

func propertyNames(s *genai.Schema) []string {
	if len(s.PropertyOrdering) > 0 {
		return s.PropertyOrdering
	}
	return slices.Sorted(maps.Keys(s.Properties))
}

func mismatch(path, want string, got any) string {
	return fmt.Sprintf("%s must be %s, got %s", path, want, jsonKind(got))
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return strings.ToLower(fmt.Sprintf("%T", v))
}
