package util

import (
	"encoding/json"
	"fmt"
	"sort"
)

// ParseSchema decodes an embedded JSON schema document into a map.
func ParseSchema(name, raw string) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("bad %s schema (embedded): %w", name, err)
	}
	return m, nil
}

// CloneSchema returns a deep copy so callers can mutate a schema without
// touching the shared definition.
func CloneSchema(m map[string]any) map[string]any {
	b, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil
	}
	return out
}

// FixJSONSchemaStrict приводит схему к «строгому» виду для OpenAI: для узлов с
// properties добавляем type=object, required со всеми полями и
// additionalProperties=false.
func FixJSONSchemaStrict(node any) {
	switch n := node.(type) {
	case map[string]any:
		if props, ok := n["properties"].(map[string]any); ok {
			if _, hasType := n["type"]; !hasType {
				n["type"] = "object"
			}
			req := make([]string, 0, len(props))
			for k := range props {
				req = append(req, k)
			}
			sort.Strings(req)
			reqAny := make([]any, len(req))
			for i, k := range req {
				reqAny[i] = k
			}
			n["required"] = reqAny
			n["additionalProperties"] = false
			for _, v := range props {
				FixJSONSchemaStrict(v)
			}
		}
		if items, ok := n["items"]; ok {
			switch it := items.(type) {
			case map[string]any:
				FixJSONSchemaStrict(it)
			case []any:
				for _, el := range it {
					FixJSONSchemaStrict(el)
				}
			}
		}
		for _, k := range []string{"oneOf", "anyOf", "allOf"} {
			if v, ok := n[k]; ok {
				if arr, ok := v.([]any); ok {
					for _, el := range arr {
						FixJSONSchemaStrict(el)
					}
				}
			}
		}
	case []any:
		for _, v := range n {
			FixJSONSchemaStrict(v)
		}
	}
}

// MarshalStable renders v as indented JSON. encoding/json writes struct fields
// in declaration order and map keys sorted, so equal inputs give equal bytes.
func MarshalStable(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "null"
	}
	return string(b)
}
