package notebook

import "encoding/json"

// AsMap returns v as a JSON object, if it is one.
func AsMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// AsList returns v as a JSON array, if it is one.
func AsList(v any) ([]any, bool) {
	l, ok := v.([]any)
	return l, ok
}

// AsString returns v as a string, if it is one.
func AsString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// Truthy reports whether a schemaless metadata value counts as true.
// Notebook metadata is written by many tools, so flags are not always
// proper booleans: numbers, strings and containers are interpreted the
// way a dynamic language would.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case json.Number:
		f, err := x.Float64()
		return err != nil || f != 0
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return true
	}
}
