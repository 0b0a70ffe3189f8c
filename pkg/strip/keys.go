package strip

import (
	"strings"

	"github.com/arobrien/nbstripout/pkg/notebook"
)

// PopRecursive removes and returns the value at a dot-delimited key path,
// like map deletion where "a.b.c" walks nested objects. A key stored with a
// literal dot takes precedence over nested traversal: popping "a.b" from
// {"a.b": 1, "a": {"b": 2}} removes and returns 1. The second return value
// reports whether anything was removed.
func PopRecursive(m map[string]any, key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	if v, ok := m[key]; ok {
		delete(m, key)
		return v, true
	}
	head, tail, found := strings.Cut(key, ".")
	if !found {
		return nil, false
	}
	child, ok := notebook.AsMap(m[head])
	if !ok {
		return nil, false
	}
	return PopRecursive(child, tail)
}
