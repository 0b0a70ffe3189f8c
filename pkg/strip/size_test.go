package strip

import (
	"encoding/json"
	"testing"
)

func TestSize(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want int
	}{
		{"string", "hello", 5},
		{"empty string", "", 0},
		{"list sums elements", []any{"ab", "cde"}, 5},
		{"map sums values not keys", map[string]any{"ignored-key": "abc"}, 3},
		{"number uses textual length", json.Number("1234"), 4},
		{"nested output", map[string]any{
			"data": map[string]any{
				"text/plain": []any{"42\n"},
			},
			"execution_count": json.Number("7"),
		}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Size(tt.v); got != tt.want {
				t.Errorf("Size(%v) = %d, want %d", tt.v, got, tt.want)
			}
		})
	}
}
