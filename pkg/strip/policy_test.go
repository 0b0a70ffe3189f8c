package strip

import (
	"errors"
	"testing"
)

func TestKeepOutputForCell(t *testing.T) {
	tests := []struct {
		name           string
		cell           map[string]any
		def            bool
		stripInitCells bool
		want           bool
	}{
		{
			name: "no metadata uses default",
			cell: map[string]any{"source": []any{"1+1"}},
			def:  true,
			want: true,
		},
		{
			name: "empty metadata uses default",
			cell: map[string]any{"metadata": map[string]any{}},
			def:  false,
			want: false,
		},
		{
			name: "keep_output true",
			cell: map[string]any{"metadata": map[string]any{"keep_output": true}},
			def:  false,
			want: true,
		},
		{
			name: "keep_output false overrides default",
			cell: map[string]any{"metadata": map[string]any{"keep_output": false}},
			def:  true,
			want: false,
		},
		{
			name: "keep_output tag",
			cell: map[string]any{"metadata": map[string]any{"tags": []any{"keep_output"}}},
			def:  false,
			want: true,
		},
		{
			name: "init_cell keeps output",
			cell: map[string]any{"metadata": map[string]any{"init_cell": true}},
			def:  false,
			want: true,
		},
		{
			name: "init_cell overrides explicit keep_output false",
			cell: map[string]any{"metadata": map[string]any{
				"init_cell":   true,
				"keep_output": false,
			}},
			def:  false,
			want: true,
		},
		{
			name: "init_cell overrides contradicting key and tag",
			cell: map[string]any{"metadata": map[string]any{
				"init_cell":   true,
				"keep_output": false,
				"tags":        []any{"keep_output"},
			}},
			def:  false,
			want: true,
		},
		{
			name:           "strip_init_cells forces strip",
			cell:           map[string]any{"metadata": map[string]any{"init_cell": true}},
			def:            true,
			stripInitCells: true,
			want:           false,
		},
		{
			name: "init_cell false strips",
			cell: map[string]any{"metadata": map[string]any{"init_cell": false}},
			def:  true,
			want: false,
		},
		{
			name: "keep_output true with matching tag is no contradiction",
			cell: map[string]any{"metadata": map[string]any{
				"keep_output": true,
				"tags":        []any{"keep_output"},
			}},
			def:  false,
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := keepOutputForCell(tt.cell, 0, tt.def, tt.stripInitCells)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKeepOutputForCell_Contradiction(t *testing.T) {
	cell := map[string]any{"metadata": map[string]any{
		"keep_output": false,
		"tags":        []any{"keep_output"},
	}}

	_, err := keepOutputForCell(cell, 3, false, false)
	if err == nil {
		t.Fatal("expected contradiction error")
	}

	var contra *ContradictionError
	if !errors.As(err, &contra) {
		t.Fatalf("expected *ContradictionError, got %T", err)
	}
	if contra.Cell != 3 {
		t.Errorf("expected cell index 3, got %d", contra.Cell)
	}
}

func TestKeepOutputForCell_MalformedMetadata(t *testing.T) {
	cell := map[string]any{"metadata": "not a mapping"}
	if _, err := keepOutputForCell(cell, 0, false, false); err == nil {
		t.Fatal("expected error for non-mapping metadata")
	}
}
