package strip

import (
	"reflect"
	"testing"

	"github.com/arobrien/nbstripout/pkg/notebook"
)

func TestStripZeppelin(t *testing.T) {
	nb := notebook.Document{
		"name": "note",
		"paragraphs": []any{
			map[string]any{
				"text": "%md hello",
				"results": map[string]any{
					"code": "SUCCESS",
					"msg":  []any{map[string]any{"type": "HTML", "data": "<p>hello</p>"}},
				},
			},
			map[string]any{"text": "%sql select 1"},
		},
	}

	got := StripZeppelin(nb)

	paragraphs, _ := notebook.AsList(got["paragraphs"])

	first, _ := notebook.AsMap(paragraphs[0])
	if !reflect.DeepEqual(first["results"], map[string]any{}) {
		t.Errorf("results should be cleared to an empty mapping, got %v", first["results"])
	}
	if first["text"] != "%md hello" {
		t.Error("paragraph text should be untouched")
	}

	second, _ := notebook.AsMap(paragraphs[1])
	if _, has := second["results"]; has {
		t.Error("paragraph without results should not gain one")
	}

	if got["name"] != "note" {
		t.Error("top-level fields should be untouched")
	}
}

func TestStripZeppelin_Idempotent(t *testing.T) {
	nb := notebook.Document{
		"paragraphs": []any{
			map[string]any{"results": map[string]any{"code": "SUCCESS"}},
		},
	}
	once := StripZeppelin(nb)
	twice := StripZeppelin(once)
	if !reflect.DeepEqual(once, twice) {
		t.Error("stripping twice differs from stripping once")
	}
}
