package strip

import "github.com/arobrien/nbstripout/pkg/notebook"

// StripZeppelin clears the results of every paragraph in a Zeppelin note.
// The document is mutated in place and returned.
func StripZeppelin(nb notebook.Document) notebook.Document {
	paragraphs, _ := notebook.AsList(nb["paragraphs"])
	for _, raw := range paragraphs {
		pg, ok := notebook.AsMap(raw)
		if !ok {
			continue
		}
		if _, has := pg["results"]; has {
			pg["results"] = map[string]any{}
		}
	}
	return nb
}
