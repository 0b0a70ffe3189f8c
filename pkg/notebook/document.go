// Package notebook models interactive-notebook documents as a schemaless
// JSON tree. Both Jupyter (cell-based) and Zeppelin (paragraph-based)
// documents are represented the same way: nested maps and slices as decoded
// by encoding/json, with numbers kept as json.Number so untouched fields
// round-trip without loss.
package notebook

import (
	"encoding/json"
	"fmt"
	"io"
)

// Document is the root of a parsed notebook. Fields the stripper does not
// touch pass through unchanged.
type Document map[string]any

// Read parses a notebook document from r.
func Read(r io.Reader) (Document, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse notebook: %w", err)
	}
	return doc, nil
}

// Write serializes a Jupyter document to w with the canonical notebook
// layout: one-space indent, lexically sorted keys, trailing newline.
func Write(w io.Writer, doc Document) error {
	return write(w, doc, " ")
}

// WriteZeppelin serializes a Zeppelin document to w with two-space indent.
func WriteZeppelin(w io.Writer, doc Document) error {
	return write(w, doc, "  ")
}

func write(w io.Writer, doc Document, indent string) error {
	data, err := json.MarshalIndent(doc, "", indent)
	if err != nil {
		return fmt.Errorf("serialize notebook: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write notebook: %w", err)
	}
	return nil
}

// Version returns the document's nbformat major version, or 0 when the
// field is absent or not a number.
func (d Document) Version() int {
	n, ok := d["nbformat"].(json.Number)
	if !ok {
		return 0
	}
	v, err := n.Int64()
	if err != nil {
		return 0
	}
	return int(v)
}

// IsZeppelin reports whether the document looks like a Zeppelin note
// (a top-level paragraphs field) rather than a Jupyter notebook.
func (d Document) IsZeppelin() bool {
	_, ok := d["paragraphs"]
	return ok
}
