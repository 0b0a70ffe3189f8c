// Package strip implements the notebook stripping engine: the rules that
// decide, for a given document and configuration, which outputs, execution
// counters and metadata keys are removed, which cells are dropped entirely,
// and which are preserved. Stripping is a pure in-place transform and is
// idempotent: stripping an already-stripped document is a no-op.
package strip

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/arobrien/nbstripout/internal/logger"
	"github.com/arobrien/nbstripout/pkg/notebook"
)

// Options configures a stripping pass. The zero value strips everything:
// all outputs, all execution counters, no extra keys.
type Options struct {
	// KeepOutput suppresses output stripping. nil leaves the decision to
	// the notebook's own metadata.keep_output key, defaulting to false.
	KeepOutput *bool

	// KeepCount suppresses nulling of execution counters.
	KeepCount bool

	// ExtraKeys lists additional dot-delimited key paths to remove, rooted
	// at "metadata." (notebook level) or "cell." (per cell). Keys with any
	// other root are skipped with a warning.
	ExtraKeys []string

	// DropEmptyCells removes cells whose source is empty or whitespace.
	DropEmptyCells bool

	// DropTaggedCells removes cells carrying any of these tags.
	DropTaggedCells []string

	// StripInitCells strips outputs from cells marked init_cell: true,
	// which are otherwise always kept.
	StripInitCells bool

	// MaxSize keeps outputs whose textual size is at or below this many
	// bytes even when outputs are being stripped. The default 0 keeps
	// nothing.
	MaxSize int

	// Logger receives warnings about skipped configuration keys.
	// Defaults to the package logger.
	Logger *slog.Logger
}

// Bool returns a pointer to b, for setting Options.KeepOutput explicitly.
func Bool(b bool) *bool { return &b }

// Strip removes outputs, execution counters and configured metadata keys
// from a Jupyter document according to opts. The document is mutated in
// place and returned. On error the document's cell state is undefined.
func Strip(nb notebook.Document, opts Options) (notebook.Document, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}

	keepOutput := resolveKeepOutput(nb, opts.KeepOutput)
	metaKeys, cellKeys := partitionExtraKeys(opts.ExtraKeys, log)

	if meta, ok := notebook.AsMap(nb["metadata"]); ok {
		for _, key := range metaKeys {
			PopRecursive(meta, key)
		}
	}

	cells, err := filteredCells(nb, cellFilters(opts))
	if err != nil {
		return nil, err
	}

	for i, raw := range cells {
		cell, ok := notebook.AsMap(raw)
		if !ok {
			return nil, fmt.Errorf("cell %d is not a mapping", i)
		}

		keepThis, err := keepOutputForCell(cell, i, keepOutput, opts.StripInitCells)
		if err != nil {
			return nil, err
		}

		if raw, ok := cell["outputs"]; ok {
			outputs, ok := notebook.AsList(raw)
			if !ok {
				return nil, fmt.Errorf("cell %d: outputs is not a sequence", i)
			}

			// Default behavior (MaxSize == 0) strips all outputs.
			if !keepThis {
				kept := make([]any, 0, len(outputs))
				for _, out := range outputs {
					if Size(out) <= opts.MaxSize {
						kept = append(kept, out)
					}
				}
				outputs = kept
				cell["outputs"] = outputs
			}

			// Null the counts on whatever outputs remain.
			if !opts.KeepCount {
				for _, out := range outputs {
					if om, ok := notebook.AsMap(out); ok {
						if _, has := om["execution_count"]; has {
							om["execution_count"] = nil
						}
					}
				}
			}
		}

		if !opts.KeepCount {
			if _, has := cell["prompt_number"]; has {
				cell["prompt_number"] = nil
			}
			if _, has := cell["execution_count"]; has {
				cell["execution_count"] = nil
			}
		}

		for _, key := range cellKeys {
			PopRecursive(cell, key)
		}
	}

	return nb, nil
}

// resolveKeepOutput folds the tri-state option against the notebook's own
// metadata: an unset option defers to metadata.keep_output, and false is
// the default when both are absent.
func resolveKeepOutput(nb notebook.Document, opt *bool) bool {
	if opt != nil {
		return *opt
	}
	if meta, ok := notebook.AsMap(nb["metadata"]); ok {
		if v, ok := meta["keep_output"]; ok {
			return notebook.Truthy(v)
		}
	}
	return false
}

// partitionExtraKeys splits configured key paths by their root segment.
// Keys not rooted at metadata or cell, or with no dot at all, are skipped
// with a warning.
func partitionExtraKeys(keys []string, log *slog.Logger) (metaKeys, cellKeys []string) {
	for _, key := range keys {
		root, rest, found := strings.Cut(key, ".")
		switch {
		case !found, root != "cell" && root != "metadata":
			log.Warn("ignoring invalid extra key", "key", key)
		case root == "metadata":
			metaKeys = append(metaKeys, rest)
		default:
			cellKeys = append(cellKeys, rest)
		}
	}
	return metaKeys, cellKeys
}

// cellFilter reports whether a cell survives.
type cellFilter func(cell map[string]any) bool

func cellFilters(opts Options) []cellFilter {
	var filters []cellFilter
	if opts.DropEmptyCells {
		filters = append(filters, hasSourceContent)
	}
	for _, tag := range opts.DropTaggedCells {
		filters = append(filters, func(cell map[string]any) bool {
			meta, _ := notebook.AsMap(cell["metadata"])
			return !cellHasTag(meta, tag)
		})
	}
	return filters
}

// hasSourceContent reports whether any source line contains non-whitespace.
func hasSourceContent(cell map[string]any) bool {
	switch src := cell["source"].(type) {
	case string:
		return strings.TrimSpace(src) != ""
	case []any:
		for _, line := range src {
			if s, ok := notebook.AsString(line); ok && strings.TrimSpace(s) != "" {
				return true
			}
		}
	}
	return false
}

// filteredCells applies each filter in sequence over the document's cell
// collections, removing cells that fail and preserving the order of
// survivors, then returns the surviving cells as one flat list. Documents
// older than nbformat 4 keep their cells under worksheets; filtering is
// scoped per worksheet there, but the flattened result spans all of them.
func filteredCells(nb notebook.Document, filters []cellFilter) ([]any, error) {
	version := nb.Version()

	if version > 0 && version < 4 {
		worksheets, ok := notebook.AsList(nb["worksheets"])
		if !ok {
			return nil, fmt.Errorf("nbformat %d document has no worksheets sequence", version)
		}
		var all []any
		for i, raw := range worksheets {
			ws, ok := notebook.AsMap(raw)
			if !ok {
				return nil, fmt.Errorf("worksheet %d is not a mapping", i)
			}
			cells, ok := notebook.AsList(ws["cells"])
			if !ok {
				return nil, fmt.Errorf("worksheet %d has no cells sequence", i)
			}
			cells = applyFilters(cells, filters)
			ws["cells"] = cells
			all = append(all, cells...)
		}
		return all, nil
	}

	cells, ok := notebook.AsList(nb["cells"])
	if !ok {
		return nil, fmt.Errorf("document has no cells sequence")
	}
	cells = applyFilters(cells, filters)
	nb["cells"] = cells
	return cells, nil
}

func applyFilters(cells []any, filters []cellFilter) []any {
	for _, keep := range filters {
		kept := make([]any, 0, len(cells))
		for _, raw := range cells {
			cell, ok := notebook.AsMap(raw)
			if !ok || keep(cell) {
				kept = append(kept, raw)
			}
		}
		cells = kept
	}
	return cells
}
