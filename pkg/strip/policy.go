package strip

import (
	"fmt"

	"github.com/arobrien/nbstripout/pkg/notebook"
)

// keepOutputTag is the cell tag equivalent of the keep_output metadata key.
const keepOutputTag = "keep_output"

// ContradictionError reports a cell whose keep_output metadata key is false
// while its tags simultaneously say keep. The document is inconsistent and
// must not be resolved silently one way or the other.
type ContradictionError struct {
	Cell int // flattened cell index
}

func (e *ContradictionError) Error() string {
	return fmt.Sprintf("cell %d metadata contradicts tags: keep_output is false, but keep_output in tags", e.Cell)
}

// keepOutputForCell decides whether a single cell's outputs are kept.
//
// An init_cell marking is the strongest signal and fully overrides the
// keep_output key and tag: the cell's outputs are kept exactly when the
// marking is true and init-cell stripping is not forced. Otherwise the
// keep_output metadata key and the keep_output tag are combined with OR
// when either is present, and the default applies when neither is.
func keepOutputForCell(cell map[string]any, index int, def, stripInitCells bool) (bool, error) {
	metaRaw, ok := cell["metadata"]
	if !ok {
		return def, nil
	}
	meta, ok := notebook.AsMap(metaRaw)
	if !ok {
		return false, fmt.Errorf("cell %d: metadata is not a mapping", index)
	}

	if v, ok := meta["init_cell"]; ok {
		return notebook.Truthy(v) && !stripInitCells, nil
	}

	metaVal, hasMetaKey := meta[keepOutputTag]
	keepMeta := hasMetaKey && notebook.Truthy(metaVal)
	hasTag := cellHasTag(meta, keepOutputTag)

	if hasMetaKey && hasTag && !keepMeta {
		return false, &ContradictionError{Cell: index}
	}
	if hasMetaKey || hasTag {
		return keepMeta || hasTag, nil
	}
	return def, nil
}

// cellHasTag reports whether tag appears in the metadata's tags list.
func cellHasTag(meta map[string]any, tag string) bool {
	tags, _ := notebook.AsList(meta["tags"])
	for _, t := range tags {
		if s, ok := notebook.AsString(t); ok && s == tag {
			return true
		}
	}
	return false
}
