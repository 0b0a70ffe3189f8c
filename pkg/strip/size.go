package strip

import "fmt"

// Size computes the aggregate textual size of a notebook output value:
// string length for strings, summed over elements for arrays and over
// values for objects (keys are not counted), and the length of the default
// textual representation for any other scalar.
func Size(v any) int {
	switch x := v.(type) {
	case string:
		return len(x)
	case []any:
		total := 0
		for _, e := range x {
			total += Size(e)
		}
		return total
	case map[string]any:
		total := 0
		for _, e := range x {
			total += Size(e)
		}
		return total
	default:
		return len(fmt.Sprint(x))
	}
}
