package field

import (
	"strconv"
	"strings"
)

// State is a snapshot of a bound field.
type State struct {
	// RawInput is the user-visible text; HasInput is false until the first
	// edit or default.
	RawInput string
	HasInput bool
	// Internal is the validated, normalized value.
	Internal any
	// External is the value exported to the bound source.
	External any
	Valid    bool
	Extra    map[string]any
	// Corrected is adopted on blur while HasCorrection is set.
	Corrected     string
	HasCorrection bool
	// OnlyDefault holds while the field still shows its unmodified default.
	OnlyDefault bool
	// Pending is set while an async validation for the live token has not
	// emitted yet.
	Pending bool
}

// ExtraValue resolves a dotted path (numeric segments index slices) inside
// Extra.
func (s State) ExtraValue(path string) (any, bool) {
	return getPath(s.Extra, path)
}

func (s State) clone() State {
	out := s
	out.Extra = cloneValues(s.Extra)
	return out
}

func cloneValues(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = deepCopy(v)
	}
	return out
}

func deepCopy(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = deepCopy(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = deepCopy(v)
		}
		return clone
	default:
		return typed
	}
}

func getPath(root map[string]any, path string) (any, bool) {
	if root == nil || path == "" {
		return nil, false
	}
	current := any(root)
	for _, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}
