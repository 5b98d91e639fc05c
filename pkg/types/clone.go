package types

// CloneValue returns a structural copy of a JSON-shaped value: maps and
// slices are copied recursively, everything else is returned as is. Values
// outside the JSON model (funcs, channels, pointers) are shared, not copied.
func CloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneMap(t)
	case []any:
		if t == nil {
			return []any(nil)
		}
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = CloneValue(e)
		}
		return out
	case []string:
		if t == nil {
			return []string(nil)
		}
		out := make([]string, len(t))
		copy(out, t)
		return out
	default:
		return v
	}
}

// CloneMap copies a JSON object. A nil map stays nil.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = CloneValue(v)
	}
	return out
}
