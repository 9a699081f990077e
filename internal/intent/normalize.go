package intent

// Normalize brings raw, untyped provider output into a predictable shape
// before validation. It never rejects anything; absence, not null, represents
// "unset" once it is done. Normalizing an already-normalized value is a no-op.
func Normalize(raw any) any {
	v := deepCopy(raw)

	m, ok := v.(map[string]any)
	if !ok {
		return v
	}

	stripNulls(m)
	collapseEmptyObjects(m)
	coerceModifiers(m)
	coerceAlternatives(m)
	return m
}

// optionalObjectFields are fields whose empty-object value carries no
// information and is collapsed to absence.
var optionalObjectFields = map[string]bool{
	"modifiers": true,
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}
		return out
	case []any:
		out := make([]any, 0, len(t))
		for _, val := range t {
			out = append(out, deepCopy(val))
		}
		return out
	default:
		return v
	}
}

// stripNulls removes null-valued fields from objects and null elements from
// arrays, recursively. Empty arrays are preserved as-is.
func stripNulls(m map[string]any) {
	for k, v := range m {
		switch t := v.(type) {
		case nil:
			delete(m, k)
		case map[string]any:
			stripNulls(t)
		case []any:
			m[k] = stripNullElements(t)
		}
	}
}

func stripNullElements(arr []any) []any {
	out := arr[:0]
	for _, v := range arr {
		if v == nil {
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			stripNulls(nested)
		}
		out = append(out, v)
	}
	return out
}

func collapseEmptyObjects(m map[string]any) {
	for k, v := range m {
		if !optionalObjectFields[k] {
			continue
		}
		if nested, ok := v.(map[string]any); ok && len(nested) == 0 {
			delete(m, k)
		}
	}
}

// coerceModifiers guarantees that a present modifiers object always carries
// an exclude array.
func coerceModifiers(m map[string]any) {
	v, ok := m["modifiers"]
	if !ok {
		return
	}
	mods, ok := v.(map[string]any)
	if !ok {
		delete(m, "modifiers")
		return
	}
	if _, ok := mods["exclude"].([]any); !ok {
		mods["exclude"] = []any{}
	}
}

// coerceAlternatives rewrites each alternatives element into one of the two
// supported variants: bare objects carrying only a display name become plain
// strings, structured suggestions pass through, anything else is dropped.
func coerceAlternatives(m map[string]any) {
	v, ok := m["alternatives"]
	if !ok {
		return
	}
	arr, ok := v.([]any)
	if !ok {
		delete(m, "alternatives")
		return
	}

	out := make([]any, 0, len(arr))
	for _, el := range arr {
		switch t := el.(type) {
		case string:
			out = append(out, t)
		case map[string]any:
			if name, ok := bareName(t); ok {
				out = append(out, name)
			} else if isSuggestion(t) {
				out = append(out, t)
			}
		}
	}
	m["alternatives"] = out
}

func bareName(m map[string]any) (string, bool) {
	if len(m) != 1 {
		return "", false
	}
	name, ok := m["name"].(string)
	return name, ok
}

var suggestionFields = []string{"intent", "query", "theme", "enhancedQuery", "isAIDiscovery", "aiReasoning"}

func isSuggestion(m map[string]any) bool {
	for _, f := range suggestionFields {
		if _, ok := m[f]; ok {
			return true
		}
	}
	return false
}
