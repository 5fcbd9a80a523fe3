package atlassian

// Document is an unstructured JSON object received from an upstream API.
type Document map[string]any

// String returns the value at key if it is a string.
func (d Document) String(key string) string {
	if d == nil {
		return ""
	}
	s, _ := d[key].(string)
	return s
}

// Map returns the nested object at key, or nil.
func (d Document) Map(key string) Document {
	if d == nil {
		return nil
	}
	m, _ := d[key].(map[string]any)
	return m
}

// Clone makes a deep copy, descending into nested objects and arrays.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return cloneObject(d)
}

func cloneObject(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneObject(t)
	case Document:
		return Document(cloneObject(t))
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
