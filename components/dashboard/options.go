package dashboard

// OptionDocument is a generic, JSON-shaped chart option document.
type OptionDocument map[string]any

// CloneDocument returns a deep copy of doc. Nested OptionDocument values and
// typed slices of maps are normalised to map[string]any and []any.
func CloneDocument(doc OptionDocument) OptionDocument {
	if doc == nil {
		return OptionDocument{}
	}
	return OptionDocument(cloneMap(doc))
}

// MergeDocuments merges docs left to right into a fresh document; the
// rightmost value wins. Objects merge key by key, arrays and scalars replace
// wholesale, as Highcharts.merge does. Unlike Highcharts, an object merged onto
// an array merges into every object element, so an axis fragment styles every
// axis of a multi-axis chart.
func MergeDocuments(docs ...OptionDocument) OptionDocument {
	out := map[string]any{}
	for _, doc := range docs {
		mergeInto(out, doc)
	}
	return OptionDocument(out)
}

func mergeInto(dst, src map[string]any) {
	for key, value := range src {
		fragment, isMap := asMap(value)
		if !isMap {
			dst[key] = cloneValue(value)
			continue
		}
		switch existing := dst[key].(type) {
		case map[string]any:
			mergeInto(existing, fragment)
		case []any:
			for _, item := range existing {
				if elem, ok := item.(map[string]any); ok {
					mergeInto(elem, fragment)
				}
			}
		default:
			dst[key] = cloneMap(fragment)
		}
	}
}

func cloneMap(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case OptionDocument:
		return cloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneMap(item)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	case []float64:
		return append([]float64(nil), val...)
	case []int:
		return append([]int(nil), val...)
	default:
		return val
	}
}

func asMap(v any) (map[string]any, bool) {
	switch val := v.(type) {
	case map[string]any:
		return val, true
	case OptionDocument:
		return val, true
	default:
		return nil, false
	}
}

// ensureMap returns parent[key] as an object, creating it when absent or not
// an object.
func ensureMap(parent map[string]any, key string) map[string]any {
	if m, ok := asMap(parent[key]); ok {
		parent[key] = map[string]any(m)
		return m
	}
	m := map[string]any{}
	parent[key] = m
	return m
}

// eachObject visits the object held at doc[key], or every object element when
// doc[key] is an array.
func eachObject(doc map[string]any, key string, fn func(map[string]any)) {
	switch val := doc[key].(type) {
	case map[string]any:
		fn(val)
	case OptionDocument:
		fn(val)
	case []any:
		for _, item := range val {
			if m, ok := asMap(item); ok {
				fn(m)
			}
		}
	case []map[string]any:
		for _, item := range val {
			fn(item)
		}
	}
}

// spreadBlock replaces parent[key] with {...parent[key], ...fields}. A nil
// field value removes the key, mirroring an undefined spread value.
func spreadBlock(parent map[string]any, key string, fields map[string]any) map[string]any {
	block := map[string]any{}
	if existing, ok := asMap(parent[key]); ok {
		for k, v := range existing {
			block[k] = v
		}
	}
	for k, v := range fields {
		if v == nil {
			delete(block, k)
			continue
		}
		block[k] = v
	}
	parent[key] = block
	return block
}

// seriesObjects returns the object entries of doc.series, in order, with
// their index in the series array.
func seriesObjects(doc map[string]any) ([]map[string]any, []int) {
	var (
		out  []map[string]any
		idxs []int
	)
	switch list := doc["series"].(type) {
	case []any:
		for i, item := range list {
			if m, ok := asMap(item); ok {
				out = append(out, m)
				idxs = append(idxs, i)
			}
		}
	case []map[string]any:
		for i, item := range list {
			out = append(out, item)
			idxs = append(idxs, i)
		}
	}
	return out, idxs
}

func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}
