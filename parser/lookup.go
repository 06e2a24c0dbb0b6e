package parser

import (
	"encoding/json"
	"strconv"
)

// lookup walks nested JSON objects along path. It reports false when any
// step is missing, is not an object, or the leaf is null.
func lookup(doc map[string]any, path ...string) (any, bool) {
	var current any = doc
	for _, key := range path {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[key]
		if !ok || current == nil {
			return nil, false
		}
	}
	return current, true
}

// lookupString renders the value at path as text, or def when absent.
func lookupString(doc map[string]any, def string, path ...string) string {
	value, ok := lookup(doc, path...)
	if !ok {
		return def
	}
	return scalarString(value, def)
}

// lookupObjects returns the objects of the array at path.
func lookupObjects(doc map[string]any, path ...string) []map[string]any {
	value, ok := lookup(doc, path...)
	if !ok {
		return nil
	}
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

func scalarString(value any, def string) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return def
		}
		return string(data)
	}
}
