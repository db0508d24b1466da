package graph

import "time"

// Record maps declared output names to converted values: Node, Relationship,
// string, int64, float64, bool, time.Time, []any, map[string]any or nil.
type Record map[string]any

// String returns the string value of key, or "" when absent or not a string.
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Float returns a numeric value of key as float64, or def.
func (r Record) Float(key string, def float64) float64 {
	return AsFloat(r[key], def)
}

// Int returns a numeric value of key as int, or 0.
func (r Record) Int(key string) int {
	switch v := r[key].(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// Node returns the node stored under key.
func (r Record) Node(key string) (Node, bool) {
	n, ok := r[key].(Node)
	return n, ok
}

// Time returns the timestamp stored under key.
func (r Record) Time(key string) (time.Time, bool) {
	t, ok := r[key].(time.Time)
	return t, ok
}

// Strings returns a list of strings stored under key, skipping non-strings.
func (r Record) Strings(key string) []string {
	return AsStrings(r[key])
}

// Maps returns a list of maps stored under key, skipping other elements.
func (r Record) Maps(key string) []map[string]any {
	list, _ := r[key].([]any)
	out := make([]map[string]any, 0, len(list))
	for _, v := range list {
		if m, ok := v.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// AsFloat converts a store numeric to float64.
func AsFloat(v any, def float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return def
}

// AsStrings converts a store list to []string, skipping non-strings.
func AsStrings(v any) []string {
	switch l := v.(type) {
	case []string:
		return l
	case []any:
		out := make([]string, 0, len(l))
		for _, e := range l {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Prop returns the string property key of a node or map.
func Prop(props map[string]any, key string) string {
	s, _ := props[key].(string)
	return s
}
