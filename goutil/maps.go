package goutil

import (
	"sort"
	"strings"

	"golang.org/x/exp/maps"
)

// DigGet walks a nested map following a dot separated path, for example
// "properties.outputs.workspaceName.value". Every intermediate value must be a
// map[string]any. The second return value is false when any segment is
// missing.
func DigGet(m map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	var cur any = m
	for _, p := range strings.Split(path, ".") {
		asMap, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = asMap[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// DigString is DigGet for leaf values that must be strings.
func DigString(m map[string]any, path string) (string, bool) {
	v, ok := DigGet(m, path)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// FilterStringKeyMap removes nil values from a map recursively. It
// mutates the passed in value and returns it as well for convenience.
func FilterStringKeyMap(m map[string]any) map[string]any {
	for key, val := range m {
		if subMap, isMap := val.(map[string]any); isMap {
			FilterStringKeyMap(subMap)
		} else if val == nil {
			delete(m, key)
		}
	}
	return m
}

// SortedKeys returns the keys of m in lexical order.
func SortedKeys[V any](m map[string]V) []string {
	keys := maps.Keys(m)
	sort.Strings(keys)
	return keys
}
