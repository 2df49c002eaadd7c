package goutil

import (
	"strings"

	"github.com/samber/lo"
)

// NonEmptyFilter to be used with lo.Filter
func NonEmptyFilter[T comparable](t T, _ int) bool {
	return t != lo.Empty[T]()
}

// MissingKeys returns the keys (in the order given) that are absent from m or
// hold a blank string.
func MissingKeys(m map[string]any, keys ...string) []string {
	return lo.Filter(keys, func(k string, _ int) bool {
		v, ok := m[k]
		if !ok || v == nil {
			return true
		}
		s, isString := v.(string)
		return isString && strings.TrimSpace(s) == ""
	})
}
