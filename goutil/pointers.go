package goutil

import "github.com/samber/lo"

// Coalesce like lo.Coalesce, but without the second return value
func Coalesce[T comparable](v ...T) T {
	res, _ := lo.Coalesce(v...)
	return res
}

// Deref returns the value p points at, or the zero value when p is nil.
func Deref[T any](p *T) T {
	if p == nil {
		return lo.Empty[T]()
	}
	return *p
}
