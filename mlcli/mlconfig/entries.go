package mlconfig

import (
	"fmt"
	"sort"
	"strings"

	"github.com/imdario/mergo"
	"github.com/pkg/errors"

	"go.jetpack.io/mlpad/goutil"
	"go.jetpack.io/mlpad/goutil/errorutil"
)

// Entry is one resource declaration of a file. Err is set when the
// declaration is malformed; the other entries of the file are still
// usable.
type Entry[T any] struct {
	Index int
	Name  string
	Spec  T
	Err   error
}

// Label names the entry in messages: its name, or its position when it
// has none.
func (e Entry[T]) Label() string {
	if e.Name != "" {
		return e.Name
	}
	return fmt.Sprintf("#%d", e.Index+1)
}

type entryRules[T any] struct {
	// nameKey is the key holding the entry name, "name" when empty.
	nameKey  string
	required []string
	// defaults fill keys an entry leaves out.
	defaults map[string]any
	checks   []func(*T) error
}

// decodeCollection accepts either form of decodeList and decodeMap.
func decodeCollection[T any](d *Document, key string, rules entryRules[T]) ([]Entry[T], error) {
	if _, isMap := d.Data[key].(map[string]any); isMap {
		return decodeMap(d, key, rules)
	}
	return decodeList(d, key, rules)
}

// decodeList decodes a list of objects. A missing or null key yields no
// entries.
func decodeList[T any](d *Document, key string, rules entryRules[T]) ([]Entry[T], error) {
	raw, ok := d.Data[key]
	if !ok || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, errorutil.NewUserErrorf("%s: %s must be a list", d.Path, key)
	}
	entries := make([]Entry[T], len(list))
	for i, item := range list {
		entries[i] = decodeEntry(i, item, rules)
	}
	return entries, nil
}

func (r entryRules[T]) nameField() string {
	if r.nameKey == "" {
		return "name"
	}
	return r.nameKey
}

// decodeMap decodes an object of objects, keyed by entry name. Entries
// are sorted by key and inherit the key as their name when they have
// none.
func decodeMap[T any](d *Document, key string, rules entryRules[T]) ([]Entry[T], error) {
	raw, ok := d.Data[key]
	if !ok || raw == nil {
		return nil, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, errorutil.NewUserErrorf("%s: %s must be an object", d.Path, key)
	}
	keys := goutil.SortedKeys(m)
	entries := make([]Entry[T], len(keys))
	for i, k := range keys {
		item := m[k]
		if obj, ok := item.(map[string]any); ok {
			if _, named := obj[rules.nameField()]; !named {
				withName := map[string]any{rules.nameField(): k}
				for ok, ov := range obj {
					withName[ok] = ov
				}
				item = withName
			}
		}
		entries[i] = decodeEntry(i, item, rules)
	}
	return entries, nil
}

func decodeEntry[T any](index int, item any, rules entryRules[T]) Entry[T] {
	e := Entry[T]{Index: index}
	obj, ok := item.(map[string]any)
	if !ok {
		e.Err = errorutil.NewUserErrorf("entry %s is not an object", e.Label())
		return e
	}
	e.Name, _ = obj[rules.nameField()].(string)

	if len(rules.defaults) > 0 {
		merged := map[string]any{}
		for k, v := range obj {
			merged[k] = v
		}
		if err := mergo.Merge(&merged, rules.defaults); err != nil {
			e.Err = errors.Wrap(err, "failed to apply defaults")
			return e
		}
		obj = merged
	}

	if missing := goutil.MissingKeys(obj, rules.required...); len(missing) > 0 {
		sort.Strings(missing)
		e.Err = errorutil.NewUserErrorf(
			"entry %s is missing required keys: %s", e.Label(), strings.Join(missing, ", "))
		return e
	}
	if err := remarshal(obj, &e.Spec); err != nil {
		e.Err = errorutil.NewUserErrorf("entry %s is malformed: %v", e.Label(), errors.Cause(err))
		return e
	}
	for _, check := range rules.checks {
		if err := check(&e.Spec); err != nil {
			e.Err = err
			return e
		}
	}
	return e
}

// defaultsOf returns the object under "defaults" in the document, if any.
func defaultsOf(d *Document) map[string]any {
	m, _ := d.Data["defaults"].(map[string]any)
	return m
}
