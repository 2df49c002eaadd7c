package mlconfig

import (
	"github.com/pkg/errors"

	"go.jetpack.io/mlpad/goutil"
)

const (
	referenceKey = "reference"
	// Chains of references longer than this are treated as cycles.
	maxReferenceDepth = 16
)

// Resolve replaces every {"reference": "a.b.c"} object in doc with the
// value found at that dot path in doc. A reference object with other keys
// keeps them and receives the resolved value under "type", which is how
// component inputs point at shared type definitions:
//
//	{"reference": "types.uri_folder", "optional": true}
//	-> {"type": "uri_folder", "optional": true}
//
// doc is not modified.
func Resolve(doc map[string]any) (map[string]any, error) {
	out, err := resolve(doc, doc, 0)
	if err != nil {
		return nil, err
	}
	return out.(map[string]any), nil
}

func resolve(node any, root map[string]any, depth int) (any, error) {
	switch n := node.(type) {
	case map[string]any:
		if ref, ok := n[referenceKey].(string); ok {
			target, err := lookupReference(ref, root, depth)
			if err != nil {
				return nil, err
			}
			if len(n) == 1 {
				return target, nil
			}
			out := map[string]any{}
			for k, v := range n {
				if k == referenceKey {
					continue
				}
				rv, err := resolve(v, root, depth)
				if err != nil {
					return nil, err
				}
				out[k] = rv
			}
			out["type"] = target
			return out, nil
		}
		out := make(map[string]any, len(n))
		for k, v := range n {
			rv, err := resolve(v, root, depth)
			if err != nil {
				return nil, err
			}
			out[k] = rv
		}
		return out, nil
	case []any:
		out := make([]any, len(n))
		for i, v := range n {
			rv, err := resolve(v, root, depth)
			if err != nil {
				return nil, err
			}
			out[i] = rv
		}
		return out, nil
	default:
		return node, nil
	}
}

func lookupReference(ref string, root map[string]any, depth int) (any, error) {
	if depth >= maxReferenceDepth {
		return nil, errors.Errorf("reference %q is part of a cycle", ref)
	}
	target, ok := goutil.DigGet(root, ref)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownReference, "%q", ref)
	}
	return resolve(target, root, depth+1)
}
