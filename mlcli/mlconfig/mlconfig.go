// Package mlconfig loads the declarative files that describe workspace
// resources. Files may be JSON or YAML, may reference environment
// variables as ${VAR}, and may contain {"reference": "a.b.c"} objects
// pointing at other values in the same file.
package mlconfig

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/drone/envsubst"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"

	"go.jetpack.io/mlpad/goutil"
	"go.jetpack.io/mlpad/goutil/errorutil"
)

// Kind names a resource file in the conventional layout.
type Kind string

const (
	KindCompute     Kind = "compute"
	KindData        Kind = "data"
	KindEnvironment Kind = "environment"
	KindComponent   Kind = "components"
	KindPipeline    Kind = "pipelines"
)

// Kinds in the order they are applied. Later kinds may depend on earlier
// ones (components on environments, pipelines on components).
var Kinds = []Kind{KindCompute, KindData, KindEnvironment, KindComponent, KindPipeline}

// ConventionalPath returns <root>/variables/<env>/<kind>/<kind>.json, the
// place each kind is looked for when no explicit file is given.
func ConventionalPath(root, env string, kind Kind) string {
	return filepath.Join(root, "variables", env, string(kind), string(kind)+".json")
}

// Document is a loaded config file with variables substituted and
// references resolved.
type Document struct {
	Path string
	Data map[string]any
}

// Expression syntaxes of Azure ML commands that must survive variable
// substitution untouched.
var protectedExprs = []string{"${{", "$[["}

// protectMarker stands in for a protected expression while envsubst runs.
// It must be plain text: envsubst stops reading at a NUL byte.
const protectMarker = "__mlpad_expr_"

// Load reads path from fs. lookup resolves ${VAR} references; pass nil to
// use the process environment.
func Load(fs afero.Fs, path string, lookup func(string) string) (*Document, error) {
	data, err := afero.ReadFile(fs, path)
	if os.IsNotExist(err) {
		return nil, errorutil.CombinedError(
			errors.Wrap(ErrConfigNotFound, path),
			errorutil.NewUserErrorf("Config file %s does not exist", path),
		)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return Parse(path, data, lookup)
}

// Parse is Load for content already in memory. path is only used in
// messages.
func Parse(path string, data []byte, lookup func(string) string) (*Document, error) {
	if lookup == nil {
		lookup = os.Getenv
	}
	substituted, err := substitute(string(data), lookup)
	if err != nil {
		return nil, errorutil.NewUserErrorf("%s: invalid variable substitution: %v", path, err)
	}

	raw := map[string]any{}
	if err := yaml.Unmarshal([]byte(substituted), &raw); err != nil {
		return nil, errorutil.NewUserErrorf("%s is not valid JSON or YAML: %v", path, err)
	}

	resolved, err := Resolve(raw)
	if err != nil {
		return nil, errorutil.CombinedError(
			errors.WithStack(err),
			errorutil.NewUserErrorf("%s: %v", path, err),
		)
	}
	return &Document{Path: path, Data: resolved}, nil
}

func exprMarker(i int) string {
	return protectMarker + strconv.Itoa(i) + "__"
}

func substitute(s string, lookup func(string) string) (string, error) {
	for i, expr := range protectedExprs {
		s = strings.ReplaceAll(s, expr, exprMarker(i))
	}
	out, err := envsubst.Eval(s, lookup)
	if err != nil {
		return "", errors.WithStack(err)
	}
	for i, expr := range protectedExprs {
		out = strings.ReplaceAll(out, exprMarker(i), expr)
	}
	return out, nil
}

// Has reports whether the document has a non-null top level key.
func (d *Document) Has(key string) bool {
	v, ok := d.Data[key]
	return ok && v != nil
}

// String returns a nested string value by dot path, or "".
func (d *Document) String(dotPath string) string {
	s, _ := goutil.DigString(d.Data, dotPath)
	return s
}

// Decode converts the value at dotPath into out through its JSON form.
func (d *Document) Decode(dotPath string, out any) error {
	v, ok := goutil.DigGet(d.Data, dotPath)
	if !ok {
		return errorutil.NewUserErrorf("%s: missing key %s", d.Path, dotPath)
	}
	return errors.Wrapf(remarshal(v, out), "%s: invalid %s", d.Path, dotPath)
}

func remarshal(in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(json.Unmarshal(data, out))
}
