// Package schemacheck validates configuration files against JSON schemas
// that live in a parallel json_schema tree:
//
//	config/dev/compute/compute.json
//	config/json_schema/compute/compute_schema.json
//
// The first directory under the root (usually the environment name) is
// swapped for json_schema and the file name gets a _schema.json suffix.
package schemacheck

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
	ignore "github.com/sabhiram/go-gitignore"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/xeipuuv/gojsonschema"
	"sigs.k8s.io/yaml"

	"go.jetpack.io/mlpad/pkg/padlog"
)

const (
	SchemaDir = "json_schema"

	// DefaultIgnoreFile is read from the root when present. It uses
	// .gitignore syntax.
	DefaultIgnoreFile = ".schemaignore"
)

var (
	DefaultInclude = []string{"**.json", "**.yaml", "**.yml"}
	excludedNames  = []string{"parameters.json"}
)

type Options struct {
	Root string
	// Include holds glob patterns matched against root relative, slash
	// separated paths. Defaults to DefaultInclude.
	Include []string
	// IgnoreFile defaults to DefaultIgnoreFile under Root.
	IgnoreFile string
}

type Validator struct {
	fs      afero.Fs
	root    string
	include []glob.Glob
	ignore  *ignore.GitIgnore
	log     *logrus.Entry
}

func New(fs afero.Fs, opts Options) (*Validator, error) {
	if opts.Root == "" {
		return nil, errors.New("root directory is required")
	}
	patterns := opts.Include
	if len(patterns) == 0 {
		patterns = DefaultInclude
	}
	include := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, errors.Wrapf(err, "invalid include pattern %q", p)
		}
		include = append(include, g)
	}

	v := &Validator{
		fs:      fs,
		root:    filepath.Clean(opts.Root),
		include: include,
		log:     padlog.Events("schemacheck"),
	}

	ignoreFile := opts.IgnoreFile
	if ignoreFile == "" {
		ignoreFile = filepath.Join(v.root, DefaultIgnoreFile)
	}
	data, err := afero.ReadFile(fs, ignoreFile)
	switch {
	case err == nil:
		v.ignore = ignore.CompileIgnoreLines(strings.Split(string(data), "\n")...)
	case opts.IgnoreFile != "":
		return nil, errors.Wrapf(err, "failed to read ignore file %s", ignoreFile)
	}
	return v, nil
}

func (v *Validator) Root() string {
	return v.root
}

// Ignored reports whether a root relative path is excluded by the ignore
// file.
func (v *Validator) Ignored(rel string) bool {
	return v.ignore != nil && v.ignore.MatchesPath(filepath.ToSlash(rel))
}

// Gather returns the config files under the root, relative to it and
// sorted.
func (v *Validator) Gather() ([]string, error) {
	files := []string{}
	err := afero.Walk(v.fs, v.root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return errors.WithStack(err)
		}
		rel, err := filepath.Rel(v.root, p)
		if err != nil {
			return errors.WithStack(err)
		}
		rel = filepath.ToSlash(rel)
		if info.IsDir() {
			if rel != "." && (strings.HasPrefix(info.Name(), ".") || rel == SchemaDir || v.Ignored(rel)) {
				return filepath.SkipDir
			}
			return nil
		}
		if lo.Contains(excludedNames, info.Name()) || v.Ignored(rel) {
			return nil
		}
		if lo.SomeBy(v.include, func(g glob.Glob) bool { return g.Match(rel) }) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to walk %s", v.root)
	}
	sort.Strings(files)
	return files, nil
}

// SchemaPath returns the root relative schema path for a root relative
// config file. Files directly under the root have no schema.
func SchemaPath(rel string) (string, error) {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return "", errors.Errorf(
			"%s is not inside an environment directory, expected <env>/.../<file>", rel)
	}
	parts[0] = SchemaDir
	base := parts[len(parts)-1]
	parts[len(parts)-1] = strings.TrimSuffix(base, path.Ext(base)) + "_schema.json"
	return path.Join(parts...), nil
}

type Status int

const (
	Valid Status = iota
	Invalid
	Skipped
)

func (s Status) String() string {
	switch s {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		return "skipped"
	}
}

type Result struct {
	File   string
	Schema string
	Status Status
	// Errors are field level validation failures, or the reason a file was
	// skipped or could not be checked.
	Errors []string
}

type Report struct {
	Results []Result
}

func (r *Report) Count(s Status) int {
	return len(lo.Filter(r.Results, func(res Result, _ int) bool { return res.Status == s }))
}

// Err is non-nil when at least one file failed validation.
func (r *Report) Err() error {
	failed := lo.Filter(r.Results, func(res Result, _ int) bool { return res.Status == Invalid })
	if len(failed) == 0 {
		return nil
	}
	return errors.Errorf("%d of %d config files failed schema validation: %s",
		len(failed), len(r.Results),
		strings.Join(lo.Map(failed, func(res Result, _ int) string { return res.File }), ", "))
}

// Run validates every gathered file. It does not stop at the first
// invalid file.
func (v *Validator) Run(ctx context.Context) (*Report, error) {
	files, err := v.Gather()
	if err != nil {
		return nil, err
	}
	report := &Report{}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return report, errors.WithStack(err)
		}
		report.Results = append(report.Results, v.ValidateFile(f))
	}
	return report, nil
}

// ValidateFile checks one root relative config file against its schema.
func (v *Validator) ValidateFile(rel string) Result {
	res := Result{File: rel}
	schemaRel, err := SchemaPath(rel)
	if err != nil {
		v.log.Errorf("%v. Skipping this path.", err)
		return v.skip(res, err.Error())
	}
	res.Schema = schemaRel

	schemaFile := filepath.Join(v.root, filepath.FromSlash(schemaRel))
	schema, err := afero.ReadFile(v.fs, schemaFile)
	if err != nil {
		v.log.Errorf("Schema file '%s' does not exist. Skipping this path.", schemaFile)
		return v.skip(res, "schema "+schemaRel+" not found")
	}

	doc, err := v.readDocument(rel)
	if err != nil {
		return v.fail(res, err.Error())
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schema),
		gojsonschema.NewBytesLoader(doc),
	)
	if err != nil {
		return v.fail(res, errors.Wrapf(err, "failed to load schema %s", schemaRel).Error())
	}
	if !result.Valid() {
		return v.fail(res, lo.Map(result.Errors(), func(e gojsonschema.ResultError, _ int) string {
			return e.Field() + ": " + e.Description()
		})...)
	}
	v.log.Infof("%s has been successfully validated against %s", path.Base(rel), path.Base(schemaRel))
	res.Status = Valid
	return res
}

// readDocument returns the file as JSON, converting YAML when needed.
func (v *Validator) readDocument(rel string) ([]byte, error) {
	data, err := afero.ReadFile(v.fs, filepath.Join(v.root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	switch strings.ToLower(path.Ext(rel)) {
	case ".yaml", ".yml":
		data, err = yaml.YAMLToJSON(data)
		if err != nil {
			return nil, errors.Wrapf(err, "%s is not valid YAML", rel)
		}
	}
	return data, nil
}

func (v *Validator) skip(res Result, reason string) Result {
	res.Status = Skipped
	res.Errors = []string{reason}
	return res
}

func (v *Validator) fail(res Result, details ...string) Result {
	v.log.Errorf("Validation failed for %s. Schema: %s", path.Base(res.File), path.Base(res.Schema))
	for _, d := range details {
		v.log.Errorf("Error details: %s", d)
	}
	res.Status = Invalid
	res.Errors = details
	return res
}
