// Package ghenv exports variables to later steps of a GitHub Actions job by
// appending them to the file named by $GITHUB_ENV.
package ghenv

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cast"
	"sigs.k8s.io/yaml"

	"go.jetpack.io/mlpad/goutil"
	"go.jetpack.io/mlpad/goutil/errorutil"
)

const EnvVar = "GITHUB_ENV"

// LoadFile reads variables from a .env file or from a flat JSON or YAML
// object. Non string values are converted to their string form.
func LoadFile(fs afero.Fs, path string) (map[string]string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	if isDotenv(path) {
		vars, err := godotenv.Parse(bytes.NewReader(data))
		return vars, errors.Wrapf(err, "failed to parse %s", path)
	}

	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errorutil.NewUserErrorf("%s must contain a JSON or YAML object: %v", path, err)
	}
	vars := map[string]string{}
	for k, v := range raw {
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, errorutil.NewUserErrorf("%s: value of %s is not a scalar", path, k)
		}
		vars[k] = s
	}
	return vars, nil
}

func isDotenv(path string) bool {
	base := filepath.Base(path)
	return base == ".env" || strings.HasSuffix(base, ".env") || strings.HasPrefix(base, ".env.")
}

// ParseAssignments turns KEY=VALUE arguments into a map. Only the first =
// splits, so values may contain =.
func ParseAssignments(args []string) (map[string]string, error) {
	vars := map[string]string{}
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			return nil, errorutil.NewUserErrorf("invalid assignment %q, expected KEY=VALUE", a)
		}
		vars[k] = v
	}
	return vars, nil
}

// Merge overlays later maps on earlier ones and upper-cases every key.
func Merge(layers ...map[string]string) map[string]string {
	out := map[string]string{}
	for _, l := range layers {
		for k, v := range l {
			out[strings.ToUpper(k)] = v
		}
	}
	return out
}

// Format renders vars in the GITHUB_ENV file syntax, sorted by name.
// Multi-line values use the heredoc form with a random delimiter.
func Format(vars map[string]string) []byte {
	var buf bytes.Buffer
	for _, k := range goutil.SortedKeys(vars) {
		v := vars[k]
		if strings.Contains(v, "\n") {
			delim := "ghadelimiter_" + uuid.NewString()
			fmt.Fprintf(&buf, "%s<<%s\n%s\n%s\n", k, delim, v, delim)
			continue
		}
		fmt.Fprintf(&buf, "%s=%s\n", k, v)
	}
	return buf.Bytes()
}

type Exporter struct {
	// Fs holding the env file. Defaults to the OS filesystem.
	Fs afero.Fs
	// Path of the env file. When empty the lines go to Out instead.
	Path string
	Out  io.Writer
}

// FromEnvironment returns an exporter for the current $GITHUB_ENV on fs.
func FromEnvironment(fs afero.Fs, out io.Writer) *Exporter {
	return &Exporter{Fs: fs, Path: os.Getenv(EnvVar), Out: out}
}

// Export appends vars to the env file. Parallel steps sharing a runner may
// write the same file, so appends hold a lock file next to it.
func (e *Exporter) Export(vars map[string]string) error {
	data := Format(vars)
	if e.Path == "" {
		_, err := e.Out.Write(data)
		return errors.WithStack(err)
	}

	fs := e.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	// Only a file on disk can be shared with other processes.
	if _, ok := fs.(*afero.OsFs); ok {
		lock := flock.New(e.Path + ".lock")
		if err := lock.Lock(); err != nil {
			return errors.Wrapf(err, "failed to lock %s", e.Path)
		}
		defer func() { _ = lock.Unlock() }()
	}

	f, err := fs.OpenFile(e.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", e.Path)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return errors.Wrapf(err, "failed to write %s", e.Path)
	}
	return errors.WithStack(f.Close())
}
