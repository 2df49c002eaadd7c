package mlconfig

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"go.jetpack.io/mlpad/goutil/errorutil"
	"go.jetpack.io/mlpad/pkg/amlname"
)

const DefaultCondaImage = "mcr.microsoft.com/azureml/openmpi4.1.0-ubuntu20.04"

// CondaEnvironment declares an environment built from a base image plus a
// conda specification. Dependencies holds package strings and nested
// {"pip": [...]} objects.
type CondaEnvironment struct {
	Name         string   `json:"name"`
	Version      Version  `json:"version,omitempty"`
	Image        string   `json:"image,omitempty"`
	Channels     []string `json:"channels,omitempty"`
	Dependencies []any    `json:"dependencies,omitempty"`
	Description  string   `json:"description,omitempty"`
}

// CondaSpec is the content of a conda environment file.
type CondaSpec struct {
	Name         string   `yaml:"name" json:"name"`
	Channels     []string `yaml:"channels,omitempty" json:"channels,omitempty"`
	Dependencies []any    `yaml:"dependencies" json:"dependencies"`
}

func (e *CondaEnvironment) CondaSpec() CondaSpec {
	return CondaSpec{Name: e.Name, Channels: e.Channels, Dependencies: e.Dependencies}
}

// CondaFile renders the environment's conda file as YAML.
func (e *CondaEnvironment) CondaFile() (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(e.CondaSpec()); err != nil {
		return "", errors.WithStack(err)
	}
	if err := enc.Close(); err != nil {
		return "", errors.WithStack(err)
	}
	return buf.String(), nil
}

// ParseCondaFile reads a conda file as stored on a registered environment.
func ParseCondaFile(s string) (CondaSpec, error) {
	spec := CondaSpec{}
	if strings.TrimSpace(s) == "" {
		return spec, nil
	}
	err := yaml.Unmarshal([]byte(s), &spec)
	return spec, errors.Wrap(err, "invalid conda file")
}

// DockerEnvironment declares an environment built from a Dockerfile. The
// build context path must already be a storage URI.
type DockerEnvironment struct {
	Name         string             `json:"name"`
	Version      Version            `json:"version,omitempty"`
	BuildContext DockerBuildContext `json:"BuildContext"`
	Description  string             `json:"description,omitempty"`
}

type DockerBuildContext struct {
	Path           string `json:"path"`
	DockerfilePath string `json:"dockerfile_path,omitempty"`
}

// LoadCondaEnvironments reads "conda", either a list or an object keyed by
// environment name.
func LoadCondaEnvironments(d *Document) ([]Entry[CondaEnvironment], error) {
	return decodeCollection(d, "conda", entryRules[CondaEnvironment]{
		required: []string{"name"},
		defaults: defaultsOf(d),
		checks: []func(*CondaEnvironment) error{
			func(e *CondaEnvironment) error { return amlname.ValidateAsset(e.Name) },
			condaDefaultsRule,
		},
	})
}

// LoadDockerEnvironments reads "docker_build".
func LoadDockerEnvironments(d *Document) ([]Entry[DockerEnvironment], error) {
	return decodeCollection(d, "docker_build", entryRules[DockerEnvironment]{
		required: []string{"name", "BuildContext"},
		checks: []func(*DockerEnvironment) error{
			func(e *DockerEnvironment) error { return amlname.ValidateAsset(e.Name) },
			dockerBuildContextRule,
		},
	})
}

func condaDefaultsRule(e *CondaEnvironment) error {
	if e.Image == "" {
		e.Image = DefaultCondaImage
	}
	if e.Version == "" {
		e.Version = "auto"
	}
	if e.Dependencies == nil {
		e.Dependencies = []any{}
	}
	return nil
}

func dockerBuildContextRule(e *DockerEnvironment) error {
	if e.Version == "" {
		e.Version = "auto"
	}
	if e.BuildContext.Path == "" {
		return errorutil.NewUserErrorf("docker environment %s needs BuildContext.path", e.Name)
	}
	if !strings.Contains(e.BuildContext.Path, "://") {
		return errorutil.NewUserErrorf(
			"docker environment %s: build context %q is not a URI", e.Name, e.BuildContext.Path,
		).WithHint("Upload the build context to workspace storage and use its azureml:// or https:// URI")
	}
	if e.BuildContext.DockerfilePath == "" {
		e.BuildContext.DockerfilePath = "Dockerfile"
	}
	return nil
}
