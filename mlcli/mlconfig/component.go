package mlconfig

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/imdario/mergo"
	"github.com/pkg/errors"

	"go.jetpack.io/mlpad/goutil"
	"go.jetpack.io/mlpad/goutil/errorutil"
	"go.jetpack.io/mlpad/pkg/amlname"
)

// ComponentIO is one input or output of a component. It is written either
// as a bare type name or as an object:
//
//	"raw_data": "uri_folder"
//	"ratio": {"type": "number", "default": 0.2, "optional": true}
type ComponentIO struct {
	Type        string `json:"type"`
	Optional    bool   `json:"optional,omitempty"`
	Default     any    `json:"default,omitempty"`
	Description string `json:"description,omitempty"`
	Min         any    `json:"min,omitempty"`
	Max         any    `json:"max,omitempty"`
	Enum        []any  `json:"enum,omitempty"`
	Mode        string `json:"mode,omitempty"`
}

func (io *ComponentIO) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*io = ComponentIO{Type: s}
		return nil
	}
	raw := map[string]any{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Errorf("input or output must be a type name or an object, got %s", data)
	}
	// A reference to a shared type definition leaves the whole definition
	// under "type". Its keys apply unless the entry overrides them.
	if def, ok := raw["type"].(map[string]any); ok {
		delete(raw, "type")
		if err := mergo.Merge(&raw, def); err != nil {
			return errors.WithStack(err)
		}
	}
	type plain ComponentIO
	var p plain
	if err := remarshal(raw, &p); err != nil {
		return err
	}
	*io = ComponentIO(p)
	return nil
}

// Component declares a command component.
type Component struct {
	Name        string                 `json:"name"`
	Version     Version                `json:"version,omitempty"`
	FilePath    string                 `json:"filepath,omitempty"`
	Env         string                 `json:"env,omitempty"`
	Environment string                 `json:"environment,omitempty"`
	Inputs      map[string]ComponentIO `json:"inputs,omitempty"`
	Outputs     map[string]ComponentIO `json:"outputs,omitempty"`
	Command     string                 `json:"command,omitempty"`
	Code        string                 `json:"code,omitempty"`
	CodeFile    string                 `json:"code_filepath,omitempty"`
	DisplayName string                 `json:"display_name,omitempty"`
	Description string                 `json:"description,omitempty"`
	Tags        map[string]string      `json:"tags,omitempty"`
}

// EnvironmentRef returns the environment the component runs in, whichever
// of env or environment was given.
func (c *Component) EnvironmentRef() string {
	if c.Environment != "" {
		return c.Environment
	}
	return c.Env
}

// GenerateCommand builds "python <filepath>" followed by one flag per
// input and output in name order. Optional inputs are wrapped in $[[ ]]
// so they are dropped when unset.
func (c *Component) GenerateCommand() string {
	var sb strings.Builder
	sb.WriteString("python " + c.FilePath)
	for _, name := range goutil.SortedKeys(c.Inputs) {
		if c.Inputs[name].Optional {
			fmt.Fprintf(&sb, " $[[--%s ${{inputs.%s}}]]", name, name)
		} else {
			fmt.Fprintf(&sb, " --%s ${{inputs.%s}}", name, name)
		}
	}
	for _, name := range goutil.SortedKeys(c.Outputs) {
		fmt.Fprintf(&sb, " --%s ${{outputs.%s}}", name, name)
	}
	return sb.String()
}

// TitleName turns prep_taxi_data into "Prep Taxi Data".
func TitleName(name string) string {
	words := strings.Fields(strings.ReplaceAll(strcase.ToSnake(name), "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// LoadComponents reads components from "components_framework" (an object
// keyed by name) or "components" (a list or object). Relative file paths
// are joined to component_filepaths.base_path to form the code location.
func LoadComponents(d *Document) ([]Entry[Component], error) {
	key := "components"
	if d.Has("components_framework") {
		key = "components_framework"
	}
	basePath := d.String("component_filepaths.base_path")
	return decodeCollection(d, key, entryRules[Component]{
		required: []string{"name"},
		defaults: defaultsOf(d),
		checks: []func(*Component) error{
			componentNameRule,
			componentEnvironmentRule,
			componentCodeRule(basePath),
			componentDefaultsRule,
		},
	})
}

func componentNameRule(c *Component) error {
	return amlname.ValidateComponent(c.Name)
}

func componentEnvironmentRule(c *Component) error {
	if c.EnvironmentRef() == "" {
		return errorutil.NewUserErrorf("component %s needs an env", c.Name)
	}
	return nil
}

func componentCodeRule(basePath string) func(*Component) error {
	return func(c *Component) error {
		if c.Code == "" {
			c.Code = c.CodeFile
		}
		if c.Code != "" {
			return nil
		}
		if c.FilePath == "" {
			return errorutil.NewUserErrorf("component %s needs a filepath or code", c.Name)
		}
		if basePath == "" {
			c.Code = c.FilePath
			return nil
		}
		c.Code = strings.TrimRight(basePath, "/") + "/" + strings.TrimLeft(c.FilePath, "/")
		return nil
	}
}

func componentDefaultsRule(c *Component) error {
	if c.Command == "" {
		if c.FilePath == "" {
			return errorutil.NewUserErrorf("component %s needs a filepath or command", c.Name)
		}
		c.Command = c.GenerateCommand()
	}
	if c.DisplayName == "" {
		c.DisplayName = TitleName(c.Name)
	}
	if c.Version == "" {
		c.Version = "auto"
	}
	return nil
}
