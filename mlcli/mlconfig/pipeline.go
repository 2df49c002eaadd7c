package mlconfig

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/cast"

	"go.jetpack.io/mlpad/goutil"
	"go.jetpack.io/mlpad/goutil/errorutil"
)

// RawDataInput is the pipeline input created from file_paths.raw_data_path
// when no inputs are declared.
const RawDataInput = "pipeline_raw_data"

// Pipeline declares a pipeline job built from registered components.
//
// Node inputs are bound with Azure ML expressions, for example
// "${{parent.inputs.pipeline_raw_data}}" or
// "${{parent.jobs.prep.outputs.prep_data}}". Outputs map a pipeline output
// name to "<node>.<output>".
type Pipeline struct {
	Name               string                   `json:"name"`
	Description        string                   `json:"description,omitempty"`
	DisplayName        string                   `json:"display_name,omitempty"`
	Compute            string                   `json:"compute"`
	ExperimentName     string                   `json:"experiment_name,omitempty"`
	PipelineComponents []string                 `json:"pipeline_components,omitempty"`
	FilePaths          PipelineFilePaths        `json:"file_paths,omitempty"`
	Inputs             map[string]PipelineInput `json:"inputs,omitempty"`
	Jobs               map[string]PipelineNode  `json:"jobs"`
	Outputs            map[string]string        `json:"outputs,omitempty"`
	Tags               map[string]string        `json:"tags,omitempty"`
}

type PipelineFilePaths struct {
	RawDataPath string `json:"raw_data_path,omitempty"`
}

// PipelineInput is a data input of the pipeline. A bare string is taken as
// a uri_folder path.
type PipelineInput struct {
	Type string `json:"type,omitempty"`
	Path string `json:"path"`
	Mode string `json:"mode,omitempty"`
}

func (in *PipelineInput) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*in = PipelineInput{Type: "uri_folder", Path: s}
		return nil
	}
	type plain PipelineInput
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return errors.WithStack(err)
	}
	if p.Type == "" {
		p.Type = "uri_folder"
	}
	*in = PipelineInput(p)
	return nil
}

// PipelineNode is one step of the pipeline graph.
type PipelineNode struct {
	Component   string         `json:"component"`
	DisplayName string         `json:"display_name,omitempty"`
	Compute     string         `json:"compute,omitempty"`
	Inputs      map[string]any `json:"inputs,omitempty"`
}

// InputValues returns the node's input bindings as strings.
func (n *PipelineNode) InputValues() (map[string]string, error) {
	out := make(map[string]string, len(n.Inputs))
	for k, v := range n.Inputs {
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, errors.Errorf("input %s must be a string or number", k)
		}
		out[k] = s
	}
	return out, nil
}

// Components returns every component name the pipeline needs, sorted.
func (p *Pipeline) Components() []string {
	names := append([]string{}, p.PipelineComponents...)
	for _, node := range p.Jobs {
		names = append(names, node.Component)
	}
	names = lo.Uniq(lo.Filter(names, func(n string, _ int) bool { return n != "" }))
	sort.Strings(names)
	return names
}

// LoadPipelines reads the "pipelines" list.
func LoadPipelines(d *Document) ([]Entry[Pipeline], error) {
	return decodeList(d, "pipelines", entryRules[Pipeline]{
		required: []string{"name", "compute", "jobs"},
		defaults: defaultsOf(d),
		checks: []func(*Pipeline) error{
			pipelineDefaultsRule,
			pipelineNodesRule,
			pipelineOutputsRule,
		},
	})
}

func pipelineDefaultsRule(p *Pipeline) error {
	if p.ExperimentName == "" {
		p.ExperimentName = p.Name + "_with_pipeline_component"
	}
	if len(p.Inputs) == 0 && p.FilePaths.RawDataPath != "" {
		p.Inputs = map[string]PipelineInput{
			RawDataInput: {Type: "uri_folder", Path: p.FilePaths.RawDataPath},
		}
	}
	return nil
}

func pipelineNodesRule(p *Pipeline) error {
	if len(p.Jobs) == 0 {
		return errorutil.NewUserErrorf("pipeline %s has no jobs", p.Name)
	}
	for _, name := range goutil.SortedKeys(p.Jobs) {
		node := p.Jobs[name]
		if node.Component == "" {
			return errorutil.NewUserErrorf("pipeline %s: job %s names no component", p.Name, name)
		}
		if _, err := node.InputValues(); err != nil {
			return errorutil.NewUserErrorf("pipeline %s: job %s: %v", p.Name, name, err)
		}
	}
	return nil
}

func pipelineOutputsRule(p *Pipeline) error {
	for _, name := range goutil.SortedKeys(p.Outputs) {
		node, _, ok := strings.Cut(p.Outputs[name], ".")
		if !ok {
			return errorutil.NewUserErrorf(
				"pipeline %s: output %s must look like <job>.<output>, got %q", p.Name, name, p.Outputs[name])
		}
		if _, exists := p.Jobs[node]; !exists {
			return errorutil.NewUserErrorf("pipeline %s: output %s refers to unknown job %s", p.Name, name, node)
		}
	}
	return nil
}
