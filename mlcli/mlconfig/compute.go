package mlconfig

import (
	"strings"

	"go.jetpack.io/mlpad/goutil/errorutil"
	"go.jetpack.io/mlpad/pkg/amlname"
)

type ComputeType string

const (
	ComputeAML        ComputeType = "amlcompute"
	ComputeInstance   ComputeType = "computeinstance"
	ComputeKubernetes ComputeType = "kubernetes"
)

var computeTypeAliases = map[string]ComputeType{
	"amlcompute":        ComputeAML,
	"computeinstance":   ComputeInstance,
	"kubernetes":        ComputeKubernetes,
	"kubernetescompute": ComputeKubernetes,
}

// Compute declares a compute target. IdleTimeBeforeScaleDown is in
// seconds.
type Compute struct {
	Name                    string `json:"name"`
	Type                    string `json:"type"`
	Size                    string `json:"size,omitempty"`
	Tier                    string `json:"tier,omitempty"`
	MinInstances            int    `json:"min_instances,omitempty"`
	MaxInstances            int    `json:"max_instances,omitempty"`
	IdleTimeBeforeScaleDown int    `json:"idle_time_before_scale_down,omitempty"`
	Location                string `json:"location,omitempty"`
	Description             string `json:"description,omitempty"`
	ResourceID              string `json:"resource_id,omitempty"`
	Namespace               string `json:"namespace,omitempty"`
}

// Kind returns the normalized compute type. Only valid after loading.
func (c *Compute) Kind() ComputeType {
	return computeTypeAliases[strings.ToLower(c.Type)]
}

// LoadComputes reads the "computes" list.
func LoadComputes(d *Document) ([]Entry[Compute], error) {
	return decodeList(d, "computes", entryRules[Compute]{
		required: []string{"name", "type"},
		defaults: defaultsOf(d),
		checks: []func(*Compute) error{
			computeTypeRule,
			computeNameRule,
			computeScaleRule,
			kubernetesComputeRule,
		},
	})
}

func computeTypeRule(c *Compute) error {
	if _, ok := computeTypeAliases[strings.ToLower(c.Type)]; !ok {
		return errorutil.NewUserErrorf(
			"compute %s has unsupported type %q", c.Name, c.Type,
		).WithHint("Use one of amlcompute, computeinstance or kubernetes")
	}
	return nil
}

func computeNameRule(c *Compute) error {
	return amlname.ValidateCompute(c.Name, c.Kind() == ComputeInstance)
}

func computeScaleRule(c *Compute) error {
	if c.MinInstances < 0 || c.MaxInstances < 0 || c.IdleTimeBeforeScaleDown < 0 {
		return errorutil.NewUserErrorf("compute %s: instance counts and idle time cannot be negative", c.Name)
	}
	if c.MaxInstances > 0 && c.MinInstances > c.MaxInstances {
		return errorutil.NewUserErrorf(
			"compute %s: min_instances (%d) is greater than max_instances (%d)",
			c.Name, c.MinInstances, c.MaxInstances)
	}
	return nil
}

func kubernetesComputeRule(c *Compute) error {
	if c.Kind() == ComputeKubernetes && c.ResourceID == "" {
		return errorutil.NewUserErrorf("kubernetes compute %s needs a resource_id", c.Name)
	}
	return nil
}
