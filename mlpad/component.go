package mlpad

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"go.jetpack.io/mlpad/goutil"
	"go.jetpack.io/mlpad/goutil/errorutil"
	"go.jetpack.io/mlpad/mlcli/hook"
	"go.jetpack.io/mlpad/mlcli/mlconfig"
	"go.jetpack.io/mlpad/pkg/azml"
	"go.jetpack.io/mlpad/pkg/padlog"
	"go.jetpack.io/mlpad/pkg/reconcile"
)

const commandComponentSchema = "https://azuremlschemas.azureedge.net/latest/commandComponent.schema.json"

// ApplyComponents registers the command components of the config. A new
// version is added only when inputs, outputs or the command changed.
func (p *Pad) ApplyComponents(
	ctx context.Context,
	ws MLWorkspace,
	opts *ApplyOptions,
) (*reconcile.Report, error) {
	var err error
	report := reconcile.NewReport()
	lifecycle(ctx, opts.LifecycleHook, func() (hook.LifecycleOutput, error) {
		err = p.applyComponents(ctx, ws, opts, report)
		return report, err
	})
	return report, err
}

func (p *Pad) applyComponents(
	ctx context.Context,
	ws MLWorkspace,
	opts *ApplyOptions,
	report *reconcile.Report,
) error {
	doc, err := p.load(opts)
	if err != nil {
		return err
	}
	entries, err := mlconfig.LoadComponents(doc)
	if err != nil {
		return err
	}
	padlog.Logger(ctx).HeaderPrintf("Components in %s", ws.Workspace())

	eachEntry(ctx, "component", report, entries, func(e mlconfig.Entry[mlconfig.Component]) reconcile.Outcome {
		return reconcileComponent(ctx, ws, opts, &e.Spec)
	})
	return nil
}

func reconcileComponent(
	ctx context.Context,
	ws MLWorkspace,
	opts *ApplyOptions,
	c *mlconfig.Component,
) reconcile.Outcome {
	out := reconcile.Outcome{Name: c.Name}
	if !isRemoteRef(c.Code) {
		out.Err = errorutil.NewUserErrorf(
			"component %s: code %q is not a storage URI or registered asset", c.Name, c.Code,
		).WithHint("Upload the code and set component_filepaths.base_path to its azureml:// URI")
		return out
	}

	desired, err := componentSpec(c, "")
	if err != nil {
		out.Err = err
		return out
	}
	decision, err := decideComponent(ctx, ws, c, desired)
	if err != nil {
		out.Err = err
		return out
	}
	out.Action, out.Version, out.Reason = decision.Action, decision.Version, decision.Reason
	if decision.Action == reconcile.Skip {
		return out
	}
	if opts.DryRun {
		return dryRun(out)
	}
	desired["version"] = decision.Version
	out.Err = ws.CreateComponentVersion(ctx, c.Name, decision.Version, &azml.ComponentVersion{
		Properties: azml.ComponentVersionProperties{
			ComponentSpec: desired,
			Description:   c.Description,
		},
	})
	return out
}

func decideComponent(
	ctx context.Context,
	ws MLWorkspace,
	c *mlconfig.Component,
	desired map[string]any,
) (reconcile.Decision, error) {
	latest, err := ws.LatestVersion(ctx, azml.KindComponent, c.Name)
	if err != nil {
		return reconcile.Decision{}, err
	}
	if latest == "" {
		version := c.Version.String()
		if c.Version.IsAuto() {
			version = "1"
		}
		return reconcile.Decision{Action: reconcile.Create, Version: version}, nil
	}

	existing, err := ws.GetComponentVersion(ctx, c.Name, latest)
	if err != nil && !azml.IsNotFound(err) {
		return reconcile.Decision{}, errors.Wrapf(err, "failed to read component %s:%s", c.Name, latest)
	}
	if existing != nil && sameComponent(existing.Properties.ComponentSpec, desired) {
		dec := reconcile.SkipBecause("inputs, outputs and command unchanged")
		dec.Version = latest
		return dec, nil
	}

	if !c.Version.IsAuto() {
		version := c.Version.String()
		if reconcile.CompareVersions(version, latest) <= 0 {
			dec := reconcile.SkipBecause("changed but version %s is not newer than %s, bump the version", version, latest)
			dec.Version = version
			return dec, nil
		}
		return reconcile.Decision{Action: reconcile.Create, Version: version, Reason: "changed"}, nil
	}
	next, err := reconcile.NextVersion(latest)
	if err != nil {
		return reconcile.Decision{}, err
	}
	return reconcile.Decision{Action: reconcile.Create, Version: next, Reason: "changed"}, nil
}

// sameComponent compares the parts of a component that change its
// behavior.
func sameComponent(existing, desired map[string]any) bool {
	for _, key := range []string{"inputs", "outputs"} {
		if !cmp.Equal(asMap(existing[key]), asMap(desired[key])) {
			return false
		}
	}
	return existing["command"] == desired["command"]
}

// asMap returns v as a map with null fields dropped, since the workspace
// echoes unset input fields back as null.
func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return goutil.FilterStringKeyMap(m)
	}
	return map[string]any{}
}

type commandComponent struct {
	Schema      string                          `json:"$schema"`
	Type        string                          `json:"type"`
	Name        string                          `json:"name"`
	Version     string                          `json:"version,omitempty"`
	DisplayName string                          `json:"display_name,omitempty"`
	Description string                          `json:"description,omitempty"`
	Tags        map[string]string               `json:"tags,omitempty"`
	Inputs      map[string]mlconfig.ComponentIO `json:"inputs,omitempty"`
	Outputs     map[string]mlconfig.ComponentIO `json:"outputs,omitempty"`
	Command     string                          `json:"command"`
	Code        string                          `json:"code"`
	Environment string                          `json:"environment"`
}

// componentSpec renders c in the command component schema, as a generic
// map so it compares equal to what the workspace returns.
func componentSpec(c *mlconfig.Component, version string) (map[string]any, error) {
	data, err := json.Marshal(commandComponent{
		Schema:      commandComponentSchema,
		Type:        "command",
		Name:        c.Name,
		Version:     version,
		DisplayName: c.DisplayName,
		Description: c.Description,
		Tags:        c.Tags,
		Inputs:      c.Inputs,
		Outputs:     c.Outputs,
		Command:     c.Command,
		Code:        c.Code,
		Environment: environmentRef(c.EnvironmentRef()),
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	spec := map[string]any{}
	return spec, errors.WithStack(json.Unmarshal(data, &spec))
}

// environmentRef turns "train-env@latest" or "train-env:3" into an asset
// reference. ARM IDs and references that already carry the prefix are
// kept.
func environmentRef(env string) string {
	if strings.HasPrefix(env, "azureml:") || strings.HasPrefix(env, "/subscriptions") {
		return env
	}
	return "azureml:" + env
}

func isRemoteRef(s string) bool {
	return strings.Contains(s, "://") ||
		strings.HasPrefix(s, "azureml:") ||
		strings.HasPrefix(s, "/subscriptions")
}
