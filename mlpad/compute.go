package mlpad

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"go.jetpack.io/mlpad/mlcli/hook"
	"go.jetpack.io/mlpad/mlcli/mlconfig"
	"go.jetpack.io/mlpad/pkg/armrest"
	"go.jetpack.io/mlpad/pkg/azml"
	"go.jetpack.io/mlpad/pkg/padlog"
	"go.jetpack.io/mlpad/pkg/reconcile"
)

const (
	defaultComputeWait     = 20 * time.Minute
	defaultMaxInstances    = 1
	defaultIdleTimeSeconds = 120
	defaultKubeNamespace   = "default"
)

var computeARMTypes = map[mlconfig.ComputeType]string{
	mlconfig.ComputeAML:        azml.ComputeTypeAML,
	mlconfig.ComputeInstance:   azml.ComputeTypeInstance,
	mlconfig.ComputeKubernetes: azml.ComputeTypeKubernetes,
}

// ApplyCompute creates the compute targets of the config that the workspace
// does not have yet. Existing clusters whose scale settings drifted from
// the config are updated in place; anything else that exists is left
// alone.
func (p *Pad) ApplyCompute(
	ctx context.Context,
	ws MLWorkspace,
	opts *ComputeOptions,
) (*reconcile.Report, error) {
	var err error
	report := reconcile.NewReport()
	lifecycle(ctx, opts.LifecycleHook, func() (hook.LifecycleOutput, error) {
		err = p.applyCompute(ctx, ws, opts, report)
		return report, err
	})
	return report, err
}

func (p *Pad) applyCompute(
	ctx context.Context,
	ws MLWorkspace,
	opts *ComputeOptions,
	report *reconcile.Report,
) error {
	doc, err := p.load(&opts.ApplyOptions)
	if err != nil {
		return err
	}
	entries, err := mlconfig.LoadComputes(doc)
	if err != nil {
		return err
	}
	padlog.Logger(ctx).HeaderPrintf("Compute targets in %s", ws.Workspace())

	location := workspaceLocation(ws)
	eachEntry(ctx, "compute", report, entries, func(e mlconfig.Entry[mlconfig.Compute]) reconcile.Outcome {
		return p.reconcileCompute(ctx, ws, opts, &e.Spec, location)
	})
	return nil
}

// workspaceLocation looks the workspace region up once, on first use.
func workspaceLocation(ws MLWorkspace) func(ctx context.Context) (string, error) {
	var location string
	return func(ctx context.Context) (string, error) {
		if location != "" {
			return location, nil
		}
		loc, err := ws.Location(ctx)
		if err != nil {
			return "", err
		}
		location = loc
		return location, nil
	}
}

func (p *Pad) reconcileCompute(
	ctx context.Context,
	ws MLWorkspace,
	opts *ComputeOptions,
	c *mlconfig.Compute,
	location func(context.Context) (string, error),
) reconcile.Outcome {
	out := reconcile.Outcome{Name: c.Name}

	existing, err := ws.GetCompute(ctx, c.Name)
	if err != nil && !azml.IsNotFound(err) {
		out.Err = errors.Wrapf(err, "failed to read compute %s", c.Name)
		return out
	}
	if err == nil {
		return p.reconcileExistingCompute(ctx, ws, opts, c, existing)
	}

	out.Action = reconcile.Create
	desired, err := desiredCompute(ctx, c, location)
	if err != nil {
		out.Err = err
		return out
	}
	if opts.DryRun {
		return dryRun(out)
	}
	if err := ws.CreateCompute(ctx, c.Name, desired); err != nil {
		out.Err = err
		return out
	}
	padlog.Events("mlpad.compute").Infof("%s compute '%s' created.", desired.Properties.ComputeType, c.Name)
	if opts.Wait {
		timeout := opts.WaitTimeout
		if timeout == 0 {
			timeout = defaultComputeWait
		}
		padlog.Logger(ctx).WithSpinnerFuncPrint(func() {
			err = ws.WaitForCompute(ctx, c.Name, timeout)
		}, "Waiting for "+c.Name+" to provision")
		if err != nil {
			out.Err = err
		}
	}
	return out
}

func (p *Pad) reconcileExistingCompute(
	ctx context.Context,
	ws MLWorkspace,
	opts *ComputeOptions,
	c *mlconfig.Compute,
	existing *azml.Compute,
) reconcile.Outcome {
	out := reconcile.Outcome{Name: c.Name}
	wantType := computeARMTypes[c.Kind()]
	if existing.Properties.ComputeType != "" && existing.Properties.ComputeType != wantType {
		out.Reason = "already exists as " + existing.Properties.ComputeType
		return out
	}
	if c.Kind() != mlconfig.ComputeAML {
		out.Reason = "already exists"
		return out
	}

	want := desiredScale(c)
	if !scaleDrifted(existing, want) {
		out.Reason = "already exists"
		return out
	}
	out.Action = reconcile.Update
	out.Reason = "scale settings changed"
	if opts.DryRun {
		return dryRun(out)
	}
	out.Err = ws.UpdateComputeScale(ctx, c.Name, want)
	return out
}

func desiredCompute(
	ctx context.Context,
	c *mlconfig.Compute,
	location func(context.Context) (string, error),
) (*azml.Compute, error) {
	loc := c.Location
	if loc == "" {
		var err error
		if loc, err = location(ctx); err != nil {
			return nil, err
		}
	}
	compute := &azml.Compute{
		Location: loc,
		Properties: azml.ComputeProperties{
			ComputeType: computeARMTypes[c.Kind()],
			Description: c.Description,
		},
	}
	switch c.Kind() {
	case mlconfig.ComputeAML:
		scale := desiredScale(c)
		compute.Properties.Properties = &azml.ComputeSpec{
			VMSize:        c.Size,
			VMPriority:    vmPriority(c.Tier),
			ScaleSettings: &scale,
		}
	case mlconfig.ComputeInstance:
		compute.Properties.Properties = &azml.ComputeSpec{VMSize: c.Size}
	case mlconfig.ComputeKubernetes:
		ns := c.Namespace
		if ns == "" {
			ns = defaultKubeNamespace
		}
		compute.Properties.ResourceID = c.ResourceID
		compute.Properties.Properties = &azml.ComputeSpec{Namespace: ns}
	}
	return compute, nil
}

func desiredScale(c *mlconfig.Compute) azml.ScaleSettings {
	maxNodes := c.MaxInstances
	if maxNodes == 0 {
		maxNodes = defaultMaxInstances
	}
	idle := c.IdleTimeBeforeScaleDown
	if idle == 0 {
		idle = defaultIdleTimeSeconds
	}
	return azml.ScaleSettings{
		MinNodeCount:                c.MinInstances,
		MaxNodeCount:                maxNodes,
		NodeIdleTimeBeforeScaleDown: azml.IdleDuration(idle),
	}
}

func scaleDrifted(existing *azml.Compute, want azml.ScaleSettings) bool {
	spec := existing.Properties.Properties
	if spec == nil || spec.ScaleSettings == nil {
		return false
	}
	have := spec.ScaleSettings
	if have.MinNodeCount != want.MinNodeCount || have.MaxNodeCount != want.MaxNodeCount {
		return true
	}
	haveIdle, err1 := armrest.ParseDuration(have.NodeIdleTimeBeforeScaleDown)
	wantIdle, err2 := armrest.ParseDuration(want.NodeIdleTimeBeforeScaleDown)
	return err1 == nil && err2 == nil && haveIdle != wantIdle
}

func vmPriority(tier string) string {
	switch tier {
	case "low_priority", "lowpriority", "LowPriority", "low":
		return "LowPriority"
	default:
		return "Dedicated"
	}
}
