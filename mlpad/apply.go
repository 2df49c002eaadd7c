package mlpad

import (
	"context"

	"github.com/pkg/errors"

	"go.jetpack.io/mlpad/goutil/fileutil"
	"go.jetpack.io/mlpad/mlcli/hook"
	"go.jetpack.io/mlpad/mlcli/mlconfig"
	"go.jetpack.io/mlpad/pkg/padlog"
	"go.jetpack.io/mlpad/pkg/reconcile"
)

// Apply reconciles every kind found under <root>/variables/<env>/ in
// dependency order: compute, data, environments, components and, when
// asked, pipelines. Kinds without a config file are skipped. Entry
// failures do not stop later kinds.
func (p *Pad) Apply(
	ctx context.Context,
	ws MLWorkspace,
	opts *ApplyAllOptions,
) (*reconcile.Report, error) {
	var err error
	report := reconcile.NewReport()
	lifecycle(ctx, opts.LifecycleHook, func() (hook.LifecycleOutput, error) {
		err = p.apply(ctx, ws, opts, report)
		return report, err
	})
	return report, err
}

func (p *Pad) apply(
	ctx context.Context,
	ws MLWorkspace,
	opts *ApplyAllOptions,
	report *reconcile.Report,
) error {
	base := func(kind mlconfig.Kind) ApplyOptions {
		return ApplyOptions{
			ConfigPath: mlconfig.ConventionalPath(opts.Root, opts.Environment, kind),
			DryRun:     opts.DryRun,
			Lookup:     opts.Lookup,
			// Each step is tracked as part of the whole run.
			LifecycleHook: untracked,
		}
	}

	steps := []applyStep{
		{mlconfig.KindCompute, func(o ApplyOptions) (*reconcile.Report, error) {
			return p.ApplyCompute(ctx, ws, &ComputeOptions{ApplyOptions: o, Wait: opts.Wait, WaitTimeout: opts.WaitTimeout})
		}},
		{mlconfig.KindData, func(o ApplyOptions) (*reconcile.Report, error) {
			return p.ApplyData(ctx, ws, &o)
		}},
		{mlconfig.KindEnvironment, func(o ApplyOptions) (*reconcile.Report, error) {
			return p.ApplyEnvironments(ctx, ws, &EnvironmentOptions{ApplyOptions: o})
		}},
		{mlconfig.KindComponent, func(o ApplyOptions) (*reconcile.Report, error) {
			return p.ApplyComponents(ctx, ws, &o)
		}},
	}
	if opts.SubmitPipelines {
		steps = append(steps, applyStep{mlconfig.KindPipeline, func(o ApplyOptions) (*reconcile.Report, error) {
			return p.SubmitPipelines(ctx, ws, &PipelineOptions{ApplyOptions: o, Wait: opts.Wait, WaitTimeout: opts.WaitTimeout})
		}})
	}

	for _, step := range steps {
		o := base(step.kind)
		exists, err := fileutil.FileExists(p.fs, o.ConfigPath)
		if err != nil {
			return errors.WithStack(err)
		}
		if !exists {
			padlog.Events("mlpad.apply").Infof("No %s config at %s, skipping", step.kind, o.ConfigPath)
			continue
		}
		r, err := step.run(o)
		report.Merge(r)
		if err != nil {
			return errors.Wrapf(err, "%s", o.ConfigPath)
		}
	}
	return nil
}

type applyStep struct {
	kind mlconfig.Kind
	run  func(ApplyOptions) (*reconcile.Report, error)
}

func untracked(_ context.Context, f func() (hook.LifecycleOutput, error)) {
	_, _ = f()
}
