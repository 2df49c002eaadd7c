package mlpad

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"go.jetpack.io/mlpad/goutil/fileutil"
	"go.jetpack.io/mlpad/mlcli/hook"
	"go.jetpack.io/mlpad/mlcli/mlconfig"
	"go.jetpack.io/mlpad/pkg/azml"
	"go.jetpack.io/mlpad/pkg/padlog"
	"go.jetpack.io/mlpad/pkg/reconcile"
)

// ApplyEnvironments registers the conda and docker environments of the
// config, adding a version only when the definition changed.
func (p *Pad) ApplyEnvironments(
	ctx context.Context,
	ws MLWorkspace,
	opts *EnvironmentOptions,
) (*reconcile.Report, error) {
	var err error
	report := reconcile.NewReport()
	lifecycle(ctx, opts.LifecycleHook, func() (hook.LifecycleOutput, error) {
		err = p.applyEnvironments(ctx, ws, opts, report)
		return report, err
	})
	return report, err
}

func (p *Pad) applyEnvironments(
	ctx context.Context,
	ws MLWorkspace,
	opts *EnvironmentOptions,
	report *reconcile.Report,
) error {
	doc, err := p.load(&opts.ApplyOptions)
	if err != nil {
		return err
	}
	conda, err := mlconfig.LoadCondaEnvironments(doc)
	if err != nil {
		return err
	}
	docker, err := mlconfig.LoadDockerEnvironments(doc)
	if err != nil {
		return err
	}
	padlog.Logger(ctx).HeaderPrintf("Environments in %s", ws.Workspace())

	eachEntry(ctx, "environment", report, conda, func(e mlconfig.Entry[mlconfig.CondaEnvironment]) reconcile.Outcome {
		return p.reconcileCondaEnvironment(ctx, ws, opts, &e.Spec)
	})
	eachEntry(ctx, "environment", report, docker, func(e mlconfig.Entry[mlconfig.DockerEnvironment]) reconcile.Outcome {
		return p.reconcileDockerEnvironment(ctx, ws, opts, &e.Spec)
	})
	return nil
}

func (p *Pad) reconcileCondaEnvironment(
	ctx context.Context,
	ws MLWorkspace,
	opts *EnvironmentOptions,
	env *mlconfig.CondaEnvironment,
) reconcile.Outcome {
	out := reconcile.Outcome{Name: env.Name}

	condaFile, err := env.CondaFile()
	if err != nil {
		out.Err = err
		return out
	}
	if opts.WriteCondaFiles && !opts.DryRun {
		path := filepath.Join(filepath.Dir(opts.ConfigPath), env.Name+".conda.yaml")
		if err := fileutil.WriteFileAtomic(p.fs, path, []byte(condaFile), 0o644); err != nil {
			out.Err = err
			return out
		}
	}

	decision, err := decideCondaEnvironment(ctx, ws, env, condaFile)
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
	out.Err = ws.CreateEnvironmentVersion(ctx, env.Name, decision.Version, &azml.EnvironmentVersion{
		Properties: azml.EnvironmentVersionProperties{
			Image:       env.Image,
			CondaFile:   condaFile,
			Description: env.Description,
			OSType:      "Linux",
		},
	})
	return out
}

func decideCondaEnvironment(
	ctx context.Context,
	ws MLWorkspace,
	env *mlconfig.CondaEnvironment,
	condaFile string,
) (reconcile.Decision, error) {
	latest, err := ws.LatestVersion(ctx, azml.KindEnvironment, env.Name)
	if err != nil {
		return reconcile.Decision{}, err
	}
	if latest == "" {
		version := env.Version.String()
		if env.Version.IsAuto() {
			version = "1"
		}
		return reconcile.Decision{Action: reconcile.Create, Version: version}, nil
	}

	existing, err := ws.GetEnvironmentVersion(ctx, env.Name, latest)
	if err != nil && !azml.IsNotFound(err) {
		return reconcile.Decision{}, errors.Wrapf(err, "failed to read environment %s:%s", env.Name, latest)
	}
	if existing != nil {
		same, err := sameCondaDependencies(existing.Properties.CondaFile, condaFile)
		if err != nil {
			return reconcile.Decision{}, err
		}
		if same {
			dec := reconcile.SkipBecause("dependencies unchanged")
			dec.Version = latest
			return dec, nil
		}
	}

	if env.Version.IsAuto() {
		next, err := reconcile.NextVersion(latest)
		if err != nil {
			return reconcile.Decision{}, err
		}
		return reconcile.Decision{Action: reconcile.Create, Version: next, Reason: "dependencies changed"}, nil
	}
	version := env.Version.String()
	if reconcile.CompareVersions(version, latest) <= 0 {
		dec := reconcile.SkipBecause(
			"dependencies changed but version %s is not newer than %s, bump the version", version, latest)
		dec.Version = version
		return dec, nil
	}
	return reconcile.Decision{Action: reconcile.Create, Version: version, Reason: "dependencies changed"}, nil
}

// sameCondaDependencies compares the dependency lists of two conda files.
// Both go through the same YAML decoding so formatting differences do not
// count.
func sameCondaDependencies(existing, desired string) (bool, error) {
	have, err := mlconfig.ParseCondaFile(existing)
	if err != nil {
		// A conda file mlpad cannot read is treated as different.
		return false, nil
	}
	want, err := mlconfig.ParseCondaFile(desired)
	if err != nil {
		return false, err
	}
	return cmp.Equal(have.Dependencies, want.Dependencies), nil
}

func (p *Pad) reconcileDockerEnvironment(
	ctx context.Context,
	ws MLWorkspace,
	opts *EnvironmentOptions,
	env *mlconfig.DockerEnvironment,
) reconcile.Outcome {
	out := reconcile.Outcome{Name: env.Name}

	decision, err := decideDockerEnvironment(ctx, ws, env)
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
	out.Err = ws.CreateEnvironmentVersion(ctx, env.Name, decision.Version, &azml.EnvironmentVersion{
		Properties: azml.EnvironmentVersionProperties{
			Build: &azml.BuildContext{
				ContextURI:     env.BuildContext.Path,
				DockerfilePath: env.BuildContext.DockerfilePath,
			},
			Description: env.Description,
			OSType:      "Linux",
		},
	})
	return out
}

func decideDockerEnvironment(
	ctx context.Context,
	ws MLWorkspace,
	env *mlconfig.DockerEnvironment,
) (reconcile.Decision, error) {
	latest, err := ws.LatestVersion(ctx, azml.KindEnvironment, env.Name)
	if err != nil {
		return reconcile.Decision{}, err
	}
	if latest == "" {
		version := env.Version.String()
		if env.Version.IsAuto() {
			version = "1"
		}
		return reconcile.Decision{Action: reconcile.Create, Version: version}, nil
	}

	if !env.Version.IsAuto() {
		version := env.Version.String()
		if reconcile.CompareVersions(version, latest) <= 0 {
			dec := reconcile.SkipBecause("version %s is not newer than %s", version, latest)
			dec.Version = version
			return dec, nil
		}
		return reconcile.Decision{Action: reconcile.Create, Version: version}, nil
	}

	existing, err := ws.GetEnvironmentVersion(ctx, env.Name, latest)
	if err != nil && !azml.IsNotFound(err) {
		return reconcile.Decision{}, errors.Wrapf(err, "failed to read environment %s:%s", env.Name, latest)
	}
	if existing != nil && existing.Properties.Build != nil &&
		existing.Properties.Build.ContextURI == env.BuildContext.Path &&
		existing.Properties.Build.DockerfilePath == env.BuildContext.DockerfilePath {
		dec := reconcile.SkipBecause("build context unchanged")
		dec.Version = latest
		return dec, nil
	}
	next, err := reconcile.NextVersion(latest)
	if err != nil {
		return reconcile.Decision{}, err
	}
	return reconcile.Decision{
		Action:  reconcile.Create,
		Version: next,
		Reason:  fmt.Sprintf("build context changed since %s", latest),
	}, nil
}
