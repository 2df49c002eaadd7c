package mlpad

import (
	"context"

	"go.jetpack.io/mlpad/mlcli/mlconfig"
	"go.jetpack.io/mlpad/pkg/azml"
	"go.jetpack.io/mlpad/pkg/ghenv"
	"go.jetpack.io/mlpad/pkg/padlog"
)

// EnvSet exports variables from a file and KEY=VALUE assignments to later
// workflow steps.
func (p *Pad) EnvSet(ctx context.Context, opts *EnvSetOptions) (*EnvSetOutput, error) {
	fromFile := map[string]string{}
	if opts.File != "" {
		var err error
		if fromFile, err = ghenv.LoadFile(p.fs, opts.File); err != nil {
			return nil, err
		}
	}
	assigned, err := ghenv.ParseAssignments(opts.Assignments)
	if err != nil {
		return nil, err
	}
	vars := ghenv.Merge(fromFile, assigned)

	exporter := opts.Exporter
	if exporter == nil {
		exporter = ghenv.FromEnvironment(p.fs, opts.Out)
	}
	if err := exporter.Export(vars); err != nil {
		return nil, err
	}
	padlog.Events("mlpad.env").Infof("Exported %d variables", len(vars))
	return &EnvSetOutput{Vars: vars}, nil
}

// EnvCheck verifies that an environment config file names its workspace.
func (p *Pad) EnvCheck(ctx context.Context, path string) (azml.Workspace, error) {
	doc, err := mlconfig.Load(p.fs, path, nil)
	if err != nil {
		return azml.Workspace{}, err
	}
	if err := doc.Require(WorkspaceKeys...); err != nil {
		return azml.Workspace{}, err
	}
	ws := azml.Workspace{
		SubscriptionID: doc.String("subscription_id"),
		ResourceGroup:  doc.String("resource_group"),
		Name:           doc.String("workspace"),
	}
	padlog.Logger(ctx).Printf("%s targets %s\n", path, ws)
	return ws, nil
}
