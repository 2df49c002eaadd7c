package mlpad

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"go.jetpack.io/mlpad/goutil/errorutil"
	"go.jetpack.io/mlpad/mlcli/hook"
	"go.jetpack.io/mlpad/mlcli/mlconfig"
	"go.jetpack.io/mlpad/pkg/azcli"
	"go.jetpack.io/mlpad/pkg/azml"
	"go.jetpack.io/mlpad/pkg/padlog"
)

// DeployInfra deploys the Bicep template at subscription scope and points
// the az CLI defaults at the resource group and workspace it created.
func (p *Pad) DeployInfra(ctx context.Context, opts *DeployOptions) (*DeployOutput, error) {
	var out *DeployOutput
	var err error
	lifecycle(ctx, opts.LifecycleHook, func() (hook.LifecycleOutput, error) {
		out, err = p.deployInfra(ctx, opts)
		return out, err
	})
	return out, err
}

func (p *Pad) deployInfra(ctx context.Context, opts *DeployOptions) (*DeployOutput, error) {
	if opts.TemplateFile == "" {
		return nil, errorutil.NewUserError("Bicep template path is not set").
			WithHint("Set BICEP_MAIN_PATH or pass --template-file")
	}
	if opts.ParametersFile == "" {
		return nil, errorutil.NewUserError("Bicep parameters path is not set").
			WithHint("Set BICEP_PARAMETER_PATH or pass --parameters-file")
	}
	location, err := mlconfig.LoadLocation(p.fs, opts.ParametersFile)
	if err != nil {
		return nil, err
	}

	log := padlog.Logger(ctx)
	log.HeaderPrintf("Deploying %s to %s", opts.TemplateFile, location)
	start := time.Now()
	var outputs azcli.DeploymentOutputs
	log.WithSpinnerFuncPrint(func() {
		outputs, err = opts.CLI.DeploySubscription(ctx, azcli.Deployment{
			Name:         opts.DeploymentName,
			Location:     location,
			TemplateFile: opts.TemplateFile,
			Parameters:   opts.ParametersFile,
		})
	}, "Running subscription deployment")
	if err != nil {
		return nil, err
	}
	padlog.Events("mlpad.infra").Infof("Deployment finished in %s", time.Since(start).Round(time.Second))

	ws := azml.Workspace{
		SubscriptionID: opts.SubscriptionID,
		ResourceGroup:  outputs.String("resourceGroupName"),
		Name:           outputs.String("workspaceName"),
	}
	if ws.ResourceGroup == "" || ws.Name == "" {
		return nil, errors.New("deployment did not output resourceGroupName and workspaceName")
	}
	log.IndentedPrintf("Resource group: %s\n", ws.ResourceGroup)
	log.IndentedPrintf("Workspace: %s\n", ws.Name)

	want := map[string]string{"group": ws.ResourceGroup, "workspace": ws.Name}
	if err := opts.CLI.ConfigureDefaults(ctx, want); err != nil {
		return nil, err
	}
	got, err := opts.CLI.ListDefaults(ctx)
	if err != nil {
		return nil, err
	}
	match := true
	for k, v := range want {
		if got[k] != v {
			match = false
			padlog.Events("mlpad.infra").Errorf("az default %s is %q, expected %q", k, got[k], v)
		}
	}
	if match {
		padlog.Events("mlpad.infra").Info("az defaults set to the deployed resource group and workspace")
	}

	return &DeployOutput{
		Location:      location,
		Workspace:     ws,
		DefaultsMatch: match,
	}, nil
}
