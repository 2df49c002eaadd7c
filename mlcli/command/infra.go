package command

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"go.jetpack.io/mlpad/mlcli/provider"
	"go.jetpack.io/mlpad/mlpad"
)

func infraCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "infra",
		Short: "Deploy the platform infrastructure",
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.WithStack(cmd.Help())
		},
	}
	command.AddCommand(infraDeployCmd())
	return command
}

func infraDeployCmd() *cobra.Command {
	deploymentName := ""
	githubEnv := false

	command := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the Bicep template at subscription scope",
		Long: heredoc.Doc(`
			Deploy the Bicep template at subscription scope

			The location is read from parameters.location.value of the
			parameters file. Once deployed, the az CLI defaults are pointed at
			the resource group and workspace named by the template outputs
			resourceGroupName and workspaceName.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			settings := cmdOpts.Settings()
			out, err := cmdOpts.Pad().DeployInfra(ctx, &mlpad.DeployOptions{
				CLI:            newAzCLI(),
				TemplateFile:   settings.GetString(provider.SettingBicepMainPath),
				ParametersFile: settings.GetString(provider.SettingBicepParameterPath),
				DeploymentName: deploymentName,
				SubscriptionID: settings.GetString(provider.SettingSubscriptionID),
				LifecycleHook:  cmdOpts.Hooks().Deploy,
			})
			if err != nil {
				return err
			}
			if githubEnv {
				_, err = cmdOpts.Pad().EnvSet(ctx, &mlpad.EnvSetOptions{
					Assignments: []string{
						"WORKSPACE_NAME=" + out.Workspace.Name,
						"RESOURCE_GROUP=" + out.Workspace.ResourceGroup,
					},
					Out: cmd.OutOrStdout(),
				})
			}
			return err
		},
	}

	command.Flags().String("template-file", "", "Bicep template. Defaults to $BICEP_MAIN_PATH")
	command.Flags().String("parameters-file", "", "Bicep parameters file. Defaults to $BICEP_PARAMETER_PATH")
	bindSetting(command.Flags().Lookup("template-file"), provider.SettingBicepMainPath)
	bindSetting(command.Flags().Lookup("parameters-file"), provider.SettingBicepParameterPath)
	command.Flags().StringVar(&deploymentName, "name", "", "Deployment name")
	command.Flags().BoolVar(
		&githubEnv,
		"github-env",
		false,
		"Export WORKSPACE_NAME and RESOURCE_GROUP to later workflow steps",
	)
	return command
}
