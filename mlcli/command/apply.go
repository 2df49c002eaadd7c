package command

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"go.jetpack.io/mlpad/mlcli/command/jflags"
	"go.jetpack.io/mlpad/mlpad"
)

func applyCmd() *cobra.Command {
	flags := jflags.NewApplyCmd()
	command := &cobra.Command{
		Use:   "apply",
		Short: "Reconcile every resource file of the environment",
		Long: heredoc.Doc(`
			Reconcile every resource file of the environment

			Runs compute, data, environment and component apply, in that
			order, on the files under variables/<environment>/. Kinds without
			a file are skipped. Pipelines are only submitted with
			--submit-pipelines.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := workspaceClient(ctx)
			if err != nil {
				return err
			}
			rootFlags := cmdOpts.RootFlags()
			report, err := cmdOpts.Pad().Apply(ctx, ws, &mlpad.ApplyAllOptions{
				Root:            rootFlags.Root,
				Environment:     rootFlags.Env(),
				DryRun:          rootFlags.DryRun,
				SubmitPipelines: flags.SubmitPipelines(),
				Wait:            flags.Wait.Wait(),
				WaitTimeout:     flags.Timeout(),
				LifecycleHook:   cmdOpts.Hooks().Apply,
			})
			return summarize(ctx, report, err)
		},
	}
	jflags.RegisterApplyFlags(command, flags)
	return command
}
