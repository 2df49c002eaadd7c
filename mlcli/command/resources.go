package command

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"go.jetpack.io/mlpad/mlcli/command/jflags"
	"go.jetpack.io/mlpad/mlcli/mlconfig"
	"go.jetpack.io/mlpad/mlpad"
)

// resourceCmd is the parent of the apply subcommand of one resource kind.
func resourceCmd(use, short string, apply *cobra.Command) *cobra.Command {
	command := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.WithStack(cmd.Help())
		},
	}
	command.AddCommand(apply)
	return command
}

func computeCmd() *cobra.Command {
	flags := jflags.NewComputeCmd()
	apply := &cobra.Command{
		Use:   "apply",
		Short: "Create the compute targets of the config that do not exist yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := workspaceClient(ctx)
			if err != nil {
				return err
			}
			report, err := cmdOpts.Pad().ApplyCompute(ctx, ws, &mlpad.ComputeOptions{
				ApplyOptions: applyOptions(flags.DefaultedFile(conventionalPath(mlconfig.KindCompute))),
				Wait:         flags.Wait.Wait(),
				WaitTimeout:  flags.Timeout(),
			})
			return summarize(ctx, report, err)
		},
	}
	jflags.RegisterComputeFlags(apply, flags)
	return resourceCmd("compute", "Manage compute targets", apply)
}

func dataCmd() *cobra.Command {
	flags := &jflags.File{}
	apply := &cobra.Command{
		Use:   "apply",
		Short: "Register data asset versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := workspaceClient(ctx)
			if err != nil {
				return err
			}
			opts := applyOptions(flags.DefaultedFile(conventionalPath(mlconfig.KindData)))
			report, err := cmdOpts.Pad().ApplyData(ctx, ws, &opts)
			return summarize(ctx, report, err)
		},
	}
	jflags.RegisterFileFlag(apply, flags)
	return resourceCmd("data", "Manage data assets", apply)
}

func environmentCmd() *cobra.Command {
	flags := jflags.NewEnvironmentCmd()
	apply := &cobra.Command{
		Use:   "apply",
		Short: "Register conda and docker environment versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := workspaceClient(ctx)
			if err != nil {
				return err
			}
			report, err := cmdOpts.Pad().ApplyEnvironments(ctx, ws, &mlpad.EnvironmentOptions{
				ApplyOptions:    applyOptions(flags.DefaultedFile(conventionalPath(mlconfig.KindEnvironment))),
				WriteCondaFiles: flags.WriteCondaFiles(),
			})
			return summarize(ctx, report, err)
		},
	}
	jflags.RegisterEnvironmentFlags(apply, flags)
	return resourceCmd("environment", "Manage execution environments", apply)
}

func componentCmd() *cobra.Command {
	flags := &jflags.File{}
	apply := &cobra.Command{
		Use:   "apply",
		Short: "Register command component versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := workspaceClient(ctx)
			if err != nil {
				return err
			}
			opts := applyOptions(flags.DefaultedFile(conventionalPath(mlconfig.KindComponent)))
			report, err := cmdOpts.Pad().ApplyComponents(ctx, ws, &opts)
			return summarize(ctx, report, err)
		},
	}
	jflags.RegisterFileFlag(apply, flags)
	return resourceCmd("component", "Manage pipeline components", apply)
}

func pipelineCmd() *cobra.Command {
	flags := jflags.NewPipelineCmd()
	submit := &cobra.Command{
		Use:   "submit",
		Short: "Submit a pipeline job per configured pipeline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := workspaceClient(ctx)
			if err != nil {
				return err
			}
			opts := applyOptions(flags.DefaultedFile(conventionalPath(mlconfig.KindPipeline)))
			opts.LifecycleHook = cmdOpts.Hooks().Submit
			report, err := cmdOpts.Pad().SubmitPipelines(ctx, ws, &mlpad.PipelineOptions{
				ApplyOptions: opts,
				Wait:         flags.Wait.Wait(),
				WaitTimeout:  flags.Timeout(),
			})
			return summarize(ctx, report, err)
		},
	}
	jflags.RegisterPipelineFlags(submit, flags)
	return resourceCmd("pipeline", "Submit pipeline jobs", submit)
}
