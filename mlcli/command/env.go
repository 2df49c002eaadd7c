package command

import (
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"go.jetpack.io/mlpad/goutil"
	"go.jetpack.io/mlpad/mlpad"
	"go.jetpack.io/mlpad/pkg/padlog"
)

func envCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "env",
		Short: "Export and check workflow environment variables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.WithStack(cmd.Help())
		},
	}
	command.AddCommand(envSetCmd(), envCheckCmd())
	return command
}

func envSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set [file] [KEY=VALUE ...]",
		Short: "Export variables to later workflow steps",
		Long: heredoc.Doc(`
			Export variables to later workflow steps

			Variables come from an optional file (.env, or a flat JSON or YAML
			object) overlaid with KEY=VALUE arguments. Keys are upper-cased.
			Lines are appended to the file named by $GITHUB_ENV, or printed
			when it is not set.
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &mlpad.EnvSetOptions{Out: cmd.OutOrStdout()}
			if len(args) > 0 && !strings.Contains(args[0], "=") {
				opts.File = args[0]
				args = args[1:]
			}
			opts.Assignments = args
			out, err := cmdOpts.Pad().EnvSet(cmd.Context(), opts)
			if err != nil {
				return err
			}
			padlog.Events("mlpad.env").Debugf("exported %s", strings.Join(goutil.SortedKeys(out.Vars), ", "))
			return nil
		},
	}
}

func envCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Check that an environment config names its workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmdOpts.Pad().EnvCheck(cmd.Context(), args[0])
			return err
		},
	}
}
