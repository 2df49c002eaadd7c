package command

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"go.jetpack.io/mlpad/mlpad"
)

func validateCmd() *cobra.Command {
	opts := &mlpad.ValidateOptions{}
	watch := false

	command := &cobra.Command{
		Use:   "validate [root]",
		Short: "Validate config files against their JSON schemas",
		Long: heredoc.Doc(`
			Validate config files against their JSON schemas

			Every JSON and YAML file under root is checked against the schema
			at the same path with the environment directory replaced by
			json_schema/ and the file renamed <name>_schema.json. For example
			dev/compute/compute.json is checked against
			json_schema/compute/compute_schema.json.
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Root = cmdOpts.RootFlags().Root
			if len(args) == 1 {
				opts.Root = args[0]
			}
			if watch {
				return cmdOpts.Pad().WatchValidate(cmd.Context(), opts)
			}
			report, err := cmdOpts.Pad().Validate(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return report.Err()
		},
	}

	command.Flags().StringSliceVar(
		&opts.Include,
		"include",
		nil,
		"Glob patterns of files to check, relative to root. Defaults to every .json, .yaml and .yml file",
	)
	command.Flags().StringVar(
		&opts.IgnoreFile,
		"ignore-file",
		"",
		"gitignore-style file listing paths to skip. Defaults to .schemaignore under root",
	)
	command.Flags().BoolVarP(
		&watch,
		"watch",
		"w",
		false,
		"Validate again whenever a file under root changes",
	)
	return command
}
