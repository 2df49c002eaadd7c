package command

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"go.jetpack.io/mlpad/mlpad"
)

func mltableCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "mltable",
		Short: "Generate MLTable definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.WithStack(cmd.Help())
		},
	}
	command.AddCommand(mltableCreateCmd())
	return command
}

func mltableCreateCmd() *cobra.Command {
	opts := &mlpad.MLTableOptions{}
	command := &cobra.Command{
		Use:   "create <dir>",
		Short: "Write an MLTable file into dir",
		Long: heredoc.Doc(`
			Write an MLTable file into dir

			Without --spec the table reads the NYC green and yellow taxi
			parquet files for 2015 to 2019, takes a 0.1% random sample, keeps
			trips with a positive distance and drops the location columns.
			Fields the spec file leaves out keep those defaults.
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Dir = args[0]
			_, err := cmdOpts.Pad().CreateMLTable(cmd.Context(), opts)
			return err
		},
	}
	command.Flags().StringVar(
		&opts.SpecFile,
		"spec",
		"",
		"YAML file with the paths and transformations of the table",
	)
	return command
}
