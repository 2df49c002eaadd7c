package command

import (
	"github.com/spf13/cobra"

	"go.jetpack.io/mlpad/pkg/buildstamp"
	"go.jetpack.io/mlpad/pkg/padlog"
)

const binaryName = "mlpad"

func versionCmd() *cobra.Command {
	verboseFlag := false
	shortFlag := false

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Prints the version number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			buildstmp := buildstamp.Get()
			v := buildstmp.Version()
			if shortFlag {
				padlog.Logger(ctx).Println(v)
				return nil
			}
			padlog.Logger(ctx).Printf("%v %v\n", binaryName, v)
			if verboseFlag {
				buildstamp.PrintVerboseVersion(cmd.OutOrStdout())
			}
			return nil
		},
	}
	versionCmd.Flags().BoolVarP(
		&verboseFlag,
		"verbose",
		"v",
		false, // value
		"Set to true for verbose output",
	)
	versionCmd.Flags().BoolVarP(
		&shortFlag,
		"short",
		"s",
		false, // value
		"Set to true for short output",
	)
	return versionCmd
}
