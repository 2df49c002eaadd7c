package jflags

import (
	"github.com/spf13/cobra"
)

func NewMonitorCmd() *MonitorCmd {
	return &MonitorCmd{}
}

// RegisterMonitorFlags registers the flags shared by the monitor
// subcommands. The Log Analytics flags are left unbound; callers bind them
// to settings so LAW_RG and LAW_NAME apply.
func RegisterMonitorFlags(cmd *cobra.Command, flags *MonitorCmd) {
	cmd.PersistentFlags().StringVarP(
		&flags.file,
		"file",
		"f",
		"",
		"Config file. Defaults to variables/<environment>/monitor/<kind>.json",
	)
	cmd.PersistentFlags().String(
		"law-resource-group",
		"",
		"Resource group of the Log Analytics workspace. Defaults to $LAW_RG",
	)
	cmd.PersistentFlags().String(
		"law-name",
		"",
		"Log Analytics workspace name. Defaults to $LAW_NAME",
	)
}

type MonitorCmd struct {
	File
}
