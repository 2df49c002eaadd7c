package command

import (
	"context"
	"path/filepath"

	"github.com/MakeNowJust/heredoc"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"go.jetpack.io/mlpad/mlcli/command/jflags"
	"go.jetpack.io/mlpad/mlcli/provider"
	"go.jetpack.io/mlpad/mlpad"
	"go.jetpack.io/mlpad/pkg/reconcile"
)

type monitorApply func(
	ctx context.Context,
	m mlpad.Monitor,
	opts *mlpad.MonitorOptions,
) (*reconcile.Report, error)

func monitorCmd() *cobra.Command {
	flags := jflags.NewMonitorCmd()
	command := &cobra.Command{
		Use:   "monitor",
		Short: "Manage Azure Monitor alerting for the platform",
		Long: heredoc.Doc(`
			Manage Azure Monitor alerting for the platform

			Alerts query the Log Analytics workspace named by LAW_NAME in the
			resource group LAW_RG. Action groups and processing rules are
			created in that resource group as well.
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.WithStack(cmd.Help())
		},
	}
	jflags.RegisterMonitorFlags(command, flags)
	bindSetting(command.PersistentFlags().Lookup("law-resource-group"), provider.SettingLogAnalyticsRG)
	bindSetting(command.PersistentFlags().Lookup("law-name"), provider.SettingLogAnalyticsName)

	command.AddCommand(
		monitorSubCmd(
			flags,
			"action-groups",
			"Create or update the action groups alerts notify",
			"action_groups",
			func(ctx context.Context, m mlpad.Monitor, o *mlpad.MonitorOptions) (*reconcile.Report, error) {
				return cmdOpts.Pad().ApplyActionGroups(ctx, m, o)
			},
		),
		monitorSubCmd(
			flags,
			"alerts",
			"Create or update scheduled query alerts",
			"alerts",
			func(ctx context.Context, m mlpad.Monitor, o *mlpad.MonitorOptions) (*reconcile.Report, error) {
				return cmdOpts.Pad().ApplyAlerts(ctx, m, o)
			},
		),
		monitorSubCmd(
			flags,
			"processing-rules",
			"Route alerts to action groups by severity",
			"action_groups",
			func(ctx context.Context, m mlpad.Monitor, o *mlpad.MonitorOptions) (*reconcile.Report, error) {
				return cmdOpts.Pad().ApplyProcessingRules(ctx, m, o)
			},
		),
	)
	return command
}

func monitorSubCmd(
	flags *jflags.MonitorCmd,
	use string,
	short string,
	defaultFile string,
	apply monitorApply,
) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			m, err := monitorClient(ctx)
			if err != nil {
				return err
			}
			rootFlags := cmdOpts.RootFlags()
			settings := cmdOpts.Settings()
			path := flags.DefaultedFile(filepath.Join(
				rootFlags.Root, "variables", rootFlags.Env(), "monitor", defaultFile+".json",
			))
			report, err := apply(ctx, m, &mlpad.MonitorOptions{
				ApplyOptions:  applyOptions(path),
				ResourceGroup: settings.GetString(provider.SettingLogAnalyticsRG),
				WorkspaceName: settings.GetString(provider.SettingLogAnalyticsName),
			})
			return summarize(ctx, report, err)
		},
	}
}
