package command

import (
	"context"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"go.jetpack.io/mlpad/mlcli/provider"
	"go.jetpack.io/mlpad/mlcli/terminal"
	"go.jetpack.io/mlpad/mlpad"
	"go.jetpack.io/mlpad/pkg/azaccount"
	"go.jetpack.io/mlpad/pkg/azcli"
)

var isInteractive = terminal.IsInteractive

func loginCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "login",
		Short: "Log the az CLI in as the workflow service principal",
		Long: heredoc.Doc(`
			Log the az CLI in as the workflow service principal

			Credentials are read from ARM_CLIENT_ID, ARM_CLIENT_SECRET and
			ARM_TENANT_ID (or their AZURE_ equivalents). The subscription is
			SUBSCRIPTION_ID when set, otherwise the subscription named after
			the environment: Development, Testing or Production.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			settings := cmdOpts.Settings()
			sp := azcli.ServicePrincipal{
				ClientID:     settings.GetString(provider.SettingClientID),
				ClientSecret: settings.GetString(provider.SettingClientSecret),
				TenantID:     settings.GetString(provider.SettingTenantID),
			}
			if sp.ClientID != "" && sp.ClientSecret == "" && isInteractive() {
				secret, err := cmdOpts.Prompter().Secret(ctx, "Client secret of "+sp.ClientID)
				if err != nil {
					return err
				}
				sp.ClientSecret = secret
				// The subscription lookup authenticates through settings and
				// must run as the same principal az logs in as.
				settings.Set(provider.SettingClientSecret, secret)
			}

			_, err := cmdOpts.Pad().Login(ctx, &mlpad.LoginOptions{
				CLI:              newAzCLI(),
				ServicePrincipal: sp,
				SubscriptionID:   settings.GetString(provider.SettingSubscriptionID),
				Environment:      cmdOpts.RootFlags().Env(),
				FindSubscription: findSubscription,
			})
			return err
		},
	}
	return command
}

func findSubscription(ctx context.Context, displayName string) (string, error) {
	cred, err := cmdOpts.CredentialProvider().Get(ctx)
	if err != nil {
		return "", err
	}
	lister, err := azaccount.NewLister(cred, nil)
	if err != nil {
		return "", err
	}
	return lister.FindByName(ctx, displayName)
}
