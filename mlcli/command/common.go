package command

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"go.jetpack.io/mlpad/goutil/errorutil"
	"go.jetpack.io/mlpad/mlcli/mlconfig"
	"go.jetpack.io/mlpad/mlcli/provider"
	"go.jetpack.io/mlpad/mlpad"
	"go.jetpack.io/mlpad/pkg/azcli"
	"go.jetpack.io/mlpad/pkg/azml"
	"go.jetpack.io/mlpad/pkg/azmonitor"
	"go.jetpack.io/mlpad/pkg/padlog"
	"go.jetpack.io/mlpad/pkg/reconcile"
)

// newAzCLI returns the az driver used by login and infra. Tests swap it for
// a fake runner.
var newAzCLI = func() *azcli.CLI {
	return azcli.New(nil)
}

func bindSetting(flag *pflag.Flag, key string) {
	if flag == nil {
		return
	}
	_ = cmdOpts.Settings().BindPFlag(key, flag)
}

func workspaceClient(ctx context.Context) (*azml.Client, error) {
	ws := provider.Workspace(cmdOpts.Settings())
	if err := ws.Validate(); err != nil {
		return nil, err
	}
	cred, err := cmdOpts.CredentialProvider().Get(ctx)
	if err != nil {
		return nil, err
	}
	return azml.NewClient(ws, cred, nil)
}

func monitorClient(ctx context.Context) (*azmonitor.Client, error) {
	sub := cmdOpts.Settings().GetString(provider.SettingSubscriptionID)
	if sub == "" {
		return nil, errorutil.NewUserError("subscription id is not set").
			WithHint("set SUBSCRIPTION_ID or pass --subscription")
	}
	cred, err := cmdOpts.CredentialProvider().Get(ctx)
	if err != nil {
		return nil, err
	}
	return azmonitor.NewClient(sub, cred, nil)
}

// conventionalPath is where the file of kind lives for the selected root
// and environment.
func conventionalPath(kind mlconfig.Kind) string {
	rootFlags := cmdOpts.RootFlags()
	return mlconfig.ConventionalPath(rootFlags.Root, rootFlags.Env(), kind)
}

// applyOptions fills the options every reconcile shares.
func applyOptions(path string) mlpad.ApplyOptions {
	return mlpad.ApplyOptions{
		ConfigPath:    path,
		DryRun:        cmdOpts.RootFlags().DryRun,
		LifecycleHook: cmdOpts.Hooks().Apply,
	}
}

// summarize prints the counts of a reconcile run and turns failed entries
// into the command's error.
func summarize(ctx context.Context, report *reconcile.Report, err error) error {
	if err != nil {
		return errors.WithStack(err)
	}
	counts := report.Counts()
	padlog.Logger(ctx).HeaderPrintf(
		"%s in %s",
		counts,
		report.Duration().Round(time.Millisecond),
	)
	if err := report.Err(); err != nil {
		return errorutil.AddUserMessagef(err, "%d of %d entries failed", counts.Failed, len(report.Outcomes()))
	}
	return nil
}
