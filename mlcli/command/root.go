package command

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	surveyterminal "github.com/AlecAivazis/survey/v2/terminal"
	"github.com/fatih/color"
	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"go.jetpack.io/mlpad/goutil"
	"go.jetpack.io/mlpad/goutil/errorutil"
	"go.jetpack.io/mlpad/mlcli/flags"
	"go.jetpack.io/mlpad/mlcli/hook"
	"go.jetpack.io/mlpad/mlcli/provider"
	"go.jetpack.io/mlpad/mlpad"
	"go.jetpack.io/mlpad/pkg/padlog"
)

// These options allow the CLI to be customized with additional commands and
// "providers" that can enhance functionality by using private services.
type cmdOptions interface {
	provider.Providers
	AdditionalCommands() []*cobra.Command
	Hooks() *hook.Hooks
	Pad() mlpad.MLPad
	RootCommand() *cobra.Command
	RootFlags() *flags.RootCmdFlags
	PersistentPreRunE(cmd *cobra.Command, args []string) error
	PersistentPostRunE(cmd *cobra.Command, args []string) error
}

// This is global for now (for expediency). We could pass these options down
// to every function that needs them.
var cmdOpts cmdOptions

const environmentFlagName = "environment"

func registerRootCmdFlags(cmd *cobra.Command) {
	settings := cmdOpts.Settings()

	cmd.PersistentFlags().BoolVarP(
		&cmdOpts.RootFlags().Debug,
		"debug",
		"d",
		false,
		"print debug output",
	)

	// to read this flag, one must use the cmdOpts.RootFlags().Env() function
	cmd.PersistentFlags().StringVar(
		&cmdOpts.RootFlags().Environment,
		environmentFlagName,
		goutil.Coalesce(settings.GetString(provider.SettingEnvironment), "dev"),
		"The name of the environment this command should operate on. One of: dev, test, prod. Defaults to $ENVIRONMENT",
	)

	cmd.PersistentFlags().StringVar(
		&cmdOpts.RootFlags().Root,
		"root",
		".",
		"Repository root holding the variables/ and json_schema/ directories",
	)

	cmd.PersistentFlags().BoolVar(
		&cmdOpts.RootFlags().DryRun,
		"dry-run",
		false,
		"Report what would change without changing anything",
	)

	cmd.PersistentFlags().StringVar(
		&cmdOpts.RootFlags().LogFile,
		"log-file",
		settings.GetString(provider.SettingLogFile),
		"Also append event logs to this file. Defaults to $MLPAD_LOG_FILE",
	)

	cmd.PersistentFlags().StringVar(
		&cmdOpts.RootFlags().LogLevel,
		"log-level",
		"info",
		"Event log level: debug, info, warning or error",
	)

	// Read through settings: a passed flag wins, then the environment.
	cmd.PersistentFlags().String("subscription", "", "Azure subscription ID. Defaults to $SUBSCRIPTION_ID")
	cmd.PersistentFlags().String("resource-group", "", "Resource group of the workspace. Defaults to $RESOURCE_GROUP")
	cmd.PersistentFlags().String("workspace", "", "Azure ML workspace name. Defaults to $WORKSPACE_NAME")
	bindSetting(cmd.PersistentFlags().Lookup("subscription"), provider.SettingSubscriptionID)
	bindSetting(cmd.PersistentFlags().Lookup("resource-group"), provider.SettingResourceGroup)
	bindSetting(cmd.PersistentFlags().Lookup("workspace"), provider.SettingWorkspace)
}

func NewRootCmd(opts cmdOptions) *cobra.Command {
	cmdOpts = opts
	rootCmd := &cobra.Command{
		Use:   binaryName,
		Short: "Provision and configure an Azure Machine Learning platform",
		Long:  "Provision and configure an Azure Machine Learning platform from declarative config files",
		// If an error occurs then cobra will print the Usage (i.e. --help)
		// but we don't want that. This still prints usage if user types
		// --help, or `mlpad help <cmd>`.
		SilenceUsage: true,
		// We print the error via special handling in the Execute() function
		// so we silence it here. If this were false, then we would
		// double-print the error message.
		SilenceErrors:     true,
		PersistentPreRunE: persistentPreRunE,
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.WithStack(cmd.Help())
		},
		PersistentPostRunE: persistentPostRunE,
	}

	rootCmd.AddCommand(
		applyCmd(),
		componentCmd(),
		computeCmd(),
		dataCmd(),
		envCmd(),
		environmentCmd(),
		infraCmd(),
		loginCmd(),
		mltableCmd(),
		monitorCmd(),
		pipelineCmd(),
		validateCmd(),
		versionCmd(),
	)

	rootCmd.AddCommand(cmdOpts.AdditionalCommands()...)

	registerRootCmdFlags(rootCmd)

	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	return rootCmd
}

// Execute is the entry point for CLI app.
func Execute(ctx context.Context, opts cmdOptions) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, unix.SIGTERM)

	span := sentry.StartSpan(ctx, "cliCommand")
	err := opts.RootCommand().ExecuteContext(ctx)
	span.Finish()
	_ = opts.AnalyticsProvider().Close()

	if err != nil {
		// For now log all errors. If this gets too noisy, we can log only for stuff
		// that is not a user error.
		cmdOpts.ErrorLogger().CaptureException(err)
		if opts.RootFlags().Debug {
			logrus.SetLevel(logrus.DebugLevel)
			log.Fatal(errorutil.DebugReport(err))
		} else {
			displayed := cmdOpts.ErrorLogger().DisplayException(err)
			if displayed {
				// Error was displayed, but we still want to exit with non-zero code.
				os.Exit(1)
			}

			// user interrupt signals (ctrl+c) are not errors caused by the user or mlpad
			// So they need special handling, clean output and graceful shutdown.
			if errors.Is(err, context.Canceled) || errors.Is(err, surveyterminal.InterruptErr) {
				fmt.Println("ABORT: Operation cancelled by user interruption.")
				stop()
				os.Exit(1)
			}

			// This logic allows us to handle errors, combined errors and user errors.
			// errors: normal golang errors
			// combined: golang error + user friendly error to display
			// user: no golang error cause, just a user error we created.
			if msg := errorutil.GetUserErrorMessage(err); msg != "" {
				color.Red(
					"\nError: %s\n\nCaused by:\n\n %s\n\nRun with --debug for more information",
					msg,
					err,
				)
				os.Exit(1)
			} else {
				log.Fatalf(
					"ABORT: There was an error. The cause is:\n\t %s. \n"+
						"Run with --debug for more information",
					errors.Cause(err),
				)
			}
		}
	}
	stop()
}

// This function should never panic. It runs before every command, including
// version and help.
func persistentPreRunE(cmd *cobra.Command, args []string) error {
	if err := cmdOpts.PersistentPreRunE(cmd, args); err != nil {
		return err
	}

	rootFlags := cmdOpts.RootFlags()
	level := rootFlags.LogLevel
	if rootFlags.Debug {
		level = logrus.DebugLevel.String()
	}
	if err := padlog.Setup(rootFlags.LogFile, level); err != nil {
		return errorutil.CombinedError(
			err,
			errorutil.NewUserErrorf("could not set up logging to %q", rootFlags.LogFile),
		)
	}

	if !rootFlags.IsValidEnvironment() {
		return errorutil.NewUserErrorf(
			"Environment \"%s\" not recognized. Please use one of: dev, test, prod.\n",
			rootFlags.Environment,
		)
	}

	cmdOpts.AnalyticsProvider().Track(cmd.Context(), "command", map[string]any{
		"command":     cmd.CommandPath(),
		"environment": rootFlags.Env(),
		"dry_run":     rootFlags.DryRun,
	})

	// deliberately ignore error
	_ = cmdOpts.Hooks().CommandStart(cmd.CommandPath(), rootFlags.Env())
	return nil
}

func persistentPostRunE(cmd *cobra.Command, args []string) error {
	if err := padlog.Close(); err != nil {
		return err
	}
	return cmdOpts.PersistentPostRunE(cmd, args)
}
