package mlpad

import (
	"context"
	"io"
	"time"

	"go.jetpack.io/mlpad/mlcli/hook"
	"go.jetpack.io/mlpad/pkg/azcli"
	"go.jetpack.io/mlpad/pkg/azml"
	"go.jetpack.io/mlpad/pkg/ghenv"
)

// ApplyOptions are shared by every reconcile of a config file.
type ApplyOptions struct {
	// ConfigPath is the JSON or YAML file declaring the resources.
	ConfigPath string

	// DryRun computes and reports decisions without changing anything.
	DryRun bool

	LifecycleHook hook.LifecycleHook

	// Lookup resolves ${VAR} references in the config. Defaults to the
	// process environment.
	Lookup func(string) string
}

type ComputeOptions struct {
	ApplyOptions

	// Wait blocks until newly created computes finish provisioning.
	Wait        bool
	WaitTimeout time.Duration
}

type EnvironmentOptions struct {
	ApplyOptions

	// WriteCondaFiles writes each rendered conda file next to the config
	// as <name>.conda.yaml.
	WriteCondaFiles bool
}

type PipelineOptions struct {
	ApplyOptions

	// Wait blocks until every submitted job reaches a terminal status.
	Wait        bool
	WaitTimeout time.Duration
}

// MonitorOptions locate the Log Analytics workspace alerting is attached
// to.
type MonitorOptions struct {
	ApplyOptions

	ResourceGroup string
	WorkspaceName string
}

// ApplyAllOptions reconcile every kind found in the conventional
// <root>/variables/<env>/ layout.
type ApplyAllOptions struct {
	Root        string
	Environment string
	DryRun      bool

	// SubmitPipelines also submits the pipelines file. Off by default since
	// every submission starts a new job.
	SubmitPipelines bool
	Wait            bool
	WaitTimeout     time.Duration

	LifecycleHook hook.LifecycleHook
	Lookup        func(string) string
}

type DeployOptions struct {
	CLI            *azcli.CLI
	TemplateFile   string
	ParametersFile string
	DeploymentName string

	// Workspace is read from the deployment outputs. SubscriptionID is
	// only used to fill in the result.
	SubscriptionID string

	LifecycleHook hook.LifecycleHook
}

type DeployOutput struct {
	Location      string
	Workspace     azml.Workspace
	DefaultsMatch bool
	Duration      time.Duration
}

func (do *DeployOutput) SetDuration(d time.Duration) {
	if do == nil {
		return
	}
	do.Duration = d
}

type LoginOptions struct {
	CLI              *azcli.CLI
	ServicePrincipal azcli.ServicePrincipal
	// SubscriptionID wins over Environment when both are set.
	SubscriptionID string
	Environment    string
	// FindSubscription maps a subscription display name to its ID.
	FindSubscription func(ctx context.Context, displayName string) (string, error)
}

type LoginOutput struct {
	Account *azcli.Account
}

type EnvSetOptions struct {
	// File is a .env file or a flat JSON or YAML object. Optional.
	File string
	// Assignments are KEY=VALUE pairs that override File.
	Assignments []string
	// Exporter defaults to $GITHUB_ENV, or Out when it is unset.
	Exporter *ghenv.Exporter
	Out      io.Writer
}

type EnvSetOutput struct {
	Vars map[string]string
}

// WorkspaceKeys are the keys every environment config file must set.
var WorkspaceKeys = []string{"subscription_id", "resource_group", "workspace"}

type ValidateOptions struct {
	Root       string
	Include    []string
	IgnoreFile string
}

type MLTableOptions struct {
	// Dir receives the MLTable file.
	Dir string
	// SpecFile overrides the NYC taxi defaults. Optional.
	SpecFile string
}
