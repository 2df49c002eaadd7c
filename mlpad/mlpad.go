package mlpad

import (
	"context"
	"time"

	"github.com/spf13/afero"

	"go.jetpack.io/mlpad/mlcli/hook"
	"go.jetpack.io/mlpad/mlcli/provider"
	"go.jetpack.io/mlpad/pkg/azml"
	"go.jetpack.io/mlpad/pkg/azmonitor"
	"go.jetpack.io/mlpad/pkg/reconcile"
	"go.jetpack.io/mlpad/pkg/schemacheck"
)

// This file has the public interface to the mlpad package

// MLWorkspace is the slice of the Azure ML control plane the reconcilers
// use. *azml.Client implements it.
type MLWorkspace interface {
	Workspace() azml.Workspace
	Location(ctx context.Context) (string, error)

	GetCompute(ctx context.Context, name string) (*azml.Compute, error)
	CreateCompute(ctx context.Context, name string, compute *azml.Compute) error
	UpdateComputeScale(ctx context.Context, name string, s azml.ScaleSettings) error
	WaitForCompute(ctx context.Context, name string, timeout time.Duration) error

	LatestVersion(ctx context.Context, kind azml.AssetKind, name string) (string, error)
	GetDataVersion(ctx context.Context, name, version string) (*azml.DataVersion, error)
	CreateDataVersion(ctx context.Context, name, version string, d *azml.DataVersion) error
	GetEnvironmentVersion(ctx context.Context, name, version string) (*azml.EnvironmentVersion, error)
	CreateEnvironmentVersion(ctx context.Context, name, version string, e *azml.EnvironmentVersion) error
	GetComponentVersion(ctx context.Context, name, version string) (*azml.ComponentVersion, error)
	CreateComponentVersion(ctx context.Context, name, version string, c *azml.ComponentVersion) error

	CreateJob(ctx context.Context, name string, job *azml.Job) (*azml.Job, error)
	WaitForJob(ctx context.Context, name string, timeout time.Duration) (string, error)
}

// Monitor is the slice of Azure Monitor the alerting reconcilers use.
// *azmonitor.Client implements it.
type Monitor interface {
	ActionGroupID(rg, name string) string
	ResourceGroupID(rg string) string
	LogAnalyticsWorkspaceID(rg, name string) string
	ResourceLocation(ctx context.Context, resourceID string) (string, error)
	CreateOrUpdateActionGroup(ctx context.Context, rg, name string, ag *azmonitor.ActionGroup) error
	CreateOrUpdateScheduledQueryRule(ctx context.Context, rg, name string, rule *azmonitor.ScheduledQueryRule) error
	GetProcessingRule(ctx context.Context, rg, name string) (*azmonitor.ProcessingRule, error)
	CreateProcessingRule(ctx context.Context, rg, name string, rule *azmonitor.ProcessingRule) error
}

var (
	_ MLWorkspace = (*azml.Client)(nil)
	_ Monitor     = (*azmonitor.Client)(nil)
)

type MLPad interface {
	ApplyCompute(ctx context.Context, ws MLWorkspace, opts *ComputeOptions) (*reconcile.Report, error)
	ApplyData(ctx context.Context, ws MLWorkspace, opts *ApplyOptions) (*reconcile.Report, error)
	ApplyEnvironments(ctx context.Context, ws MLWorkspace, opts *EnvironmentOptions) (*reconcile.Report, error)
	ApplyComponents(ctx context.Context, ws MLWorkspace, opts *ApplyOptions) (*reconcile.Report, error)
	SubmitPipelines(ctx context.Context, ws MLWorkspace, opts *PipelineOptions) (*reconcile.Report, error)
	ApplyActionGroups(ctx context.Context, m Monitor, opts *MonitorOptions) (*reconcile.Report, error)
	ApplyAlerts(ctx context.Context, m Monitor, opts *MonitorOptions) (*reconcile.Report, error)
	ApplyProcessingRules(ctx context.Context, m Monitor, opts *MonitorOptions) (*reconcile.Report, error)
	Apply(ctx context.Context, ws MLWorkspace, opts *ApplyAllOptions) (*reconcile.Report, error)
	DeployInfra(ctx context.Context, opts *DeployOptions) (*DeployOutput, error)
	Login(ctx context.Context, opts *LoginOptions) (*LoginOutput, error)
	EnvSet(ctx context.Context, opts *EnvSetOptions) (*EnvSetOutput, error)
	EnvCheck(ctx context.Context, path string) (azml.Workspace, error)
	Validate(ctx context.Context, opts *ValidateOptions) (*schemacheck.Report, error)
	WatchValidate(ctx context.Context, opts *ValidateOptions) error
	CreateMLTable(ctx context.Context, opts *MLTableOptions) (string, error)
}

// Pad has the foundational elements on top of which MLPad is constructed.
type Pad struct {
	// fs is the filesystem
	fs          afero.Fs
	errorLogger provider.ErrorLogger
	// now is the clock used for date based versions.
	now func() time.Time
}

var _ MLPad = (*Pad)(nil)

func NewPad(errorLogger provider.ErrorLogger) *Pad {
	return &Pad{
		fs:          afero.NewOsFs(),
		errorLogger: errorLogger,
		now:         time.Now,
	}
}

func NewPadForTest(now time.Time) *Pad {
	return &Pad{
		fs:          afero.NewMemMapFs(),
		errorLogger: &provider.NoOpLogger{},
		now:         func() time.Time { return now },
	}
}

// Fs is the filesystem the pad reads configuration from.
func (p *Pad) Fs() afero.Fs {
	return p.fs
}

func lifecycle(ctx context.Context, h hook.LifecycleHook, f func() (hook.LifecycleOutput, error)) {
	if h == nil {
		hook.Track(ctx, f)
		return
	}
	h(ctx, f)
}
