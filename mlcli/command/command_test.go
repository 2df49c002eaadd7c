package command

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/suite"

	"go.jetpack.io/mlpad/goutil/errorutil"
	"go.jetpack.io/mlpad/mlcli/command/mock"
	"go.jetpack.io/mlpad/mlcli/flags"
	"go.jetpack.io/mlpad/mlcli/hook"
	"go.jetpack.io/mlpad/mlcli/provider"
	"go.jetpack.io/mlpad/mlpad"
	"go.jetpack.io/mlpad/pkg/azml"
	"go.jetpack.io/mlpad/pkg/padlog"
	"go.jetpack.io/mlpad/pkg/reconcile"
	"go.jetpack.io/mlpad/pkg/schemacheck"
)

type Suite struct {
	suite.Suite

	ctx      context.Context
	out      *bytes.Buffer
	pad      *mock.MockPad
	settings *viper.Viper
	opts     *mock.MockCmdOptions
}

func TestSuite(t *testing.T) {
	suite.Run(t, &Suite{})
}

func (t *Suite) SetupTest() {
	t.out = &bytes.Buffer{}
	t.ctx = padlog.WithLogger(context.Background(), t.out)
	t.pad = &mock.MockPad{}
	t.settings = viper.New()
	t.opts = &mock.MockCmdOptions{
		RootCMDFlags: &flags.RootCmdFlags{},
		MockSettings: t.settings,
		MockPad:      t.pad,
	}
}

func (t *Suite) setWorkspace() {
	t.settings.Set(provider.SettingSubscriptionID, "sub")
	t.settings.Set(provider.SettingResourceGroup, "rg")
	t.settings.Set(provider.SettingWorkspace, "ws")
}

func (t *Suite) run(args ...string) error {
	root := NewRootCmd(t.opts)
	root.SetArgs(args)
	root.SetOut(t.out)
	root.SetErr(t.out)
	return root.ExecuteContext(t.ctx)
}

func (t *Suite) TestVersion() {
	req := t.Require()
	req.NoError(t.run("version", "--short"))
	req.Equal("0.0.0\n", t.out.String())
	req.Equal([]string{"command"}, t.opts.Analytics.Events)
}

func (t *Suite) TestUnknownEnvironment() {
	req := t.Require()
	err := t.run("--environment", "staging", "version")
	req.Error(err)
	req.True(errorutil.IsUserError(err))
	req.Contains(err.Error(), "staging")
}

func (t *Suite) TestCommandStartHook() {
	req := t.Require()
	var gotPath, gotEnv string
	t.opts.MockHooks = hook.New(hook.WithCommandStartHook(func(path, env string) error {
		gotPath, gotEnv = path, env
		return errors.New("hooks do not block commands")
	}))
	req.NoError(t.run("--environment", "PROD", "version"))
	req.Equal("mlpad version", gotPath)
	req.Equal("prod", gotEnv)
}

// This simply runs the persistentPreRun function under root.go. It must
// not fail for a valid environment even when nothing else is set.
func (t *Suite) TestPersistentPreRun() {
	req := t.Require()
	cmdOpts = t.opts
	t.opts.RootCMDFlags.Environment = "dev"
	cmd := versionCmd()
	req.NoError(persistentPreRunE(cmd, []string{}))
}

func (t *Suite) TestComputeApplyDefaults() {
	req := t.Require()
	t.setWorkspace()
	var got *mlpad.ComputeOptions
	var gotWS azml.Workspace
	t.pad.ApplyComputeFunc = func(
		ctx context.Context,
		ws mlpad.MLWorkspace,
		opts *mlpad.ComputeOptions,
	) (*reconcile.Report, error) {
		got, gotWS = opts, ws.Workspace()
		return reconcile.NewReport(), nil
	}

	err := t.run(
		"--root", "/repo", "--environment", "test", "--dry-run",
		"compute", "apply", "--wait", "--wait-timeout", "5m",
	)
	req.NoError(err)
	req.Equal("/repo/variables/test/compute/compute.json", got.ConfigPath)
	req.True(got.DryRun)
	req.True(got.Wait)
	req.Equal(5*time.Minute, got.WaitTimeout)
	req.NotNil(got.LifecycleHook)
	req.Equal(azml.Workspace{SubscriptionID: "sub", ResourceGroup: "rg", Name: "ws"}, gotWS)
	req.Contains(t.out.String(), "0 created, 0 updated, 0 unchanged, 0 failed")
}

func (t *Suite) TestWorkspaceFromFlags() {
	req := t.Require()
	var gotWS azml.Workspace
	var gotPath string
	t.pad.ApplyComponentsFunc = func(
		ctx context.Context,
		ws mlpad.MLWorkspace,
		opts *mlpad.ApplyOptions,
	) (*reconcile.Report, error) {
		gotWS, gotPath = ws.Workspace(), opts.ConfigPath
		return reconcile.NewReport(), nil
	}

	err := t.run(
		"--subscription", "s2", "--resource-group", "rg2", "--workspace", "w2",
		"component", "apply", "-f", "components.yaml",
	)
	req.NoError(err)
	req.Equal(azml.Workspace{SubscriptionID: "s2", ResourceGroup: "rg2", Name: "w2"}, gotWS)
	req.Equal("components.yaml", gotPath)
}

func (t *Suite) TestWorkspaceRequired() {
	req := t.Require()
	t.settings.Set(provider.SettingSubscriptionID, "sub")
	t.settings.Set(provider.SettingResourceGroup, "rg")
	err := t.run("data", "apply")
	req.Error(err)
	req.True(errorutil.IsUserError(err))
	req.Contains(errorutil.GetUserErrorMessage(err), "WORKSPACE_NAME")
}

func (t *Suite) TestFailedEntriesFailTheCommand() {
	req := t.Require()
	t.setWorkspace()
	t.pad.ApplyDataFunc = func(
		ctx context.Context,
		ws mlpad.MLWorkspace,
		opts *mlpad.ApplyOptions,
	) (*reconcile.Report, error) {
		report := reconcile.NewReport()
		report.Add(reconcile.Outcome{Kind: "data", Name: "ok", Action: reconcile.Create})
		report.Add(reconcile.Outcome{
			Kind:   "data",
			Name:   "broken",
			Action: reconcile.Create,
			Err:    errors.New("boom"),
		})
		return report, nil
	}

	err := t.run("data", "apply")
	req.Error(err)
	req.Contains(err.Error(), "broken")
	req.Equal("1 of 2 entries failed", errorutil.GetUserErrorMessage(err))
	req.Contains(t.out.String(), "1 created, 0 updated, 0 unchanged, 1 failed")
}

func (t *Suite) TestEnvironmentApplyWritesCondaFiles() {
	req := t.Require()
	t.setWorkspace()
	var got *mlpad.EnvironmentOptions
	t.pad.ApplyEnvironmentsFunc = func(
		ctx context.Context,
		ws mlpad.MLWorkspace,
		opts *mlpad.EnvironmentOptions,
	) (*reconcile.Report, error) {
		got = opts
		return reconcile.NewReport(), nil
	}
	req.NoError(t.run("environment", "apply", "--write-conda-files"))
	req.True(got.WriteCondaFiles)
	req.Equal("variables/dev/environment/environment.json", got.ConfigPath)
}

func (t *Suite) TestPipelineSubmit() {
	req := t.Require()
	t.setWorkspace()
	var got *mlpad.PipelineOptions
	t.pad.SubmitPipelinesFunc = func(
		ctx context.Context,
		ws mlpad.MLWorkspace,
		opts *mlpad.PipelineOptions,
	) (*reconcile.Report, error) {
		got = opts
		return reconcile.NewReport(), nil
	}
	req.NoError(t.run("pipeline", "submit", "--wait"))
	req.True(got.Wait)
	req.Equal("variables/dev/pipelines/pipelines.json", got.ConfigPath)
}

func (t *Suite) TestMonitorCommands() {
	t.settings.Set(provider.SettingSubscriptionID, "sub")

	cases := []struct {
		sub      string
		wantFile string
	}{
		{"action-groups", "variables/dev/monitor/action_groups.json"},
		{"alerts", "variables/dev/monitor/alerts.json"},
		{"processing-rules", "variables/dev/monitor/action_groups.json"},
	}
	for _, tc := range cases {
		t.Run(tc.sub, func() {
			req := t.Require()
			var got *mlpad.MonitorOptions
			capture := func(
				ctx context.Context,
				m mlpad.Monitor,
				opts *mlpad.MonitorOptions,
			) (*reconcile.Report, error) {
				got = opts
				return reconcile.NewReport(), nil
			}
			t.pad.ApplyActionGroupsFunc = capture
			t.pad.ApplyAlertsFunc = capture
			t.pad.ApplyProcessingRulesFunc = capture

			err := t.run("monitor", tc.sub, "--law-resource-group", "law-rg", "--law-name", "law")
			req.NoError(err)
			req.Equal(tc.wantFile, got.ConfigPath)
			req.Equal("law-rg", got.ResourceGroup)
			req.Equal("law", got.WorkspaceName)
		})
	}
}

func (t *Suite) TestMonitorNeedsSubscription() {
	req := t.Require()
	err := t.run("monitor", "alerts")
	req.Error(err)
	req.True(errorutil.IsUserError(err))
}

func (t *Suite) TestEnvSetArguments() {
	cases := []struct {
		args     []string
		wantFile string
		wantVars []string
	}{
		{[]string{"vars.json", "A=b"}, "vars.json", []string{"A=b"}},
		{[]string{"A=b", "C=d"}, "", []string{"A=b", "C=d"}},
		{[]string{".env"}, ".env", []string{}},
	}
	for _, tc := range cases {
		req := t.Require()
		var got *mlpad.EnvSetOptions
		t.pad.EnvSetFunc = func(ctx context.Context, opts *mlpad.EnvSetOptions) (*mlpad.EnvSetOutput, error) {
			got = opts
			return &mlpad.EnvSetOutput{}, nil
		}
		req.NoError(t.run(append([]string{"env", "set"}, tc.args...)...))
		req.Equal(tc.wantFile, got.File)
		req.ElementsMatch(tc.wantVars, got.Assignments)
	}
}

func (t *Suite) TestEnvCheckNeedsFile() {
	req := t.Require()
	req.Error(t.run("env", "check"))

	gotPath := ""
	t.pad.EnvCheckFunc = func(ctx context.Context, path string) (azml.Workspace, error) {
		gotPath = path
		return azml.Workspace{}, nil
	}
	req.NoError(t.run("env", "check", "variables/dev/env.json"))
	req.Equal("variables/dev/env.json", gotPath)
}

func (t *Suite) TestInfraDeployExportsWorkspace() {
	req := t.Require()
	t.settings.Set(provider.SettingSubscriptionID, "sub")
	var deployed *mlpad.DeployOptions
	t.pad.DeployInfraFunc = func(ctx context.Context, opts *mlpad.DeployOptions) (*mlpad.DeployOutput, error) {
		deployed = opts
		return &mlpad.DeployOutput{
			Workspace: azml.Workspace{SubscriptionID: "sub", ResourceGroup: "rg-out", Name: "ws-out"},
		}, nil
	}
	var exported []string
	t.pad.EnvSetFunc = func(ctx context.Context, opts *mlpad.EnvSetOptions) (*mlpad.EnvSetOutput, error) {
		exported = opts.Assignments
		return &mlpad.EnvSetOutput{}, nil
	}

	err := t.run(
		"infra", "deploy",
		"--template-file", "infra/main.bicep",
		"--parameters-file", "infra/params.json",
		"--name", "mlpad-dev",
		"--github-env",
	)
	req.NoError(err)
	req.Equal("infra/main.bicep", deployed.TemplateFile)
	req.Equal("infra/params.json", deployed.ParametersFile)
	req.Equal("mlpad-dev", deployed.DeploymentName)
	req.Equal("sub", deployed.SubscriptionID)
	req.NotNil(deployed.CLI)
	req.Equal([]string{"WORKSPACE_NAME=ws-out", "RESOURCE_GROUP=rg-out"}, exported)
}

func (t *Suite) TestLoginReadsServicePrincipal() {
	req := t.Require()
	t.settings.Set(provider.SettingClientID, "client")
	t.settings.Set(provider.SettingClientSecret, "secret")
	t.settings.Set(provider.SettingTenantID, "tenant")
	var got *mlpad.LoginOptions
	t.pad.LoginFunc = func(ctx context.Context, opts *mlpad.LoginOptions) (*mlpad.LoginOutput, error) {
		got = opts
		return &mlpad.LoginOutput{}, nil
	}

	req.NoError(t.run("--environment", "test", "login"))
	req.Equal("client", got.ServicePrincipal.ClientID)
	req.Equal("secret", got.ServicePrincipal.ClientSecret)
	req.Equal("tenant", got.ServicePrincipal.TenantID)
	req.Equal("test", got.Environment)
	req.Empty(got.SubscriptionID)
	req.NotNil(got.FindSubscription)
}

func (t *Suite) TestLoginPromptedSecretAuthenticatesLookup() {
	req := t.Require()
	interactive := isInteractive
	isInteractive = func() bool { return true }
	t.T().Cleanup(func() { isInteractive = interactive })

	t.settings.Set(provider.SettingClientID, "client")
	t.settings.Set(provider.SettingTenantID, "tenant")
	prompter := &mock.MockPrompter{Answer: "prompted"}
	t.opts.MockPrompter = prompter
	t.opts.MockCredentials = provider.SettingsCredentialProvider(t.settings)

	var lookupCred azcore.TokenCredential
	var got *mlpad.LoginOptions
	t.pad.LoginFunc = func(ctx context.Context, opts *mlpad.LoginOptions) (*mlpad.LoginOutput, error) {
		got = opts
		cred, err := t.opts.CredentialProvider().Get(ctx)
		lookupCred = cred
		return &mlpad.LoginOutput{}, err
	}

	req.NoError(t.run("login"))
	req.Equal([]string{"Client secret of client"}, prompter.Messages)
	req.Equal("prompted", got.ServicePrincipal.ClientSecret)
	req.Equal("prompted", t.settings.GetString(provider.SettingClientSecret))
	req.IsType(&azidentity.ClientSecretCredential{}, lookupCred)
}

func (t *Suite) TestValidate() {
	req := t.Require()
	var got *mlpad.ValidateOptions
	t.pad.ValidateFunc = func(ctx context.Context, opts *mlpad.ValidateOptions) (*schemacheck.Report, error) {
		got = opts
		return &schemacheck.Report{
			Results: []schemacheck.Result{{File: "dev/compute/compute.json", Status: schemacheck.Invalid}},
		}, nil
	}
	err := t.run("validate", "config", "--include", "**.json")
	req.Error(err)
	req.Contains(err.Error(), "dev/compute/compute.json")
	req.Equal("config", got.Root)
	req.Equal([]string{"**.json"}, got.Include)

	watched := false
	t.pad.WatchValidateFunc = func(ctx context.Context, opts *mlpad.ValidateOptions) error {
		watched = true
		req.Equal(".", opts.Root)
		return nil
	}
	req.NoError(t.run("validate", "--watch"))
	req.True(watched)
}

func (t *Suite) TestApplyAll() {
	req := t.Require()
	t.setWorkspace()
	var got *mlpad.ApplyAllOptions
	t.pad.ApplyFunc = func(
		ctx context.Context,
		ws mlpad.MLWorkspace,
		opts *mlpad.ApplyAllOptions,
	) (*reconcile.Report, error) {
		got = opts
		return reconcile.NewReport(), nil
	}
	req.NoError(t.run("--environment", "prod", "--root", "repo", "apply", "--submit-pipelines"))
	req.Equal("repo", got.Root)
	req.Equal("prod", got.Environment)
	req.True(got.SubmitPipelines)
	req.False(got.Wait)
}

func (t *Suite) TestMLTableCreate() {
	req := t.Require()
	var got *mlpad.MLTableOptions
	t.pad.CreateMLTableFunc = func(ctx context.Context, opts *mlpad.MLTableOptions) (string, error) {
		got = opts
		return opts.Dir + "/MLTable", nil
	}
	req.NoError(t.run("mltable", "create", "data/taxi", "--spec", "taxi.yaml"))
	req.Equal("data/taxi", got.Dir)
	req.Equal("taxi.yaml", got.SpecFile)
}
