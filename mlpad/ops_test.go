package mlpad

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/spf13/afero"

	"go.jetpack.io/mlpad/goutil/errorutil"
	"go.jetpack.io/mlpad/pkg/azcli"
	"go.jetpack.io/mlpad/pkg/ghenv"
	"go.jetpack.io/mlpad/pkg/reconcile"
)

// fakeAz answers az invocations by argument prefix.
type fakeAz struct {
	calls   []string
	outputs map[string]string
}

func (f *fakeAz) Run(_ context.Context, args ...string) ([]byte, error) {
	key := strings.Join(args, " ")
	f.calls = append(f.calls, key)
	for prefix, out := range f.outputs {
		if strings.HasPrefix(key, prefix) {
			return []byte(out), nil
		}
	}
	return nil, nil
}

func (f *fakeAz) called(prefix string) bool {
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

var testPrincipal = azcli.ServicePrincipal{ClientID: "app", ClientSecret: "secret", TenantID: "tenant"}

func (s *PadSuite) TestLoginWithSubscriptionID() {
	az := &fakeAz{outputs: map[string]string{
		"account show": `{"id": "sub-1", "name": "Development", "tenantId": "tenant"}`,
	}}
	out, err := s.pad.Login(s.ctx, &LoginOptions{
		CLI:              azcli.New(az),
		ServicePrincipal: testPrincipal,
		SubscriptionID:   "sub-1",
	})
	s.Require().NoError(err)
	s.Equal("Development", out.Account.Name)
	s.True(az.called("login --service-principal --username app"))
	s.True(az.called("account set --subscription sub-1"))
}

func (s *PadSuite) TestLoginLooksUpEnvironmentSubscription() {
	az := &fakeAz{outputs: map[string]string{"account show": `{"id": "sub-2", "name": "Testing"}`}}
	var looked string
	_, err := s.pad.Login(s.ctx, &LoginOptions{
		CLI:              azcli.New(az),
		ServicePrincipal: testPrincipal,
		Environment:      "test",
		FindSubscription: func(_ context.Context, name string) (string, error) {
			looked = name
			return "sub-2", nil
		},
	})
	s.Require().NoError(err)
	s.Equal("Testing", looked)
	s.True(az.called("account set --subscription sub-2"))
}

func (s *PadSuite) TestLoginErrors() {
	az := &fakeAz{}
	sp := testPrincipal
	sp.ClientSecret = ""
	_, err := s.pad.Login(s.ctx, &LoginOptions{CLI: azcli.New(az), ServicePrincipal: sp, SubscriptionID: "sub"})
	s.True(errorutil.IsUserError(err))
	s.ErrorContains(err, "ARM_CLIENT_SECRET")

	_, err = s.pad.Login(s.ctx, &LoginOptions{CLI: azcli.New(az), ServicePrincipal: testPrincipal, Environment: "staging"})
	s.ErrorContains(err, "unknown environment")

	_, err = s.pad.Login(s.ctx, &LoginOptions{
		CLI:              azcli.New(az),
		ServicePrincipal: testPrincipal,
		Environment:      "prod",
		FindSubscription: func(context.Context, string) (string, error) { return "", errors.New("no access") },
	})
	s.ErrorContains(err, "no access")
	s.Empty(az.calls)
}

const deploymentOutput = `{"properties": {"outputs": {
	"workspaceName": {"type": "String", "value": "mlw-dev"},
	"resourceGroupName": {"type": "String", "value": "rg-dev"}
}}}`

func (s *PadSuite) TestDeployInfra() {
	s.Require().NoError(afero.WriteFile(s.pad.Fs(), "/infra/main.parameters.json",
		[]byte(`{"parameters": {"location": {"value": "westeurope"}}}`), 0o644))
	az := &fakeAz{outputs: map[string]string{
		"deployment sub create":     deploymentOutput,
		"configure --list-defaults": `[{"name": "group", "value": "rg-dev"}, {"name": "workspace", "value": "mlw-dev"}]`,
	}}

	out, err := s.pad.DeployInfra(s.ctx, &DeployOptions{
		CLI:            azcli.New(az),
		TemplateFile:   "/infra/main.bicep",
		ParametersFile: "/infra/main.parameters.json",
		SubscriptionID: "sub",
	})
	s.Require().NoError(err)
	s.Equal("westeurope", out.Location)
	s.Equal("rg-dev", out.Workspace.ResourceGroup)
	s.Equal("mlw-dev", out.Workspace.Name)
	s.True(out.DefaultsMatch)
	s.True(az.called("deployment sub create --location westeurope --template-file /infra/main.bicep"))
	s.True(az.called("configure --defaults group=rg-dev"))
	s.True(az.called("configure --defaults workspace=mlw-dev"))
}

func (s *PadSuite) TestDeployInfraDefaultsMismatch() {
	s.Require().NoError(afero.WriteFile(s.pad.Fs(), "/infra/main.parameters.json",
		[]byte(`{"parameters": {"location": {"value": "westeurope"}}}`), 0o644))
	az := &fakeAz{outputs: map[string]string{
		"deployment sub create":     deploymentOutput,
		"configure --list-defaults": `[{"name": "group", "value": "rg-old"}]`,
	}}
	out, err := s.pad.DeployInfra(s.ctx, &DeployOptions{
		CLI:            azcli.New(az),
		TemplateFile:   "/infra/main.bicep",
		ParametersFile: "/infra/main.parameters.json",
	})
	s.Require().NoError(err)
	s.False(out.DefaultsMatch)
}

func (s *PadSuite) TestDeployInfraErrors() {
	az := &fakeAz{}
	_, err := s.pad.DeployInfra(s.ctx, &DeployOptions{CLI: azcli.New(az), ParametersFile: "p.json"})
	s.ErrorContains(err, "template path is not set")

	s.Require().NoError(afero.WriteFile(s.pad.Fs(), "/infra/p.json", []byte(`{"parameters": {}}`), 0o644))
	_, err = s.pad.DeployInfra(s.ctx, &DeployOptions{CLI: azcli.New(az), TemplateFile: "t", ParametersFile: "/infra/p.json"})
	s.ErrorContains(err, "parameters.location.value")
	s.Empty(az.calls)
}

func (s *PadSuite) TestEnvSet() {
	s.Require().NoError(afero.WriteFile(s.pad.Fs(), "/config/dev.json",
		[]byte(`{"subscription_id": "sub", "resource_group": "rg", "workspace": "ws"}`), 0o644))
	var buf bytes.Buffer
	out, err := s.pad.EnvSet(s.ctx, &EnvSetOptions{
		File:        "/config/dev.json",
		Assignments: []string{"workspace=override"},
		Exporter:    &ghenv.Exporter{Out: &buf},
	})
	s.Require().NoError(err)
	s.Equal("override", out.Vars["WORKSPACE"])
	s.Equal("RESOURCE_GROUP=rg\nSUBSCRIPTION_ID=sub\nWORKSPACE=override\n", buf.String())
}

func (s *PadSuite) TestEnvSetAppendsToGithubEnv() {
	s.T().Setenv(ghenv.EnvVar, "/runner/github_env")
	_, err := s.pad.EnvSet(s.ctx, &EnvSetOptions{
		Assignments: []string{"WORKSPACE_NAME=mlw", "resource_group=rg"},
	})
	s.Require().NoError(err)

	data, err := afero.ReadFile(s.pad.Fs(), "/runner/github_env")
	s.Require().NoError(err)
	s.Equal("RESOURCE_GROUP=rg\nWORKSPACE_NAME=mlw\n", string(data))
}

func (s *PadSuite) TestEnvCheck() {
	s.Require().NoError(afero.WriteFile(s.pad.Fs(), "/config/dev.json",
		[]byte(`{"subscription_id": "sub", "resource_group": "rg", "workspace": "ws"}`), 0o644))
	ws, err := s.pad.EnvCheck(s.ctx, "/config/dev.json")
	s.Require().NoError(err)
	s.Equal("ws", ws.Name)

	s.Require().NoError(afero.WriteFile(s.pad.Fs(), "/config/bad.json",
		[]byte(`{"subscription_id": "sub", "workspace": "ws"}`), 0o644))
	_, err = s.pad.EnvCheck(s.ctx, "/config/bad.json")
	s.ErrorContains(err, "resource_group")
}

func (s *PadSuite) TestValidate() {
	fs := s.pad.Fs()
	s.Require().NoError(afero.WriteFile(fs, "/repo/json_schema/compute/compute_schema.json",
		[]byte(`{"type": "object", "required": ["computes"]}`), 0o644))
	s.Require().NoError(afero.WriteFile(fs, "/repo/dev/compute/compute.json", []byte(`{"computes": []}`), 0o644))
	s.Require().NoError(afero.WriteFile(fs, "/repo/prod/compute/compute.json", []byte(`{}`), 0o644))

	report, err := s.pad.Validate(s.ctx, &ValidateOptions{Root: "/repo"})
	s.Require().NoError(err)
	s.ErrorContains(report.Err(), "prod/compute/compute.json")
	s.Contains(s.out.String(), "1 valid, 1 invalid")
}

func (s *PadSuite) TestCreateMLTable() {
	path, err := s.pad.CreateMLTable(s.ctx, &MLTableOptions{Dir: "/data/taxi"})
	s.Require().NoError(err)
	s.Equal("/data/taxi/MLTable", path)
	data, err := afero.ReadFile(s.pad.Fs(), path)
	s.Require().NoError(err)
	s.Contains(string(data), "green/puYear=2015")
}

func (s *PadSuite) TestApplyConventionalLayout() {
	s.Require().NoError(afero.WriteFile(s.pad.Fs(), "/repo/variables/dev/data/data.json", []byte(`{"data": [
		{"name": "iris", "type": "uri_folder", "path": "azureml://iris", "version": 1}
	]}`), 0o644))
	s.route(http.MethodPut, wsPath+"/data/iris/versions/1", http.StatusCreated, nil)

	report, err := s.pad.Apply(s.ctx, s.ws, &ApplyAllOptions{Root: "/repo", Environment: "dev"})
	s.Require().NoError(err)
	s.Equal(reconcile.Counts{Created: 1}, report.Counts())
	s.Equal("data", report.Outcomes()[0].Kind)
}
