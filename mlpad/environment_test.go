package mlpad

import (
	"net/http"

	"github.com/spf13/afero"

	"go.jetpack.io/mlpad/pkg/reconcile"
)

const environmentConfig = `{
	"conda": {
		"train-env": {
			"channels": ["conda-forge"],
			"dependencies": ["python=3.8", {"pip": ["mlflow"]}]
		},
		"score-env": {
			"channels": ["conda-forge"],
			"dependencies": ["python=3.9", {"pip": ["mlflow", "pandas"]}]
		},
		"pinned-env": {
			"version": 2,
			"dependencies": ["python=3.10"]
		}
	},
	"docker_build": [
		{"name": "docker-env", "version": 2, "BuildContext": {"path": "https://acct.blob.core.windows.net/ctx"}},
		{"name": "docker-auto", "BuildContext": {"path": "https://acct.blob.core.windows.net/auto"}}
	]
}`

const trainCondaFile = `name: train-env
channels:
    - conda-forge
dependencies:
    - python=3.8
    - pip:
        - mlflow
`

func environmentVersion(conda string) map[string]any {
	return map[string]any{"properties": map[string]any{"condaFile": conda}}
}

func (s *PadSuite) TestApplyEnvironments() {
	s.route(http.MethodGet, wsPath+"/environments/train-env", http.StatusOK, latestVersion("3"))
	s.route(http.MethodGet, wsPath+"/environments/train-env/versions/3", http.StatusOK, environmentVersion(trainCondaFile))
	s.route(http.MethodGet, wsPath+"/environments/score-env", http.StatusOK, latestVersion("1"))
	s.route(http.MethodGet, wsPath+"/environments/score-env/versions/1", http.StatusOK,
		environmentVersion("name: score-env\ndependencies:\n  - python=3.8\n"))
	s.route(http.MethodGet, wsPath+"/environments/pinned-env", http.StatusOK, latestVersion("2"))
	s.route(http.MethodGet, wsPath+"/environments/pinned-env/versions/2", http.StatusOK,
		environmentVersion("dependencies:\n  - python=3.9\n"))
	s.route(http.MethodGet, wsPath+"/environments/docker-env", http.StatusOK, latestVersion("2"))
	s.route(http.MethodPut, wsPath+"/environments/score-env/versions/2", http.StatusCreated, nil)
	s.route(http.MethodPut, wsPath+"/environments/docker-auto/versions/1", http.StatusCreated, nil)

	opts := &EnvironmentOptions{ApplyOptions: s.writeConfig("environment.json", environmentConfig)}
	report, err := s.pad.ApplyEnvironments(s.ctx, s.ws, opts)
	s.Require().NoError(err)
	s.NoError(report.Err())

	train := s.outcome(report, "train-env")
	s.Equal(reconcile.Skip, train.Action)
	s.Equal("dependencies unchanged", train.Reason)

	score := s.outcome(report, "score-env")
	s.Equal(reconcile.Create, score.Action)
	s.Equal("2", score.Version)
	puts := s.puts("/environments/score-env/versions/2")
	s.Require().Len(puts, 1)
	props := puts[0].JSON()["properties"].(map[string]any)
	s.Equal("mcr.microsoft.com/azureml/openmpi4.1.0-ubuntu20.04", props["image"])
	s.Contains(props["condaFile"], "pandas")
	s.Equal("Linux", props["osType"])

	pinned := s.outcome(report, "pinned-env")
	s.Equal(reconcile.Skip, pinned.Action)
	s.Contains(pinned.Reason, "bump the version")

	s.Equal(reconcile.Skip, s.outcome(report, "docker-env").Action)

	auto := s.outcome(report, "docker-auto")
	s.Equal(reconcile.Create, auto.Action)
	s.Equal("1", auto.Version)
	puts = s.puts("/environments/docker-auto/versions/1")
	s.Require().Len(puts, 1)
	build := puts[0].JSON()["properties"].(map[string]any)["build"].(map[string]any)
	s.Equal("https://acct.blob.core.windows.net/auto", build["contextUri"])
	s.Equal("Dockerfile", build["dockerfilePath"])
}

func (s *PadSuite) TestApplyEnvironmentsDockerContextChanged() {
	s.route(http.MethodGet, wsPath+"/environments/docker-auto", http.StatusOK, latestVersion("4"))
	s.route(http.MethodGet, wsPath+"/environments/docker-auto/versions/4", http.StatusOK, map[string]any{
		"properties": map[string]any{"build": map[string]any{"contextUri": "https://acct.blob.core.windows.net/old", "dockerfilePath": "Dockerfile"}},
	})
	s.route(http.MethodPut, wsPath+"/environments/docker-auto/versions/5", http.StatusCreated, nil)

	opts := &EnvironmentOptions{ApplyOptions: s.writeConfig("environment.json", `{"docker_build": [
		{"name": "docker-auto", "BuildContext": {"path": "https://acct.blob.core.windows.net/auto"}}
	]}`)}
	report, err := s.pad.ApplyEnvironments(s.ctx, s.ws, opts)
	s.Require().NoError(err)
	s.NoError(report.Err())
	auto := s.outcome(report, "docker-auto")
	s.Equal(reconcile.Create, auto.Action)
	s.Equal("5", auto.Version)
}

func (s *PadSuite) TestApplyEnvironmentsWritesCondaFiles() {
	opts := &EnvironmentOptions{
		ApplyOptions:    s.writeConfig("environment.json", environmentConfig),
		WriteCondaFiles: true,
	}
	_, err := s.pad.ApplyEnvironments(s.ctx, s.ws, opts)
	s.Require().NoError(err)

	data, err := afero.ReadFile(s.pad.Fs(), "/config/train-env.conda.yaml")
	s.Require().NoError(err)
	s.Contains(string(data), "name: train-env")
	s.Contains(string(data), "mlflow")
}

func (s *PadSuite) TestSameCondaDependencies() {
	same, err := sameCondaDependencies(trainCondaFile, "name: other\ndependencies: [python=3.8, {pip: [mlflow]}]\n")
	s.Require().NoError(err)
	s.True(same)

	same, err = sameCondaDependencies("not: [valid", trainCondaFile)
	s.Require().NoError(err)
	s.False(same)
}
