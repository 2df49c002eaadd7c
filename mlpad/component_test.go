package mlpad

import (
	"net/http"

	"go.jetpack.io/mlpad/goutil/errorutil"
	"go.jetpack.io/mlpad/pkg/reconcile"
)

const componentConfig = `{
	"component_filepaths": {"base_path": "azureml://datastores/code/paths/src/"},
	"types": {"folder": {"type": "uri_folder", "description": "A folder"}},
	"components_framework": {
		"prep_taxi_data": {
			"filepath": "prep.py",
			"env": "train-env@latest",
			"inputs": {"raw_data": {"reference": "types.folder"}},
			"outputs": {"prep_data": "uri_folder"}
		},
		"local_code": {
			"env": "train-env:1",
			"command": "python score.py",
			"code": "./src"
		}
	}
}`

func (s *PadSuite) TestApplyComponents() {
	prepVersions := wsPath + "/components/prep_taxi_data/versions/1"
	s.route(http.MethodPut, prepVersions, http.StatusCreated, nil)

	opts := s.writeConfig("components.json", componentConfig)
	report, err := s.pad.ApplyComponents(s.ctx, s.ws, &opts)
	s.Require().NoError(err)
	s.Equal(reconcile.Counts{Created: 1, Failed: 1}, report.Counts())

	local := s.outcome(report, "local_code")
	s.True(errorutil.IsUserError(local.Err))

	puts := s.puts(prepVersions)
	s.Require().Len(puts, 1)
	spec := puts[0].JSON()["properties"].(map[string]any)["componentSpec"].(map[string]any)
	s.Equal("command", spec["type"])
	s.Equal("1", spec["version"])
	s.Equal("azureml:train-env@latest", spec["environment"])
	s.Equal("azureml://datastores/code/paths/src/prep.py", spec["code"])
	s.Equal("python prep.py --raw_data ${{inputs.raw_data}} --prep_data ${{outputs.prep_data}}", spec["command"])
	s.Equal("Prep Taxi Data", spec["display_name"])

	// The workspace now returns what was registered, so a second run with
	// the same config changes nothing.
	s.route(http.MethodGet, wsPath+"/components/prep_taxi_data", http.StatusOK, latestVersion("1"))
	s.route(http.MethodGet, prepVersions, http.StatusOK, map[string]any{
		"properties": map[string]any{"componentSpec": spec},
	})
	report, err = s.pad.ApplyComponents(s.ctx, s.ws, &opts)
	s.Require().NoError(err)
	prep := s.outcome(report, "prep_taxi_data")
	s.Equal(reconcile.Skip, prep.Action)
	s.Equal("1", prep.Version)
	s.Len(s.puts(prepVersions), 1)
}

func (s *PadSuite) TestApplyComponentsChangedCommand() {
	s.route(http.MethodGet, wsPath+"/components/prep_taxi_data", http.StatusOK, latestVersion("3"))
	s.route(http.MethodGet, wsPath+"/components/prep_taxi_data/versions/3", http.StatusOK, map[string]any{
		"properties": map[string]any{"componentSpec": map[string]any{
			"command": "python prep.py",
			"inputs":  map[string]any{"raw_data": map[string]any{"type": "uri_folder", "description": "A folder"}},
			"outputs": map[string]any{"prep_data": map[string]any{"type": "uri_folder"}},
		}},
	})
	s.route(http.MethodPut, wsPath+"/components/prep_taxi_data/versions/4", http.StatusCreated, nil)

	opts := s.writeConfig("components.json", componentConfig)
	report, err := s.pad.ApplyComponents(s.ctx, s.ws, &opts)
	s.Require().NoError(err)
	prep := s.outcome(report, "prep_taxi_data")
	s.Equal(reconcile.Create, prep.Action)
	s.Equal("4", prep.Version)
	s.NoError(prep.Err)
}

func (s *PadSuite) TestEnvironmentRef() {
	s.Equal("azureml:train-env@latest", environmentRef("train-env@latest"))
	s.Equal("azureml:train-env:2", environmentRef("azureml:train-env:2"))
	id := "/subscriptions/sub/resourceGroups/rg/providers/Microsoft.MachineLearningServices/workspaces/ws/environments/e/versions/1"
	s.Equal(id, environmentRef(id))
}
