package mlpad

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"go.jetpack.io/mlpad/pkg/reconcile"
)

const pipelineConfig = `{"pipelines": [
	{
		"name": "nyc_taxi",
		"compute": "cpu-cluster",
		"file_paths": {"raw_data_path": "azureml:taxi:1"},
		"jobs": {
			"prep": {"component": "prep_taxi_data", "inputs": {"raw_data": "${{parent.inputs.pipeline_raw_data}}"}},
			"train": {"component": "train_model", "compute": "gpu-cluster", "inputs": {"ratio": 0.2}}
		},
		"outputs": {"model": "train.model_output"}
	},
	{
		"name": "unregistered",
		"compute": "cpu-cluster",
		"jobs": {"score": {"component": "score_model"}}
	}
]}`

func (s *PadSuite) TestSubmitPipelines() {
	s.route(http.MethodGet, wsPath+"/components/prep_taxi_data", http.StatusOK, latestVersion("3"))
	s.route(http.MethodGet, wsPath+"/components/train_model", http.StatusOK, latestVersion("7"))
	// Job names are generated, so accept a PUT to any path.
	s.route(http.MethodPut, "", http.StatusCreated, map[string]any{"properties": map[string]any{"jobType": "Pipeline"}})

	opts := &PipelineOptions{ApplyOptions: s.writeConfig("pipelines.json", pipelineConfig)}
	report, err := s.pad.SubmitPipelines(s.ctx, s.ws, opts)
	s.Require().NoError(err)
	s.Equal(reconcile.Counts{Created: 1, Failed: 1}, report.Counts())
	s.ErrorContains(s.outcome(report, "unregistered").Err, "score_model is not registered")

	puts := s.sender.RequestsFor(http.MethodPut, "")
	s.Require().Len(puts, 1)
	name := puts[0].Path[strings.LastIndex(puts[0].Path, "/")+1:]
	_, err = uuid.Parse(name)
	s.NoError(err)
	s.Contains(s.outcome(report, "nyc_taxi").Reason, name)

	props := puts[0].JSON()["properties"].(map[string]any)
	s.Equal("Pipeline", props["jobType"])
	s.Equal("nyc_taxi_with_pipeline_component", props["experimentName"])
	s.Equal(map[string]any{"default_compute": wsPath + "/computes/cpu-cluster"}, props["settings"])
	s.Equal(map[string]any{"jobInputType": "uri_folder", "uri": "azureml:taxi:1"},
		props["inputs"].(map[string]any)["pipeline_raw_data"])

	jobs := props["jobs"].(map[string]any)
	prep := jobs["prep"].(map[string]any)
	s.Equal(wsPath+"/components/prep_taxi_data/versions/3", prep["componentId"])
	s.Equal(map[string]any{"raw_data": map[string]any{
		"job_input_type": "literal", "value": "${{parent.inputs.pipeline_raw_data}}",
	}}, prep["inputs"])
	s.NotContains(prep, "computeId")

	train := jobs["train"].(map[string]any)
	s.Equal(wsPath+"/components/train_model/versions/7", train["componentId"])
	s.Equal(wsPath+"/computes/gpu-cluster", train["computeId"])
	s.Equal(map[string]any{"model_output": map[string]any{
		"type": "literal", "value": "${{parent.outputs.model}}",
	}}, train["outputs"])
}

func (s *PadSuite) TestSubmitPipelinesDryRun() {
	s.route(http.MethodGet, wsPath+"/components/prep_taxi_data", http.StatusOK, latestVersion("3"))
	s.route(http.MethodGet, wsPath+"/components/train_model", http.StatusOK, latestVersion("7"))

	opts := &PipelineOptions{ApplyOptions: s.writeConfig("pipelines.json", pipelineConfig)}
	opts.DryRun = true
	report, err := s.pad.SubmitPipelines(s.ctx, s.ws, opts)
	s.Require().NoError(err)
	s.Contains(s.outcome(report, "nyc_taxi").Reason, "dry run")
	s.Empty(s.sender.RequestsFor(http.MethodPut, ""))
}
