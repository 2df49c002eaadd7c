package mlpad

import (
	"net/http"

	"go.jetpack.io/mlpad/goutil/errorutil"
	"go.jetpack.io/mlpad/pkg/reconcile"
)

func dataVersion(uri string) map[string]any {
	return map[string]any{"properties": map[string]any{"dataType": "uri_folder", "dataUri": uri}}
}

func (s *PadSuite) TestApplyData() {
	s.route(http.MethodGet, wsPath+"/data/iris", http.StatusOK, latestVersion("2"))
	s.route(http.MethodGet, wsPath+"/data/iris/versions/2", http.StatusOK, dataVersion("azureml://datastores/raw/paths/iris"))
	s.route(http.MethodGet, wsPath+"/data/taxi", http.StatusOK, latestVersion("4"))
	s.route(http.MethodGet, wsPath+"/data/taxi/versions/4", http.StatusOK, dataVersion("azureml://datastores/raw/paths/taxi-2023"))
	s.route(http.MethodGet, wsPath+"/data/pinned/versions/1", http.StatusOK, dataVersion("azureml://datastores/raw/paths/old"))
	for _, v := range []string{"taxi/versions/5", "weather/versions/20240307", "fresh/versions/1"} {
		s.route(http.MethodPut, wsPath+"/data/"+v, http.StatusCreated, nil)
	}

	opts := s.writeConfig("data.yaml", `
data:
  - name: iris
    type: uri_folder
    path: azureml://datastores/raw/paths/iris
    version: auto
  - name: taxi
    type: uri_folder
    path: azureml://datastores/raw/paths/taxi-2024
    version: auto
  - name: weather
    type: URI_FILE
    path: azureml://datastores/raw/paths/weather.csv
  - name: pinned
    type: uri_folder
    path: azureml://datastores/raw/paths/new
    version: 1
  - name: fresh
    type: mltable
    path: azureml://datastores/raw/paths/fresh
    version: auto
`)
	report, err := s.pad.ApplyData(s.ctx, s.ws, &opts)
	s.Require().NoError(err)
	s.Equal(reconcile.Counts{Created: 3, Skipped: 1, Failed: 1}, report.Counts())

	iris := s.outcome(report, "iris")
	s.Equal(reconcile.Skip, iris.Action)
	s.Equal("2", iris.Version)

	taxi := s.outcome(report, "taxi")
	s.Equal(reconcile.Create, taxi.Action)
	s.Equal("5", taxi.Version)
	s.Len(s.puts("/data/taxi/versions/5"), 1)

	weather := s.outcome(report, "weather")
	s.Equal("20240307", weather.Version)
	puts := s.puts("/data/weather/versions/20240307")
	s.Require().Len(puts, 1)
	props := puts[0].JSON()["properties"].(map[string]any)
	s.Equal("uri_file", props["dataType"])
	s.Equal("azureml://datastores/raw/paths/weather.csv", props["dataUri"])

	pinned := s.outcome(report, "pinned")
	s.True(errorutil.IsUserError(pinned.Err))
	s.ErrorContains(pinned.Err, "already exists with path")

	s.Equal("1", s.outcome(report, "fresh").Version)
}

func (s *PadSuite) TestApplyDataReadsEachNameOnce() {
	s.route(http.MethodGet, wsPath+"/data/iris", http.StatusOK, latestVersion("2"))
	s.route(http.MethodGet, wsPath+"/data/iris/versions/2", http.StatusOK, dataVersion("azureml://a"))

	opts := s.writeConfig("data.json", `{"data": [
		{"name": "iris", "type": "uri_folder", "path": "azureml://a", "version": "auto"},
		{"name": "iris", "type": "uri_folder", "path": "azureml://a", "version": "auto"}
	]}`)
	report, err := s.pad.ApplyData(s.ctx, s.ws, &opts)
	s.Require().NoError(err)
	s.Equal(reconcile.Counts{Skipped: 2}, report.Counts())
	s.Len(s.sender.RequestsFor(http.MethodGet, "/data/iris"), 1)
	s.Len(s.sender.RequestsFor(http.MethodGet, "/data/iris/versions/2"), 1)
}

func (s *PadSuite) TestApplyDataCreatedVersionIsRemembered() {
	s.route(http.MethodGet, wsPath+"/data/iris", http.StatusOK, latestVersion("2"))
	s.route(http.MethodGet, wsPath+"/data/iris/versions/2", http.StatusOK, dataVersion("azureml://old"))
	s.route(http.MethodPut, wsPath+"/data/iris/versions/3", http.StatusCreated, nil)

	opts := s.writeConfig("data.json", `{"data": [
		{"name": "iris", "type": "uri_folder", "path": "azureml://new", "version": "auto"},
		{"name": "iris", "type": "uri_folder", "path": "azureml://new", "version": "auto"}
	]}`)
	report, err := s.pad.ApplyData(s.ctx, s.ws, &opts)
	s.Require().NoError(err)
	s.Equal(reconcile.Counts{Created: 1, Skipped: 1}, report.Counts())
	s.Len(s.puts("/data/iris/versions/3"), 1)
}
