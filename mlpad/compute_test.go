package mlpad

import (
	"net/http"

	"go.jetpack.io/mlpad/pkg/azml"
	"go.jetpack.io/mlpad/pkg/reconcile"
)

const computeConfig = `{
	"computes": [
		{"name": "cpu-cluster", "type": "amlcompute", "size": "STANDARD_DS3_V2", "max_instances": 4, "tier": "low_priority"},
		{"name": "gpu-cluster", "type": "amlcompute", "size": "STANDARD_NC6", "max_instances": 2},
		{"name": "old-cluster", "type": "amlcompute", "size": "STANDARD_DS3_V2", "max_instances": 3},
		{"name": "ci-alice", "type": "computeinstance", "size": "STANDARD_E4S_V3"},
		{"name": "batch", "type": "batch"}
	]
}`

func amlCompute(min, max int, idle string) map[string]any {
	return map[string]any{"properties": map[string]any{
		"computeType":       "AmlCompute",
		"provisioningState": "Succeeded",
		"properties": map[string]any{"scaleSettings": map[string]any{
			"minNodeCount": min, "maxNodeCount": max, "nodeIdleTimeBeforeScaleDown": idle,
		}},
	}}
}

func (s *PadSuite) TestApplyCompute() {
	s.route(http.MethodGet, wsPath, http.StatusOK, map[string]any{"location": "westeurope"})
	s.route(http.MethodPut, wsPath+"/computes/cpu-cluster", http.StatusCreated, nil)
	s.route(http.MethodGet, wsPath+"/computes/gpu-cluster", http.StatusOK, amlCompute(0, 2, "PT2M"))
	s.route(http.MethodGet, wsPath+"/computes/old-cluster", http.StatusOK, amlCompute(0, 1, "PT120S"))
	s.route(http.MethodPatch, wsPath+"/computes/old-cluster", http.StatusAccepted, nil)
	s.route(http.MethodGet, wsPath+"/computes/ci-alice", http.StatusOK,
		map[string]any{"properties": map[string]any{"computeType": "ComputeInstance"}})

	opts := &ComputeOptions{ApplyOptions: s.writeConfig("compute.json", computeConfig)}
	report, err := s.pad.ApplyCompute(s.ctx, s.ws, opts)
	s.Require().NoError(err)
	s.Equal(reconcile.Counts{Created: 1, Updated: 1, Skipped: 2, Failed: 1}, report.Counts())

	created := s.outcome(report, "cpu-cluster")
	s.Equal(reconcile.Create, created.Action)
	puts := s.puts("/computes/cpu-cluster")
	s.Require().Len(puts, 1)
	body := puts[0].JSON()
	s.Equal("westeurope", body["location"])
	props := body["properties"].(map[string]any)
	s.Equal("AmlCompute", props["computeType"])
	spec := props["properties"].(map[string]any)
	s.Equal("LowPriority", spec["vmPriority"])
	s.Equal(map[string]any{
		"minNodeCount": 0.0, "maxNodeCount": 4.0, "nodeIdleTimeBeforeScaleDown": "PT2M",
	}, spec["scaleSettings"])

	s.Equal("already exists", s.outcome(report, "gpu-cluster").Reason)
	s.Equal(reconcile.Update, s.outcome(report, "old-cluster").Action)
	s.Len(s.sender.RequestsFor(http.MethodPatch, "/computes/old-cluster"), 1)
	s.Equal("already exists", s.outcome(report, "ci-alice").Reason)
	s.ErrorContains(s.outcome(report, "batch").Err, "unsupported type")
	s.Error(report.Err())
}

func (s *PadSuite) TestApplyComputeDryRun() {
	s.route(http.MethodGet, wsPath, http.StatusOK, map[string]any{"location": "westeurope"})
	s.route(http.MethodGet, wsPath+"/computes/old-cluster", http.StatusOK, amlCompute(0, 1, "PT120S"))

	opts := &ComputeOptions{ApplyOptions: s.writeConfig("compute.json", computeConfig)}
	opts.DryRun = true
	report, err := s.pad.ApplyCompute(s.ctx, s.ws, opts)
	s.Require().NoError(err)
	s.Contains(s.outcome(report, "cpu-cluster").Reason, "dry run")
	s.Empty(s.sender.RequestsFor(http.MethodPut, "/computes/cpu-cluster"))
	s.Empty(s.sender.RequestsFor(http.MethodPatch, "/computes/old-cluster"))
}

func (s *PadSuite) TestApplyComputeWaitsForProvisioning() {
	path := wsPath + "/computes/cpu-cluster"
	s.route(http.MethodGet, wsPath, http.StatusOK, map[string]any{"location": "westeurope"})
	s.sender.NotFound(http.MethodGet, path)
	s.route(http.MethodGet, path, http.StatusOK, map[string]any{"properties": map[string]any{"provisioningState": "Creating"}})
	s.route(http.MethodGet, path, http.StatusOK, map[string]any{"properties": map[string]any{"provisioningState": "Succeeded"}})
	s.route(http.MethodPut, path, http.StatusCreated, nil)

	opts := &ComputeOptions{
		ApplyOptions: s.writeConfig("compute.json", `{"computes": [{"name": "cpu-cluster", "type": "amlcompute"}]}`),
		Wait:         true,
	}
	report, err := s.pad.ApplyCompute(s.ctx, s.ws, opts)
	s.Require().NoError(err)
	s.NoError(report.Err())
	s.Len(s.sender.RequestsFor(http.MethodGet, path), 3)
}

func (s *PadSuite) TestApplyComputeMissingConfig() {
	_, err := s.pad.ApplyCompute(s.ctx, s.ws, &ComputeOptions{ApplyOptions: ApplyOptions{ConfigPath: "/nope.json"}})
	s.ErrorContains(err, "/nope.json")
}

func (s *PadSuite) TestScaleDrifted() {
	existing := func(idle string) *azml.Compute {
		return &azml.Compute{Properties: azml.ComputeProperties{Properties: &azml.ComputeSpec{
			ScaleSettings: &azml.ScaleSettings{MaxNodeCount: 1, NodeIdleTimeBeforeScaleDown: idle},
		}}}
	}
	want := azml.ScaleSettings{MaxNodeCount: 1, NodeIdleTimeBeforeScaleDown: "PT2M"}
	s.False(scaleDrifted(existing("PT120S"), want))
	s.False(scaleDrifted(existing("PT2M"), want))
	s.True(scaleDrifted(existing("PT1H"), want))
	s.False(scaleDrifted(existing("not-a-duration"), want))
	s.True(scaleDrifted(existing("PT2M"), azml.ScaleSettings{MaxNodeCount: 3, NodeIdleTimeBeforeScaleDown: "PT2M"}))
}
