package mlpad

import (
	"net/http"

	"go.jetpack.io/mlpad/pkg/reconcile"
)

const (
	rgPath  = "/subscriptions/sub/resourceGroups/law-rg"
	lawPath = rgPath + "/providers/Microsoft.OperationalInsights/workspaces/law"
)

const monitorConfig = `{
	"action_groups": [
		{
			"action_group_name": "ml-platform-oncall",
			"severity": [0, "Sev1"],
			"receivers": {
				"email": ["oncall@example.com"],
				"sms": [{"name": "alice", "country_code": "1", "phone_number": "5550100"}],
				"webhook": ["https://hooks.example.com/ml"]
			}
		},
		{
			"action_group_name": "ml-dashboard",
			"short_name": "mldash",
			"receivers": {"email": ["team@example.com"]}
		}
	],
	"alerts": [
		{
			"alert_name": "failed-runs",
			"description": "Failed pipeline runs",
			"severity": 1,
			"evaluation_frequency": "5m",
			"window_size": "1h",
			"condition": {
				"query": "AmlRunStatusChangedEvent | where Status == 'Failed'",
				"time_aggregation": "Count",
				"operator": "GreaterThan",
				"threshold": 0
			},
			"action_groups": ["ml-platform-oncall"]
		},
		{
			"alert_name": "bad-window",
			"evaluation_frequency": "5s",
			"window_size": "1h",
			"condition": {"query": "x", "time_aggregation": "Count", "operator": "GreaterThan"}
		}
	]
}`

func (s *PadSuite) monitorOptions() *MonitorOptions {
	return &MonitorOptions{
		ApplyOptions:  s.writeConfig("monitor.json", monitorConfig),
		ResourceGroup: "law-rg",
		WorkspaceName: "law",
	}
}

func (s *PadSuite) TestApplyActionGroups() {
	s.route(http.MethodPut, "/actionGroups/ml-platform-oncall", http.StatusOK, nil)
	s.route(http.MethodPut, "/actionGroups/ml-dashboard", http.StatusOK, nil)

	report, err := s.pad.ApplyActionGroups(s.ctx, s.monitor, s.monitorOptions())
	s.Require().NoError(err)
	s.Equal(reconcile.Counts{Updated: 2}, report.Counts())

	puts := s.puts(rgPath + "/providers/microsoft.insights/actionGroups/ml-platform-oncall")
	s.Require().Len(puts, 1)
	body := puts[0].JSON()
	s.Equal("Global", body["location"])
	props := body["properties"].(map[string]any)
	s.Equal("ml-platform-", props["groupShortName"])
	s.Equal(true, props["enabled"])
	s.Equal([]any{map[string]any{
		"name": "oncall@example.com", "emailAddress": "oncall@example.com", "useCommonAlertSchema": true,
	}}, props["emailReceivers"])
	s.Equal([]any{map[string]any{
		"name": "alice", "countryCode": "1", "phoneNumber": "5550100",
	}}, props["smsReceivers"])
	s.Equal([]any{}, props["voiceReceivers"])

	dash := s.puts("/actionGroups/ml-dashboard")
	s.Require().Len(dash, 1)
	s.Equal("mldash", dash[0].JSON()["properties"].(map[string]any)["groupShortName"])
}

func (s *PadSuite) TestApplyAlerts() {
	s.route(http.MethodGet, lawPath, http.StatusOK, map[string]any{"id": lawPath, "location": "westeurope"})
	s.route(http.MethodPut, "/scheduledQueryRules/failed-runs", http.StatusCreated, nil)

	report, err := s.pad.ApplyAlerts(s.ctx, s.monitor, s.monitorOptions())
	s.Require().NoError(err)
	s.Equal(reconcile.Counts{Updated: 1, Failed: 1}, report.Counts())
	s.ErrorContains(s.outcome(report, "bad-window").Err, "5s")

	puts := s.puts(rgPath + "/providers/Microsoft.Insights/scheduledQueryRules/failed-runs")
	s.Require().Len(puts, 1)
	body := puts[0].JSON()
	s.Equal("westeurope", body["location"])
	props := body["properties"].(map[string]any)
	s.Equal([]any{lawPath}, props["scopes"])
	s.Equal("PT5M", props["evaluationFrequency"])
	s.Equal("PT1H", props["windowSize"])
	s.Equal(1.0, props["severity"])
	s.Equal(map[string]any{
		"actionGroups": []any{rgPath + "/providers/microsoft.insights/actionGroups/ml-platform-oncall"},
	}, props["actions"])
}

func (s *PadSuite) TestApplyAlertsNeedsWorkspace() {
	opts := s.monitorOptions()
	opts.WorkspaceName = ""
	_, err := s.pad.ApplyAlerts(s.ctx, s.monitor, opts)
	s.ErrorContains(err, "workspace name is not set")
}

func (s *PadSuite) TestApplyProcessingRules() {
	rulePath := rgPath + "/providers/Microsoft.AlertsManagement/actionRules/ml-platform-oncall"
	s.route(http.MethodPut, rulePath, http.StatusCreated, nil)

	report, err := s.pad.ApplyProcessingRules(s.ctx, s.monitor, s.monitorOptions())
	s.Require().NoError(err)
	s.Equal(reconcile.Counts{Created: 1, Skipped: 1}, report.Counts())
	s.Equal("no severity to route", s.outcome(report, "ml-dashboard").Reason)

	puts := s.puts(rulePath)
	s.Require().Len(puts, 1)
	props := puts[0].JSON()["properties"].(map[string]any)
	s.Equal([]any{rgPath}, props["scopes"])
	s.Equal([]any{map[string]any{
		"field": "Severity", "operator": "Equals", "values": []any{"Sev0", "Sev1"},
	}}, props["conditions"])
	s.Equal([]any{map[string]any{
		"actionType":     "AddActionGroups",
		"actionGroupIds": []any{rgPath + "/providers/microsoft.insights/actionGroups/ml-platform-oncall"},
	}}, props["actions"])

	// Existing rules are not touched.
	s.route(http.MethodGet, rulePath, http.StatusOK, map[string]any{"location": "Global"})
	report, err = s.pad.ApplyProcessingRules(s.ctx, s.monitor, s.monitorOptions())
	s.Require().NoError(err)
	s.Equal("already exists", s.outcome(report, "ml-platform-oncall").Reason)
	s.Len(s.puts(rulePath), 1)
}

func (s *PadSuite) TestMonitorNeedsResourceGroup() {
	opts := s.monitorOptions()
	opts.ResourceGroup = ""
	_, err := s.pad.ApplyActionGroups(s.ctx, s.monitor, opts)
	s.ErrorContains(err, "resource group is not set")
}
