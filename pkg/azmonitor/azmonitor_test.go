package azmonitor

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jetpack.io/mlpad/pkg/aztesting"
)

const rgPath = "/subscriptions/sub/resourceGroups/monitor-rg"

func newTestClient(t *testing.T, sender *aztesting.Sender) *Client {
	c, err := NewClient("sub", aztesting.FakeCredential{}, sender.ClientOptions())
	require.NoError(t, err)
	return c
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "5m", want: "PT5M"},
		{in: "1h", want: "PT1H"},
		{in: "2d", want: "P2D"},
		{in: "15M", want: "PT15M"},
		{in: "h", wantErr: true},
		{in: "0h", wantErr: true},
		{in: "3w", wantErr: true},
		{in: "xh", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWindow(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShortName(t *testing.T) {
	assert.Equal(t, "ops", ShortName("ops"))
	assert.Equal(t, "ag_log_app_a", ShortName("ag_log_app_alerts"))
}

func TestCreateOrUpdateActionGroup(t *testing.T) {
	path := rgPath + "/providers/microsoft.insights/actionGroups/ag_log_app_alerts"
	sender := aztesting.NewSender().Route(http.MethodPut, path, http.StatusOK, nil)
	c := newTestClient(t, sender)

	err := c.CreateOrUpdateActionGroup(context.Background(), "monitor-rg", "ag_log_app_alerts", &ActionGroup{
		Properties: ActionGroupProperties{
			Enabled: true,
			Receivers: Receivers{
				Email: []EmailReceiver{{Name: "ops@example.com", EmailAddress: "ops@example.com"}},
			},
		},
	})
	require.NoError(t, err)

	reqs := sender.RequestsFor(http.MethodPut, path)
	require.Len(t, reqs, 1)
	body := reqs[0].JSON()
	assert.Equal(t, "Global", body["location"])
	props := body["properties"].(map[string]any)
	assert.Equal(t, "ag_log_app_a", props["groupShortName"])
	assert.Len(t, props["emailReceivers"], 1)
	assert.Equal(t, []any{}, props["smsReceivers"])
	assert.Contains(t, reqs[0].Query, "api-version=2023-01-01")
}

func TestCreateOrUpdateScheduledQueryRule(t *testing.T) {
	path := rgPath + "/providers/Microsoft.Insights/scheduledQueryRules/failed-runs"
	sender := aztesting.NewSender().Route(http.MethodPut, path, http.StatusCreated, nil)
	c := newTestClient(t, sender)

	err := c.CreateOrUpdateScheduledQueryRule(context.Background(), "monitor-rg", "failed-runs", &ScheduledQueryRule{
		Location: "westeurope",
		Properties: ScheduledQueryRuleProperties{
			Severity:            2,
			Enabled:             true,
			Scopes:              []string{c.LogAnalyticsWorkspaceID("monitor-rg", "law")},
			EvaluationFrequency: "PT5M",
			WindowSize:          "PT1H",
			Criteria: QueryCriteria{AllOf: []QueryCondition{{
				Query:           "AmlRunStatusChangedEvent | where Status == 'Failed'",
				TimeAggregation: "Count",
				Operator:        "GreaterThan",
				Threshold:       0,
			}}},
		},
	})
	require.NoError(t, err)

	body := sender.RequestsFor(http.MethodPut, path)[0].JSON()
	props := body["properties"].(map[string]any)
	assert.Equal(t, "PT1H", props["windowSize"])
	assert.Equal(t, []any{rgPath + "/providers/Microsoft.OperationalInsights/workspaces/law"}, props["scopes"])
}

func TestProcessingRules(t *testing.T) {
	path := rgPath + "/providers/Microsoft.AlertsManagement/actionRules/ag_ops"
	sender := aztesting.NewSender().Route(http.MethodPut, path, http.StatusOK, nil)
	c := newTestClient(t, sender)
	ctx := context.Background()

	_, err := c.GetProcessingRule(ctx, "monitor-rg", "ag_ops")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	err = c.CreateProcessingRule(ctx, "monitor-rg", "ag_ops", &ProcessingRule{
		Properties: ProcessingRuleProperties{
			Scopes:     []string{c.ResourceGroupID("monitor-rg")},
			Conditions: []RuleCondition{{Field: "Severity", Operator: "Equals", Values: []string{"Sev0", "Sev1"}}},
			Actions:    []ProcessingAction{{ActionType: "AddActionGroups", ActionGroupIDs: []string{c.ActionGroupID("monitor-rg", "ag_ops")}}},
			Enabled:    true,
		},
	})
	require.NoError(t, err)

	body := sender.RequestsFor(http.MethodPut, path)[0].JSON()
	assert.Equal(t, "Global", body["location"])
}

func TestResourceLocation(t *testing.T) {
	lawID := rgPath + "/providers/Microsoft.OperationalInsights/workspaces/law"
	sender := aztesting.NewSender().Route(http.MethodGet, lawID, http.StatusOK, map[string]any{
		"id":       lawID,
		"name":     "law",
		"location": "northeurope",
	})
	c := newTestClient(t, sender)

	loc, err := c.ResourceLocation(context.Background(), lawID)
	require.NoError(t, err)
	assert.Equal(t, "northeurope", loc)
}
