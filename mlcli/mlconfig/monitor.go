package mlconfig

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"go.jetpack.io/mlpad/goutil/errorutil"
	"go.jetpack.io/mlpad/pkg/azmonitor"
)

// ActionGroup declares an Azure Monitor action group and, through
// Severity, the alert processing rule that routes alerts to it.
type ActionGroup struct {
	Name      string    `json:"action_group_name"`
	ShortName string    `json:"short_name,omitempty"`
	Location  string    `json:"location,omitempty"`
	Enabled   *bool     `json:"enabled,omitempty"`
	Severity  []any     `json:"severity,omitempty"`
	Receivers Receivers `json:"receivers"`
}

// Receivers lists notification targets by kind. Email and webhook
// receivers are bare addresses; the address doubles as receiver name.
type Receivers struct {
	Email             []string                    `json:"email,omitempty"`
	SMS               []PhoneReceiver             `json:"sms,omitempty"`
	Voice             []PhoneReceiver             `json:"voice,omitempty"`
	Webhook           []string                    `json:"webhook,omitempty"`
	AzureAppPush      []AppPushReceiver           `json:"azure_app_push,omitempty"`
	AzureFunction     []AzureFunctionReceiver     `json:"azure_function,omitempty"`
	LogicApp          []LogicAppReceiver          `json:"logic_app,omitempty"`
	ArmRole           []ArmRoleReceiver           `json:"arm_role,omitempty"`
	AutomationRunbook []AutomationRunbookReceiver `json:"automation_runbook,omitempty"`
}

type PhoneReceiver struct {
	Name        string `json:"name"`
	CountryCode string `json:"country_code"`
	PhoneNumber string `json:"phone_number"`
}

type AppPushReceiver struct {
	Name         string `json:"name"`
	EmailAddress string `json:"email_address"`
}

type AzureFunctionReceiver struct {
	Name                  string `json:"name"`
	FunctionAppResourceID string `json:"function_app_resource_id"`
	FunctionName          string `json:"function_name"`
	HTTPTriggerURL        string `json:"http_trigger_url"`
}

type LogicAppReceiver struct {
	Name        string `json:"name"`
	ResourceID  string `json:"resource_id"`
	CallbackURL string `json:"callback_url"`
}

type ArmRoleReceiver struct {
	Name   string `json:"name"`
	RoleID string `json:"role_id"`
}

type AutomationRunbookReceiver struct {
	Name                string `json:"name,omitempty"`
	AutomationAccountID string `json:"automation_account_id"`
	RunbookName         string `json:"runbook_name"`
	WebhookResourceID   string `json:"webhook_resource_id"`
	IsGlobalRunbook     bool   `json:"is_global_runbook"`
	ServiceURI          string `json:"service_uri,omitempty"`
}

// IsEnabled defaults to true.
func (ag *ActionGroup) IsEnabled() bool {
	return ag.Enabled == nil || *ag.Enabled
}

// Severities returns the alert severities routed to this group in the
// "Sev<n>" form. Plain numbers are accepted.
func (ag *ActionGroup) Severities() []string {
	out := make([]string, 0, len(ag.Severity))
	for _, s := range ag.Severity {
		str := cast.ToString(s)
		if n, err := cast.ToIntE(str); err == nil {
			str = fmt.Sprintf("Sev%d", n)
		}
		out = append(out, str)
	}
	return out
}

// Alert declares a scheduled log query alert with a single condition.
type Alert struct {
	Name                string            `json:"alert_name"`
	Description         string            `json:"description,omitempty"`
	Severity            int               `json:"severity"`
	Enabled             *bool             `json:"enabled,omitempty"`
	EvaluationFrequency string            `json:"evaluation_frequency"`
	WindowSize          string            `json:"window_size"`
	Condition           AlertCondition    `json:"condition"`
	ActionGroups        []string          `json:"action_groups,omitempty"`
	CustomProperties    map[string]string `json:"custom_properties,omitempty"`
}

type AlertCondition struct {
	Query               string  `json:"query"`
	TimeAggregation     string  `json:"time_aggregation"`
	MetricMeasureColumn string  `json:"metric_measure_column,omitempty"`
	Operator            string  `json:"operator"`
	Threshold           float64 `json:"threshold"`
}

func (a *Alert) IsEnabled() bool {
	return a.Enabled == nil || *a.Enabled
}

// LoadActionGroups reads the "action_groups" list.
func LoadActionGroups(d *Document) ([]Entry[ActionGroup], error) {
	return decodeList(d, "action_groups", entryRules[ActionGroup]{
		nameKey:  "action_group_name",
		required: []string{"action_group_name"},
		defaults: defaultsOf(d),
		checks:   []func(*ActionGroup) error{actionGroupShortNameRule},
	})
}

// LoadAlerts reads the "alerts" list.
func LoadAlerts(d *Document) ([]Entry[Alert], error) {
	return decodeList(d, "alerts", entryRules[Alert]{
		nameKey:  "alert_name",
		required: []string{"alert_name", "evaluation_frequency", "window_size", "condition"},
		defaults: defaultsOf(d),
		checks:   []func(*Alert) error{alertSeverityRule, alertWindowRule, alertConditionRule},
	})
}

func actionGroupShortNameRule(ag *ActionGroup) error {
	if ag.ShortName == "" {
		ag.ShortName = azmonitor.ShortName(ag.Name)
	}
	if len(ag.ShortName) > azmonitor.MaxShortNameLength {
		return errorutil.NewUserErrorf(
			"action group %s: short_name %q is longer than %d characters",
			ag.Name, ag.ShortName, azmonitor.MaxShortNameLength)
	}
	return nil
}

func alertSeverityRule(a *Alert) error {
	if a.Severity < 0 || a.Severity > 4 {
		return errorutil.NewUserErrorf("alert %s: severity must be between 0 and 4, got %d", a.Name, a.Severity)
	}
	return nil
}

func alertWindowRule(a *Alert) error {
	for _, w := range []string{a.EvaluationFrequency, a.WindowSize} {
		if _, err := azmonitor.ParseWindow(w); err != nil {
			return errorutil.NewUserErrorf("alert %s: %v", a.Name, err).
				WithHint(`Durations are written as a number followed by m, h or d, like "5m"`)
		}
	}
	return nil
}

func alertConditionRule(a *Alert) error {
	missing := []string{}
	if strings.TrimSpace(a.Condition.Query) == "" {
		missing = append(missing, "query")
	}
	if a.Condition.TimeAggregation == "" {
		missing = append(missing, "time_aggregation")
	}
	if a.Condition.Operator == "" {
		missing = append(missing, "operator")
	}
	if len(missing) > 0 {
		return errorutil.NewUserErrorf(
			"alert %s: condition is missing %s", a.Name, strings.Join(missing, ", "))
	}
	return nil
}
