package azmonitor

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"go.jetpack.io/mlpad/pkg/armrest"
)

var windowUnits = map[string]time.Duration{
	"m": time.Minute,
	"h": time.Hour,
	"d": 24 * time.Hour,
}

type ScheduledQueryRule struct {
	Location   string                       `json:"location"`
	Properties ScheduledQueryRuleProperties `json:"properties"`
}

type ScheduledQueryRuleProperties struct {
	DisplayName         string        `json:"displayName,omitempty"`
	Description         string        `json:"description,omitempty"`
	Severity            int           `json:"severity"`
	Enabled             bool          `json:"enabled"`
	Scopes              []string      `json:"scopes"`
	EvaluationFrequency string        `json:"evaluationFrequency"`
	WindowSize          string        `json:"windowSize"`
	Criteria            QueryCriteria `json:"criteria"`
	Actions             *RuleActions  `json:"actions,omitempty"`
}

type QueryCriteria struct {
	AllOf []QueryCondition `json:"allOf"`
}

type QueryCondition struct {
	Query               string  `json:"query"`
	TimeAggregation     string  `json:"timeAggregation"`
	MetricMeasureColumn string  `json:"metricMeasureColumn,omitempty"`
	Operator            string  `json:"operator"`
	Threshold           float64 `json:"threshold"`
}

type RuleActions struct {
	ActionGroups     []string          `json:"actionGroups"`
	CustomProperties map[string]string `json:"customProperties,omitempty"`
}

func (c *Client) CreateOrUpdateScheduledQueryRule(ctx context.Context, rg, name string, rule *ScheduledQueryRule) error {
	return errors.Wrapf(
		c.put(ctx, c.resourceGroupPath(rg, "providers", "Microsoft.Insights", "scheduledQueryRules", name), queryRulesAPIVersion, rule),
		"failed to create or update alert %s", name,
	)
}

// ParseWindow converts "<n>m", "<n>h" or "<n>d" into an ISO-8601 duration
// such as PT5M, PT1H or P1D.
func ParseWindow(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return "", errors.Errorf("invalid time window %q, expected a number followed by m, h or d", s)
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n <= 0 {
		return "", errors.Errorf("invalid time window %q, expected a number followed by m, h or d", s)
	}
	unit, ok := windowUnits[strings.ToLower(s[len(s)-1:])]
	if !ok {
		return "", errors.Errorf("invalid time window %q, unit must be m, h or d", s)
	}
	return armrest.FormatDuration(time.Duration(n) * unit), nil
}
