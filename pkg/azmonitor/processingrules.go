package azmonitor

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"go.jetpack.io/mlpad/pkg/armrest"
)

type ProcessingRule struct {
	Location   string                   `json:"location"`
	Tags       map[string]string        `json:"tags,omitempty"`
	Properties ProcessingRuleProperties `json:"properties"`
}

type ProcessingRuleProperties struct {
	Scopes      []string           `json:"scopes"`
	Conditions  []RuleCondition    `json:"conditions,omitempty"`
	Actions     []ProcessingAction `json:"actions"`
	Description string             `json:"description,omitempty"`
	Enabled     bool               `json:"enabled"`
}

type RuleCondition struct {
	Field    string   `json:"field"`
	Operator string   `json:"operator"`
	Values   []string `json:"values"`
}

type ProcessingAction struct {
	ActionType     string   `json:"actionType"`
	ActionGroupIDs []string `json:"actionGroupIds,omitempty"`
}

func (c *Client) processingRulePath(rg, name string) string {
	return c.resourceGroupPath(rg, "providers", "Microsoft.AlertsManagement", "actionRules", name)
}

func (c *Client) GetProcessingRule(ctx context.Context, rg, name string) (*ProcessingRule, error) {
	rule := &ProcessingRule{}
	err := c.rest.Do(ctx, armrest.Request{
		Method:     http.MethodGet,
		Path:       c.processingRulePath(rg, name),
		APIVersion: processingRulesAPIVersion,
	}, rule)
	if err != nil {
		return nil, err
	}
	return rule, nil
}

func (c *Client) CreateProcessingRule(ctx context.Context, rg, name string, rule *ProcessingRule) error {
	if rule.Location == "" {
		rule.Location = "Global"
	}
	return errors.Wrapf(
		c.put(ctx, c.processingRulePath(rg, name), processingRulesAPIVersion, rule),
		"failed to create alert processing rule %s", name,
	)
}
