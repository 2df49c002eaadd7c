package mlpad

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.jetpack.io/mlpad/goutil/errorutil"
	"go.jetpack.io/mlpad/mlcli/hook"
	"go.jetpack.io/mlpad/mlcli/mlconfig"
	"go.jetpack.io/mlpad/pkg/azmonitor"
	"go.jetpack.io/mlpad/pkg/padlog"
	"go.jetpack.io/mlpad/pkg/reconcile"
)

// ApplyActionGroups creates or updates every action group of the config.
// Action groups are cheap to rewrite, so they are not diffed.
func (p *Pad) ApplyActionGroups(
	ctx context.Context,
	m Monitor,
	opts *MonitorOptions,
) (*reconcile.Report, error) {
	var err error
	report := reconcile.NewReport()
	lifecycle(ctx, opts.LifecycleHook, func() (hook.LifecycleOutput, error) {
		err = p.applyActionGroups(ctx, m, opts, report)
		return report, err
	})
	return report, err
}

func (p *Pad) applyActionGroups(
	ctx context.Context,
	m Monitor,
	opts *MonitorOptions,
	report *reconcile.Report,
) error {
	if err := opts.validate(); err != nil {
		return err
	}
	doc, err := p.load(&opts.ApplyOptions)
	if err != nil {
		return err
	}
	entries, err := mlconfig.LoadActionGroups(doc)
	if err != nil {
		return err
	}
	padlog.Logger(ctx).HeaderPrintf("Action groups in resource group %s", opts.ResourceGroup)

	eachEntry(ctx, "action group", report, entries, func(e mlconfig.Entry[mlconfig.ActionGroup]) reconcile.Outcome {
		out := reconcile.Outcome{Name: e.Spec.Name, Action: reconcile.Update, Reason: "create or update"}
		if opts.DryRun {
			return dryRun(out)
		}
		out.Err = m.CreateOrUpdateActionGroup(ctx, opts.ResourceGroup, e.Spec.Name, actionGroup(&e.Spec))
		return out
	})
	return nil
}

func actionGroup(ag *mlconfig.ActionGroup) *azmonitor.ActionGroup {
	r := ag.Receivers
	return &azmonitor.ActionGroup{
		Location: ag.Location,
		Properties: azmonitor.ActionGroupProperties{
			GroupShortName: ag.ShortName,
			Enabled:        ag.IsEnabled(),
			Receivers: azmonitor.Receivers{
				Email: lo.Map(r.Email, func(addr string, _ int) azmonitor.EmailReceiver {
					return azmonitor.EmailReceiver{Name: addr, EmailAddress: addr, UseCommonAlertSchema: true}
				}),
				Webhook: lo.Map(r.Webhook, func(uri string, _ int) azmonitor.WebhookReceiver {
					return azmonitor.WebhookReceiver{Name: uri, ServiceURI: uri, UseCommonAlertSchema: true}
				}),
				SMS:   lo.Map(r.SMS, phoneReceiver),
				Voice: lo.Map(r.Voice, phoneReceiver),
				AzureAppPush: lo.Map(r.AzureAppPush, func(a mlconfig.AppPushReceiver, _ int) azmonitor.AppPushReceiver {
					return azmonitor.AppPushReceiver{Name: a.Name, EmailAddress: a.EmailAddress}
				}),
				AzureFunction: lo.Map(r.AzureFunction, func(f mlconfig.AzureFunctionReceiver, _ int) azmonitor.AzureFunctionReceiver {
					return azmonitor.AzureFunctionReceiver(f)
				}),
				LogicApp: lo.Map(r.LogicApp, func(l mlconfig.LogicAppReceiver, _ int) azmonitor.LogicAppReceiver {
					return azmonitor.LogicAppReceiver(l)
				}),
				ArmRole: lo.Map(r.ArmRole, func(a mlconfig.ArmRoleReceiver, _ int) azmonitor.ArmRoleReceiver {
					return azmonitor.ArmRoleReceiver(a)
				}),
				AutomationRunbook: lo.Map(r.AutomationRunbook, func(a mlconfig.AutomationRunbookReceiver, _ int) azmonitor.AutomationRunbookReceiver {
					return azmonitor.AutomationRunbookReceiver(a)
				}),
			},
		},
	}
}

func phoneReceiver(p mlconfig.PhoneReceiver, _ int) azmonitor.PhoneReceiver {
	return azmonitor.PhoneReceiver(p)
}

// ApplyAlerts creates or updates one scheduled query rule per alert, scoped
// to the Log Analytics workspace and placed in its region.
func (p *Pad) ApplyAlerts(
	ctx context.Context,
	m Monitor,
	opts *MonitorOptions,
) (*reconcile.Report, error) {
	var err error
	report := reconcile.NewReport()
	lifecycle(ctx, opts.LifecycleHook, func() (hook.LifecycleOutput, error) {
		err = p.applyAlerts(ctx, m, opts, report)
		return report, err
	})
	return report, err
}

func (p *Pad) applyAlerts(
	ctx context.Context,
	m Monitor,
	opts *MonitorOptions,
	report *reconcile.Report,
) error {
	if err := opts.validate(); err != nil {
		return err
	}
	if opts.WorkspaceName == "" {
		return errorutil.NewUserError("Log Analytics workspace name is not set").
			WithHint("Set LAW_NAME or pass --law-name")
	}
	doc, err := p.load(&opts.ApplyOptions)
	if err != nil {
		return err
	}
	entries, err := mlconfig.LoadAlerts(doc)
	if err != nil {
		return err
	}

	scope := m.LogAnalyticsWorkspaceID(opts.ResourceGroup, opts.WorkspaceName)
	location, err := m.ResourceLocation(ctx, scope)
	if err != nil {
		return errors.Wrapf(err, "failed to look up Log Analytics workspace %s", opts.WorkspaceName)
	}
	padlog.Logger(ctx).HeaderPrintf("Alerts on %s (%s)", opts.WorkspaceName, location)

	eachEntry(ctx, "alert", report, entries, func(e mlconfig.Entry[mlconfig.Alert]) reconcile.Outcome {
		out := reconcile.Outcome{Name: e.Spec.Name, Action: reconcile.Update, Reason: "create or update"}
		rule, err := scheduledQueryRule(m, opts.ResourceGroup, &e.Spec, scope, location)
		if err != nil {
			out.Err = err
			return out
		}
		if opts.DryRun {
			return dryRun(out)
		}
		out.Err = m.CreateOrUpdateScheduledQueryRule(ctx, opts.ResourceGroup, e.Spec.Name, rule)
		return out
	})
	return nil
}

func scheduledQueryRule(
	m Monitor,
	rg string,
	a *mlconfig.Alert,
	scope, location string,
) (*azmonitor.ScheduledQueryRule, error) {
	frequency, err := azmonitor.ParseWindow(a.EvaluationFrequency)
	if err != nil {
		return nil, err
	}
	window, err := azmonitor.ParseWindow(a.WindowSize)
	if err != nil {
		return nil, err
	}
	rule := &azmonitor.ScheduledQueryRule{
		Location: location,
		Properties: azmonitor.ScheduledQueryRuleProperties{
			DisplayName:         a.Name,
			Description:         a.Description,
			Severity:            a.Severity,
			Enabled:             a.IsEnabled(),
			Scopes:              []string{scope},
			EvaluationFrequency: frequency,
			WindowSize:          window,
			Criteria: azmonitor.QueryCriteria{AllOf: []azmonitor.QueryCondition{{
				Query:               a.Condition.Query,
				TimeAggregation:     a.Condition.TimeAggregation,
				MetricMeasureColumn: a.Condition.MetricMeasureColumn,
				Operator:            a.Condition.Operator,
				Threshold:           a.Condition.Threshold,
			}}},
		},
	}
	if len(a.ActionGroups) > 0 || len(a.CustomProperties) > 0 {
		rule.Properties.Actions = &azmonitor.RuleActions{
			ActionGroups: lo.Map(a.ActionGroups, func(name string, _ int) string {
				return m.ActionGroupID(rg, name)
			}),
			CustomProperties: a.CustomProperties,
		}
	}
	return rule, nil
}

// ApplyProcessingRules creates, for every action group with severities, an
// alert processing rule of the same name that adds the group to alerts of
// those severities in the resource group. Existing rules are left alone.
func (p *Pad) ApplyProcessingRules(
	ctx context.Context,
	m Monitor,
	opts *MonitorOptions,
) (*reconcile.Report, error) {
	var err error
	report := reconcile.NewReport()
	lifecycle(ctx, opts.LifecycleHook, func() (hook.LifecycleOutput, error) {
		err = p.applyProcessingRules(ctx, m, opts, report)
		return report, err
	})
	return report, err
}

func (p *Pad) applyProcessingRules(
	ctx context.Context,
	m Monitor,
	opts *MonitorOptions,
	report *reconcile.Report,
) error {
	if err := opts.validate(); err != nil {
		return err
	}
	doc, err := p.load(&opts.ApplyOptions)
	if err != nil {
		return err
	}
	entries, err := mlconfig.LoadActionGroups(doc)
	if err != nil {
		return err
	}
	padlog.Logger(ctx).HeaderPrintf("Alert processing rules in resource group %s", opts.ResourceGroup)

	eachEntry(ctx, "processing rule", report, entries, func(e mlconfig.Entry[mlconfig.ActionGroup]) reconcile.Outcome {
		ag := &e.Spec
		out := reconcile.Outcome{Name: ag.Name}
		severities := ag.Severities()
		if len(severities) == 0 {
			out.Reason = "no severity to route"
			return out
		}

		_, err := m.GetProcessingRule(ctx, opts.ResourceGroup, ag.Name)
		switch {
		case err == nil:
			out.Reason = "already exists"
			return out
		case !azmonitor.IsNotFound(err):
			out.Err = errors.Wrapf(err, "failed to read alert processing rule %s", ag.Name)
			return out
		}

		out.Action = reconcile.Create
		if opts.DryRun {
			return dryRun(out)
		}
		out.Err = m.CreateProcessingRule(ctx, opts.ResourceGroup, ag.Name, processingRule(m, opts.ResourceGroup, ag, severities))
		return out
	})
	return nil
}

func processingRule(m Monitor, rg string, ag *mlconfig.ActionGroup, severities []string) *azmonitor.ProcessingRule {
	return &azmonitor.ProcessingRule{
		Location: ag.Location,
		Tags:     map[string]string{},
		Properties: azmonitor.ProcessingRuleProperties{
			Scopes: []string{m.ResourceGroupID(rg)},
			Conditions: []azmonitor.RuleCondition{{
				Field:    "Severity",
				Operator: "Equals",
				Values:   severities,
			}},
			Actions: []azmonitor.ProcessingAction{{
				ActionType:     "AddActionGroups",
				ActionGroupIDs: []string{m.ActionGroupID(rg, ag.Name)},
			}},
			Description: fmt.Sprintf(
				"Add %s to all alerts with severity in %s", ag.Name, strings.Join(severities, ", ")),
			Enabled: true,
		},
	}
}

func (opts *MonitorOptions) validate() error {
	if opts.ResourceGroup == "" {
		return errorutil.NewUserError("Log Analytics resource group is not set").
			WithHint("Set LAW_RG or pass --law-resource-group")
	}
	return nil
}
