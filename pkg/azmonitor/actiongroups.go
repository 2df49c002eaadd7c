package azmonitor

import (
	"context"

	"github.com/pkg/errors"
)

// MaxShortNameLength is the longest group short name Azure accepts.
const MaxShortNameLength = 12

type ActionGroup struct {
	Location   string                `json:"location"`
	Properties ActionGroupProperties `json:"properties"`
}

type ActionGroupProperties struct {
	GroupShortName string `json:"groupShortName"`
	Enabled        bool   `json:"enabled"`
	Receivers
}

// Receivers lists every notification target of an action group. Empty
// lists are sent as [] so an update removes receivers dropped from config.
type Receivers struct {
	Email             []EmailReceiver             `json:"emailReceivers"`
	SMS               []PhoneReceiver             `json:"smsReceivers"`
	Webhook           []WebhookReceiver           `json:"webhookReceivers"`
	AzureAppPush      []AppPushReceiver           `json:"azureAppPushReceivers"`
	AutomationRunbook []AutomationRunbookReceiver `json:"automationRunbookReceivers"`
	Voice             []PhoneReceiver             `json:"voiceReceivers"`
	LogicApp          []LogicAppReceiver          `json:"logicAppReceivers"`
	AzureFunction     []AzureFunctionReceiver     `json:"azureFunctionReceivers"`
	ArmRole           []ArmRoleReceiver           `json:"armRoleReceivers"`
}

// Normalize replaces nil lists with empty ones.
func (r *Receivers) Normalize() {
	if r.Email == nil {
		r.Email = []EmailReceiver{}
	}
	if r.SMS == nil {
		r.SMS = []PhoneReceiver{}
	}
	if r.Webhook == nil {
		r.Webhook = []WebhookReceiver{}
	}
	if r.AzureAppPush == nil {
		r.AzureAppPush = []AppPushReceiver{}
	}
	if r.AutomationRunbook == nil {
		r.AutomationRunbook = []AutomationRunbookReceiver{}
	}
	if r.Voice == nil {
		r.Voice = []PhoneReceiver{}
	}
	if r.LogicApp == nil {
		r.LogicApp = []LogicAppReceiver{}
	}
	if r.AzureFunction == nil {
		r.AzureFunction = []AzureFunctionReceiver{}
	}
	if r.ArmRole == nil {
		r.ArmRole = []ArmRoleReceiver{}
	}
}

type EmailReceiver struct {
	Name                 string `json:"name"`
	EmailAddress         string `json:"emailAddress"`
	UseCommonAlertSchema bool   `json:"useCommonAlertSchema,omitempty"`
}

type PhoneReceiver struct {
	Name        string `json:"name"`
	CountryCode string `json:"countryCode"`
	PhoneNumber string `json:"phoneNumber"`
}

type WebhookReceiver struct {
	Name                 string `json:"name"`
	ServiceURI           string `json:"serviceUri"`
	UseCommonAlertSchema bool   `json:"useCommonAlertSchema,omitempty"`
}

type AppPushReceiver struct {
	Name         string `json:"name"`
	EmailAddress string `json:"emailAddress"`
}

type AutomationRunbookReceiver struct {
	Name                string `json:"name,omitempty"`
	AutomationAccountID string `json:"automationAccountId"`
	RunbookName         string `json:"runbookName"`
	WebhookResourceID   string `json:"webhookResourceId"`
	IsGlobalRunbook     bool   `json:"isGlobalRunbook"`
	ServiceURI          string `json:"serviceUri,omitempty"`
}

type LogicAppReceiver struct {
	Name        string `json:"name"`
	ResourceID  string `json:"resourceId"`
	CallbackURL string `json:"callbackUrl"`
}

type AzureFunctionReceiver struct {
	Name                  string `json:"name"`
	FunctionAppResourceID string `json:"functionAppResourceId"`
	FunctionName          string `json:"functionName"`
	HTTPTriggerURL        string `json:"httpTriggerUrl"`
}

type ArmRoleReceiver struct {
	Name   string `json:"name"`
	RoleID string `json:"roleId"`
}

// ShortName truncates an action group name to a valid group short name.
func ShortName(name string) string {
	if len(name) <= MaxShortNameLength {
		return name
	}
	return name[:MaxShortNameLength]
}

// CreateOrUpdateActionGroup writes the action group, replacing any
// existing definition.
func (c *Client) CreateOrUpdateActionGroup(ctx context.Context, rg, name string, ag *ActionGroup) error {
	ag.Properties.Receivers.Normalize()
	if ag.Location == "" {
		ag.Location = "Global"
	}
	if ag.Properties.GroupShortName == "" {
		ag.Properties.GroupShortName = ShortName(name)
	}
	return errors.Wrapf(
		c.put(ctx, c.resourceGroupPath(rg, "providers", "microsoft.insights", "actionGroups", name), actionGroupsAPIVersion, ag),
		"failed to create or update action group %s", name,
	)
}
