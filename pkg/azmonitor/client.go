// Package azmonitor manages the Azure Monitor resources that alert on an
// ML workspace: action groups, log search alert rules and alert processing
// rules.
package azmonitor

import (
	"context"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/pkg/errors"

	"go.jetpack.io/mlpad/pkg/armrest"
)

const (
	actionGroupsAPIVersion    = "2023-01-01"
	queryRulesAPIVersion      = "2023-03-15-preview"
	processingRulesAPIVersion = "2021-08-08"
	workspaceAPIVersion       = "2022-10-01"
)

type Client struct {
	subscriptionID string
	rest           *armrest.Client
	resources      *armresources.Client
}

func NewClient(subscriptionID string, cred azcore.TokenCredential, opts *arm.ClientOptions) (*Client, error) {
	if subscriptionID == "" {
		return nil, errors.New("subscription id is required")
	}
	rest, err := armrest.NewClient(cred, opts)
	if err != nil {
		return nil, err
	}
	resources, err := armresources.NewClient(subscriptionID, cred, opts)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &Client{subscriptionID: subscriptionID, rest: rest, resources: resources}, nil
}

func (c *Client) resourceGroupPath(rg string, children ...string) string {
	return armrest.Path(append([]string{"subscriptions", c.subscriptionID, "resourceGroups", rg}, children...)...)
}

// ResourceGroupID is the ARM ID of a resource group in the subscription.
func (c *Client) ResourceGroupID(rg string) string {
	return c.resourceGroupPath(rg)
}

// ActionGroupID is the ARM ID of an action group.
func (c *Client) ActionGroupID(rg, name string) string {
	return c.resourceGroupPath(rg, "providers", "microsoft.insights", "actionGroups", name)
}

// LogAnalyticsWorkspaceID is the ARM ID of a Log Analytics workspace.
func (c *Client) LogAnalyticsWorkspaceID(rg, name string) string {
	return c.resourceGroupPath(rg, "providers", "Microsoft.OperationalInsights", "workspaces", name)
}

// ResourceLocation looks up the region of any resource by ID.
func (c *Client) ResourceLocation(ctx context.Context, resourceID string) (string, error) {
	resp, err := c.resources.GetByID(ctx, resourceID, workspaceAPIVersion, nil)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read resource %s", resourceID)
	}
	if resp.Location == nil {
		return "", errors.Errorf("resource %s has no location", resourceID)
	}
	return *resp.Location, nil
}

func (c *Client) put(ctx context.Context, path, apiVersion string, body any) error {
	return c.rest.Do(ctx, armrest.Request{
		Method:     http.MethodPut,
		Path:       path,
		APIVersion: apiVersion,
		Body:       body,
		Accepted:   []int{http.StatusOK, http.StatusCreated},
	}, nil)
}

// IsNotFound reports whether err means the requested resource does not
// exist.
func IsNotFound(err error) bool {
	return armrest.IsNotFound(err)
}
