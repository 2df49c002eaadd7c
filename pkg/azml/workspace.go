package azml

import (
	"go.jetpack.io/mlpad/goutil/errorutil"
	"go.jetpack.io/mlpad/pkg/armrest"
)

const mlProvider = "Microsoft.MachineLearningServices"

// Workspace identifies an Azure ML workspace.
type Workspace struct {
	SubscriptionID string `json:"subscription_id"`
	ResourceGroup  string `json:"resource_group"`
	Name           string `json:"workspace"`
}

func (w Workspace) Validate() error {
	switch {
	case w.SubscriptionID == "":
		return errorutil.NewUserError("subscription id is not set").
			WithHint("set SUBSCRIPTION_ID or pass --subscription")
	case w.ResourceGroup == "":
		return errorutil.NewUserError("resource group is not set").
			WithHint("set RESOURCE_GROUP or pass --resource-group")
	case w.Name == "":
		return errorutil.NewUserError("workspace name is not set").
			WithHint("set WORKSPACE_NAME or pass --workspace")
	}
	return nil
}

func (w Workspace) String() string {
	return w.ResourceGroup + "/" + w.Name
}

// ID is the workspace's ARM resource ID.
func (w Workspace) ID() string {
	return w.path()
}

func (w Workspace) path(children ...string) string {
	segments := append([]string{
		"subscriptions", w.SubscriptionID,
		"resourceGroups", w.ResourceGroup,
		"providers", mlProvider, "workspaces", w.Name,
	}, children...)
	// The provider namespace contains a dot but no slash, escaping is a no-op.
	return armrest.Path(segments...)
}

// ComputeID is the ARM ID of a compute target in the workspace.
func (w Workspace) ComputeID(name string) string {
	return w.path("computes", name)
}

// ComponentVersionID is the ARM ID of one component version.
func (w Workspace) ComponentVersionID(name, version string) string {
	return w.path("components", name, "versions", version)
}

// EnvironmentVersionID is the ARM ID of one environment version.
func (w Workspace) EnvironmentVersionID(name, version string) string {
	return w.path("environments", name, "versions", version)
}
