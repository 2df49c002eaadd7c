// Package azcli drives the Azure CLI for the steps that are expressed as
// az commands: service principal login, subscription selection, Bicep
// deployments and CLI defaults.
package azcli

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"go.jetpack.io/mlpad/goutil"
	"go.jetpack.io/mlpad/pkg/padlog"
)

type CLI struct {
	runner Runner
}

func New(r Runner) *CLI {
	if r == nil {
		r = Exec{}
	}
	return &CLI{runner: r}
}

// ServicePrincipal holds the credentials of a service principal.
type ServicePrincipal struct {
	ClientID     string
	ClientSecret string
	TenantID     string
}

func (c *CLI) Login(ctx context.Context, sp ServicePrincipal) error {
	padlog.Events("azcli").Infof("logging in as service principal %s", sp.ClientID)
	_, err := c.runner.Run(ctx,
		"login", "--service-principal",
		"--username", sp.ClientID,
		"--password", sp.ClientSecret,
		"--tenant", sp.TenantID,
		"--output", "none",
	)
	return errors.Wrap(err, "failed to log in with the service principal")
}

func (c *CLI) SetSubscription(ctx context.Context, subscription string) error {
	_, err := c.runner.Run(ctx, "account", "set", "--subscription", subscription)
	return errors.Wrapf(err, "failed to select subscription %s", subscription)
}

type Account struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	TenantID string `json:"tenantId"`
}

// CurrentAccount returns the subscription az commands currently target.
func (c *CLI) CurrentAccount(ctx context.Context) (*Account, error) {
	out, err := c.runner.Run(ctx, "account", "show", "--output", "json")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read the current account")
	}
	acct := &Account{}
	return acct, errors.WithStack(json.Unmarshal(out, acct))
}

type Deployment struct {
	// Name defaults to the template file name, as az does.
	Name         string
	Location     string
	TemplateFile string
	Parameters   string
}

// DeploymentOutputs are the outputs declared by the Bicep template.
type DeploymentOutputs map[string]struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// String returns an output value as a string, or "" when absent.
func (o DeploymentOutputs) String(name string) string {
	v, ok := o[name]
	if !ok {
		return ""
	}
	s, _ := v.Value.(string)
	return s
}

// DeploySubscription runs a subscription scoped deployment and returns its
// outputs.
func (c *CLI) DeploySubscription(ctx context.Context, d Deployment) (DeploymentOutputs, error) {
	args := []string{
		"deployment", "sub", "create",
		"--location", d.Location,
		"--template-file", d.TemplateFile,
		"--parameters", d.Parameters,
		"--output", "json",
	}
	if d.Name != "" {
		args = append(args, "--name", d.Name)
	}
	out, err := c.runner.Run(ctx, args...)
	if err != nil {
		return nil, errors.Wrap(err, "deployment failed")
	}
	var result struct {
		Properties struct {
			Outputs DeploymentOutputs `json:"outputs"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(out, &result); err != nil {
		return nil, errors.Wrap(err, "failed to parse deployment output")
	}
	return result.Properties.Outputs, nil
}

// ConfigureDefaults sets az CLI defaults such as group or workspace, one
// call per key.
func (c *CLI) ConfigureDefaults(ctx context.Context, defaults map[string]string) error {
	for _, k := range goutil.SortedKeys(defaults) {
		if _, err := c.runner.Run(ctx, "configure", "--defaults", k+"="+defaults[k]); err != nil {
			return errors.Wrapf(err, "failed to set default %s", k)
		}
	}
	return nil
}

// ListDefaults returns the configured az CLI defaults by name.
func (c *CLI) ListDefaults(ctx context.Context) (map[string]string, error) {
	out, err := c.runner.Run(ctx, "configure", "--list-defaults", "--output", "json")
	if err != nil {
		return nil, errors.Wrap(err, "failed to list defaults")
	}
	var entries []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}
	if err := json.Unmarshal(out, &entries); err != nil {
		return nil, errors.Wrap(err, "failed to parse defaults")
	}
	defaults := map[string]string{}
	for _, e := range entries {
		defaults[e.Name] = e.Value
	}
	return defaults, nil
}
