// Package azml is a small Azure Machine Learning control plane client. It
// covers the workspace resources mlpad reconciles: compute targets, data
// assets, environments, components and jobs.
package azml

import (
	"context"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/pkg/errors"

	"go.jetpack.io/mlpad/pkg/armrest"
)

const apiVersion = "2024-04-01"

type ClientOptions struct {
	arm.ClientOptions

	// PollInterval is the first wait between provisioning or job status
	// checks. Defaults to 10s.
	PollInterval time.Duration
}

type Client struct {
	ws           Workspace
	rest         *armrest.Client
	pollInterval time.Duration
}

func NewClient(ws Workspace, cred azcore.TokenCredential, opts *ClientOptions) (*Client, error) {
	if err := ws.Validate(); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &ClientOptions{}
	}
	rest, err := armrest.NewClient(cred, &opts.ClientOptions)
	if err != nil {
		return nil, err
	}
	interval := opts.PollInterval
	if interval == 0 {
		interval = 10 * time.Second
	}
	return &Client{ws: ws, rest: rest, pollInterval: interval}, nil
}

func (c *Client) Workspace() Workspace {
	return c.ws
}

type workspaceResource struct {
	Location string `json:"location"`
}

// Location returns the Azure region of the workspace.
func (c *Client) Location(ctx context.Context) (string, error) {
	var ws workspaceResource
	err := c.rest.Do(ctx, armrest.Request{
		Method:     http.MethodGet,
		Path:       c.ws.path(),
		APIVersion: apiVersion,
	}, &ws)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read workspace %s", c.ws)
	}
	return ws.Location, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.rest.Do(ctx, armrest.Request{
		Method:     http.MethodGet,
		Path:       path,
		APIVersion: apiVersion,
	}, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.rest.Do(ctx, armrest.Request{
		Method:     http.MethodPut,
		Path:       path,
		APIVersion: apiVersion,
		Body:       body,
		Accepted:   []int{http.StatusOK, http.StatusCreated, http.StatusAccepted},
	}, out)
}

// IsNotFound reports whether err means the requested resource does not
// exist.
func IsNotFound(err error) bool {
	return armrest.IsNotFound(err)
}
