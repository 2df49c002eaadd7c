package azml

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"

	"go.jetpack.io/mlpad/pkg/armrest"
)

// Compute types as named by the ARM API.
const (
	ComputeTypeAML        = "AmlCompute"
	ComputeTypeInstance   = "ComputeInstance"
	ComputeTypeKubernetes = "Kubernetes"
)

type Compute struct {
	ID         string            `json:"id,omitempty"`
	Name       string            `json:"name,omitempty"`
	Location   string            `json:"location,omitempty"`
	Properties ComputeProperties `json:"properties"`
}

type ComputeProperties struct {
	ComputeType       string       `json:"computeType"`
	ComputeLocation   string       `json:"computeLocation,omitempty"`
	Description       string       `json:"description,omitempty"`
	ResourceID        string       `json:"resourceId,omitempty"`
	ProvisioningState string       `json:"provisioningState,omitempty"`
	Properties        *ComputeSpec `json:"properties,omitempty"`
}

type ComputeSpec struct {
	VMSize        string         `json:"vmSize,omitempty"`
	VMPriority    string         `json:"vmPriority,omitempty"`
	ScaleSettings *ScaleSettings `json:"scaleSettings,omitempty"`
	Namespace     string         `json:"namespace,omitempty"`
}

type ScaleSettings struct {
	MaxNodeCount int `json:"maxNodeCount"`
	MinNodeCount int `json:"minNodeCount"`
	// ISO-8601 duration, e.g. PT2M.
	NodeIdleTimeBeforeScaleDown string `json:"nodeIdleTimeBeforeScaleDown,omitempty"`
}

// IdleDuration formats seconds the way scale settings expect them.
func IdleDuration(seconds int) string {
	return armrest.FormatDuration(time.Duration(seconds) * time.Second)
}

func (c *Client) GetCompute(ctx context.Context, name string) (*Compute, error) {
	compute := &Compute{}
	if err := c.get(ctx, c.ws.ComputeID(name), compute); err != nil {
		return nil, err
	}
	return compute, nil
}

func (c *Client) CreateCompute(ctx context.Context, name string, compute *Compute) error {
	return errors.Wrapf(
		c.put(ctx, c.ws.ComputeID(name), compute, nil),
		"failed to create compute %s", name,
	)
}

type computeScalePatch struct {
	Properties struct {
		Properties struct {
			ScaleSettings ScaleSettings `json:"scaleSettings"`
		} `json:"properties"`
	} `json:"properties"`
}

// UpdateComputeScale changes the node counts and idle timeout of an
// AmlCompute cluster in place.
func (c *Client) UpdateComputeScale(ctx context.Context, name string, s ScaleSettings) error {
	patch := computeScalePatch{}
	patch.Properties.Properties.ScaleSettings = s
	err := c.rest.Do(ctx, armrest.Request{
		Method:     http.MethodPatch,
		Path:       c.ws.ComputeID(name),
		APIVersion: apiVersion,
		Body:       patch,
		Accepted:   []int{http.StatusOK, http.StatusAccepted},
	}, nil)
	return errors.Wrapf(err, "failed to update scale settings of compute %s", name)
}

// WaitForCompute polls until the compute leaves the Creating/Updating
// states. A Failed or Canceled provisioning state is an error.
func (c *Client) WaitForCompute(ctx context.Context, name string, timeout time.Duration) error {
	op := func() error {
		compute, err := c.GetCompute(ctx, name)
		if err != nil {
			if IsNotFound(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		switch state := strings.ToLower(compute.Properties.ProvisioningState); state {
		case "succeeded", "":
			return nil
		case "failed", "canceled":
			return backoff.Permanent(
				errors.Errorf("compute %s provisioning ended in state %s", name, compute.Properties.ProvisioningState),
			)
		default:
			return errors.Errorf("compute %s is %s", name, compute.Properties.ProvisioningState)
		}
	}
	return c.poll(ctx, op, timeout)
}

func (c *Client) poll(ctx context.Context, op backoff.Operation, timeout time.Duration) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.pollInterval
	b.MaxInterval = 30 * c.pollInterval
	if b.MaxInterval > time.Minute {
		b.MaxInterval = time.Minute
	}
	b.MaxElapsedTime = timeout
	return backoff.Retry(op, backoff.WithContext(b, ctx))
}
