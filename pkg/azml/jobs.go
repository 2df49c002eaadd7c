package azml

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

type Job struct {
	ID         string        `json:"id,omitempty"`
	Name       string        `json:"name,omitempty"`
	Properties JobProperties `json:"properties"`
}

type JobProperties struct {
	JobType        string               `json:"jobType"`
	DisplayName    string               `json:"displayName,omitempty"`
	Description    string               `json:"description,omitempty"`
	ExperimentName string               `json:"experimentName,omitempty"`
	Status         string               `json:"status,omitempty"`
	Inputs         map[string]JobInput  `json:"inputs,omitempty"`
	Outputs        map[string]JobOutput `json:"outputs,omitempty"`
	// Jobs holds the pipeline nodes keyed by node name.
	Jobs     map[string]any `json:"jobs,omitempty"`
	Settings map[string]any `json:"settings,omitempty"`
}

type JobInput struct {
	JobInputType string `json:"jobInputType"`
	URI          string `json:"uri,omitempty"`
	Mode         string `json:"mode,omitempty"`
	Value        string `json:"value,omitempty"`
}

type JobOutput struct {
	JobOutputType string `json:"jobOutputType"`
	Mode          string `json:"mode,omitempty"`
}

var terminalJobStatuses = []string{"Completed", "Failed", "Canceled", "NotResponding"}

// IsTerminalJobStatus reports whether a job in this status will not change
// any more.
func IsTerminalJobStatus(status string) bool {
	return lo.Contains(terminalJobStatuses, status)
}

func (c *Client) CreateJob(ctx context.Context, name string, job *Job) (*Job, error) {
	created := &Job{}
	if err := c.put(ctx, c.ws.path("jobs", name), job, created); err != nil {
		return nil, errors.Wrapf(err, "failed to submit job %s", name)
	}
	return created, nil
}

func (c *Client) GetJob(ctx context.Context, name string) (*Job, error) {
	job := &Job{}
	if err := c.get(ctx, c.ws.path("jobs", name), job); err != nil {
		return nil, err
	}
	return job, nil
}

// WaitForJob polls a job until it reaches a terminal status and returns
// that status. A job that did not complete successfully is not an error
// here, callers decide based on the status.
func (c *Client) WaitForJob(ctx context.Context, name string, timeout time.Duration) (string, error) {
	status := ""
	op := func() error {
		job, err := c.GetJob(ctx, name)
		if err != nil {
			return backoff.Permanent(err)
		}
		status = job.Properties.Status
		if IsTerminalJobStatus(status) {
			return nil
		}
		return errors.Errorf("job %s is %s", name, status)
	}
	if err := c.poll(ctx, op, timeout); err != nil {
		return status, err
	}
	return status, nil
}
