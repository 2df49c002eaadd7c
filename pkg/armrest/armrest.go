// Package armrest issues Azure Resource Manager calls through the azcore
// pipeline. Resource shapes are plain JSON structs owned by the callers.
package armrest

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/pkg/errors"
)

const (
	moduleName    = "mlpad"
	moduleVersion = "v0.1.0"
)

type Client struct {
	endpoint string
	pipeline runtime.Pipeline
}

func NewClient(cred azcore.TokenCredential, opts *arm.ClientOptions) (*Client, error) {
	c, err := arm.NewClient(moduleName, moduleVersion, cred, opts)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &Client{endpoint: c.Endpoint(), pipeline: c.Pipeline()}, nil
}

// Request describes one ARM call. Path is a resource ID, segments are
// expected to be escaped already (see Path).
type Request struct {
	Method     string
	Path       string
	APIVersion string
	Query      url.Values
	Body       any
	// Accepted lists success status codes. Defaults to 200.
	Accepted []int
}

// Do sends req and decodes a successful response body into out when out is
// not nil. Non accepted statuses come back as *azcore.ResponseError.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	r, err := runtime.NewRequest(ctx, req.Method, runtime.JoinPaths(c.endpoint, req.Path))
	if err != nil {
		return errors.WithStack(err)
	}
	q := r.Raw().URL.Query()
	for k, vs := range req.Query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("api-version", req.APIVersion)
	r.Raw().URL.RawQuery = q.Encode()
	r.Raw().Header.Set("Accept", "application/json")

	if req.Body != nil {
		if err := runtime.MarshalAsJSON(r, req.Body); err != nil {
			return errors.WithStack(err)
		}
	}

	resp, err := c.pipeline.Do(r)
	if err != nil {
		return errors.WithStack(err)
	}
	accepted := req.Accepted
	if len(accepted) == 0 {
		accepted = []int{http.StatusOK}
	}
	if !runtime.HasStatusCode(resp, accepted...) {
		return errors.WithStack(runtime.NewResponseError(resp))
	}
	if out == nil {
		return nil
	}
	return errors.WithStack(runtime.UnmarshalAsJSON(resp, out))
}

// Path joins resource ID segments, escaping each one.
func Path(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return "/" + strings.Join(escaped, "/")
}

// IsNotFound reports whether err is an ARM 404.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// StatusCode returns the HTTP status carried by an ARM error, or 0.
func StatusCode(err error) int {
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode
	}
	return 0
}
