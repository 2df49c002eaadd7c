// Package aztesting provides an in-memory ARM endpoint for tests. It plugs
// into the Azure SDK pipeline as the HTTP transport, so clients under test
// run their real request building and response handling.
package aztesting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
)

// FakeCredential hands out a static bearer token.
type FakeCredential struct{}

func (FakeCredential) GetToken(context.Context, policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{Token: "fake-token", ExpiresOn: time.Now().Add(time.Hour)}, nil
}

// Request is a request the Sender received, with its body already read.
type Request struct {
	Method string
	Path   string
	Query  string
	Body   []byte
}

// JSON decodes the recorded request body into a generic map.
func (r Request) JSON() map[string]any {
	m := map[string]any{}
	_ = json.Unmarshal(r.Body, &m)
	return m
}

type response struct {
	status int
	body   []byte
}

// Sender answers requests by method and path. Paths are matched by suffix
// and case-insensitively, like ARM itself. Routes with several responses
// hand them out in order and keep repeating the last one. Unrouted requests
// get an ARM style 404.
type Sender struct {
	mu       sync.Mutex
	routes   map[string][]response
	requests []Request
}

var _ policy.Transporter = (*Sender)(nil)

func NewSender() *Sender {
	return &Sender{routes: map[string][]response{}}
}

// ClientOptions returns ARM client options routing every call to s, with
// retries disabled so error responses surface immediately.
func (s *Sender) ClientOptions() *arm.ClientOptions {
	return &arm.ClientOptions{
		ClientOptions: policy.ClientOptions{
			Transport: s,
			Retry:     policy.RetryOptions{MaxRetries: -1},
		},
	}
}

func routeKey(method, path string) string {
	return strings.ToUpper(method) + " " + strings.ToLower(path)
}

// Route registers a response. body is JSON encoded unless it is a string or
// []byte.
func (s *Sender) Route(method, pathSuffix string, status int, body any) *Sender {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := routeKey(method, pathSuffix)
	s.routes[key] = append(s.routes[key], response{status: status, body: encode(body)})
	return s
}

// NotFound registers an ARM style 404 for the route.
func (s *Sender) NotFound(method, pathSuffix string) *Sender {
	return s.Route(method, pathSuffix, http.StatusNotFound, notFoundBody(pathSuffix))
}

func encode(body any) []byte {
	switch b := body.(type) {
	case nil:
		return nil
	case string:
		return []byte(b)
	case []byte:
		return b
	default:
		data, err := json.Marshal(b)
		if err != nil {
			panic(err)
		}
		return data
	}
}

func notFoundBody(path string) string {
	return fmt.Sprintf(`{"error":{"code":"ResourceNotFound","message":"The resource '%s' was not found."}}`, path)
}

func (s *Sender) Do(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method: req.Method,
		Path:   req.URL.Path,
		Query:  req.URL.RawQuery,
		Body:   body,
	})
	resp := response{status: http.StatusNotFound, body: []byte(notFoundBody(req.URL.Path))}
	reqKey := routeKey(req.Method, req.URL.Path)
	bestLen := -1
	bestKey := ""
	for key := range s.routes {
		if strings.HasSuffix(reqKey, key[strings.Index(key, " ")+1:]) &&
			strings.HasPrefix(reqKey, key[:strings.Index(key, " ")+1]) &&
			len(key) > bestLen {
			bestKey, bestLen = key, len(key)
		}
	}
	if bestKey != "" {
		queue := s.routes[bestKey]
		resp = queue[0]
		if len(queue) > 1 {
			s.routes[bestKey] = queue[1:]
		}
	}
	s.mu.Unlock()

	return &http.Response{
		StatusCode: resp.status,
		Status:     fmt.Sprintf("%d %s", resp.status, http.StatusText(resp.status)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(resp.body)),
		Request:    req,
	}, nil
}

// Requests returns every request received so far.
func (s *Sender) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestsFor returns the received requests with the given method whose
// path ends with pathSuffix.
func (s *Sender) RequestsFor(method, pathSuffix string) []Request {
	out := []Request{}
	for _, r := range s.Requests() {
		if strings.EqualFold(r.Method, method) &&
			strings.HasSuffix(strings.ToLower(r.Path), strings.ToLower(pathSuffix)) {
			out = append(out, r)
		}
	}
	return out
}
