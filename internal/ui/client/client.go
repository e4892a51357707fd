// the client package is used by the ui handlers and the tradebotctl commands to call the trading bot API.
// The client returns the raw response payload on success and a *ClientError on failure.
// Callers translate failures into a user-facing message with FormatError (see client/errors.go).
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultAPIRoot = "/api"
	DefaultTimeout = 10 * time.Second
)

// Config describes how to reach the trading bot API.
// Each Client owns its Config, so independent configurations can be used side by side.
type Config struct {
	// BaseURL is the scheme and host of the backend, e.g. http://tradebot-api:8000
	BaseURL string

	// APIRoot is the path prefix shared by all endpoints (default /api).
	// "/" means the endpoints are served at the root of BaseURL.
	APIRoot string

	// Headers are sent with every request (default Content-Type and Accept: application/json)
	Headers http.Header

	// Timeout is used when HTTPClient is nil
	Timeout time.Duration

	// HTTPClient overrides the transport
	HTTPClient *http.Client
}

// Client handles communication with the trading bot API
type Client struct {
	baseURL    string
	apiRoot    string
	headers    http.Header
	httpClient *http.Client
	middleware []Middleware
}

// NewClient validates the config and returns a client that applies the supplied middleware in order.
func NewClient(cfg Config, mw ...Middleware) (*Client, error) {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", cfg.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must use http or https", cfg.BaseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url %q has no host", cfg.BaseURL)
	}

	apiRoot := cfg.APIRoot
	if apiRoot == "" {
		apiRoot = DefaultAPIRoot
	}
	apiRoot = canonicalRoot(apiRoot)

	headers := http.Header{
		"Content-Type": []string{"application/json"},
		"Accept":       []string{"application/json"},
	}
	for k, v := range cfg.Headers {
		headers[http.CanonicalHeaderKey(k)] = append([]string(nil), v...)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{
			Timeout: timeout,
		}
	}

	return &Client{
		baseURL:    baseURL,
		apiRoot:    apiRoot,
		headers:    headers,
		httpClient: httpClient,
		middleware: append([]Middleware(nil), mw...),
	}, nil
}

// BaseURL returns the backend base url
func (c *Client) BaseURL() string {
	return c.baseURL
}

// canonicalRoot gives root exactly one leading and no trailing separator.
// A root made only of separators becomes "", meaning no prefix.
func canonicalRoot(root string) string {
	root = strings.Trim(root, "/")
	if root == "" {
		return ""
	}
	return "/" + root
}

// APIRoot returns the path prefix used by the endpoints, "" when they are served at the root of the base url
func (c *Client) APIRoot() string {
	return c.apiRoot
}

// Request describes a single call to the API.
// A Request is built fresh for each call and is not modified once dispatched.
type Request struct {
	Endpoint Endpoint
	Method   string
	Path     string
	Query    url.Values
	Header   http.Header
	Body     any
}

// Result is the outcome of a dispatched request as seen by the OnResult middleware hooks.
type Result struct {
	Payload    json.RawMessage
	Err        error
	StatusCode int
	Elapsed    time.Duration
}

// do runs the middleware chain around a single http round trip.
func (c *Client) do(ctx context.Context, req Request) (json.RawMessage, error) {
	// the caller's maps are copied so the middleware can't modify them
	req.Query = maps.Clone(req.Query)
	header := c.headers.Clone()
	for k, v := range req.Header {
		header[http.CanonicalHeaderKey(k)] = append([]string(nil), v...)
	}
	req.Header = header

	for _, m := range c.middleware {
		if m.OnRequest != nil {
			req = m.OnRequest(req)
		}
	}

	start := time.Now()
	payload, statusCode, err := c.send(ctx, req)
	res := Result{
		Payload:    payload,
		Err:        err,
		StatusCode: statusCode,
		Elapsed:    time.Since(start),
	}

	for _, m := range c.middleware {
		if m.OnResult != nil {
			res = m.OnResult(req, res)
		}
	}

	if res.Err != nil {
		return nil, res.Err
	}
	return res.Payload, nil
}

// send performs the http request and classifies any failure.
func (c *Client) send(ctx context.Context, req Request) (json.RawMessage, int, error) {
	var body io.Reader
	if req.Body != nil {
		jsonData, err := json.Marshal(req.Body)
		if err != nil {
			return nil, 0, NewLocalError(err, fmt.Sprintf("marshaling %s request", req.Endpoint))
		}
		body = bytes.NewReader(jsonData)
	}

	fullURL := c.baseURL + NormalizePath(c.apiRoot, req.Path)
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, 0, NewLocalError(err, fmt.Sprintf("creating %s request", req.Endpoint))
	}
	for k, v := range req.Header {
		httpReq.Header[http.CanonicalHeaderKey(k)] = v
	}
	if body == nil {
		httpReq.Header.Del("Content-Type")
	}

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, NewNoResponseError(err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, res.StatusCode, NewServerError(res)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, res.StatusCode, NewNoResponseError(fmt.Errorf("reading %s response: %w", req.Endpoint, err))
	}

	return json.RawMessage(data), res.StatusCode, nil
}
