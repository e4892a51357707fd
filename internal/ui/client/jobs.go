package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"reflect"
	"strings"
)

// GetJobs lists the scheduled prediction jobs
func (c *Client) GetJobs(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, Request{
		Endpoint: EndpointJobs,
		Method:   http.MethodGet,
		Path:     c.pathFor(EndpointJobs),
	})
}

// AddJob schedules a prediction job. job is usually a JobRequest but any JSON object matching the job schema is accepted.
func (c *Client) AddJob(ctx context.Context, job any) (json.RawMessage, error) {
	if isNil(job) {
		return nil, newValidationError("job data is required")
	}
	if err := validateBody(EndpointJobs, job); err != nil {
		return nil, err
	}

	return c.do(ctx, Request{
		Endpoint: EndpointJobs,
		Method:   http.MethodPost,
		Path:     c.pathFor(EndpointJobs),
		Body:     job,
	})
}

// RemoveJob deletes a scheduled job.
// Job ids contain the symbol (e.g predict_BTC/USDT_1h) so the id is escaped as a single path segment.
func (c *Client) RemoveJob(ctx context.Context, jobID string) (json.RawMessage, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, newValidationError("job id is required")
	}

	return c.do(ctx, Request{
		Endpoint: EndpointJobs,
		Method:   http.MethodDelete,
		Path:     c.pathFor(EndpointJobs, url.PathEscape(jobID)),
	})
}

// isNil reports whether v is nil or a nil pointer, map, slice or interface
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
