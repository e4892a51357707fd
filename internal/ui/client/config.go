package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// GetConfig returns the configuration of every section
func (c *Client) GetConfig(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, Request{
		Endpoint: EndpointConfig,
		Method:   http.MethodGet,
		Path:     c.pathFor(EndpointConfig),
	})
}

// GetConfigSection returns the configuration of a single section (model, trader or global)
func (c *Client) GetConfigSection(ctx context.Context, section string) (json.RawMessage, error) {
	if !ValidConfigSections[section] {
		return nil, newValidationError("invalid config section %q (expects model, trader or global)", section)
	}

	return c.do(ctx, Request{
		Endpoint: EndpointConfig,
		Method:   http.MethodGet,
		Path:     c.pathFor(EndpointConfig),
		Query:    url.Values{"section": []string{section}},
	})
}

// SaveConfig updates the parameters of a configuration section
func (c *Client) SaveConfig(ctx context.Context, section string, config any) (json.RawMessage, error) {
	if strings.TrimSpace(section) == "" {
		return nil, newValidationError("config section is required")
	}

	body := ConfigUpdate{
		Section: section,
		Config:  config,
	}
	if err := validateBody(EndpointConfig, body); err != nil {
		return nil, err
	}

	return c.do(ctx, Request{
		Endpoint: EndpointConfig,
		Method:   http.MethodPost,
		Path:     c.pathFor(EndpointConfig),
		Body:     body,
	})
}
