package client

import (
	"context"
	"encoding/json"
	"net/http"
)

// GetStatus returns the bot status (running state, trading enabled, scheduler state, active jobs, model type)
func (c *Client) GetStatus(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, Request{
		Endpoint: EndpointStatus,
		Method:   http.MethodGet,
		Path:     c.pathFor(EndpointStatus),
	})
}

// GetStats returns the trading statistics collected by the trader
func (c *Client) GetStats(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, Request{
		Endpoint: EndpointStats,
		Method:   http.MethodGet,
		Path:     c.pathFor(EndpointStats),
	})
}
