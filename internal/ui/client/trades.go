package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// GetTrades lists trades filtered by status (open, closed or all).
// An empty status is sent as "all".
func (c *Client) GetTrades(ctx context.Context, status string) (json.RawMessage, error) {
	if status == "" {
		status = DefaultTradeStatus
	}

	return c.do(ctx, Request{
		Endpoint: EndpointTrades,
		Method:   http.MethodGet,
		Path:     c.pathFor(EndpointTrades),
		Query:    url.Values{"status": []string{status}},
	})
}

// ExecuteTrade places a manual buy or sell for symbol
func (c *Client) ExecuteTrade(ctx context.Context, symbol string, action TradeAction) (json.RawMessage, error) {
	if strings.TrimSpace(symbol) == "" {
		return nil, newValidationError("symbol is required")
	}
	if !ValidTradeActions[action] {
		return nil, newValidationError("invalid trade action %q (expects buy or sell)", action)
	}

	body := TradeRequest{
		Symbol: symbol,
		Action: action,
	}
	if err := validateBody(EndpointTrade, body); err != nil {
		return nil, err
	}

	return c.do(ctx, Request{
		Endpoint: EndpointTrade,
		Method:   http.MethodPost,
		Path:     c.pathFor(EndpointTrade),
		Body:     body,
	})
}
