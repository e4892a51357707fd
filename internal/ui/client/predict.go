package client

import (
	"context"
	"encoding/json"
	"net/http"
)

// MakePrediction asks the model for a prediction. req is usually a PredictionRequest.
func (c *Client) MakePrediction(ctx context.Context, req any) (json.RawMessage, error) {
	if isNil(req) {
		return nil, newValidationError("prediction data is required")
	}
	if err := validateBody(EndpointPredict, req); err != nil {
		return nil, err
	}

	return c.do(ctx, Request{
		Endpoint: EndpointPredict,
		Method:   http.MethodPost,
		Path:     c.pathFor(EndpointPredict),
		Body:     req,
	})
}

// TrainModel retrains the prediction model. A zero DataPoints is sent as DefaultDataPoints.
func (c *Client) TrainModel(ctx context.Context, req TrainModelRequest) (json.RawMessage, error) {
	if req.DataPoints == 0 {
		req.DataPoints = DefaultDataPoints
	}
	if err := validateBody(EndpointTrain, req); err != nil {
		return nil, err
	}

	return c.do(ctx, Request{
		Endpoint: EndpointTrain,
		Method:   http.MethodPost,
		Path:     c.pathFor(EndpointTrain),
		Body:     req,
	})
}
