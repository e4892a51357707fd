package client

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Middleware is a pair of optional hooks run by the Client around every request.
//
// OnRequest hooks run in registration order before the request is sent and return the (possibly modified) request.
// OnResult hooks run in registration order once the call resolves and return the (possibly modified) result.
// Hooks must not retain or mutate the maps of the request they are given; copy them first.
type Middleware struct {
	Name      string
	OnRequest func(Request) Request
	OnResult  func(Request, Result) Result
}

const RequestIDHeader = "X-Request-ID"

// RequestID adds a random X-Request-ID header unless the request already has one
func RequestID() Middleware {
	return Middleware{
		Name: "request_id",
		OnRequest: func(req Request) Request {
			if req.Header.Get(RequestIDHeader) != "" {
				return req
			}
			req.Header = req.Header.Clone()
			req.Header.Set(RequestIDHeader, uuid.NewString())
			return req
		},
	}
}

// WithHeader sets a header on every request
func WithHeader(key, value string) Middleware {
	return Middleware{
		Name: "header",
		OnRequest: func(req Request) Request {
			req.Header = req.Header.Clone()
			req.Header.Set(key, value)
			return req
		},
	}
}

// Logging logs the outcome of each call: debug for success, warn for server errors and error otherwise
func Logging(logger *slog.Logger) Middleware {
	return Middleware{
		Name: "logging",
		OnResult: func(req Request, res Result) Result {
			attrs := []slog.Attr{
				slog.String("component", "api-client"),
				slog.String("endpoint", string(req.Endpoint)),
				slog.String("method", req.Method),
				slog.String("path", req.Path),
				slog.String("request_id", req.Header.Get(RequestIDHeader)),
				slog.Int("status", res.StatusCode),
				slog.Duration("duration", res.Elapsed),
			}

			switch {
			case res.Err == nil:
				logger.LogAttrs(context.Background(), slog.LevelDebug, "api call completed", attrs...)
			case IsKind(res.Err, KindServer):
				attrs = append(attrs, slog.String("error", res.Err.Error()))
				logger.LogAttrs(context.Background(), slog.LevelWarn, "api call failed", attrs...)
			default:
				attrs = append(attrs, slog.String("error", res.Err.Error()))
				logger.LogAttrs(context.Background(), slog.LevelError, "api call failed", attrs...)
			}
			return res
		},
	}
}
