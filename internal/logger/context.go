package logger

import (
	"context"
	"log/slog"
	"sync"
)

type contextKey struct {
	name string
}

var requestLogKey = contextKey{"request_log"}

// requestLog is the per-request logging state created by RequestLogging.
type requestLog struct {
	logger *slog.Logger

	mu    sync.Mutex
	attrs []slog.Attr
}

func newRequestLog(logger *slog.Logger) *requestLog {
	return &requestLog{logger: logger}
}

func contextRequestLog(ctx context.Context) *requestLog {
	rl, _ := ctx.Value(requestLogKey).(*requestLog)
	return rl
}

// ContextWithLogAttrs adds attributes to the completion log written by RequestLogging,
// for example the endpoint and status code of a failed trading bot API call.
// It may be called from several goroutines serving the same request.
func ContextWithLogAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	rl := contextRequestLog(ctx)
	if rl == nil {
		slog.Warn("ContextWithLogAttrs called outside RequestLogging - attributes dropped")
		return ctx
	}

	rl.mu.Lock()
	rl.attrs = append(rl.attrs, attrs...)
	rl.mu.Unlock()
	return ctx
}

// ContextLogAttrs returns a copy of the attributes added so far
func ContextLogAttrs(ctx context.Context) []slog.Attr {
	rl := contextRequestLog(ctx)
	if rl == nil {
		return nil
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	return append([]slog.Attr(nil), rl.attrs...)
}

// ContextRequestLogger returns the request-scoped logger (its entries carry the request_id),
// or slog.Default() outside an http request.
func ContextRequestLogger(ctx context.Context) *slog.Logger {
	if rl := contextRequestLog(ctx); rl != nil {
		return rl.logger
	}
	return slog.Default()
}

// ContextWithRequestLogger returns a context carrying logger and an empty attribute list.
// RequestLogging calls it for each request; tests can use it directly.
func ContextWithRequestLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, requestLogKey, newRequestLog(logger))
}
