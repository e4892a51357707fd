package logger

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RequestLogging writes one "request completed" entry per http request.
//
// Handlers log intermediate events with ContextRequestLogger and add attributes to the
// completion entry with ContextWithLogAttrs. Health checks are not logged and static
// assets are only logged at debug level. Requests under one of proxyPrefixes are logged as
// component api-proxy.
func RequestLogging(logger *slog.Logger, proxyPrefixes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/health/") {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			requestID := middleware.GetReqID(r.Context())
			component := requestComponent(r.URL.Path, proxyPrefixes)

			ctx := ContextWithRequestLogger(r.Context(), logger.With(
				slog.String("request_id", requestID),
				slog.String("component", component),
			))
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(ctx))

			attrs := []slog.Attr{
				slog.String("request_id", requestID),
				slog.String("component", component),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			}
			if rctx := chi.RouteContext(ctx); rctx != nil && rctx.RoutePattern() != "" {
				attrs = append(attrs, slog.String("route", rctx.RoutePattern()))
			}
			attrs = append(attrs,
				slog.Int("status", ww.Status()),
				slog.String("remote_addr", r.RemoteAddr),
			)
			attrs = append(attrs, ContextLogAttrs(ctx)...)
			attrs = append(attrs,
				slog.Duration("duration", time.Since(start)),
				slog.Int("bytes", ww.BytesWritten()),
			)

			logger.LogAttrs(r.Context(), completionLevel(component, ww.Status()), "request completed", attrs...)
		})
	}
}

func completionLevel(component string, status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	case component == "static":
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// requestComponent names the part of the ui server that handles path
func requestComponent(path string, proxyPrefixes []string) string {
	switch {
	case strings.HasPrefix(path, "/ui-api/"):
		return "ui-api"
	case strings.HasPrefix(path, "/static/"):
		return "static"
	case path == "/metrics" || path == "/version":
		return "ops"
	}

	for _, prefix := range proxyPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return "api-proxy"
		}
	}
	return "ui"
}
