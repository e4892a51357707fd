// Package proxy forwards browser calls under /api to the trading bot API so the dashboard
// can be served from a single origin during development.
package proxy

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/tradebot/dashboard/internal/apperrors"
	"github.com/tradebot/dashboard/internal/ui/responses"
)

// NewAPIProxy returns a handler that forwards requests to target without changing the path or query.
// The outbound Host header is set to the target host and the X-Forwarded headers are added.
//
// When the API cannot be reached the proxy replies 502 with an upstream_unreachable error body.
// The message is in the detail field, where the API puts its own error messages.
func NewAPIProxy(target string, logger *slog.Logger) (http.Handler, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy target %q: %w", target, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("proxy target %q must use http or https", target)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("proxy target %q has no host", target)
	}

	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(u)
			pr.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error("api proxy request failed",
				slog.String("component", "api-proxy"),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("target", u.Host),
				slog.String("error", err.Error()),
			)

			responses.RespondWithError(w, r, http.StatusBadGateway, apperrors.ErrCodeUpstreamUnreachable,
				fmt.Sprintf("trading bot API unreachable at %s", u.Host))
		},
	}, nil
}
