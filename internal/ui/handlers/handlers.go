package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/tradebot/dashboard/internal/logger"
	"github.com/tradebot/dashboard/internal/ui/client"
	"github.com/tradebot/dashboard/internal/ui/templates"
)

// HandlerService holds the dependencies shared by the ui handlers
type HandlerService struct {
	ApiClient   *client.Client
	Normalizer  *client.Normalizer
	Environment string
}

// renderAPIError logs the technical error and renders the normalized message as an error alert
func (h *HandlerService) renderAPIError(w http.ResponseWriter, r *http.Request, action string, err error) {
	h.logAPIError(r, action, err)
	h.renderErrorAlert(w, r, h.Normalizer.Format(err))
}

// logAPIError writes the technical details of a failed API call to the request logger and the request completion log
func (h *HandlerService) logAPIError(r *http.Request, action string, err error) {
	reqLogger := logger.ContextRequestLogger(r.Context())

	attrs := []slog.Attr{
		slog.String("action", action),
		slog.String("error", err.Error()),
	}
	var ce *client.ClientError
	if errors.As(err, &ce) {
		attrs = append(attrs, slog.String("error_kind", ce.Kind.String()))
		if ce.StatusCode != 0 {
			attrs = append(attrs, slog.Int("api_status", ce.StatusCode))
		}
	}

	level := slog.LevelError
	if client.IsKind(err, client.KindLocal) {
		level = slog.LevelWarn
	}
	reqLogger.LogAttrs(r.Context(), level, "Trading bot API call failed", attrs...)
	logger.ContextWithLogAttrs(r.Context(), attrs...)
}

func (h *HandlerService) renderErrorAlert(w http.ResponseWriter, r *http.Request, msg string) {
	h.renderComponent(w, r, "error alert", templates.ErrorAlert(msg))
}

func (h *HandlerService) renderComponent(w http.ResponseWriter, r *http.Request, name string, component templates.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		reqLogger := logger.ContextRequestLogger(r.Context())
		reqLogger.Error("Failed to render "+name, slog.String("error", err.Error()))
	}
}
