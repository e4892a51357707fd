// Package responses writes the JSON bodies returned by the ui server's non-html endpoints.
package responses

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/tradebot/dashboard/internal/apperrors"
	"github.com/tradebot/dashboard/internal/logger"
)

// ErrorResponse is the body of error responses sent by the ui server.
// Detail carries the message under the field name the trading bot API uses for its own errors,
// so browser code and the error normalizer read both the same way.
type ErrorResponse struct {
	ErrorCode apperrors.ErrorCode `json:"error_code" example:"rate_limit_exceeded"`
	Message   string              `json:"message" example:"Too many requests, please slow down"`
	Detail    string              `json:"detail" example:"Too many requests, please slow down"`
	RequestID string              `json:"request_id,omitempty"`
}

var internalErrorBody = []byte(`{"error_code":"internal_error","message":"Internal Server Error","detail":"Internal Server Error"}`)

// RespondWithError logs the failure on the request logger and writes an ErrorResponse
func RespondWithError(w http.ResponseWriter, r *http.Request, statusCode int, errorCode apperrors.ErrorCode, message string) {
	reqLogger := logger.ContextRequestLogger(r.Context())

	level := slog.LevelInfo
	if statusCode >= 500 {
		level = slog.LevelError
	} else if statusCode >= 400 {
		level = slog.LevelWarn
	}
	reqLogger.LogAttrs(r.Context(), level, "request failed",
		slog.Int("status", statusCode),
		slog.String("error_code", string(errorCode)),
		slog.String("error_message", message),
	)

	body := ErrorResponse{
		ErrorCode: errorCode,
		Message:   message,
		Detail:    message,
		RequestID: middleware.GetReqID(r.Context()),
	}
	if err := writeJSON(w, statusCode, body); err != nil {
		reqLogger.Error("failed to write error response", slog.String("error", err.Error()))
	}
}

// RespondWithJSON writes payload as the JSON response body
func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	if err := writeJSON(w, status, payload); err != nil {
		slog.Error("failed to write response", slog.String("error", err.Error()))
	}
}

// writeJSON falls back to a 500 internal_error body when v cannot be marshaled
func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	data, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write(internalErrorBody)
		return err
	}

	w.WriteHeader(status)
	_, err = w.Write(data)
	return err
}
