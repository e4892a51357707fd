package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// ErrorKind classifies why a call did not succeed
type ErrorKind int

const (
	// KindLocal - the request was never sent (invalid input, marshaling or request construction failed)
	KindLocal ErrorKind = iota

	// KindNoResponse - the request was sent but no reply was received (network error, timeout, cancelled)
	KindNoResponse

	// KindServer - the API replied with a non-2xx status
	KindServer
)

func (k ErrorKind) String() string {
	switch k {
	case KindLocal:
		return "local"
	case KindNoResponse:
		return "no_response"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// the largest error body that will be read when looking for a detail message
const maxErrorBodySize = 64 * 1024

// ClientError represents an error encountered when communicating with the trading bot API
type ClientError struct {
	Kind ErrorKind `json:"kind"`

	// set for KindServer
	StatusCode int    `json:"status_code,omitempty"`
	StatusText string `json:"status_text,omitempty"`
	Detail     string `json:"detail,omitempty"`

	// set for KindLocal (may be empty)
	Message string `json:"message,omitempty"`

	Err error `json:"-"`
}

func (e *ClientError) Error() string {
	switch e.Kind {
	case KindServer:
		msg := fmt.Sprintf("tradebot api status %d", e.StatusCode)
		if e.Detail != "" {
			msg += fmt.Sprintf(" - %s", e.Detail)
		}
		return msg
	case KindNoResponse:
		return fmt.Sprintf("network error: %v", e.Err)
	default:
		if e.Err != nil && e.Message != "" {
			return fmt.Sprintf("internal error: %v while %s", e.Err, e.Message)
		}
		if e.Err != nil {
			return fmt.Sprintf("internal error: %v", e.Err)
		}
		if e.Message != "" {
			return fmt.Sprintf("internal error: %s", e.Message)
		}
		return "internal error"
	}
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// UserError returns the user-friendly message
func (e *ClientError) UserError() string {
	return FormatError(e)
}

// NewNoResponseError creates a ClientError for network/connection issues
func NewNoResponseError(err error) *ClientError {
	return &ClientError{
		Kind: KindNoResponse,
		Err:  err,
	}
}

// NewLocalError creates a ClientError for requests that could not be built or sent.
// Supply the cause (may be nil) and an explanation of what was being done when the error occurred.
func NewLocalError(err error, while string) *ClientError {
	return &ClientError{
		Kind:    KindLocal,
		Message: while,
		Err:     err,
	}
}

// newValidationError creates a local ClientError for invalid caller input
func newValidationError(format string, args ...any) *ClientError {
	return &ClientError{
		Kind:    KindLocal,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewServerError creates a ClientError from a non-2xx HTTP response sent by the API.
// The body is read (but not closed) to extract the optional detail message.
func NewServerError(res *http.Response) *ClientError {
	ce := &ClientError{
		Kind:       KindServer,
		StatusCode: res.StatusCode,
		StatusText: statusText(res),
	}

	if res.Body == nil {
		return ce
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxErrorBodySize))
	if err != nil {
		ce.Err = fmt.Errorf("reading error response: %w", err)
		return ce
	}

	var serverErr struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &serverErr); err != nil {
		return ce
	}
	ce.Detail = detailText(serverErr.Detail)

	return ce
}

// statusText returns the reason phrase from the status line, falling back to the standard text for the code
func statusText(res *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(res.Status, strconv.Itoa(res.StatusCode)))
	if text == "" {
		text = http.StatusText(res.StatusCode)
	}
	return text
}

// detailText converts the detail field of an error response to a display string.
//
// The API returns either a plain string or, for request validation failures, a list of
// objects with a msg field. Anything else is shown as compact JSON.
func detailText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return string(raw)
	}
	return compact.String()
}

// FormatError returns the english user-facing message for err.
// It returns an empty string when err is nil.
func FormatError(err error) string {
	return defaultNormalizer.Format(err)
}

// IsKind reports whether err is a ClientError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Kind == kind
}
