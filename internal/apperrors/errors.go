// Package apperrors defines the error codes in the JSON error bodies of the ui server.
package apperrors

type ErrorCode string

const (
	ErrCodeMethodNotAllowed    ErrorCode = "method_not_allowed"
	ErrCodeRateLimitExceeded   ErrorCode = "rate_limit_exceeded"
	ErrCodeRequestTooLarge     ErrorCode = "request_too_large"
	ErrCodeResourceNotFound    ErrorCode = "resource_not_found"
	ErrCodeUpstreamUnreachable ErrorCode = "upstream_unreachable"
)
