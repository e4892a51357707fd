package server

import (
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/jub0bs/cors"
	"golang.org/x/time/rate"

	"github.com/tradebot/dashboard/internal/apperrors"
	"github.com/tradebot/dashboard/internal/logger"
	"github.com/tradebot/dashboard/internal/ui/responses"
)

// MaxRequestSizeHeader tells clients the largest request body the ui server accepts
const MaxRequestSizeHeader = "Tradebot-Max-Request-Size"

// clients that have not been seen for this long lose their rate limit state
const limiterIdleTimeout = 5 * time.Minute

// CORS adapts a prebuilt jub0bs/cors middleware to the chi middleware signature.
func CORS(middleware *cors.Middleware) func(http.Handler) http.Handler {
	return middleware.Wrap
}

// SecurityHeaders sets the browser hardening headers on every response.
// The dashboard loads its scripts, styles and fragments from its own origin only.
func SecurityHeaders(environment string) func(http.Handler) http.Handler {
	headers := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Content-Security-Policy": "default-src 'self'; frame-ancestors 'none';",
		"Referrer-Policy":         "strict-origin-when-cross-origin",
	}
	if environment == "prod" || environment == "staging" {
		headers["Strict-Transport-Security"] = "max-age=31536000; includeSubDomains"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for k, v := range headers {
				w.Header().Set(k, v)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestSizeLimit rejects form posts and proxied API requests whose declared size exceeds maxBytes.
// Bodies sent without a Content-Length are truncated at maxBytes and fail when parsed.
func RequestSizeLimit(maxBytes int64) func(http.Handler) http.Handler {
	limit := strconv.FormatInt(maxBytes, 10)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(MaxRequestSizeHeader, limit)

			if r.ContentLength <= maxBytes {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
				next.ServeHTTP(w, r)
				return
			}

			attrs := []slog.Attr{
				slog.Int64("content_length", r.ContentLength),
				slog.Int64("max_bytes", maxBytes),
			}
			logger.ContextRequestLogger(r.Context()).LogAttrs(r.Context(), slog.LevelWarn, "request body too large",
				append(attrs, slog.String("middleware", "RequestSizeLimit"))...)
			logger.ContextWithLogAttrs(r.Context(), attrs...)

			responses.RespondWithError(w, r, http.StatusRequestEntityTooLarge, apperrors.ErrCodeRequestTooLarge,
				fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytes))
		})
	}
}

// clientLimiters holds one token bucket per client address.
type clientLimiters struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	limiters  map[string]*clientLimiter
	lastSweep time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiters(requestsPerSecond, burst int32) *clientLimiters {
	return &clientLimiters{
		limit:     rate.Limit(requestsPerSecond),
		burst:     int(burst),
		limiters:  make(map[string]*clientLimiter),
		lastSweep: time.Now(),
	}
}

// reserve takes a token for key. When no token is available it returns false and how long the client should wait.
func (c *clientLimiters) reserve(key string, now time.Time) (bool, time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if now.Sub(c.lastSweep) > limiterIdleTimeout {
		for k, l := range c.limiters {
			if now.Sub(l.lastSeen) > limiterIdleTimeout {
				delete(c.limiters, k)
			}
		}
		c.lastSweep = now
	}

	l, ok := c.limiters[key]
	if !ok {
		l = &clientLimiter{limiter: rate.NewLimiter(c.limit, c.burst)}
		c.limiters[key] = l
	}
	l.lastSeen = now

	if l.limiter.AllowN(now, 1) {
		return true, 0
	}
	wait := time.Duration(float64(time.Second) / float64(c.limit))
	return false, wait
}

// RateLimit limits each client address (as set by chi's RealIP middleware) to requestsPerSecond with the given burst.
// Rate limiting is disabled when requestsPerSecond <= 0.
func RateLimit(requestsPerSecond int32, burst int32) func(http.Handler) http.Handler {
	if requestsPerSecond <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	if burst < 1 {
		burst = 1
	}

	limiters := newClientLimiters(requestsPerSecond, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := clientAddr(r)

			ok, wait := limiters.reserve(client, time.Now())
			if ok {
				next.ServeHTTP(w, r)
				return
			}

			logger.ContextRequestLogger(r.Context()).Warn("rate limit exceeded",
				slog.String("middleware", "RateLimit"),
				slog.String("client", client),
			)
			logger.ContextWithLogAttrs(r.Context(), slog.String("client", client))

			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			responses.RespondWithError(w, r, http.StatusTooManyRequests, apperrors.ErrCodeRateLimitExceeded,
				"Too many requests, please slow down")
		})
	}
}

// clientAddr returns the host part of the request's remote address
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
