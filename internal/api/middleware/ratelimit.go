package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/phrazzld/task-api/internal/api/shared"
	"github.com/phrazzld/task-api/internal/platform/logger"
	"github.com/phrazzld/task-api/internal/ratelimit"
	"github.com/phrazzld/task-api/internal/redact"
)

// RateLimitMessage is the body sent with every 429 response.
const RateLimitMessage = "Too many requests, please try again later"

// RateLimit limits requests per client IP using limiter. Every response
// carries RateLimit-Limit, RateLimit-Remaining and RateLimit-Reset headers;
// rejected requests also get Retry-After. When the counter backend fails the
// request is let through.
func RateLimit(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)
			res, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.FromContext(r.Context()).Error("rate limiter unavailable, allowing request",
					slog.String("limiter", limiter.Name()),
					slog.String("error", redact.Error(err)))
				next.ServeHTTP(w, r)
				return
			}

			now := limiter.Now()
			resetSeconds := int64(res.RetryAfter(now) / time.Second)

			h := w.Header()
			h.Set("RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("RateLimit-Remaining", strconv.Itoa(res.Remaining))
			h.Set("RateLimit-Reset", strconv.FormatInt(resetSeconds, 10))

			if !res.Allowed {
				h.Set("Retry-After", strconv.FormatInt(resetSeconds, 10))
				logger.FromContext(r.Context()).Warn("rate limit exceeded",
					slog.String("limiter", limiter.Name()),
					slog.String("client", key))
				shared.RespondWithError(w, r, http.StatusTooManyRequests, RateLimitMessage)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the request's client address without its port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
