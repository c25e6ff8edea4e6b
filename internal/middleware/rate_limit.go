package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/zephy/zephy-api/internal/pkg/logger"
	"github.com/zephy/zephy-api/internal/pkg/metrics"
	"github.com/zephy/zephy-api/internal/pkg/ratelimit"
	"github.com/zephy/zephy-api/internal/pkg/response"
)

// AnonymousKey is shared by every caller with neither a user nor an address.
const AnonymousKey = "anonymous"

const rateLimitMessage = "Too many chat requests. Please wait a few minutes before trying again."

// RateLimitKey picks the bucket identity: user id, then client address,
// then the shared anonymous bucket. Must run after OptionalAuth.
func RateLimitKey(r *http.Request) string {
	if user := GetUser(r.Context()); user != nil {
		return "user:" + user.ID.String()
	}
	if ip := clientIP(r); ip != "" {
		return "ip:" + ip
	}
	return AnonymousKey
}

// RateLimit throttles requests per RateLimitKey. Store failures let the
// request through.
func RateLimit(limiter *ratelimit.Limiter, now func() time.Time) func(http.Handler) http.Handler {
	if now == nil {
		now = time.Now
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := RateLimitKey(r)
			if key == AnonymousKey {
				logger.LogDebug(r.Context(), "rate limit falling back to shared anonymous bucket")
			}

			res, err := limiter.Allow(r.Context(), key, now())
			if err != nil {
				metrics.RateLimitDecisions.WithLabelValues("error").Inc()
				logger.LogWarn(r.Context(), "rate limit store unavailable, allowing request", "key", key, "error", err.Error())
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetUnix(), 10))

			if !res.Allowed {
				metrics.RateLimitDecisions.WithLabelValues("limited").Inc()
				response.TooManyRequests(w, rateLimitMessage, res.RetryAfter)
				return
			}

			metrics.RateLimitDecisions.WithLabelValues("allowed").Inc()
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the caller address without port. chi's RealIP has
// already folded proxy headers into RemoteAddr.
func clientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if addr == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
