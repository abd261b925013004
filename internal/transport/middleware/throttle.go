package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/hrm/internal"
	"github.com/frahmantamala/hrm/internal/observability"
	"github.com/frahmantamala/hrm/internal/transport"
	"github.com/frahmantamala/hrm/pkg/logger"
)

type RateLimiter interface {
	Allow(ctx context.Context, scope, key string) (bool, time.Duration, error)
}

// Throttle limits requests per client IP within scope. A nil limiter turns
// throttling off. Limiter failures let the request through.
func Throttle(limiter RateLimiter, scope string, base *transport.BaseHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, retryAfter, err := limiter.Allow(r.Context(), scope, clientIP(r))
			if err != nil {
				logger.From(r.Context()).Error("rate limiter unavailable", "scope", scope, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				observability.ObserveThrottled(scope)
				seconds := int(retryAfter.Round(time.Second).Seconds())
				if seconds < 1 {
					seconds = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				base.HandleServiceError(w, r, internal.NewTooManyRequestsError("Request was throttled. Expected available in "+strconv.Itoa(seconds)+" seconds."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP relies on chi's RealIP having rewritten RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
