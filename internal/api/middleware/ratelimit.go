package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/formlab/formgen/internal/api/response"
	"github.com/formlab/formgen/internal/repository/redis"
)

// RateLimitMiddleware handles rate limiting
type RateLimitMiddleware struct {
	rateLimiter *redis.RateLimiter
}

// NewRateLimitMiddleware creates a new rate limit middleware
func NewRateLimitMiddleware(rateLimiter *redis.RateLimiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{rateLimiter: rateLimiter}
}

// Limit applies rate limiting keyed by the acting user. Runs after
// RequireUser.
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc := FromContext(r.Context())
		if rc.User == nil {
			response.Deny(w, r, http.StatusUnauthorized, "you need to sign in")
			return
		}

		allowed, remaining, resetTime, err := m.rateLimiter.Allow(r.Context(), rc.User.ID.Hex())
		if err != nil {
			// If the rate limiter fails, allow the request rather than
			// taking the service down with it.
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", resetTime.Format(time.RFC3339))

		if !allowed {
			response.Error(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}
