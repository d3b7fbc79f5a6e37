package middleware

import (
	"net/http"
	"time"

	pkghttp "github.com/BradenHooton/portfolio/pkg/http"
	"github.com/go-chi/httprate"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int
}

// DefaultAuthRateLimit returns the limit for sign-in and attempt logging (5 requests per minute)
func DefaultAuthRateLimit() RateLimitConfig {
	return RateLimitConfig{RequestsPerMinute: 5}
}

// RateLimitByIP limits requests per caller address, using the same header
// precedence as the login-attempt recorder.
func RateLimitByIP(config RateLimitConfig) func(next http.Handler) http.Handler {
	limit := config.RequestsPerMinute
	if limit <= 0 {
		limit = DefaultAuthRateLimit().RequestsPerMinute
	}
	return httprate.Limit(
		limit,
		time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return pkghttp.ClientIP(r.Header), nil
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			pkghttp.WriteTooManyRequests(w, "Too many requests. Please try again later.")
		}),
	)
}
