package middleware

import (
	"net"
	"net/http"
	"strconv"

	"github.com/openfare/openfare/internal/handlers/render"
	"github.com/openfare/openfare/internal/service/ratelimit"
)

// RateLimit throttles requests per client IP. Over the limit the client
// gets 429 with a Retry-After header saying when the window resets.
func RateLimit(limiter ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)

			if !limiter.Allow(key) {
				retryAfter := int(limiter.RetryAfter(key).Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}

				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				render.Error(w, "Too many requests, please try again later", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
