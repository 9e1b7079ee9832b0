package middleware

import (
	"log"
	"net"
	"net/http"
	"strconv"

	"github.com/dom/shopcook-api/internal/api/response"
	"github.com/dom/shopcook-api/internal/ratelimit"
)

// RateLimit throttles a route per client IP under the given scope. A nil
// limiter disables throttling. Limiter failures let the request through.
func RateLimit(limiter ratelimit.Limiter, scope string, rule ratelimit.Rule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := limiter.Allow(r.Context(), scope+":"+clientIP(r), rule)
			if err != nil {
				log.Printf("ERROR [middleware.RateLimit] limiter failed for %s: %v", scope, err)
			}
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(rule.Window.Seconds())))
				response.Error(w, http.StatusTooManyRequests, response.CodeTooManyRequests, "Too many requests, please slow down", nil)
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
