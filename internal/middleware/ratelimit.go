package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// RateLimit allows each client IP limit requests per window with a burst of
// limit. Idle limiters expire after two windows.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limiters := cache.New(2*per, per)
	every := rate.Every(per / time.Duration(limit))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIPForRateLimit(r)
			var limiter *rate.Limiter
			if v, ok := limiters.Get(ip); ok {
				limiter = v.(*rate.Limiter)
			} else {
				limiter = rate.NewLimiter(every, limit)
				if err := limiters.Add(ip, limiter, cache.DefaultExpiration); err != nil {
					// Another request registered the IP first.
					if v, ok := limiters.Get(ip); ok {
						limiter = v.(*rate.Limiter)
					}
				}
			}
			limiters.SetDefault(ip, limiter)
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIPForRateLimit(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			ip := strings.TrimSpace(part)
			if ip == "" {
				continue
			}
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		if net.ParseIP(host) != nil {
			return host
		}
	} else if net.ParseIP(r.RemoteAddr) != nil {
		return r.RemoteAddr
	}

	return r.RemoteAddr
}
