// SPDX-License-Identifier: MIT

package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/ManuGH/jobjump/internal/control/http/problem"
)

// RateLimitConfig configures the per-client sliding window limiter.
type RateLimitConfig struct {
	// RequestLimit is the number of requests allowed per WindowSize.
	RequestLimit int
	WindowSize   time.Duration
	// Exempt peers are never limited (health checkers, the reverse proxy).
	Exempt []*net.IPNet
	// KeyFunc defaults to the peer IP.
	KeyFunc httprate.KeyFunc
}

// RateLimit throttles requests with httprate's sliding window counter.
// Over-limit requests get a 429 problem with Retry-After.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.RequestLimit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = time.Minute
	}
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = httprate.KeyByIP
	}
	retryAfter := strconv.Itoa(int(cfg.WindowSize.Seconds()))

	limiter := httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowSize,
		httprate.WithKeyFuncs(keyFunc),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", retryAfter)
			problem.Write(w, r, http.StatusTooManyRequests, "rate_limit/exceeded", "Too Many Requests", "RATE_LIMITED",
				"too many requests, please try again later", nil)
		}),
	)

	return func(next http.Handler) http.Handler {
		limited := limiter(next)
		if len(cfg.Exempt) == 0 {
			return limited
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsIPAllowed(remoteIP(r), cfg.Exempt) {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}

// FormRateLimit limits state-changing form posts (apply, post job, add
// company) per client. Safe methods pass through untouched.
func FormRateLimit(perMinute int, exempt []*net.IPNet) func(http.Handler) http.Handler {
	limit := RateLimit(RateLimitConfig{RequestLimit: perMinute, WindowSize: time.Minute, Exempt: exempt})
	return func(next http.Handler) http.Handler {
		limited := limit(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
			default:
				limited.ServeHTTP(w, r)
			}
		})
	}
}
