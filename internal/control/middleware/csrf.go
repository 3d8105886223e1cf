// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package middleware

import (
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ManuGH/jobjump/internal/control/http/problem"
)

var forwardingHeaders = []string{
	"Forwarded",
	"X-Forwarded-For",
	"X-Forwarded-Host",
	"X-Forwarded-Proto",
	"X-Forwarded-Server",
}

type originPolicy struct {
	any     bool
	trusted map[string]bool
}

func newOriginPolicy(allowedOrigins []string) originPolicy {
	p := originPolicy{trusted: make(map[string]bool, len(allowedOrigins))}
	for _, raw := range allowedOrigins {
		raw = strings.TrimSpace(raw)
		switch {
		case raw == "":
		case raw == "*":
			p.any = true
		default:
			if o, ok := normalizeOrigin(raw); ok {
				p.trusted[o] = true
			}
		}
	}
	return p
}

// permits reports whether origin may submit state-changing requests. A
// configured origin always passes; otherwise only a strict same-origin match
// on a request without forwarding headers does.
func (p originPolicy) permits(origin string, r *http.Request) bool {
	if p.any || p.trusted[origin] {
		return true
	}
	for _, h := range forwardingHeaders {
		if r.Header.Get(h) != "" {
			return false
		}
	}
	return origin != "" && origin == directOrigin(r)
}

// CSRFProtection rejects unsafe requests (POST, PUT, PATCH, DELETE) whose
// Origin or Referer is missing or untrusted. Every sign-in, onboarding, post
// job, apply, save and hiring-status form goes through it.
func CSRFProtection(allowedOrigins []string) func(http.Handler) http.Handler {
	policy := newOriginPolicy(allowedOrigins)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			origin := requestOrigin(r)
			if origin == "" {
				writeCSRFProblem(w, r, "missing origin or referer header")
				return
			}
			if !policy.permits(origin, r) {
				writeCSRFProblem(w, r, "origin not trusted")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeCSRFProblem(w http.ResponseWriter, r *http.Request, detail string) {
	problem.Write(w, r, http.StatusForbidden, "auth/csrf", "Forbidden", "CSRF_FORBIDDEN", detail, nil)
}

// requestOrigin prefers Origin and falls back to the scheme and host of an
// absolute Referer.
func requestOrigin(r *http.Request) string {
	if o, ok := normalizeOrigin(r.Header.Get("Origin")); ok {
		return o
	}
	ref, err := url.Parse(r.Header.Get("Referer"))
	if err != nil || ref.Scheme == "" || ref.Host == "" {
		return ""
	}
	o, _ := normalizeOrigin(ref.Scheme + "://" + ref.Host)
	return o
}

// directOrigin is the origin of the connection itself, ignoring forwarding
// headers.
func directOrigin(r *http.Request) string {
	if r.Host == "" {
		return ""
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	o, _ := normalizeOrigin(scheme + "://" + r.Host)
	return o
}

func normalizeOrigin(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" || strings.ContainsAny(host, " \t\r\n/@\\") {
		return "", false
	}

	port := u.Port()
	if port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n < 1 || n > 65535 {
			return "", false
		}
	}
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		port = ""
	}

	switch {
	case port != "":
		return scheme + "://" + net.JoinHostPort(host, port), true
	case strings.Contains(host, ":"):
		return scheme + "://[" + host + "]", true
	default:
		return scheme + "://" + host, true
	}
}
