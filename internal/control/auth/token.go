// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package auth

import (
	"net/http"
	"strings"
	"time"
)

// DefaultCookieName holds the server-side session id.
const DefaultCookieName = "jobjump_session"

// ExtractToken returns the session id of a request. A bearer token wins over
// the cookie so scripts can call the JSON API without cookies. Query
// parameters are never consulted.
func ExtractToken(r *http.Request, cookieName string) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	return ExtractSessionToken(r, cookieName)
}

// ExtractSessionToken returns only the session cookie value.
func ExtractSessionToken(r *http.Request, cookieName string) string {
	if r == nil {
		return ""
	}
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

// CookieOptions shapes the cookies written by the sign-in flow.
type CookieOptions struct {
	Name   string
	Secure bool
}

func (o CookieOptions) name() string {
	if o.Name == "" {
		return DefaultCookieName
	}
	return o.Name
}

// SetSessionCookie writes the session cookie.
func SetSessionCookie(w http.ResponseWriter, opts CookieOptions, id string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     opts.name(),
		Value:    id,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     opts.name(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
