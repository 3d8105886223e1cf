// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"net/url"
	"strings"
)

var sensitiveMarkers = []string{"token", "password", "secret", "_key", "anonkey"}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, m := range sensitiveMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func maskValue(key, value string) string {
	if value == "" || !isSensitiveKey(key) {
		return value
	}
	return "***"
}

// maskURL removes userinfo and query strings before a URL is logged.
func maskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	u.User = nil
	u.RawQuery = ""
	return u.String()
}

// Redacted returns a copy of c with secrets masked, for printing.
func (c AppConfig) Redacted() AppConfig {
	out := c
	out.DataAPI.AnonKey = maskValue("anonKey", out.DataAPI.AnonKey)
	out.DataAPI.BaseURL = maskURL(out.DataAPI.BaseURL)
	out.Identity.ClientSecret = maskValue("clientSecret", out.Identity.ClientSecret)
	out.Identity.SecretKey = maskValue("secretKey", out.Identity.SecretKey)
	out.Sessions.RedisPassword = maskValue("redisPassword", out.Sessions.RedisPassword)
	return out
}
