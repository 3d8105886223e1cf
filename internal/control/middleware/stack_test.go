// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestStack() http.Handler {
	r := NewRouter(StackConfig{
		EnableCORS:            true,
		EnableSecurityHeaders: true,
		RateLimitPerMinute:    100,
		CompressionLevel:      5,
	})
	r.Post("/jobs/{id}/save", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })
	return r
}

func TestStack_EnforcesCSRF(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/jobs/1/save", nil)
	req.Host = "example.com"
	rec := httptest.NewRecorder()
	newTestStack().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestStack_AllowsSameOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/jobs/1/save", nil)
	req.Host = "example.com"
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("X-Request-ID", "abc")
	rec := httptest.NewRecorder()
	newTestStack().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc", rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestStack_RecoversPanics(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("X-Request-ID", `<script>`)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	newTestStack().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Something went wrong")
	assert.NotContains(t, rec.Body.String(), "<script>")

	req = httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec = httptest.NewRecorder()
	newTestStack().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}
