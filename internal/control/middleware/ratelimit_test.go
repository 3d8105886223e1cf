// SPDX-License-Identifier: MIT

package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hit(h http.Handler, method, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/apply/1", nil)
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(RateLimitConfig{RequestLimit: 2, WindowSize: time.Minute})(okHandler)

	assert.Equal(t, http.StatusOK, hit(h, http.MethodGet, "10.1.1.1:1000").Code)
	assert.Equal(t, http.StatusOK, hit(h, http.MethodGet, "10.1.1.1:1001").Code)

	rec := hit(h, http.MethodGet, "10.1.1.1:1002")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")

	assert.Equal(t, http.StatusOK, hit(h, http.MethodGet, "10.1.1.2:1000").Code, "other clients keep their own budget")
}

func TestRateLimit_Exempt(t *testing.T) {
	_, local, err := net.ParseCIDR("127.0.0.0/8")
	require.NoError(t, err)
	h := RateLimit(RateLimitConfig{RequestLimit: 1, WindowSize: time.Minute, Exempt: []*net.IPNet{local}})(okHandler)

	for range 5 {
		assert.Equal(t, http.StatusOK, hit(h, http.MethodGet, "127.0.0.1:5000").Code)
	}
}

func TestRateLimit_DisabledWhenZero(t *testing.T) {
	h := RateLimit(RateLimitConfig{})(okHandler)
	for range 5 {
		assert.Equal(t, http.StatusOK, hit(h, http.MethodGet, "10.1.1.1:1000").Code)
	}
}

func TestFormRateLimit_OnlyUnsafeMethods(t *testing.T) {
	h := FormRateLimit(1, nil)(okHandler)

	for range 3 {
		assert.Equal(t, http.StatusOK, hit(h, http.MethodGet, "10.9.9.9:1").Code)
	}
	assert.Equal(t, http.StatusOK, hit(h, http.MethodPost, "10.9.9.9:1").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(h, http.MethodPost, "10.9.9.9:1").Code)
}
