package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurityHeaders_HSTSOnlyForTrustedProxies(t *testing.T) {
	trusted, err := ParseCIDRs([]string{"10.0.0.1/32"})
	require.NoError(t, err)
	handler := SecurityHeaders("", trusted)(okHandler)

	tests := []struct {
		name     string
		remote   string
		proto    string
		tls      bool
		wantHSTS bool
	}{
		{name: "untrusted forwarded https", remote: "192.168.1.50:1234", proto: "https"},
		{name: "trusted forwarded https", remote: "10.0.0.1:5678", proto: "https", wantHSTS: true},
		{name: "trusted forwarded http", remote: "10.0.0.1:5678", proto: "http"},
		{name: "direct tls", remote: "192.168.1.50:1234", tls: true, wantHSTS: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "http://example.com/jobs", nil)
			req.RemoteAddr = tt.remote
			if tt.proto != "" {
				req.Header.Set("X-Forwarded-Proto", tt.proto)
			}
			if tt.tls {
				req.TLS = &tls.ConnectionState{}
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantHSTS, rec.Header().Get("Strict-Transport-Security") != "")
			assert.Equal(t, DefaultCSP, rec.Header().Get("Content-Security-Policy"))
			assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
			assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
		})
	}
}
