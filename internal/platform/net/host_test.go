// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package net

import (
	"errors"
	"testing"
)

func TestNormalizeHost(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "API.Example.com.", want: "api.example.com"},
		{in: "bücher.example", want: "xn--bcher-kva.example"},
		{in: "[::1]", want: "::1"},
		{in: "10.0.0.1", want: "10.0.0.1"},
		{in: "", wantErr: true},
		{in: "https://example.com", wantErr: true},
		{in: "example.com:443", wantErr: true},
		{in: "user@example.com", wantErr: true},
	}
	for _, tt := range tests {
		got, err := NormalizeHost(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("NormalizeHost(%q) expected error, got %q", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizeHost(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeHost(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeBaseURL(t *testing.T) {
	got, err := NormalizeBaseURL("HTTPS://Data.Example.COM:8443/api/?x=1#frag")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "https://data.example.com:8443/api"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	for _, bad := range []string{"ftp://example.com", "https://user:pw@example.com", "https://"} {
		if _, err := NormalizeBaseURL(bad); !errors.Is(err, ErrInvalidBaseURL) {
			t.Errorf("NormalizeBaseURL(%q) error = %v, want ErrInvalidBaseURL", bad, err)
		}
	}
}
