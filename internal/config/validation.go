// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"net/netip"
	"strings"

	platformnet "github.com/ManuGH/jobjump/internal/platform/net"
	"github.com/ManuGH/jobjump/internal/validate"
	"github.com/rs/zerolog"
)

var httpSchemes = []string{"http", "https"}

// Validate checks a resolved configuration. All problems are reported at once.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.Directory("dataDir", cfg.DataDir, false)
	v.URL("publicUrl", cfg.PublicURL, httpSchemes)
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		v.AddError("logLevel", err.Error(), cfg.LogLevel)
	}

	validateServer(v, cfg.Server)
	validateDataAPI(v, cfg.DataAPI)
	validateIdentity(v, cfg.Identity)
	validateSessions(v, cfg.Sessions)

	if cfg.Storage.MaxUploadBytes < 1<<10 || cfg.Storage.MaxUploadBytes > 100<<20 {
		v.AddError("storage.maxUploadBytes", "must be between 1KiB and 100MiB", cfg.Storage.MaxUploadBytes)
	}
	if cfg.Metrics.Enabled {
		v.NotEmpty("metrics.addr", cfg.Metrics.Addr)
	}
	if cfg.Telemetry.Enabled {
		v.OneOf("telemetry.exporter", cfg.Telemetry.Exporter, []string{"grpc", "http"})
		v.NotEmpty("telemetry.endpoint", cfg.Telemetry.Endpoint)
		v.FloatRange("telemetry.samplingRate", cfg.Telemetry.SamplingRate, 0, 1)
	}
	if cfg.RateLimit.Enabled {
		v.Range("rateLimit.requestsPerMinute", cfg.RateLimit.RequestsPerMinute, 1, 100000)
		v.Range("rateLimit.formRequestsPerMinute", cfg.RateLimit.FormRequestsPerMinute, 1, 100000)
	}
	for _, origin := range cfg.Security.AllowedOrigins {
		if origin != "*" {
			v.URL("security.allowedOrigins", origin, httpSchemes)
		}
	}
	for _, p := range cfg.Security.TrustedProxies {
		if _, err := netip.ParsePrefix(p); err != nil {
			v.AddError("security.trustedProxies", "must be a CIDR prefix", p)
		}
	}

	return v.Err()
}

func validateServer(v *validate.Validator, s ServerConfig) {
	v.NotEmpty("server.listenAddr", s.ListenAddr)
	if s.ReadTimeout <= 0 {
		v.AddError("server.readTimeout", "must be positive", s.ReadTimeout)
	}
	if s.ReadHeaderTimeout <= 0 {
		v.AddError("server.readHeaderTimeout", "must be positive", s.ReadHeaderTimeout)
	}
	if s.IdleTimeout <= 0 {
		v.AddError("server.idleTimeout", "must be positive", s.IdleTimeout)
	}
}

func validateDataAPI(v *validate.Validator, d DataAPIConfig) {
	v.OneOf("dataApi.backend", d.Backend, []string{BackendRemote, BackendSQLite})
	if d.Backend == BackendRemote {
		if _, err := platformnet.NormalizeBaseURL(d.BaseURL); err != nil {
			v.AddError("dataApi.baseUrl", err.Error(), d.BaseURL)
		}
		v.NotEmpty("dataApi.anonKey", d.AnonKey)
		v.NotEmpty("dataApi.resumeBucket", d.ResumeBucket)
		v.NotEmpty("dataApi.logoBucket", d.LogoBucket)
	}
	if d.Backend == BackendSQLite {
		v.NotEmpty("dataApi.sqlitePath", d.SQLitePath)
	}
	if d.Timeout <= 0 {
		v.AddError("dataApi.timeout", "must be positive", d.Timeout)
	}
	if d.RateLimit <= 0 {
		v.AddError("dataApi.rateLimit", "must be positive", d.RateLimit)
	}
	v.Range("dataApi.burst", d.Burst, 1, 10000)
	v.Range("dataApi.breakerThreshold", d.BreakerThreshold, 1, 1000)
	if d.BreakerReset <= 0 {
		v.AddError("dataApi.breakerReset", "must be positive", d.BreakerReset)
	}
	if d.CompaniesTTL < 0 {
		v.AddError("dataApi.companiesTtl", "cannot be negative", d.CompaniesTTL)
	}
}

func validateIdentity(v *validate.Validator, id IdentityConfig) {
	if _, err := platformnet.NormalizeBaseURL(id.Issuer); err != nil {
		v.AddError("identity.issuer", err.Error(), id.Issuer)
	}
	if _, err := platformnet.NormalizeBaseURL(id.APIBase); err != nil {
		v.AddError("identity.apiBase", err.Error(), id.APIBase)
	}
	v.NotEmpty("identity.clientId", id.ClientID)
	v.NotEmpty("identity.secretKey", id.SecretKey)
	v.URL("identity.redirectUrl", id.RedirectURL, httpSchemes)
	if len(id.Scopes) == 0 {
		v.AddError("identity.scopes", "at least one scope is required", id.Scopes)
	}
}

func validateSessions(v *validate.Validator, s SessionConfig) {
	v.OneOf("sessions.backend", s.Backend, []string{SessionsMemory, SessionsRedis, SessionsBadger})
	if s.TTL <= 0 {
		v.AddError("sessions.ttl", "must be positive", s.TTL)
	}
	if strings.ContainsAny(s.CookieName, " ;,=") || s.CookieName == "" {
		v.AddError("sessions.cookieName", "must be a valid cookie name", s.CookieName)
	}
	switch s.Backend {
	case SessionsRedis:
		v.NotEmpty("sessions.redisAddr", s.RedisAddr)
		v.Range("sessions.redisDb", s.RedisDB, 0, 15)
	case SessionsBadger:
		v.NotEmpty("sessions.badgerPath", s.BadgerPath)
	}
}
