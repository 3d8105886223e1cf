// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import "time"

// Data API backends.
const (
	BackendRemote = "remote"
	BackendSQLite = "sqlite"
)

// Session store backends.
const (
	SessionsMemory = "memory"
	SessionsRedis  = "redis"
	SessionsBadger = "badger"
)

// AppConfig is the fully resolved runtime configuration.
type AppConfig struct {
	Version    string `yaml:"-"`
	DataDir    string `yaml:"dataDir"`
	PublicURL  string `yaml:"publicUrl"`
	LogLevel   string `yaml:"logLevel"`
	LogService string `yaml:"logService"`

	Server    ServerConfig    `yaml:"server"`
	DataAPI   DataAPIConfig   `yaml:"dataApi"`
	Identity  IdentityConfig  `yaml:"identity"`
	Sessions  SessionConfig   `yaml:"sessions"`
	Storage   StorageConfig   `yaml:"storage"`
	UI        UIConfig        `yaml:"ui"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
	Security  SecurityConfig  `yaml:"security"`
}

// DataAPIConfig selects and tunes the job data backend.
type DataAPIConfig struct {
	Backend          string        `yaml:"backend"`
	BaseURL          string        `yaml:"baseUrl"`
	AnonKey          string        `yaml:"anonKey"`
	Timeout          time.Duration `yaml:"timeout"`
	RateLimit        float64       `yaml:"rateLimit"`
	Burst            int           `yaml:"burst"`
	BreakerThreshold int           `yaml:"breakerThreshold"`
	BreakerReset     time.Duration `yaml:"breakerReset"`
	SQLitePath       string        `yaml:"sqlitePath"`
	CompaniesTTL     time.Duration `yaml:"companiesTtl"`
	ResumeBucket     string        `yaml:"resumeBucket"`
	LogoBucket       string        `yaml:"logoBucket"`
}

// IdentityConfig configures the OAuth2 identity provider.
type IdentityConfig struct {
	Issuer       string   `yaml:"issuer"`
	APIBase      string   `yaml:"apiBase"`
	ClientID     string   `yaml:"clientId"`
	ClientSecret string   `yaml:"clientSecret"`
	SecretKey    string   `yaml:"secretKey"`
	RedirectURL  string   `yaml:"redirectUrl"`
	Scopes       []string `yaml:"scopes"`
}

// SessionConfig configures the server-side session store.
type SessionConfig struct {
	Backend       string        `yaml:"backend"`
	TTL           time.Duration `yaml:"ttl"`
	CookieName    string        `yaml:"cookieName"`
	CookieSecure  bool          `yaml:"cookieSecure"`
	RedisAddr     string        `yaml:"redisAddr"`
	RedisPassword string        `yaml:"redisPassword"`
	RedisDB       int           `yaml:"redisDb"`
	BadgerPath    string        `yaml:"badgerPath"`
}

// StorageConfig configures local blob storage for resumes and logos.
type StorageConfig struct {
	Dir            string `yaml:"dir"`
	MaxUploadBytes int64  `yaml:"maxUploadBytes"`
}

// UIConfig tunes page rendering.
type UIConfig struct {
	PrettyHTML bool `yaml:"prettyHtml"`
}

// MetricsConfig configures the Prometheus listener.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
	Environment  string  `yaml:"environment"`
}

// RateLimitConfig configures inbound request throttling.
type RateLimitConfig struct {
	Enabled               bool `yaml:"enabled"`
	RequestsPerMinute     int  `yaml:"requestsPerMinute"`
	FormRequestsPerMinute int  `yaml:"formRequestsPerMinute"`
}

// SecurityConfig configures CORS, CSRF origin checks and response headers.
type SecurityConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
	TrustedProxies []string `yaml:"trustedProxies"`
	CSP            string   `yaml:"csp"`
}
