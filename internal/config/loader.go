// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a new configuration loader
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[EnvPrefix+key] = struct{}{}
	return ParseString(EnvPrefix+key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[EnvPrefix+key] = struct{}{}
	return ParseBool(EnvPrefix+key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[EnvPrefix+key] = struct{}{}
	return ParseInt(EnvPrefix+key, defaultVal)
}

func (l *Loader) envInt64(key string, defaultVal int64) int64 {
	l.ConsumedEnvKeys[EnvPrefix+key] = struct{}{}
	return ParseInt64(EnvPrefix+key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[EnvPrefix+key] = struct{}{}
	return ParseDuration(EnvPrefix+key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[EnvPrefix+key] = struct{}{}
	return ParseFloat(EnvPrefix+key, defaultVal)
}

func (l *Loader) envList(key string, defaultVal []string) []string {
	l.ConsumedEnvKeys[EnvPrefix+key] = struct{}{}
	return ParseList(EnvPrefix+key, defaultVal)
}

// Load loads configuration with precedence: ENV > File > Defaults
// It enforces Strict Validated Order: Parse File (Strict) -> Apply Env -> Validate
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.configPath != "" {
		if err := l.loadFile(l.configPath, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	l.mergeEnv(&cfg)
	resolveDerived(&cfg)
	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		DataDir:    "data",
		PublicURL:  "http://localhost:8080",
		LogLevel:   "info",
		LogService: "jobjump",
		Server:     defaultServerConfig(),
		DataAPI: DataAPIConfig{
			Backend:          BackendRemote,
			Timeout:          10 * time.Second,
			RateLimit:        20,
			Burst:            40,
			BreakerThreshold: 5,
			BreakerReset:     30 * time.Second,
			CompaniesTTL:     5 * time.Minute,
			ResumeBucket:     "resumes",
			LogoBucket:       "company-logo",
		},
		Identity: IdentityConfig{
			Scopes: []string{"openid", "profile", "email"},
		},
		Sessions: SessionConfig{
			Backend:    SessionsMemory,
			TTL:        7 * 24 * time.Hour,
			CookieName: "jobjump_session",
		},
		Storage: StorageConfig{
			MaxUploadBytes: 10 << 20,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    ":9090",
		},
		Telemetry: TelemetryConfig{
			Exporter:     "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
			Environment:  "production",
		},
		RateLimit: RateLimitConfig{
			Enabled:               true,
			RequestsPerMinute:     300,
			FormRequestsPerMinute: 30,
		},
	}
}

// loadFile decodes a YAML file over cfg with STRICT parsing.
// Unknown fields will cause a fatal error to prevent misconfiguration.
func (l *Loader) loadFile(path string, cfg *AppConfig) error {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("%w: %s (only YAML supported)", ErrUnsupportedFormat, ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("strict config parse error: %w: %w", ErrUnknownConfigField, err)
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return ErrTrailingContent
	}
	return nil
}

func (l *Loader) mergeEnv(cfg *AppConfig) {
	cfg.DataDir = l.envString("DATA_DIR", cfg.DataDir)
	cfg.PublicURL = l.envString("PUBLIC_URL", cfg.PublicURL)
	cfg.LogLevel = l.envString("LOG_LEVEL", cfg.LogLevel)
	cfg.LogService = l.envString("LOG_SERVICE", cfg.LogService)

	s := &cfg.Server
	s.ListenAddr = l.envString("LISTEN", s.ListenAddr)
	s.ReadTimeout = l.envDuration("SERVER_READ_TIMEOUT", s.ReadTimeout)
	s.WriteTimeout = l.envDuration("SERVER_WRITE_TIMEOUT", s.WriteTimeout)
	s.IdleTimeout = l.envDuration("SERVER_IDLE_TIMEOUT", s.IdleTimeout)
	s.MaxHeaderBytes = l.envInt("SERVER_MAX_HEADER_BYTES", s.MaxHeaderBytes)
	s.ShutdownTimeout = l.envDuration("SERVER_SHUTDOWN_TIMEOUT", s.ShutdownTimeout)

	d := &cfg.DataAPI
	d.Backend = l.envString("DATA_API_BACKEND", d.Backend)
	d.BaseURL = l.envString("DATA_API_URL", d.BaseURL)
	d.AnonKey = l.envString("DATA_API_ANON_KEY", d.AnonKey)
	d.Timeout = l.envDuration("DATA_API_TIMEOUT", d.Timeout)
	d.RateLimit = l.envFloat("DATA_API_RATE_LIMIT", d.RateLimit)
	d.Burst = l.envInt("DATA_API_BURST", d.Burst)
	d.BreakerThreshold = l.envInt("DATA_API_BREAKER_THRESHOLD", d.BreakerThreshold)
	d.BreakerReset = l.envDuration("DATA_API_BREAKER_RESET", d.BreakerReset)
	d.SQLitePath = l.envString("DATA_API_SQLITE_PATH", d.SQLitePath)
	d.CompaniesTTL = l.envDuration("DATA_API_COMPANIES_TTL", d.CompaniesTTL)

	id := &cfg.Identity
	id.Issuer = l.envString("IDENTITY_ISSUER", id.Issuer)
	id.APIBase = l.envString("IDENTITY_API_BASE", id.APIBase)
	id.ClientID = l.envString("IDENTITY_CLIENT_ID", id.ClientID)
	id.ClientSecret = l.envString("IDENTITY_CLIENT_SECRET", id.ClientSecret)
	id.SecretKey = l.envString("IDENTITY_SECRET_KEY", id.SecretKey)
	id.RedirectURL = l.envString("IDENTITY_REDIRECT_URL", id.RedirectURL)
	id.Scopes = l.envList("IDENTITY_SCOPES", id.Scopes)

	ss := &cfg.Sessions
	ss.Backend = l.envString("SESSION_BACKEND", ss.Backend)
	ss.TTL = l.envDuration("SESSION_TTL", ss.TTL)
	ss.CookieName = l.envString("SESSION_COOKIE_NAME", ss.CookieName)
	ss.CookieSecure = l.envBool("SESSION_COOKIE_SECURE", ss.CookieSecure)
	ss.RedisAddr = l.envString("REDIS_ADDR", ss.RedisAddr)
	ss.RedisPassword = l.envString("REDIS_PASSWORD", ss.RedisPassword)
	ss.RedisDB = l.envInt("REDIS_DB", ss.RedisDB)
	ss.BadgerPath = l.envString("BADGER_PATH", ss.BadgerPath)

	cfg.Storage.Dir = l.envString("STORAGE_DIR", cfg.Storage.Dir)
	cfg.Storage.MaxUploadBytes = l.envInt64("STORAGE_MAX_UPLOAD_BYTES", cfg.Storage.MaxUploadBytes)

	cfg.UI.PrettyHTML = l.envBool("UI_PRETTY_HTML", cfg.UI.PrettyHTML)

	cfg.Metrics.Enabled = l.envBool("METRICS_ENABLED", cfg.Metrics.Enabled)
	cfg.Metrics.Addr = l.envString("METRICS_ADDR", cfg.Metrics.Addr)

	tel := &cfg.Telemetry
	tel.Enabled = l.envBool("TELEMETRY_ENABLED", tel.Enabled)
	tel.Exporter = l.envString("TELEMETRY_EXPORTER", tel.Exporter)
	tel.Endpoint = l.envString("TELEMETRY_ENDPOINT", tel.Endpoint)
	tel.SamplingRate = l.envFloat("TELEMETRY_SAMPLING_RATE", tel.SamplingRate)
	tel.Environment = l.envString("TELEMETRY_ENVIRONMENT", tel.Environment)

	rl := &cfg.RateLimit
	rl.Enabled = l.envBool("RATE_LIMIT_ENABLED", rl.Enabled)
	rl.RequestsPerMinute = l.envInt("RATE_LIMIT_RPM", rl.RequestsPerMinute)
	rl.FormRequestsPerMinute = l.envInt("RATE_LIMIT_FORM_RPM", rl.FormRequestsPerMinute)

	cfg.Security.AllowedOrigins = l.envList("ALLOWED_ORIGINS", cfg.Security.AllowedOrigins)
	cfg.Security.TrustedProxies = l.envList("TRUSTED_PROXIES", cfg.Security.TrustedProxies)
	cfg.Security.CSP = l.envString("CSP", cfg.Security.CSP)
}

// resolveDerived fills values that default from other keys.
func resolveDerived(cfg *AppConfig) {
	if abs, err := filepath.Abs(cfg.DataDir); err == nil {
		cfg.DataDir = abs
	}
	if cfg.DataAPI.SQLitePath == "" {
		cfg.DataAPI.SQLitePath = filepath.Join(cfg.DataDir, "jobjump.db")
	}
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = filepath.Join(cfg.DataDir, "blobs")
	}
	if cfg.Sessions.BadgerPath == "" {
		cfg.Sessions.BadgerPath = filepath.Join(cfg.DataDir, "sessions")
	}
	if cfg.Identity.APIBase == "" {
		cfg.Identity.APIBase = cfg.Identity.Issuer
	}
	if cfg.Identity.RedirectURL == "" && cfg.PublicURL != "" {
		cfg.Identity.RedirectURL = strings.TrimRight(cfg.PublicURL, "/") + "/auth/callback"
	}
	if cfg.Server.ShutdownTimeout < minShutdownTimeout {
		cfg.Server.ShutdownTimeout = minShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes <= 0 {
		cfg.Server.MaxHeaderBytes = defaultMaxHeaderBytes
	}
}
