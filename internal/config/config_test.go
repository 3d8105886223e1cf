// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/oasdiff/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfigMap returns the smallest file content that passes validation.
func validConfigMap(dataDir string) map[string]any {
	return map[string]any{
		"dataDir":   dataDir,
		"publicUrl": "https://jobs.example.com",
		"dataApi": map[string]any{
			"baseUrl": "https://data.example.com",
			"anonKey": "anon",
		},
		"identity": map[string]any{
			"issuer":    "https://id.example.com",
			"clientId":  "client",
			"secretKey": "sk_test",
		},
	}
}

func writeConfig(t *testing.T, path string, cfg map[string]any) {
	t.Helper()
	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

func TestLoad_FileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	cfg := validConfigMap(dir)
	cfg["server"] = map[string]any{"listenAddr": ":9999", "readTimeout": "7s"}
	writeConfig(t, path, cfg)

	got, err := NewLoader(path, "v1.2.3").Load()
	require.NoError(t, err)

	assert.Equal(t, "v1.2.3", got.Version)
	assert.Equal(t, ":9999", got.Server.ListenAddr)
	assert.Equal(t, 7*time.Second, got.Server.ReadTimeout)
	assert.Equal(t, defaultIdleTimeout, got.Server.IdleTimeout)
	assert.Equal(t, BackendRemote, got.DataAPI.Backend)
	assert.Equal(t, "https://id.example.com", got.Identity.APIBase)
	assert.Equal(t, "https://jobs.example.com/auth/callback", got.Identity.RedirectURL)
	assert.Equal(t, filepath.Join(dir, "blobs"), got.Storage.Dir)
	assert.Equal(t, filepath.Join(dir, "jobjump.db"), got.DataAPI.SQLitePath)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path, validConfigMap(dir))

	t.Setenv("JOBJUMP_LISTEN", ":7070")
	t.Setenv("JOBJUMP_SESSION_BACKEND", "redis")
	t.Setenv("JOBJUMP_REDIS_ADDR", "127.0.0.1:6379")
	t.Setenv("JOBJUMP_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	l := NewLoader(path, "dev")
	got, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, ":7070", got.Server.ListenAddr)
	assert.Equal(t, SessionsRedis, got.Sessions.Backend)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, got.Security.AllowedOrigins)
	assert.Contains(t, l.ConsumedEnvKeys, "JOBJUMP_LISTEN")
}

func TestLoad_RejectsUnknownField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	cfg := validConfigMap(dir)
	cfg["searchBackend"] = "elastic"
	writeConfig(t, path, cfg)

	_, err := NewLoader(path, "dev").Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownConfigField), err)
}

func TestLoad_RejectsTrailingDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data, err := yaml.Marshal(validConfigMap(dir))
	require.NoError(t, err)
	data = append(data, []byte("---\nlogLevel: debug\n")...)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	_, err = NewLoader(path, "dev").Load()
	assert.ErrorIs(t, err, ErrTrailingContent)
}

func TestLoad_RejectsNonYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))

	_, err := NewLoader(path, "dev").Load()
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad_InvalidConfigIsClassified(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	cfg := validConfigMap(dir)
	cfg["logLevel"] = "chatty"
	writeConfig(t, path, cfg)

	_, err := NewLoader(path, "dev").Load()
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "logLevel")
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := Defaults()
	cfg.DataDir = t.TempDir()
	cfg.DataAPI.Backend = "mongo"
	cfg.Sessions.Backend = "etcd"
	cfg.Telemetry.Enabled = true
	cfg.Telemetry.SamplingRate = 2

	err := Validate(cfg)
	require.Error(t, err)
	for _, key := range []string{"dataApi.backend", "sessions.backend", "identity.issuer", "telemetry.samplingRate"} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestValidate_SQLiteBackendNeedsNoUpstream(t *testing.T) {
	cfg := Defaults()
	cfg.DataDir = t.TempDir()
	cfg.DataAPI.Backend = BackendSQLite
	cfg.DataAPI.SQLitePath = filepath.Join(cfg.DataDir, "db.sqlite")
	cfg.Identity = IdentityConfig{
		Issuer:      "https://id.example.com",
		APIBase:     "https://api.id.example.com",
		ClientID:    "client",
		SecretKey:   "sk",
		RedirectURL: "http://localhost:8080/auth/callback",
		Scopes:      []string{"openid"},
	}
	assert.NoError(t, Validate(cfg))
}

func TestMaskValue(t *testing.T) {
	assert.Equal(t, "***", maskValue("JOBJUMP_IDENTITY_SECRET_KEY", "sk_live"))
	assert.Equal(t, "***", maskValue("JOBJUMP_DATA_API_ANON_KEY", "anon"))
	assert.Equal(t, ":8080", maskValue("JOBJUMP_LISTEN", ":8080"))
	assert.Equal(t, "https://example.com/x", maskURL("https://u:p@example.com/x?token=1"))
}

func TestRedacted(t *testing.T) {
	cfg := Defaults()
	cfg.DataAPI.AnonKey = "anon"
	cfg.DataAPI.BaseURL = "https://user:pw@data.example.com"
	cfg.Identity.ClientSecret = "shh"
	cfg.Identity.SecretKey = "sk_live"
	cfg.Sessions.RedisPassword = "hunter2"

	got := cfg.Redacted()
	assert.Equal(t, "***", got.DataAPI.AnonKey)
	assert.Equal(t, "https://data.example.com", got.DataAPI.BaseURL)
	assert.Equal(t, "***", got.Identity.ClientSecret)
	assert.Equal(t, "***", got.Identity.SecretKey)
	assert.Equal(t, "***", got.Sessions.RedisPassword)
	assert.Equal(t, "anon", cfg.DataAPI.AnonKey)
}
