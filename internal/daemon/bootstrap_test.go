// SPDX-License-Identifier: MIT

package daemon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/jobjump/internal/config"
)

func sqliteConfig(t *testing.T) config.AppConfig {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Defaults()
	cfg.Version = "test"
	cfg.DataDir = dir
	cfg.DataAPI.Backend = config.BackendSQLite
	cfg.DataAPI.SQLitePath = filepath.Join(dir, "jobjump.db")
	cfg.Storage.Dir = filepath.Join(dir, "blobs")
	cfg.Sessions.BadgerPath = filepath.Join(dir, "sessions")
	return cfg
}

func bootstrap(t *testing.T, cfg config.AppConfig) *Runtime {
	t.Helper()
	rt, err := Bootstrap(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close(context.Background()) })
	return rt
}

func get(rt *Runtime, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	rt.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestBootstrap_SQLite(t *testing.T) {
	cfg := sqliteConfig(t)
	rt := bootstrap(t, cfg)

	landing := get(rt, "/")
	assert.Equal(t, http.StatusOK, landing.Code)
	assert.Contains(t, landing.Body.String(), "Find your Dream Job")

	assert.Equal(t, http.StatusOK, get(rt, "/healthz").Code)
	assert.Equal(t, http.StatusOK, get(rt, "/readyz").Code, get(rt, "/readyz").Body.String())
	assert.Equal(t, http.StatusOK, get(rt, "/static/app.css").Code)
	assert.Equal(t, http.StatusOK, get(rt, "/api/v1/openapi.yaml").Code)
	assert.Equal(t, http.StatusUnauthorized, get(rt, "/api/v1/jobs").Code)
	assert.Equal(t, http.StatusSeeOther, get(rt, "/jobs").Code)
	assert.NotNil(t, rt.MetricsHandler)

	// Uploads stored on disk are served below /files.
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.Storage.Dir, "resumes"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Storage.Dir, "resumes", "cv.pdf"), []byte("%PDF-1.4"), 0o600))
	file := get(rt, "/files/resumes/cv.pdf")
	assert.Equal(t, http.StatusOK, file.Code)
	assert.Equal(t, "%PDF-1.4", file.Body.String())
}

func TestBootstrap_FormsRequireTrustedOrigin(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.PublicURL = "https://jobs.example.com"
	rt := bootstrap(t, cfg)

	req := httptest.NewRequest(http.MethodPost, "/auth/sign-out", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	rt.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/auth/sign-out", nil)
	req.Header.Set("Origin", "https://jobs.example.com")
	rec = httptest.NewRecorder()
	rt.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestBootstrap_RedisSessions(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := sqliteConfig(t)
	cfg.Sessions.Backend = config.SessionsRedis
	cfg.Sessions.RedisAddr = mr.Addr()
	rt := bootstrap(t, cfg)

	assert.Equal(t, http.StatusOK, get(rt, "/readyz").Code)
	mr.Close()
	assert.Equal(t, http.StatusServiceUnavailable, get(rt, "/readyz").Code)
}

func TestBootstrap_BadgerSessions(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Sessions.Backend = config.SessionsBadger
	rt := bootstrap(t, cfg)

	assert.Equal(t, http.StatusOK, get(rt, "/readyz").Code)
	assert.DirExists(t, cfg.Sessions.BadgerPath)
}

func TestBootstrap_RemoteBackend(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	cfg := sqliteConfig(t)
	cfg.DataAPI.Backend = config.BackendRemote
	cfg.DataAPI.BaseURL = upstream.URL
	cfg.DataAPI.AnonKey = "anon"
	rt := bootstrap(t, cfg)

	assert.Equal(t, http.StatusOK, get(rt, "/readyz").Code)
	assert.Equal(t, http.StatusNotFound, get(rt, "/files/resumes/cv.pdf").Code)
}

func TestBootstrap_UnknownBackends(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.DataAPI.Backend = "postgres"
	_, err := Bootstrap(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrUnknownBackend)

	cfg = sqliteConfig(t)
	cfg.Sessions.Backend = "memcached"
	_, err = Bootstrap(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestBootstrap_FailureReleasesOpenedResources(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Sessions.Backend = config.SessionsBadger
	cfg.Security.TrustedProxies = []string{"not-a-cidr"}

	var (
		rt  *Runtime
		err error
	)
	require.NotPanics(t, func() { rt, err = Bootstrap(context.Background(), cfg) })
	require.Error(t, err)
	assert.Nil(t, rt)

	// The badger directory lock is only free again if the first attempt closed it.
	cfg.Security.TrustedProxies = nil
	bootstrap(t, cfg)
}

func TestRuntime_CloseNil(t *testing.T) {
	var rt *Runtime
	assert.NoError(t, rt.Close(context.Background()))
}

type recordingManager struct {
	fakeManager
	names []string
	hooks []ShutdownHook
}

func (m *recordingManager) RegisterShutdownHook(name string, hook ShutdownHook) {
	m.names = append(m.names, name)
	m.hooks = append(m.hooks, hook)
}

func TestRuntime_RegisterShutdownHooks(t *testing.T) {
	rt, err := Bootstrap(context.Background(), sqliteConfig(t))
	require.NoError(t, err)

	mgr := &recordingManager{}
	rt.RegisterShutdownHooks(mgr)
	assert.Equal(t, []string{"telemetry", "sqlite", "sessions"}, mgr.names)

	// Ownership moved to the manager.
	require.NoError(t, rt.Close(context.Background()))
	for i := len(mgr.hooks) - 1; i >= 0; i-- {
		assert.NoError(t, mgr.hooks[i](context.Background()), mgr.names[i])
	}
}
