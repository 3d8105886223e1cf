// SPDX-License-Identifier: MIT

// Package daemon provides the core daemon bootstrapping and lifecycle management.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ManuGH/jobjump/internal/api"
	"github.com/ManuGH/jobjump/internal/cache"
	"github.com/ManuGH/jobjump/internal/config"
	"github.com/ManuGH/jobjump/internal/control/auth"
	"github.com/ManuGH/jobjump/internal/control/middleware"
	"github.com/ManuGH/jobjump/internal/dataapi"
	"github.com/ManuGH/jobjump/internal/domain"
	"github.com/ManuGH/jobjump/internal/health"
	"github.com/ManuGH/jobjump/internal/identity"
	"github.com/ManuGH/jobjump/internal/log"
	"github.com/ManuGH/jobjump/internal/platform/httpx"
	"github.com/ManuGH/jobjump/internal/storage"
	"github.com/ManuGH/jobjump/internal/store/sqlite"
	"github.com/ManuGH/jobjump/internal/telemetry"
	"github.com/ManuGH/jobjump/internal/web"
)

// FilesPath is where locally stored uploads are served.
const FilesPath = "/files"

const (
	sessionKeyPrefix   = "jobjump:sessions:"
	memoryJanitorEvery = time.Minute
	compressionLevel   = 5
)

// Runtime is the assembled application behind one HTTP handler.
type Runtime struct {
	Handler        http.Handler
	MetricsHandler http.Handler
	Health         *health.Manager
	Backend        domain.Backend

	closers []namedHook
	logger  zerolog.Logger
}

// Bootstrap builds every component cfg selects. On error, anything already
// opened is closed again.
func Bootstrap(ctx context.Context, cfg config.AppConfig) (*Runtime, error) {
	rt := &Runtime{
		Health: health.NewManager(cfg.Version),
		logger: log.WithComponent("bootstrap"),
	}
	if err := rt.build(ctx, cfg); err != nil {
		if cerr := rt.Close(context.WithoutCancel(ctx)); cerr != nil {
			rt.logger.Warn().Err(cerr).Str(log.FieldEvent, "bootstrap.cleanup_failed").Msg("closing partially built runtime failed")
		}
		return nil, err
	}
	return rt, nil
}

func (rt *Runtime) build(ctx context.Context, cfg config.AppConfig) error {
	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.LogService,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Telemetry.Environment,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	rt.addCloser("telemetry", tp.Shutdown)

	uploads, files, err := rt.openBackend(cfg)
	if err != nil {
		return err
	}

	sessionCache, err := rt.openSessionCache(ctx, cfg.Sessions)
	if err != nil {
		return err
	}
	sessions := identity.NewSessionStore(sessionCache, cfg.Sessions.TTL)
	rt.Health.RegisterChecker(health.NewPingChecker("sessions", sessions.Ping))

	var idp web.IdentityProvider
	if cfg.Identity.Issuer != "" {
		provider, perr := identity.NewProvider(identity.Config{
			Issuer:       cfg.Identity.Issuer,
			APIBase:      cfg.Identity.APIBase,
			ClientID:     cfg.Identity.ClientID,
			ClientSecret: cfg.Identity.ClientSecret,
			SecretKey:    cfg.Identity.SecretKey,
			RedirectURL:  cfg.Identity.RedirectURL,
			Scopes:       cfg.Identity.Scopes,
		}, httpx.NewClient(cfg.DataAPI.Timeout))
		if perr != nil {
			return fmt.Errorf("identity provider: %w", perr)
		}
		idp = provider
	} else {
		rt.logger.Warn().Str(log.FieldEvent, "identity.disabled").Msg("no identity issuer configured, sign-in is disabled")
	}

	trusted, err := middleware.ParseCIDRs(cfg.Security.TrustedProxies)
	if err != nil {
		return fmt.Errorf("trusted proxies: %w", err)
	}
	cookie := auth.CookieOptions{Name: cfg.Sessions.CookieName, Secure: cfg.Sessions.CookieSecure}

	pages, err := web.New(web.Config{
		Backend:               rt.Backend,
		Uploads:               uploads,
		Identity:              idp,
		Sessions:              sessions,
		Cookie:                cookie,
		PrettyHTML:            cfg.UI.PrettyHTML,
		FormRequestsPerMinute: formLimit(cfg.RateLimit),
		TrustedProxies:        trusted,
	})
	if err != nil {
		return fmt.Errorf("pages: %w", err)
	}
	apiHandler, err := api.Handler(rt.Backend)
	if err != nil {
		return fmt.Errorf("api: %w", err)
	}

	stack := middleware.StackConfig{
		EnableCORS:            len(cfg.Security.AllowedOrigins) > 0,
		AllowedOrigins:        allowedOrigins(cfg),
		CORSAllowCredentials:  true,
		EnableSecurityHeaders: true,
		CSP:                   cfg.Security.CSP,
		TrustedProxies:        trusted,
		EnableMetrics:         cfg.Metrics.Enabled,
		EnableLogging:         true,
		CompressionLevel:      compressionLevel,
	}
	if cfg.Telemetry.Enabled {
		stack.TracingService = cfg.LogService
	}
	if cfg.RateLimit.Enabled {
		stack.RateLimitPerMinute = cfg.RateLimit.RequestsPerMinute
	}

	r := middleware.NewRouter(stack)
	r.Get("/healthz", rt.Health.ServeHealth)
	r.Get("/readyz", rt.Health.ServeReady)
	if files != nil {
		r.Mount(FilesPath, http.StripPrefix(FilesPath, files))
	}
	r.Group(func(g chi.Router) {
		g.Use(auth.LoadSession(sessions, cookie))
		g.Mount(api.BasePath, apiHandler)
		g.Mount("/", pages.Routes())
	})
	rt.Handler = r

	if cfg.Metrics.Enabled {
		rt.MetricsHandler = promhttp.Handler()
	}
	return nil
}

// openBackend selects the job data backend and the matching upload store.
// The returned handler serves local uploads and is nil for the remote backend.
func (rt *Runtime) openBackend(cfg config.AppConfig) (*storage.Service, http.Handler, error) {
	buckets := map[storage.Kind]string{
		storage.KindResume: cfg.DataAPI.ResumeBucket,
		storage.KindLogo:   cfg.DataAPI.LogoBucket,
	}

	switch cfg.DataAPI.Backend {
	case config.BackendRemote:
		companies := cache.NewMemoryCache(memoryJanitorEvery)
		rt.addCloser("companies_cache", func(context.Context) error { return companies.Close() })

		client, err := dataapi.New(dataapi.Config{
			BaseURL:          cfg.DataAPI.BaseURL,
			AnonKey:          cfg.DataAPI.AnonKey,
			Timeout:          cfg.DataAPI.Timeout,
			RateLimit:        cfg.DataAPI.RateLimit,
			Burst:            cfg.DataAPI.Burst,
			BreakerThreshold: cfg.DataAPI.BreakerThreshold,
			BreakerReset:     cfg.DataAPI.BreakerReset,
			CompaniesTTL:     cfg.DataAPI.CompaniesTTL,
			ResumeBucket:     cfg.DataAPI.ResumeBucket,
			LogoBucket:       cfg.DataAPI.LogoBucket,
		}, companies, httpx.NewClient(cfg.DataAPI.Timeout))
		if err != nil {
			return nil, nil, fmt.Errorf("data api: %w", err)
		}
		rt.Backend = client
		rt.Health.RegisterChecker(health.NewPingChecker("data_api", client.Ping))
		rt.logger.Info().Str(log.FieldBaseURL, client.BaseURL()).Msg("using remote data API")
		return storage.NewService(client, buckets, cfg.Storage.MaxUploadBytes), nil, nil

	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.DataAPI.SQLitePath), 0o750); err != nil {
			return nil, nil, fmt.Errorf("create database dir: %w", err)
		}
		store, err := sqlite.Open(cfg.DataAPI.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite: %w", err)
		}
		rt.addCloser("sqlite", func(context.Context) error { return store.Close() })
		rt.Backend = store
		rt.Health.RegisterChecker(health.NewPingChecker("data_api", store.Ping))

		local, err := storage.NewLocal(cfg.Storage.Dir, FilesPath)
		if err != nil {
			return nil, nil, err
		}
		rt.Health.RegisterChecker(health.NewWritableDirChecker("uploads", local.Dir()))
		rt.logger.Info().Str(log.FieldPath, cfg.DataAPI.SQLitePath).Msg("using local SQLite store")
		return storage.NewService(local, buckets, cfg.Storage.MaxUploadBytes), local.Handler(), nil

	default:
		return nil, nil, fmt.Errorf("%w: data api %q", ErrUnknownBackend, cfg.DataAPI.Backend)
	}
}

func (rt *Runtime) openSessionCache(ctx context.Context, cfg config.SessionConfig) (cache.Cache, error) {
	var (
		c   cache.Cache
		err error
	)
	switch cfg.Backend {
	case config.SessionsMemory, "":
		c = cache.NewMemoryCache(memoryJanitorEvery)
	case config.SessionsRedis:
		c, err = cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   sessionKeyPrefix,
		}, log.WithComponent("sessions"))
	case config.SessionsBadger:
		c, err = cache.OpenBadger(cfg.BadgerPath)
	default:
		return nil, fmt.Errorf("%w: sessions %q", ErrUnknownBackend, cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}
	rt.addCloser("sessions", func(context.Context) error { return c.Close() })
	return c, nil
}

func (rt *Runtime) addCloser(name string, fn ShutdownHook) {
	rt.closers = append(rt.closers, namedHook{name: name, hook: fn})
}

// RegisterShutdownHooks hands every opened resource to m, in opening order.
func (rt *Runtime) RegisterShutdownHooks(m Manager) {
	for _, c := range rt.closers {
		m.RegisterShutdownHook(c.name, c.hook)
	}
	rt.closers = nil
}

// Close releases resources not handed to a Manager, newest first.
func (rt *Runtime) Close(ctx context.Context) error {
	if rt == nil {
		return nil
	}
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i].hook(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", rt.closers[i].name, err))
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}

// allowedOrigins adds the public URL's origin to the configured list.
func allowedOrigins(cfg config.AppConfig) []string {
	out := append([]string(nil), cfg.Security.AllowedOrigins...)
	if u, err := url.Parse(cfg.PublicURL); err == nil && u.Scheme != "" && u.Host != "" {
		out = append(out, u.Scheme+"://"+u.Host)
	}
	return out
}

func formLimit(rl config.RateLimitConfig) int {
	if !rl.Enabled {
		return 0
	}
	return rl.FormRequestsPerMinute
}
