// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package web serves the server-rendered job board: the landing page,
// onboarding, job listing and detail, posting, saved jobs, my jobs and the
// sign-in flow. Every backend call goes through a fetch.Loader and every
// page route is gated by authz.RequirePage.
package web

import (
	"context"
	"errors"
	"io/fs"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/ManuGH/jobjump/internal/control/auth"
	"github.com/ManuGH/jobjump/internal/control/authz"
	"github.com/ManuGH/jobjump/internal/control/middleware"
	"github.com/ManuGH/jobjump/internal/dataapi"
	"github.com/ManuGH/jobjump/internal/domain"
	"github.com/ManuGH/jobjump/internal/fetch"
	"github.com/ManuGH/jobjump/internal/identity"
	"github.com/ManuGH/jobjump/internal/log"
	"github.com/ManuGH/jobjump/internal/storage"
)

// IdentityProvider is the part of identity.Provider the pages use.
type IdentityProvider interface {
	AuthCodeURL(state, verifier string) string
	Exchange(ctx context.Context, code, verifier string) (*oauth2.Token, error)
	FetchUser(ctx context.Context, tok *oauth2.Token) (domain.User, error)
	SetRole(ctx context.Context, id string, role domain.Role) (domain.User, error)
}

// SessionManager is the part of identity.SessionStore the pages use.
type SessionManager interface {
	Create(ctx context.Context, user domain.User, accessToken string) (identity.Session, error)
	UpdateUser(ctx context.Context, id string, user domain.User) (identity.Session, error)
	Delete(ctx context.Context, id string) error
	TTL() time.Duration
}

var (
	_ IdentityProvider = (*identity.Provider)(nil)
	_ SessionManager   = (*identity.SessionStore)(nil)
)

// Config wires the page handlers. Identity may be nil, in which case
// sign-in is reported as unavailable.
type Config struct {
	Backend    domain.Backend
	Uploads    *storage.Service
	Identity   IdentityProvider
	Sessions   SessionManager
	Cookie     auth.CookieOptions
	PrettyHTML bool

	FormRequestsPerMinute int
	TrustedProxies        []*net.IPNet
}

// Handler serves the pages.
type Handler struct {
	backend  domain.Backend
	uploads  *storage.Service
	identity IdentityProvider
	sessions SessionManager
	cookie   auth.CookieOptions

	formRPM int
	trusted []*net.IPNet

	views   *renderer
	landing landingContent
	logger  zerolog.Logger
}

// New parses the embedded templates and content.
func New(cfg Config) (*Handler, error) {
	if cfg.Backend == nil {
		return nil, errors.New("web: backend is nil")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("web: session manager is nil")
	}
	views, err := newRenderer(cfg.PrettyHTML)
	if err != nil {
		return nil, err
	}
	landing, err := loadLanding()
	if err != nil {
		return nil, err
	}
	return &Handler{
		backend:  cfg.Backend,
		uploads:  cfg.Uploads,
		identity: cfg.Identity,
		sessions: cfg.Sessions,
		cookie:   cfg.Cookie,
		formRPM:  cfg.FormRequestsPerMinute,
		trusted:  cfg.TrustedProxies,
		views:    views,
		landing:  landing,
		logger:   log.WithComponent("web"),
	}, nil
}

// Routes returns the page router. It expects auth.LoadSession to run
// before it.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.renderError(w, r, http.StatusNotFound, "This page does not exist.")
	})
	r.Handle("/static/*", http.StripPrefix("/static/", staticHandler()))

	r.With(authz.RequirePage("/")).Get("/", h.landingPage)

	r.Route("/auth", func(r chi.Router) {
		r.Get("/sign-in", h.signIn)
		r.Get("/callback", h.callback)
		r.Post("/sign-out", h.signOut)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.FormRateLimit(h.formRPM, h.trusted))

		r.Route("/onboarding", func(r chi.Router) {
			r.Use(authz.RequirePage("/onboarding"))
			r.Get("/", h.onboardingPage)
			r.Post("/", h.selectRole)
		})
		r.With(authz.RequirePage("/jobs")).Get("/jobs", h.jobsPage)
		r.Route("/job/{id}", func(r chi.Router) {
			r.Use(authz.RequirePage("/job/{id}"))
			r.Get("/", h.jobPage)
			r.Post("/status", h.updateHiringStatus)
			r.Post("/save", h.toggleSaved)
			r.Post("/apply", h.apply)
			r.Post("/applications/{appID}/status", h.updateApplicationStatus)
		})
		r.Route("/post-job", func(r chi.Router) {
			r.Use(authz.RequirePage("/post-job"))
			r.Get("/", h.postJobPage)
			r.Post("/", h.createJob)
			r.Post("/company", h.addCompany)
		})
		r.With(authz.RequirePage("/saved-jobs")).Get("/saved-jobs", h.savedJobsPage)
		r.Route("/my-jobs", func(r chi.Router) {
			r.Use(authz.RequirePage("/my-jobs"))
			r.Get("/", h.myJobsPage)
			r.Post("/{id}/delete", h.deleteJob)
		})
	})
	return r
}

func staticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	files := http.FileServerFS(sub)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=86400")
		files.ServeHTTP(w, r)
	})
}

// none is the argument type of loaders that take no per-trigger arguments.
type none struct{}

// newLoader binds fn to opts with the request's session as caller.
func newLoader[O, A, T any](name string, opts O, fn fetch.Fetcher[O, A, T]) *fetch.Loader[O, A, T] {
	return fetch.New(name, fn, auth.CallerFromContext, opts)
}

// settle waits for every triggered loader or for the request to end.
func settle(ctx context.Context, pending ...<-chan struct{}) {
	for _, done := range pending {
		select {
		case <-done:
		case <-ctx.Done():
			return
		}
	}
}

// statusFor maps a backend failure onto the page status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalid), storage.IsRejected(err):
		return http.StatusUnprocessableEntity
	case dataapi.IsUnavailable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// fail logs a backend failure and renders the error page.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, event string, err error) {
	logger := log.WithContext(r.Context(), h.logger)
	logger.Warn().Err(err).Str(log.FieldEvent, event).Str(log.FieldPath, r.URL.Path).Msg("backend call failed")
	h.renderError(w, r, statusFor(err), fetch.AsFailure(err).Message)
}

func principal(r *http.Request) *auth.Principal {
	return auth.PrincipalFromContext(r.Context())
}

func pathID(r *http.Request, key string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	return id, err == nil && id > 0
}

func seeOther(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}
