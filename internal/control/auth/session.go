// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/ManuGH/jobjump/internal/identity"
	"github.com/ManuGH/jobjump/internal/log"
	"github.com/ManuGH/jobjump/internal/telemetry"
)

// SessionGetter loads sessions by id.
type SessionGetter interface {
	Get(ctx context.Context, id string) (identity.Session, error)
}

// LoadSession resolves the session cookie (or bearer token) into a
// Principal. Unknown or expired sessions clear the cookie and continue
// signed out; store failures are logged and also continue signed out.
func LoadSession(store SessionGetter, opts CookieOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ExtractToken(r, opts.name())
			if id == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := store.Get(r.Context(), id)
			switch {
			case errors.Is(err, identity.ErrNoSession):
				if ExtractSessionToken(r, opts.name()) != "" {
					ClearSessionCookie(w, opts)
				}
				next.ServeHTTP(w, r)
				return
			case err != nil:
				logger := log.WithComponentFromContext(r.Context(), "auth")
				logger.Warn().Err(err).Str(log.FieldEvent, "session.load_failed").Msg("session store unavailable")
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithPrincipal(r.Context(), &Principal{
				SessionID: sess.ID,
				User:      sess.User,
				Token:     sess.AccessToken,
			})
			ctx = log.ContextWithUserID(ctx, sess.User.ID)
			telemetry.SetUserRole(ctx, string(sess.User.Role()))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
