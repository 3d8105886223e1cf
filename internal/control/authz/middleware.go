// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package authz

import (
	"fmt"
	"net/http"

	"github.com/ManuGH/jobjump/internal/control/auth"
	"github.com/ManuGH/jobjump/internal/control/http/problem"
	"github.com/ManuGH/jobjump/internal/domain"
	"github.com/ManuGH/jobjump/internal/log"
	"github.com/ManuGH/jobjump/internal/metrics"
)

// RequirePage gates a page route, redirecting visitors who fail it. It
// panics when route has no policy so a new page cannot ship ungated.
func RequirePage(route string) func(http.Handler) http.Handler {
	gate, ok := PagePolicy(route)
	if !ok {
		panic(fmt.Sprintf("authz: no page policy for %q", route))
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := Decide(gate, userPtr(r))
			if d.Allowed() {
				next.ServeHTTP(w, r)
				return
			}
			metrics.RecordGateRedirect(route, d.Redirect)
			logger := log.WithComponentFromContext(r.Context(), "authz")
			logger.Debug().
				Str(log.FieldRoute, route).
				Str("gate", gate.String()).
				Str("redirect", d.Redirect).
				Msg("page gated")
			http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
		})
	}
}

// RequireOperation gates a JSON API operation: signed-out callers get 401,
// everyone else who fails the gate gets 403.
func RequireOperation(operationID string) func(http.Handler) http.Handler {
	gate, ok := OperationPolicy(operationID)
	if !ok {
		panic(fmt.Sprintf("authz: no operation policy for %q", operationID))
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch d := Decide(gate, userPtr(r)); d.Outcome {
			case Allow:
				next.ServeHTTP(w, r)
			case SignedOut:
				problem.Write(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized", "UNAUTHORIZED", "sign in required", nil)
			case NeedsRole:
				problem.Write(w, r, http.StatusForbidden, "auth/role_required", "Forbidden", "ROLE_REQUIRED", "complete onboarding first", nil)
			default:
				problem.Write(w, r, http.StatusForbidden, "auth/forbidden", "Forbidden", "FORBIDDEN", "", nil)
			}
		})
	}
}

func userPtr(r *http.Request) *domain.User {
	if u, ok := auth.UserFromContext(r.Context()); ok {
		return &u
	}
	return nil
}
