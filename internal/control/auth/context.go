package auth

import (
	"context"

	"github.com/ManuGH/jobjump/internal/domain"
)

// Principal is the signed-in user attached to a request.
type Principal struct {
	SessionID string
	User      domain.User
	Token     string
}

// Caller returns the backend caller for p.
func (p *Principal) Caller() domain.Caller {
	if p == nil {
		return domain.Caller{}
	}
	return domain.Caller{UserID: p.User.ID, Token: p.Token}
}

type contextKey struct{}

// WithPrincipal adds the principal to the context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// PrincipalFromContext retrieves the principal from the context.
func PrincipalFromContext(ctx context.Context) *Principal {
	if p, ok := ctx.Value(contextKey{}).(*Principal); ok {
		return p
	}
	return nil
}

// UserFromContext returns the signed-in user, if any.
func UserFromContext(ctx context.Context) (domain.User, bool) {
	p := PrincipalFromContext(ctx)
	if p == nil {
		return domain.User{}, false
	}
	return p.User, true
}

// CallerFromContext resolves the backend caller for loaders. Signed-out
// requests get the anonymous caller.
func CallerFromContext(ctx context.Context) (domain.Caller, error) {
	return PrincipalFromContext(ctx).Caller(), nil
}
