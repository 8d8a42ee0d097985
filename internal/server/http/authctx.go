package httpserver

import (
	"context"

	"github.com/mlozanov/storefront/internal/model"
)

type ctxKey string

const principalKey ctxKey = "sf.principal"

// WithPrincipal stores the authenticated principal in the request context.
// The context lives exactly as long as the request; nothing is shared across
// requests.
func WithPrincipal(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, principalKey, u)
}

// PrincipalFromCtx fetches the authenticated principal, if any.
func PrincipalFromCtx(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(principalKey).(*model.User)
	return u, ok && u != nil
}
