package tenant

import (
	"context"

	"github.com/google/uuid"
	"github.com/marcusvale/bidforge/internal/models"
)

type tenantCtxKey struct{}
type userCtxKey struct{}

// WithTenant stashes the resolved tenant on the request context. Everything
// below the auth middleware reads tenancy from here, never from the request.
func WithTenant(ctx context.Context, t *models.Tenant) context.Context {
	return context.WithValue(ctx, tenantCtxKey{}, t)
}

func FromContext(ctx context.Context) *models.Tenant {
	t, _ := ctx.Value(tenantCtxKey{}).(*models.Tenant)
	return t
}

// IDFromContext returns the tenant ID, or uuid.Nil outside an authenticated
// request.
func IDFromContext(ctx context.Context) uuid.UUID {
	t := FromContext(ctx)
	if t == nil {
		return uuid.Nil
	}
	return t.ID
}

func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext is nil when the token resolved to a tenant but not to a
// known user record.
func UserFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(userCtxKey{}).(*models.User)
	return u
}
