package middleware

import (
	"context"

	"github.com/MarceloMarchiori/m3class-backend/internal/access"
)

type contextKey string

const (
	ctxAccessID     contextKey = "access_id"
	ctxIdentity     contextKey = "identity"
	ctxScope        contextKey = "scope"
	ctxImpersonated contextKey = "impersonated"
)

// AccessIDFromContext returns the session access id seeded by Auth.
func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// IdentityFromContext returns the effective identity seeded by Auth. The
// second result is false when the request never passed the middleware.
func IdentityFromContext(ctx context.Context) (access.Identity, bool) {
	if ctx == nil {
		return access.Identity{}, false
	}
	identity, ok := ctx.Value(ctxIdentity).(access.Identity)
	return identity, ok
}

// ScopeFromContext returns the effective school scope seeded by Auth.
func ScopeFromContext(ctx context.Context) access.Scope {
	if ctx == nil {
		return access.Scope{}
	}
	if scope, ok := ctx.Value(ctxScope).(access.Scope); ok {
		return scope
	}
	return access.Scope{}
}

// ImpersonationActive reports whether the effective identity is an overlay.
func ImpersonationActive(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	if v, ok := ctx.Value(ctxImpersonated).(bool); ok {
		return v
	}
	return false
}

// WithIdentity injects the effective identity, for handler tests.
func WithIdentity(ctx context.Context, identity access.Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentity, identity)
}

// WithScope injects the effective school scope, for handler tests.
func WithScope(ctx context.Context, scope access.Scope) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxScope, scope)
}

// WithAccessID injects the session access id, for handler tests.
func WithAccessID(ctx context.Context, accessID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxAccessID, accessID)
}

// WithImpersonation flags the context as running under an overlay.
func WithImpersonation(ctx context.Context, active bool) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxImpersonated, active)
}
