package internal

import (
	"context"
	"time"
)

type ctxKey string

const (
	ContextPrincipalKey ctxKey = "principal"
	ContextTenantKey    ctxKey = "tenant"
)

// Principal is the authenticated caller resolved from a bearer token.
type Principal struct {
	UserID int64
	Email  string
}

// TenantRef identifies the tenant a request has been bound to.
type TenantRef struct {
	ID     int64
	Schema string
	Public bool
}

func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ContextPrincipalKey, p)
}

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(ContextPrincipalKey).(*Principal)
	return p, ok && p != nil
}

func ContextWithTenant(ctx context.Context, t *TenantRef) context.Context {
	return context.WithValue(ctx, ContextTenantKey, t)
}

func TenantFromContext(ctx context.Context) (*TenantRef, bool) {
	if ctx == nil {
		return nil, false
	}
	t, ok := ctx.Value(ContextTenantKey).(*TenantRef)
	return t, ok && t != nil
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
