package auth

import (
	"context"
	"net/http"

	"github.com/frahmantamala/hrm/internal"
	"github.com/frahmantamala/hrm/internal/core/role"
	"github.com/frahmantamala/hrm/internal/transport"
	"github.com/frahmantamala/hrm/pkg/logger"
)

// Actor is the authenticated user as seen from inside the bound tenant.
// EmployeeID is zero when the member has no employee record there.
type Actor struct {
	UserID     int64
	EmployeeID int64
	Role       role.Role
}

type actorKey struct{}

func ContextWithActor(ctx context.Context, a *Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func ActorFromContext(ctx context.Context) (*Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(*Actor)
	return a, ok && a != nil
}

// ActorResolver looks up the caller's employee record in the tenant bound to
// ctx. It returns nil when there is none.
type ActorResolver interface {
	ResolveActor(ctx context.Context, userID int64) (*Actor, error)
}

type RBACAuthorization struct {
	resolver ActorResolver
	checker  PermissionChecker
	base     *transport.BaseHandler
}

func NewRBACAuthorization(resolver ActorResolver, checker PermissionChecker, base *transport.BaseHandler) *RBACAuthorization {
	return &RBACAuthorization{
		resolver: resolver,
		checker:  checker,
		base:     base,
	}
}

// RequireAuthenticated rejects requests that carry no principal.
func (ra *RBACAuthorization) RequireAuthenticated() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := internal.PrincipalFromContext(r.Context()); !ok {
				ra.base.HandleServiceError(w, r, internal.ErrAuthenticationRequired())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ResolveActor loads the caller's role in the bound tenant and stores it on
// the request context. Members without an employee record act as employees.
func (ra *RBACAuthorization) ResolveActor() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := internal.PrincipalFromContext(r.Context())
			if !ok {
				ra.base.HandleServiceError(w, r, internal.ErrAuthenticationRequired())
				return
			}

			actor, err := ra.resolver.ResolveActor(r.Context(), principal.UserID)
			if err != nil {
				ra.base.HandleServiceError(w, r, err)
				return
			}
			if actor == nil {
				actor = &Actor{UserID: principal.UserID, Role: role.Employee}
			}

			ctx := ContextWithActor(r.Context(), actor)
			ctx = logger.With(ctx, "role", actor.Role.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireManagerForWrites lets any member read and requires manager or owner
// for every other method.
func (ra *RBACAuthorization) RequireManagerForWrites() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			actor, ok := ActorFromContext(r.Context())
			if !ok || !ra.checker.CanWriteTenantData(actor) {
				logger.From(r.Context()).Warn("access denied: write requires manager role", "method", r.Method, "path", r.URL.Path)
				ra.base.HandleServiceError(w, r, internal.ErrForbidden())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole requires at least min for every method.
func (ra *RBACAuthorization) RequireRole(min role.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok || !actor.Role.AtLeast(min) {
				ra.base.HandleServiceError(w, r, internal.ErrForbidden())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (ra *RBACAuthorization) Checker() PermissionChecker {
	return ra.checker
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
