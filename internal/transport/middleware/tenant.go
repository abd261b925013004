package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/frahmantamala/hrm/internal"
	"github.com/frahmantamala/hrm/internal/auth"
	"github.com/frahmantamala/hrm/internal/observability"
	"github.com/frahmantamala/hrm/internal/transport"
	"github.com/frahmantamala/hrm/pkg/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const DefaultTenantHeader = "X-Client"

type TenantDirectory interface {
	Lookup(ctx context.Context, clientID int64) (*internal.TenantRef, error)
	IsActiveMember(ctx context.Context, userID, clientID int64) (bool, error)
}

type AccessTokenValidator interface {
	ValidateAccessToken(tokenString string) (*auth.Claims, error)
}

// SchemaRouter binds every request to a tenant before any handler runs.
// Missing headers, unknown tenants and tenants the caller does not belong to
// all produce the same TENANT_NOT_FOUND response.
type SchemaRouter struct {
	directory TenantDirectory
	tokens    AccessTokenValidator
	header    string
	base      *transport.BaseHandler
}

func NewSchemaRouter(directory TenantDirectory, tokens AccessTokenValidator, header string, base *transport.BaseHandler) *SchemaRouter {
	if header == "" {
		header = DefaultTenantHeader
	}
	return &SchemaRouter{
		directory: directory,
		tokens:    tokens,
		header:    header,
		base:      base,
	}
}

func (sr *SchemaRouter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		clientID, ok := parseClientID(r.Header.Get(sr.header))
		if !ok {
			sr.notFound(w, r, "missing_header")
			return
		}

		// A bearer token is optional here. When present it must be valid
		// regardless of the tenant named, so a bad token never reveals
		// whether that tenant exists.
		var principal *internal.Principal
		if raw := transport.ExtractTokenFromHeader(r); raw != "" {
			claims, err := sr.tokens.ValidateAccessToken(raw)
			if err != nil {
				observability.ObserveTenantResolution("invalid_token")
				sr.base.HandleServiceError(w, r, internal.NewUnauthorizedError("Given token not valid for any token type", internal.ErrCodeInvalidToken))
				return
			}
			principal = &internal.Principal{UserID: claims.UserID, Email: claims.Email}
		}

		ref, err := sr.directory.Lookup(ctx, clientID)
		if err != nil {
			observability.ObserveTenantResolution("error")
			sr.base.HandleServiceError(w, r, err)
			return
		}
		if ref == nil {
			sr.notFound(w, r, "unknown_tenant")
			return
		}

		if principal != nil {
			member, err := sr.directory.IsActiveMember(ctx, principal.UserID, ref.ID)
			if err != nil {
				observability.ObserveTenantResolution("error")
				sr.base.HandleServiceError(w, r, err)
				return
			}
			if !member {
				logger.From(ctx).Warn("cross-tenant request refused",
					"user_id", principal.UserID,
					"client_id", clientID)
				sr.notFound(w, r, "not_member")
				return
			}
			ctx = internal.ContextWithPrincipal(ctx, principal)
			ctx = logger.With(ctx, "user_id", principal.UserID)
		}

		ctx = internal.ContextWithTenant(ctx, ref)
		ctx = logger.With(ctx, "tenant_schema", ref.Schema)
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.Int64("hrm.tenant.id", ref.ID),
			attribute.String("hrm.tenant.schema", ref.Schema),
		)
		observability.ObserveTenantResolution("resolved")

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireTenantSchema limits a route group to non-public tenants.
func (sr *SchemaRouter) RequireTenantSchema(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ref, ok := internal.TenantFromContext(r.Context())
		if !ok || ref.Public {
			sr.notFound(w, r, "public_schema")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (sr *SchemaRouter) notFound(w http.ResponseWriter, r *http.Request, outcome string) {
	observability.ObserveTenantResolution(outcome)
	logger.From(r.Context()).Debug("tenant not resolved", "reason", outcome, "path", r.URL.Path)
	sr.base.HandleServiceError(w, r, internal.ErrTenantNotFound())
}

func parseClientID(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
