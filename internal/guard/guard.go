package guard

import (
	"context"
	"strings"

	"github.com/malexstudio/site_api/internal/graphql"
	"github.com/malexstudio/site_api/internal/logging"
	"github.com/malexstudio/site_api/internal/roles"
	"github.com/malexstudio/site_api/internal/token"
)

// Principal is the authenticated identity reconstructed from a verified
// token. It travels through the call context; there is no process-wide
// session state.
type Principal struct {
	Subject string
	Role    roles.Role
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// Guard gates protected fields. It owns no state beyond the codec and
// decides nothing about persistence.
type Guard struct {
	Codec *token.Codec
}

func New(codec *token.Codec) *Guard {
	return &Guard{Codec: codec}
}

// Protect wraps a resolver with the authorization gate for one field: the
// bearer token must verify, its role must extend the field's required role
// and the role's permission set must contain the field. Every failure
// takes the same unauthorized shape; the wrapped resolver is never invoked
// on failure.
func (g *Guard) Protect(required roles.Role, field string, next graphql.Resolver) graphql.Resolver {
	return func(ctx context.Context, args map[string]any) *graphql.Response {
		l := logging.FromContext(ctx).With("guard", field)

		info, ok := graphql.RequestInfoFrom(ctx)
		if !ok || info.Authorization == "" {
			l.Warn("request_rejected", "status", 403, "reason", "no_bearer_credential")
			return graphql.Unauthorized()
		}

		raw := strings.TrimPrefix(info.Authorization, "Bearer ")
		claims, err := g.Codec.Verify(raw)
		if err != nil {
			// Expired, malformed and forged all look alike to the caller.
			l.Warn("request_rejected", "status", 403, "reason", "verification_failed", "error", err)
			return graphql.Unauthorized()
		}

		role, ok := claims.Role()
		if !ok {
			l.Warn("request_rejected", "status", 403, "reason", "unknown_role")
			return graphql.Unauthorized()
		}
		if !roles.Extends(role, required) || !roles.HasPermission(role, field) {
			l.Warn("request_rejected", "status", 403, "reason", "permission_denied", "role", string(role))
			return graphql.Unauthorized()
		}

		return next(WithPrincipal(ctx, Principal{Subject: claims.Subject, Role: role}), args)
	}
}
