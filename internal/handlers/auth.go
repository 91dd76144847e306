package handlers

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/malexstudio/site_api/internal/events"
	"github.com/malexstudio/site_api/internal/graphql"
	"github.com/malexstudio/site_api/internal/logging"
	"github.com/malexstudio/site_api/internal/roles"
	"github.com/malexstudio/site_api/internal/service"
)

// AuthResolver owns the four auth mutations: createAT (rotation),
// createRT (backend-gated first issuance), adminLogin and adminLogout.
type AuthResolver struct {
	Service  *service.AuthService
	Producer *events.Producer
}

func bearerFrom(ctx context.Context) (string, bool) {
	info, ok := graphql.RequestInfoFrom(ctx)
	if !ok || info.Authorization == "" {
		return "", false
	}
	return strings.TrimPrefix(info.Authorization, "Bearer "), true
}

// CreateAT rotates the refresh token presented as the bearer credential
// into a fresh pair. The old token is revoked the instant the new pair is
// minted; replaying it afterwards fails like a token that never existed.
func (r *AuthResolver) CreateAT(ctx context.Context, args map[string]any) *graphql.Response {
	l := logging.FromContext(ctx).With("resolver", "createAT")

	raw, ok := bearerFrom(ctx)
	if !ok {
		return graphql.Unauthorized()
	}
	pair, err := r.Service.Rotate(ctx, raw)
	if err != nil {
		return failure(ctx, err)
	}

	publish(ctx, r.Producer, "auth_events", uuid.NewString(), map[string]any{
		"type": "token_rotated",
	})
	l.Info("token_rotated", "status", 200)
	return graphql.OK(pair)
}

// CreateRT mints the very first pair for an arbitrary identity. There is
// no prior token to rotate from, so only the trusted backend process (or
// localhost) may call it.
func (r *AuthResolver) CreateRT(ctx context.Context, args map[string]any) *graphql.Response {
	l := logging.FromContext(ctx).With("resolver", "createRT")

	info, ok := graphql.RequestInfoFrom(ctx)
	if !ok || !r.Service.IsTrustedBackend(info.RemoteIP) {
		l.Warn("issuance_rejected", "status", 403, "reason", "untrusted_sender")
		return graphql.Unauthorized()
	}

	userID, ok := argString(args, "user_id")
	if !ok {
		return graphql.BadRequest("")
	}
	roleName, ok := argString(args, "role")
	if !ok {
		return graphql.BadRequest("")
	}
	role, ok := roles.Parse(roleName)
	if !ok {
		return graphql.BadRequest("")
	}

	pair, err := r.Service.IssuePair(ctx, userID, role)
	if err != nil {
		return failure(ctx, err)
	}

	l.Info("pair_issued", "status", 200, "role", string(role))
	return graphql.OK(pair)
}

// AdminLogin verifies admin credentials and answers with an ADMIN pair.
func (r *AuthResolver) AdminLogin(ctx context.Context, args map[string]any) *graphql.Response {
	l := logging.FromContext(ctx).With("resolver", "adminLogin")

	username, ok := argString(args, "username")
	if !ok {
		return graphql.BadRequest("")
	}
	password, ok := argString(args, "password")
	if !ok {
		return graphql.BadRequest("")
	}

	pair, err := r.Service.AdminLogin(ctx, username, password)
	if err != nil {
		return failure(ctx, err)
	}

	publish(ctx, r.Producer, "auth_events", username, map[string]any{
		"type":     "admin_login",
		"username": username,
	})
	l.Info("admin_login", "status", 200)
	return graphql.OK(pair)
}

// AdminLogout revokes every refresh token of the calling admin identity
// and hands back a fresh GUEST pair under a generated pseudo-subject.
func (r *AuthResolver) AdminLogout(ctx context.Context, args map[string]any) *graphql.Response {
	l := logging.FromContext(ctx).With("resolver", "adminLogout")

	raw, ok := bearerFrom(ctx)
	if !ok {
		return graphql.Unauthorized()
	}
	if err := r.Service.Revoke(ctx, raw); err != nil {
		return failure(ctx, err)
	}

	pair, err := r.Service.IssuePair(ctx, uuid.NewString(), roles.Guest)
	if err != nil {
		return failure(ctx, err)
	}

	publish(ctx, r.Producer, "auth_events", uuid.NewString(), map[string]any{
		"type": "admin_logout",
	})
	l.Info("admin_logout", "status", 200)
	return graphql.OK(pair)
}
