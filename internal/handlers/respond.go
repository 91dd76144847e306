package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/malexstudio/site_api/internal/events"
	"github.com/malexstudio/site_api/internal/graphql"
	"github.com/malexstudio/site_api/internal/logging"
	"github.com/malexstudio/site_api/internal/service"
)

// failure maps a service error to the wire. Credential-shaped failures all
// take the uniform unauthorized shape; anything else (including ledger
// persistence errors) is a server-side failure and says nothing more.
func failure(ctx context.Context, err error) *graphql.Response {
	if errors.Is(err, service.ErrRefreshTokenInvalid) ||
		errors.Is(err, service.ErrLoginFailed) ||
		errors.Is(err, service.ErrSenderNotTrusted) {
		return graphql.Unauthorized()
	}
	logging.FromContext(ctx).Error("request_failed", "status", 500, "error", err)
	return graphql.ServerFailure()
}

// publish sends one event with a bounded timeout. Delivery trouble is
// logged and swallowed: events never fail a client request.
func publish(ctx context.Context, producer *events.Producer, topic, key string, event map[string]any) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := producer.PublishEvent(pubCtx, topic, key, event); err != nil {
		logging.FromContext(ctx).Error("event_publish_failed", "topic", topic, "error", err)
	}
}
