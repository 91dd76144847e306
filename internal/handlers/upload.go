package handlers

import (
	"context"

	"github.com/malexstudio/site_api/internal/graphql"
	"github.com/malexstudio/site_api/internal/logging"
	"github.com/malexstudio/site_api/internal/upload"
)

// UploadResolver proxies the asset host's two-phase direct-upload flow.
type UploadResolver struct {
	Assets upload.Host
}

func (r *UploadResolver) StartImageUpload(ctx context.Context, args map[string]any) *graphql.Response {
	id, ok := argString(args, "id")
	if !ok || id == "" {
		return graphql.BadRequest("")
	}
	img, err := r.Assets.Start(ctx, id)
	if err != nil {
		logging.FromContext(ctx).Error("image_upload_start_failed", "id", id, "error", err)
		return graphql.ServerFailure()
	}
	return graphql.OK(img)
}

func (r *UploadResolver) FinalizeImageUpload(ctx context.Context, args map[string]any) *graphql.Response {
	id, ok := argString(args, "id")
	if !ok || id == "" {
		return graphql.BadRequest("")
	}
	img, err := r.Assets.Finalize(ctx, id)
	if err != nil {
		logging.FromContext(ctx).Error("image_upload_finalize_failed", "id", id, "error", err)
		return graphql.ServerFailure()
	}
	return graphql.OK(img)
}
