package handlers

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/malexstudio/site_api/internal/graphql"
	"github.com/malexstudio/site_api/internal/models"
)

// SiteConfigResolver serves the single-row site configuration. Admins see
// and edit the full row; contactData is its public projection.
type SiteConfigResolver struct {
	DB *gorm.DB
}

type contactData struct {
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Address      string `json:"address"`
	InstagramURL string `json:"instagram_url"`
}

func (r *SiteConfigResolver) load(ctx context.Context) (*models.SiteConfig, error) {
	var cfg models.SiteConfig
	if err := r.DB.WithContext(ctx).First(&cfg, 1).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *SiteConfigResolver) SiteConfig(ctx context.Context, args map[string]any) *graphql.Response {
	cfg, err := r.load(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return graphql.OK()
		}
		return failure(ctx, err)
	}
	return graphql.OK(cfg)
}

func (r *SiteConfigResolver) ContactData(ctx context.Context, args map[string]any) *graphql.Response {
	cfg, err := r.load(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return graphql.OK()
		}
		return failure(ctx, err)
	}
	return graphql.OK(contactData{
		Phone:        cfg.Phone,
		Email:        cfg.Email,
		Address:      cfg.Address,
		InstagramURL: cfg.InstagramURL,
	})
}

func (r *SiteConfigResolver) UpdateSiteConfig(ctx context.Context, args map[string]any) *graphql.Response {
	input, ok := argMap(args, "input")
	if !ok {
		return graphql.BadRequest("")
	}

	updates := map[string]any{}
	if startingAt, ok := argInt(input, "starting_at"); ok {
		updates["starting_at"] = startingAt
	}
	if closingAt, ok := argInt(input, "closing_at"); ok {
		updates["closing_at"] = closingAt
	}
	if phone, ok := argString(input, "phone"); ok {
		updates["phone"] = phone
	}
	if email, ok := argString(input, "email"); ok {
		updates["email"] = email
	}
	if address, ok := argString(input, "address"); ok {
		updates["address"] = address
	}
	if instagram, ok := argString(input, "instagram_url"); ok {
		updates["instagram_url"] = instagram
	}
	if len(updates) == 0 {
		return graphql.BadRequest("")
	}

	if err := r.DB.WithContext(ctx).Model(&models.SiteConfig{}).Where("id = ?", 1).Updates(updates).Error; err != nil {
		return failure(ctx, err)
	}
	cfg, err := r.load(ctx)
	if err != nil {
		return failure(ctx, err)
	}
	return graphql.OK(cfg)
}
