package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"gorm.io/gorm"

	"github.com/campus-hub/campus-events-api/internal/auth"
	"github.com/campus-hub/campus-events-api/internal/models"
)

type SettingHandler struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
}

func NewSettingHandler(db *gorm.DB, authHandler *auth.AuthHandler) *SettingHandler {
	return &SettingHandler{db: db, authHandler: authHandler}
}

type PublicSettingsRequest struct{}

type SettingsResponse struct {
	Body []models.Setting
}

// HandlePublic serves the theming subset readable without authentication.
func (h *SettingHandler) HandlePublic(ctx context.Context, input *PublicSettingsRequest) (*SettingsResponse, error) {
	var settings []models.Setting
	if err := h.db.WithContext(ctx).Where("public = ?", true).Find(&settings).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to load settings")
	}
	return &SettingsResponse{Body: settings}, nil
}

type ListSettingsRequest struct {
	auth.AuthInput
}

func (h *SettingHandler) HandleList(ctx context.Context, input *ListSettingsRequest) (*SettingsResponse, error) {
	actor, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleSuperadmin {
		return nil, huma.Error403Forbidden("Access denied: superadmin role required")
	}

	var settings []models.Setting
	if err := h.db.WithContext(ctx).Find(&settings).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to load settings")
	}
	return &SettingsResponse{Body: settings}, nil
}

type UpsertSettingRequest struct {
	auth.AuthInput
	Body struct {
		Key    string `json:"key" required:"true" doc:"Setting key"`
		Value  string `json:"value" doc:"Setting value"`
		Public bool   `json:"public" doc:"Whether the setting is publicly readable"`
	}
}

type SettingResponse struct {
	Body models.Setting
}

func (h *SettingHandler) HandleUpsert(ctx context.Context, input *UpsertSettingRequest) (*SettingResponse, error) {
	actor, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleSuperadmin {
		return nil, huma.Error403Forbidden("Access denied: superadmin role required")
	}

	var setting models.Setting
	if err := h.db.WithContext(ctx).FirstOrInit(&setting, models.Setting{Key: input.Body.Key}).Error; err != nil {
		return nil, huma.Error500InternalServerError("Database error")
	}
	setting.Value = input.Body.Value
	setting.Public = input.Body.Public
	if err := h.db.WithContext(ctx).Save(&setting).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to save setting")
	}
	return &SettingResponse{Body: setting}, nil
}
