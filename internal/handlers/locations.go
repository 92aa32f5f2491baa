package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"gorm.io/gorm"

	"github.com/campus-hub/campus-events-api/internal/auth"
	"github.com/campus-hub/campus-events-api/internal/models"
)

type LocationHandler struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
}

func NewLocationHandler(db *gorm.DB, authHandler *auth.AuthHandler) *LocationHandler {
	return &LocationHandler{db: db, authHandler: authHandler}
}

type ListLocationsRequest struct{}

type ListLocationsResponse struct {
	Body []models.Location
}

func (h *LocationHandler) HandleList(ctx context.Context, input *ListLocationsRequest) (*ListLocationsResponse, error) {
	var locations []models.Location
	if err := h.db.WithContext(ctx).Where("active = ?", true).Order("name ASC").Find(&locations).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to list locations")
	}
	return &ListLocationsResponse{Body: locations}, nil
}

type CreateLocationRequest struct {
	auth.AuthInput
	Body struct {
		Name     string `json:"name" required:"true" doc:"Location name"`
		Address  string `json:"address" doc:"Street address or building"`
		Capacity int    `json:"capacity" doc:"Room capacity"`
	}
}

type LocationResponse struct {
	Body models.Location
}

func (h *LocationHandler) HandleCreate(ctx context.Context, input *CreateLocationRequest) (*LocationResponse, error) {
	actor, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsAdmin() {
		return nil, huma.Error403Forbidden("Access denied: admin role required")
	}

	location := models.Location{
		Name:     input.Body.Name,
		Address:  input.Body.Address,
		Capacity: input.Body.Capacity,
		Active:   true,
	}
	if err := h.db.WithContext(ctx).Create(&location).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to create location")
	}
	return &LocationResponse{Body: location}, nil
}

type UpdateLocationRequest struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body struct {
		Name     string `json:"name" required:"true"`
		Address  string `json:"address"`
		Capacity int    `json:"capacity"`
		Active   bool   `json:"active"`
	}
}

func (h *LocationHandler) HandleUpdate(ctx context.Context, input *UpdateLocationRequest) (*LocationResponse, error) {
	actor, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsAdmin() {
		return nil, huma.Error403Forbidden("Access denied: admin role required")
	}

	var location models.Location
	if err := h.db.WithContext(ctx).First(&location, input.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("Location not found")
		}
		return nil, huma.Error500InternalServerError("Database error")
	}

	location.Name = input.Body.Name
	location.Address = input.Body.Address
	location.Capacity = input.Body.Capacity
	location.Active = input.Body.Active
	if err := h.db.WithContext(ctx).Save(&location).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to update location")
	}
	return &LocationResponse{Body: location}, nil
}
