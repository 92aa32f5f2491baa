package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/campus-hub/campus-events-api/internal/auth"
	"github.com/campus-hub/campus-events-api/internal/models"
	"github.com/campus-hub/campus-events-api/internal/services"
)

type RegistrationHandler struct {
	registrations *services.RegistrationService
	authHandler   *auth.AuthHandler
}

func NewRegistrationHandler(registrations *services.RegistrationService, authHandler *auth.AuthHandler) *RegistrationHandler {
	return &RegistrationHandler{registrations: registrations, authHandler: authHandler}
}

type RegisterRequest struct {
	auth.AuthInput
	EventID uint `path:"id"`
}

type RegistrationResponse struct {
	Body models.Registration
}

func (h *RegistrationHandler) HandleRegister(ctx context.Context, input *RegisterRequest) (*RegistrationResponse, error) {
	actor, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	registration, err := h.registrations.Register(ctx, input.EventID, *actor)
	if err != nil {
		return nil, translateError(err)
	}
	return &RegistrationResponse{Body: *registration}, nil
}

type UnregisterRequest struct {
	auth.AuthInput
	EventID uint `path:"id"`
}

type UnregisterResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

func (h *RegistrationHandler) HandleUnregister(ctx context.Context, input *UnregisterRequest) (*UnregisterResponse, error) {
	actor, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	if err := h.registrations.Unregister(ctx, input.EventID, actor.ID); err != nil {
		return nil, translateError(err)
	}

	res := &UnregisterResponse{}
	res.Body.Message = "Registration cancelled"
	return res, nil
}

type EventStatsRequest struct {
	EventID uint `path:"id"`
}

type EventStatsResponse struct {
	Body services.EventStats
}

func (h *RegistrationHandler) HandleStats(ctx context.Context, input *EventStatsRequest) (*EventStatsResponse, error) {
	stats, err := h.registrations.Stats(ctx, input.EventID)
	if err != nil {
		return nil, translateError(err)
	}
	return &EventStatsResponse{Body: *stats}, nil
}

type EventRegistrationsRequest struct {
	auth.AuthInput
	EventID uint `path:"id"`
}

type RegistrationsResponse struct {
	Body []models.Registration
}

// HandleListForEvent returns an event's registrations. Moderators only.
func (h *RegistrationHandler) HandleListForEvent(ctx context.Context, input *EventRegistrationsRequest) (*RegistrationsResponse, error) {
	actor, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	if !actor.Role.CanModerate() {
		return nil, huma.Error403Forbidden("Access denied: moderator role required")
	}

	registrations, err := h.registrations.ListForEvent(ctx, input.EventID)
	if err != nil {
		return nil, translateError(err)
	}
	return &RegistrationsResponse{Body: registrations}, nil
}

type MyRegistrationsRequest struct {
	auth.AuthInput
}

func (h *RegistrationHandler) HandleMyRegistrations(ctx context.Context, input *MyRegistrationsRequest) (*RegistrationsResponse, error) {
	actor, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	registrations, err := h.registrations.ListForUser(ctx, actor.ID)
	if err != nil {
		return nil, translateError(err)
	}
	return &RegistrationsResponse{Body: registrations}, nil
}
