package handlers

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campus-hub/campus-events-api/internal/auth"
	"github.com/campus-hub/campus-events-api/internal/models"
	"github.com/campus-hub/campus-events-api/internal/services"
	"github.com/campus-hub/campus-events-api/internal/storage"
)

type EventHandler struct {
	events      *services.EventService
	authHandler *auth.AuthHandler
	store       storage.Store
	validate    *validator.Validate
	log         *zap.Logger
}

func NewEventHandler(events *services.EventService, authHandler *auth.AuthHandler, store storage.Store, log *zap.Logger) *EventHandler {
	return &EventHandler{
		events:      events,
		authHandler: authHandler,
		store:       store,
		validate:    validator.New(),
		log:         log,
	}
}

type EventBody struct {
	Title                string    `json:"title" validate:"required" doc:"Event title"`
	Description          string    `json:"description" doc:"Event description"`
	StartsAt             time.Time `json:"starts_at" validate:"required" doc:"Event date and time"`
	RegistrationOpensAt  time.Time `json:"registration_opens_at" validate:"required" doc:"When registration opens"`
	RegistrationClosesAt time.Time `json:"registration_closes_at" validate:"required" doc:"When registration closes"`
	LocationID           uint      `json:"location_id" validate:"required" doc:"Location ID"`
	MaxAttendees         *int      `json:"max_attendees,omitempty" doc:"Capacity, omit for unlimited"`
	AllowedCategories    string    `json:"allowed_categories,omitempty" doc:"Comma-separated category allow-list"`
	Publish              bool      `json:"publish,omitempty" doc:"Publish immediately (moderators only)"`
}

func (b EventBody) toInput() services.EventInput {
	return services.EventInput{
		Title:                b.Title,
		Description:          b.Description,
		StartsAt:             b.StartsAt,
		RegistrationOpensAt:  b.RegistrationOpensAt,
		RegistrationClosesAt: b.RegistrationClosesAt,
		LocationID:           b.LocationID,
		MaxAttendees:         b.MaxAttendees,
		AllowedCategories:    b.AllowedCategories,
		Publish:              b.Publish,
	}
}

type CreateEventRequest struct {
	auth.AuthInput
	Body EventBody
}

type EventResponse struct {
	Body models.Event
}

func (h *EventHandler) HandleCreate(ctx context.Context, input *CreateEventRequest) (*EventResponse, error) {
	actor, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	if err := h.validate.Struct(input.Body); err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	event, err := h.events.Create(ctx, *actor, input.Body.toInput())
	if err != nil {
		return nil, translateError(err)
	}
	return &EventResponse{Body: *event}, nil
}

type GetEventRequest struct {
	ID uint `path:"id"`
}

func (h *EventHandler) HandleGet(ctx context.Context, input *GetEventRequest) (*EventResponse, error) {
	event, err := h.events.Get(ctx, input.ID)
	if err != nil {
		return nil, translateError(err)
	}
	return &EventResponse{Body: *event}, nil
}

type ListEventsRequest struct {
	auth.AuthInput
	Status string `query:"status" doc:"Filter by status" enum:"draft,pending_approval,revision_requested,published,cancelled,completed,"`
}

type ListEventsResponse struct {
	Body []models.Event
}

func (h *EventHandler) HandleList(ctx context.Context, input *ListEventsRequest) (*ListEventsResponse, error) {
	actor, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	events, err := h.events.List(ctx, *actor, models.EventStatus(input.Status))
	if err != nil {
		return nil, translateError(err)
	}
	return &ListEventsResponse{Body: events}, nil
}

type UpdateEventRequest struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body EventBody
}

func (h *EventHandler) HandleUpdate(ctx context.Context, input *UpdateEventRequest) (*EventResponse, error) {
	actor, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	if err := h.validate.Struct(input.Body); err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	event, err := h.events.Update(ctx, input.ID, *actor, input.Body.toInput())
	if err != nil {
		return nil, translateError(err)
	}
	return &EventResponse{Body: *event}, nil
}

type DeleteEventRequest struct {
	auth.AuthInput
	ID uint `path:"id"`
}

func (h *EventHandler) HandleDelete(ctx context.Context, input *DeleteEventRequest) (*struct{}, error) {
	actor, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	attachments, err := h.events.Delete(ctx, input.ID, *actor)
	if err != nil {
		return nil, translateError(err)
	}
	for _, a := range attachments {
		if err := h.store.Delete(a.StorageKey); err != nil {
			h.log.Warn("failed to delete attachment blob",
				zap.String("key", a.StorageKey), zap.Error(err))
		}
	}
	return nil, nil
}

type TransitionRequest struct {
	auth.AuthInput
	ID uint `path:"id"`
}

func (h *EventHandler) HandleSubmit(ctx context.Context, input *TransitionRequest) (*EventResponse, error) {
	actor, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	event, err := h.events.SubmitForApproval(ctx, input.ID, *actor)
	if err != nil {
		return nil, translateError(err)
	}
	return &EventResponse{Body: *event}, nil
}

func (h *EventHandler) HandleApprove(ctx context.Context, input *TransitionRequest) (*EventResponse, error) {
	actor, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	event, err := h.events.Approve(ctx, input.ID, *actor)
	if err != nil {
		return nil, translateError(err)
	}
	return &EventResponse{Body: *event}, nil
}

type RequestRevisionRequest struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body struct {
		Comments string `json:"comments" doc:"Feedback for the event creator" required:"true"`
	}
}

func (h *EventHandler) HandleRequestRevision(ctx context.Context, input *RequestRevisionRequest) (*EventResponse, error) {
	actor, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	event, err := h.events.RequestRevision(ctx, input.ID, *actor, input.Body.Comments)
	if err != nil {
		return nil, translateError(err)
	}
	return &EventResponse{Body: *event}, nil
}

func (h *EventHandler) HandlePublish(ctx context.Context, input *TransitionRequest) (*EventResponse, error) {
	actor, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	event, err := h.events.Publish(ctx, input.ID, *actor)
	if err != nil {
		return nil, translateError(err)
	}
	return &EventResponse{Body: *event}, nil
}

func (h *EventHandler) HandleCancel(ctx context.Context, input *TransitionRequest) (*EventResponse, error) {
	actor, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	event, err := h.events.Cancel(ctx, input.ID, *actor)
	if err != nil {
		return nil, translateError(err)
	}
	return &EventResponse{Body: *event}, nil
}

type EventHistoryRequest struct {
	auth.AuthInput
	ID uint `path:"id"`
}

type EventHistoryResponse struct {
	Body []models.EventApprovalHistory
}

func (h *EventHandler) HandleHistory(ctx context.Context, input *EventHistoryRequest) (*EventHistoryResponse, error) {
	actor, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	if !actor.Role.CanModerate() {
		event, err := h.events.Get(ctx, input.ID)
		if err != nil {
			return nil, translateError(err)
		}
		if event.CreatedByID != actor.ID {
			return nil, huma.Error403Forbidden("Access denied: not your event")
		}
	}

	entries, err := h.events.History(ctx, input.ID)
	if err != nil {
		return nil, translateError(err)
	}
	return &EventHistoryResponse{Body: entries}, nil
}
