package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"gorm.io/gorm"

	"github.com/campus-hub/campus-events-api/internal/auth"
	"github.com/campus-hub/campus-events-api/internal/models"
)

type MessageHandler struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
}

func NewMessageHandler(db *gorm.DB, authHandler *auth.AuthHandler) *MessageHandler {
	return &MessageHandler{db: db, authHandler: authHandler}
}

type CreateMessageRequest struct {
	auth.AuthInput
	Body struct {
		Subject string `json:"subject" required:"true" doc:"Message subject"`
		Body    string `json:"body" required:"true" doc:"Message body"`
	}
}

type MessageResponse struct {
	Body models.Message
}

func (h *MessageHandler) HandleCreate(ctx context.Context, input *CreateMessageRequest) (*MessageResponse, error) {
	actor, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	message := models.Message{
		FromUserID: actor.ID,
		Subject:    input.Body.Subject,
		Body:       input.Body.Body,
	}
	if err := h.db.WithContext(ctx).Create(&message).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to send message")
	}
	return &MessageResponse{Body: message}, nil
}

type ListMessagesRequest struct {
	auth.AuthInput
	Unread bool `query:"unread" doc:"Only unread messages"`
}

type ListMessagesResponse struct {
	Body []models.Message
}

func (h *MessageHandler) HandleList(ctx context.Context, input *ListMessagesRequest) (*ListMessagesResponse, error) {
	actor, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsAdmin() {
		return nil, huma.Error403Forbidden("Access denied: admin role required")
	}

	q := h.db.WithContext(ctx).Preload("FromUser").Order("created_at DESC")
	if input.Unread {
		q = q.Where("read = ?", false)
	}
	var messages []models.Message
	if err := q.Find(&messages).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to list messages")
	}
	return &ListMessagesResponse{Body: messages}, nil
}

type MarkMessageReadRequest struct {
	auth.AuthInput
	ID uint `path:"id"`
}

func (h *MessageHandler) HandleMarkRead(ctx context.Context, input *MarkMessageReadRequest) (*MessageResponse, error) {
	actor, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsAdmin() {
		return nil, huma.Error403Forbidden("Access denied: admin role required")
	}

	var message models.Message
	if err := h.db.WithContext(ctx).First(&message, input.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("Message not found")
		}
		return nil, huma.Error500InternalServerError("Database error")
	}

	message.Read = true
	if err := h.db.WithContext(ctx).Save(&message).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to update message")
	}
	return &MessageResponse{Body: message}, nil
}
