package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/campus-hub/campus-events-api/internal/auth"
	"github.com/campus-hub/campus-events-api/internal/models"
)

type UserHandler struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
}

func NewUserHandler(db *gorm.DB, authHandler *auth.AuthHandler) *UserHandler {
	return &UserHandler{db: db, authHandler: authHandler}
}

type MeRequest struct {
	auth.AuthInput
}

type UserResponse struct {
	Body models.User
}

func (h *UserHandler) HandleMe(ctx context.Context, input *MeRequest) (*UserResponse, error) {
	actor, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	return &UserResponse{Body: *actor}, nil
}

type ListUsersRequest struct {
	auth.AuthInput
}

type ListUsersResponse struct {
	Body []models.User
}

func (h *UserHandler) HandleList(ctx context.Context, input *ListUsersRequest) (*ListUsersResponse, error) {
	actor, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsAdmin() {
		return nil, huma.Error403Forbidden("Access denied: admin role required")
	}

	var users []models.User
	if err := h.db.WithContext(ctx).Order("name ASC").Find(&users).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to list users")
	}
	return &ListUsersResponse{Body: users}, nil
}

type CreateUserRequest struct {
	auth.AuthInput
	Body struct {
		Name     string `json:"name" required:"true"`
		Email    string `json:"email" required:"true" format:"email"`
		Password string `json:"password" required:"true" minLength:"8"`
		Role     string `json:"role" enum:"superadmin,admin,approver,user" doc:"Account role"`
		Category string `json:"category" doc:"Audience category, e.g. student or staff"`
	}
}

func (h *UserHandler) HandleCreate(ctx context.Context, input *CreateUserRequest) (*UserResponse, error) {
	actor, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsAdmin() {
		return nil, huma.Error403Forbidden("Access denied: admin role required")
	}

	role := models.Role(input.Body.Role)
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, huma.Error400BadRequest("Unknown role")
	}
	// Only a superadmin may mint another superadmin.
	if role == models.RoleSuperadmin && actor.Role != models.RoleSuperadmin {
		return nil, huma.Error403Forbidden("Access denied: superadmin role required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Body.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to hash password")
	}

	user := models.User{
		Name:         input.Body.Name,
		Email:        input.Body.Email,
		PasswordHash: string(hash),
		Role:         role,
		Category:     input.Body.Category,
		Active:       true,
	}
	if err := h.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, huma.Error409Conflict("A user with this email already exists")
	}
	return &UserResponse{Body: user}, nil
}

type UpdateUserRequest struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body struct {
		Role     string `json:"role" enum:"superadmin,admin,approver,user"`
		Category string `json:"category"`
		Active   bool   `json:"active"`
	}
}

func (h *UserHandler) HandleUpdate(ctx context.Context, input *UpdateUserRequest) (*UserResponse, error) {
	actor, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsAdmin() {
		return nil, huma.Error403Forbidden("Access denied: admin role required")
	}

	var user models.User
	if err := h.db.WithContext(ctx).First(&user, input.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("User not found")
		}
		return nil, huma.Error500InternalServerError("Database error")
	}

	role := models.Role(input.Body.Role)
	if !role.Valid() {
		return nil, huma.Error400BadRequest("Unknown role")
	}
	if (role == models.RoleSuperadmin || user.Role == models.RoleSuperadmin) && actor.Role != models.RoleSuperadmin {
		return nil, huma.Error403Forbidden("Access denied: superadmin role required")
	}

	user.Role = role
	user.Category = input.Body.Category
	user.Active = input.Body.Active
	if err := h.db.WithContext(ctx).Save(&user).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to update user")
	}
	return &UserResponse{Body: user}, nil
}
