package auth

import (
	"context"
	"net/http"

	"gorm.io/gorm"

	"github.com/campus-hub/campus-events-api/internal/models"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// Middleware protects plain chi routes (file upload/download) that bypass
// the huma layer. Huma operations use Authorize directly instead.
func (h *AuthHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		input := AuthInput{
			Cookie: r.Header.Get("Cookie"),
			APIKey: r.Header.Get("X-API-KEY"),
		}
		userID, err := h.resolveUserID(input)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromContext loads the user stored by Middleware.
func UserFromContext(ctx context.Context, db *gorm.DB) (*models.User, bool) {
	userID, ok := ctx.Value(UserIDKey).(uint)
	if !ok {
		return nil, false
	}
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, false
	}
	return &user, true
}
