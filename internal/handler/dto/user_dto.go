package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/bellringer/quiz-api/internal/domain/entity"
)

// UserResponse — профиль текущего пользователя
type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	IsAdmin     bool      `json:"is_admin"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewUserResponse создает DTO пользователя
func NewUserResponse(u *entity.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		IsAdmin:     u.IsAdmin(),
		CreatedAt:   u.CreatedAt,
	}
}
