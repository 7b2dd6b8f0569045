package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/bellringer/quiz-api/internal/domain/entity"
)

// UserRepository определяет методы для работы с пользователями
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	// FirstOrCreate возвращает пользователя, создавая запись при первом обращении
	FirstOrCreate(ctx context.Context, user *entity.User) (*entity.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
}
