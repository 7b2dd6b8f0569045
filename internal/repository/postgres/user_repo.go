package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bellringer/quiz-api/internal/domain/entity"
	apperrors "github.com/bellringer/quiz-api/internal/pkg/errors"
)

// UserRepo реализует repository.UserRepository
type UserRepo struct {
	db *gorm.DB
}

// NewUserRepo создает новый репозиторий пользователей
func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetByID возвращает пользователя по ID
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	if err := conn(ctx, r.db).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// FirstOrCreate создает запись пользователя при первом входе, гонку решает ON CONFLICT
func (r *UserRepo) FirstOrCreate(ctx context.Context, user *entity.User) (*entity.User, error) {
	if user.Role == "" {
		user.Role = entity.UserRoleUser
	}
	err := conn(ctx, r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(user).Error
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, user.ID)
}

// UpdateProfile обновляет разрешённые поля профиля
func (r *UserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := conn(ctx, r.db).Model(&entity.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
