package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bellringer/quiz-api/internal/domain/entity"
	"github.com/bellringer/quiz-api/internal/domain/repository"
	apperrors "github.com/bellringer/quiz-api/internal/pkg/errors"
)

const maxDisplayNameLen = 100

// UserProfile — данные пользователя из проверенного токена
type UserProfile struct {
	ID    uuid.UUID
	Email string
	Name  string
	Role  string
}

// UserService предоставляет методы для работы с пользователями
type UserService struct {
	userRepo  repository.UserRepository
	adminRole string
	logger    *zap.Logger
}

// NewUserService создает новый сервис пользователей. adminRole — значение claim
// роли, которое даёт права администратора.
func NewUserService(userRepo repository.UserRepository, adminRole string, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		userRepo:  userRepo,
		adminRole: adminRole,
		logger:    logger.Named("user"),
	}
}

// Me возвращает пользователя, создавая запись при первом обращении.
// Email из токена переносится в профиль, если изменился.
func (s *UserService) Me(ctx context.Context, p UserProfile) (*entity.User, error) {
	role := entity.UserRoleUser
	if s.adminRole != "" && p.Role == s.adminRole {
		role = entity.UserRoleAdmin
	}

	user, err := s.userRepo.FirstOrCreate(ctx, &entity.User{
		ID:          p.ID,
		Email:       p.Email,
		DisplayName: p.Name,
		Role:        role,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", p.ID, err)
	}

	updates := map[string]interface{}{}
	if p.Email != "" && p.Email != user.Email {
		updates["email"] = p.Email
		user.Email = p.Email
	}
	if role != user.Role {
		updates["role"] = role
		user.Role = role
	}
	if len(updates) > 0 {
		if err := s.userRepo.UpdateProfile(ctx, p.ID, updates); err != nil {
			s.logger.Warn("Failed to sync user profile from token", zap.Stringer("user_id", p.ID), zap.Error(err))
		}
	}
	return user, nil
}

// UpdateDisplayName меняет отображаемое имя
func (s *UserService) UpdateDisplayName(ctx context.Context, userID uuid.UUID, name string) (*entity.User, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxDisplayNameLen {
		return nil, fmt.Errorf("%w: display_name must be 1..%d characters", apperrors.ErrValidation, maxDisplayNameLen)
	}
	if err := s.userRepo.UpdateProfile(ctx, userID, map[string]interface{}{"display_name": name}); err != nil {
		return nil, fmt.Errorf("failed to update user %s: %w", userID, err)
	}
	return s.userRepo.GetByID(ctx, userID)
}
