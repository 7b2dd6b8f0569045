package repository

import (
	"context"

	"github.com/bellringer/quiz-api/internal/domain/entity"
)

// CategoryRepository определяет методы для работы с деревом категорий
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id uint) (*entity.Category, error)
	ListRoots(ctx context.Context) ([]entity.Category, error)
	ListChildren(ctx context.Context, parentID uint) ([]entity.Category, error)
	// ExistsByParentAndName проверяет уникальность имени среди соседей.
	// parentID == nil означает уровень корневых категорий.
	ExistsByParentAndName(ctx context.Context, parentID *uint, name string) (bool, error)
	// GetParentAndChildrenIDs возвращает ID категории и её прямых потомков по возрастанию
	GetParentAndChildrenIDs(ctx context.Context, id uint) ([]uint, error)
}
