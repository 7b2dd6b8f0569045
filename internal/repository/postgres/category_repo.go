package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/bellringer/quiz-api/internal/domain/entity"
	"github.com/bellringer/quiz-api/internal/domain/repository"
	apperrors "github.com/bellringer/quiz-api/internal/pkg/errors"
)

// CategoryRepo реализует repository.CategoryRepository
type CategoryRepo struct {
	db *gorm.DB
}

// NewCategoryRepo создает новый репозиторий категорий
func NewCategoryRepo(db *gorm.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// Create создает категорию. Повтор имени у того же родителя → ErrDuplicateCategory.
func (r *CategoryRepo) Create(ctx context.Context, category *entity.Category) error {
	err := conn(ctx, r.db).Create(category).Error
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %q", repository.ErrDuplicateCategory, category.Name)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("parent category: %w", apperrors.ErrNotFound)
		}
		return err
	}
	return nil
}

// GetByID возвращает категорию по ID
func (r *CategoryRepo) GetByID(ctx context.Context, id uint) (*entity.Category, error) {
	var category entity.Category
	if err := conn(ctx, r.db).First(&category, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &category, nil
}

// ListRoots возвращает категории верхнего уровня
func (r *CategoryRepo) ListRoots(ctx context.Context) ([]entity.Category, error) {
	var categories []entity.Category
	err := conn(ctx, r.db).Where("parent_id IS NULL").Order("name").Find(&categories).Error
	return categories, err
}

// ListChildren возвращает прямых потомков категории
func (r *CategoryRepo) ListChildren(ctx context.Context, parentID uint) ([]entity.Category, error) {
	var categories []entity.Category
	err := conn(ctx, r.db).Where("parent_id = ?", parentID).Order("name").Find(&categories).Error
	return categories, err
}

// ExistsByParentAndName проверяет наличие соседней категории с тем же именем (без учёта регистра)
func (r *CategoryRepo) ExistsByParentAndName(ctx context.Context, parentID *uint, name string) (bool, error) {
	query := conn(ctx, r.db).Model(&entity.Category{}).Where("LOWER(name) = LOWER(?)", name)
	if parentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetParentAndChildrenIDs возвращает ID категории и её прямых потомков.
// Несуществующая категория → ErrNotFound.
func (r *CategoryRepo) GetParentAndChildrenIDs(ctx context.Context, id uint) ([]uint, error) {
	var ids []uint
	err := conn(ctx, r.db).Model(&entity.Category{}).
		Where("id = ? OR parent_id = ?", id, id).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("category #%d: %w", id, apperrors.ErrNotFound)
	}
	return ids, nil
}
