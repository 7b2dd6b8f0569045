package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bellringer/quiz-api/internal/domain/entity"
	"github.com/bellringer/quiz-api/internal/domain/repository"
	apperrors "github.com/bellringer/quiz-api/internal/pkg/errors"
	"github.com/bellringer/quiz-api/internal/service/quizgen"
)

const maxCategoryNameLen = 150

// CategoryService управляет деревом категорий
type CategoryService struct {
	categoryRepo repository.CategoryRepository
	resolver     *quizgen.Resolver
	logger       *zap.Logger
}

// NewCategoryService создает новый сервис категорий
func NewCategoryService(categoryRepo repository.CategoryRepository, logger *zap.Logger) *CategoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{
		categoryRepo: categoryRepo,
		resolver:     quizgen.NewResolver(categoryRepo),
		logger:       logger.Named("category"),
	}
}

// CreateCategory создает категорию. Дочерняя категория наследует область родителя,
// если своя не указана.
func (s *CategoryService) CreateCategory(ctx context.Context, area, name string, parentID *uint) (*entity.Category, error) {
	name = strings.TrimSpace(name)
	area = strings.TrimSpace(area)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", apperrors.ErrValidation)
	}
	if len(name) > maxCategoryNameLen {
		return nil, fmt.Errorf("%w: category name is longer than %d", apperrors.ErrValidation, maxCategoryNameLen)
	}

	parentName := ""
	if parentID != nil {
		parent, err := s.categoryRepo.GetByID(ctx, *parentID)
		if err != nil {
			return nil, fmt.Errorf("failed to get parent category %d: %w", *parentID, err)
		}
		parentName = parent.Name
		if area == "" {
			area = parent.Area
		}
	}

	exists, err := s.categoryRepo.ExistsByParentAndName(ctx, parentID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check category name: %w", err)
	}
	if exists {
		return nil, repository.ErrDuplicateCategory
	}

	category := &entity.Category{
		Area:     area,
		Name:     name,
		Slug:     entity.BuildSlug(area, parentName, name),
		ParentID: parentID,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info("Category created",
		zap.Uint("category_id", category.ID),
		zap.String("slug", category.Slug))
	return category, nil
}

// GetCategory возвращает категорию по ID
func (s *CategoryService) GetCategory(ctx context.Context, id uint) (*entity.Category, error) {
	return s.categoryRepo.GetByID(ctx, id)
}

// ListRoots возвращает корневые категории
func (s *CategoryService) ListRoots(ctx context.Context) ([]entity.Category, error) {
	return s.categoryRepo.ListRoots(ctx)
}

// ListChildren возвращает прямых потомков существующей категории
func (s *CategoryService) ListChildren(ctx context.Context, parentID uint) ([]entity.Category, error) {
	if _, err := s.categoryRepo.GetByID(ctx, parentID); err != nil {
		return nil, err
	}
	return s.categoryRepo.ListChildren(ctx, parentID)
}

// ResolveSelection возвращает ID категорий, из которых берутся вопросы для categoryID
func (s *CategoryService) ResolveSelection(ctx context.Context, categoryID uint) ([]uint, error) {
	return s.resolver.ResolveSelectionIDs(ctx, categoryID)
}
