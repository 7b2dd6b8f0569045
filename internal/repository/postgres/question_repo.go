package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/bellringer/quiz-api/internal/domain/entity"
	apperrors "github.com/bellringer/quiz-api/internal/pkg/errors"
)

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// Create создает новый вопрос; варианты сохраняются ассоциацией
func (r *QuestionRepo) Create(ctx context.Context, question *entity.Question) error {
	err := conn(ctx, r.db).Create(question).Error
	if isForeignKeyViolation(err) {
		return fmt.Errorf("category #%d: %w", question.CategoryID, apperrors.ErrNotFound)
	}
	return err
}

// CreateBatch создает пакет вопросов
func (r *QuestionRepo) CreateBatch(ctx context.Context, questions []entity.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		// Устанавливаем кодировку UTF-8 внутри транзакции
		if err := tx.Exec("SET CLIENT_ENCODING TO 'UTF8'").Error; err != nil {
			return err
		}
		err := tx.CreateInBatches(&questions, 100).Error
		if isForeignKeyViolation(err) {
			return fmt.Errorf("unknown category in batch: %w", apperrors.ErrNotFound)
		}
		return err
	})
}

// GetByID возвращает вопрос по ID
func (r *QuestionRepo) GetByID(ctx context.Context, id uint) (*entity.Question, error) {
	var question entity.Question
	if err := conn(ctx, r.db).First(&question, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &question, nil
}

// GetWithChoices возвращает вопрос с вариантами ответа
func (r *QuestionRepo) GetWithChoices(ctx context.Context, id uint) (*entity.Question, error) {
	var question entity.Question
	err := conn(ctx, r.db).
		Preload("Choices", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&question, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &question, nil
}

// GetByIDsWithChoices возвращает вопросы с вариантами в порядке ID
func (r *QuestionRepo) GetByIDsWithChoices(ctx context.Context, ids []uint) ([]entity.Question, error) {
	if len(ids) == 0 {
		return []entity.Question{}, nil
	}
	var questions []entity.Question
	err := conn(ctx, r.db).
		Preload("Choices", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("id IN ?", ids).
		Order("id").
		Find(&questions).Error
	return questions, err
}

// ListByCategories возвращает вопросы категорий с вариантами в порядке ID
func (r *QuestionRepo) ListByCategories(ctx context.Context, categoryIDs []uint, limit int) ([]entity.Question, error) {
	if len(categoryIDs) == 0 || limit <= 0 {
		return []entity.Question{}, nil
	}
	var questions []entity.Question
	err := conn(ctx, r.db).
		Preload("Choices", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("category_id IN ?", categoryIDs).
		Order("id").
		Limit(limit).
		Find(&questions).Error
	return questions, err
}

// CountInCategories возвращает количество вопросов в наборе категорий
func (r *QuestionRepo) CountInCategories(ctx context.Context, categoryIDs []uint) (int64, error) {
	if len(categoryIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := conn(ctx, r.db).Model(&entity.Question{}).
		Where("category_id IN ?", categoryIDs).
		Count(&count).Error
	return count, err
}

// CountByDifficulty возвращает запас вопросов по уровням сложности
func (r *QuestionRepo) CountByDifficulty(ctx context.Context, categoryIDs []uint) (map[entity.Difficulty]int64, error) {
	result := make(map[entity.Difficulty]int64, len(entity.Difficulties))
	for _, d := range entity.Difficulties {
		result[d] = 0
	}
	if len(categoryIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		Difficulty entity.Difficulty
		Count      int64
	}
	err := conn(ctx, r.db).Model(&entity.Question{}).
		Select("difficulty, COUNT(*) AS count").
		Where("category_id IN ?", categoryIDs).
		Group("difficulty").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.Difficulty] = row.Count
	}
	return result, nil
}

// DrawRandom возвращает до limit случайных вопросов из категорий
func (r *QuestionRepo) DrawRandom(ctx context.Context, categoryIDs []uint, difficulty *entity.Difficulty, excludeIDs []uint, limit int) ([]entity.Question, error) {
	if len(categoryIDs) == 0 || limit <= 0 {
		return []entity.Question{}, nil
	}
	query := conn(ctx, r.db).Where("category_id IN ?", categoryIDs)
	if difficulty != nil {
		query = query.Where("difficulty = ?", *difficulty)
	}
	// Исключаем уже выбранные в текущей генерации вопросы
	if len(excludeIDs) > 0 {
		query = query.Where("id NOT IN ?", excludeIDs)
	}
	var questions []entity.Question
	err := query.Order("RANDOM()").Limit(limit).Find(&questions).Error
	return questions, err
}
