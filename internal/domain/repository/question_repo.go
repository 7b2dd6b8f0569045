package repository

import (
	"context"

	"github.com/bellringer/quiz-api/internal/domain/entity"
)

// QuestionRepository определяет методы для работы с банком вопросов
type QuestionRepository interface {
	// Create сохраняет вопрос вместе с вариантами ответа
	Create(ctx context.Context, question *entity.Question) error
	// CreateBatch сохраняет пакет вопросов одной транзакцией
	CreateBatch(ctx context.Context, questions []entity.Question) error
	GetByID(ctx context.Context, id uint) (*entity.Question, error)
	// GetWithChoices возвращает вопрос с загруженными вариантами
	GetWithChoices(ctx context.Context, id uint) (*entity.Question, error)
	// GetByIDsWithChoices возвращает вопросы с вариантами; отсутствующие ID пропускаются
	GetByIDsWithChoices(ctx context.Context, ids []uint) ([]entity.Question, error)
	// ListByCategories возвращает вопросы категорий с вариантами, не больше limit
	ListByCategories(ctx context.Context, categoryIDs []uint, limit int) ([]entity.Question, error)

	// Методы генерации викторин
	CountInCategories(ctx context.Context, categoryIDs []uint) (int64, error)
	CountByDifficulty(ctx context.Context, categoryIDs []uint) (map[entity.Difficulty]int64, error)
	// DrawRandom возвращает до limit случайных вопросов из категорий, кроме excludeIDs.
	// difficulty == nil отключает фильтр по сложности.
	DrawRandom(ctx context.Context, categoryIDs []uint, difficulty *entity.Difficulty, excludeIDs []uint, limit int) ([]entity.Question, error)
}
