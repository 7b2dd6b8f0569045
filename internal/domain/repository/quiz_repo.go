package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bellringer/quiz-api/internal/domain/entity"
)

// DifficultyStats — агрегат ответов пользователя по одному уровню сложности
type DifficultyStats struct {
	Difficulty entity.Difficulty `gorm:"column:difficulty"`
	Correct    int64             `gorm:"column:correct"`
	Total      int64             `gorm:"column:total"`
}

// QuizRepository определяет методы для работы с викторинами
type QuizRepository interface {
	Create(ctx context.Context, quiz *entity.Quiz) error
	GetByID(ctx context.Context, id uint) (*entity.Quiz, error)
	GetWithQuestions(ctx context.Context, id uint) (*entity.Quiz, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Quiz, error)
	// AttachQuestions привязывает вопросы к викторине. Уже привязанные пропускаются.
	AttachQuestions(ctx context.Context, quizID uint, questionIDs []uint) error
	// QuestionIDs возвращает ID привязанных к викторине вопросов
	QuestionIDs(ctx context.Context, quizID uint) ([]uint, error)
	// QuestionCategoryIDs возвращает категории привязанных вопросов без повторов
	QuestionCategoryIDs(ctx context.Context, quizID uint) ([]uint, error)
	MarkCompleted(ctx context.Context, quizID uint, at time.Time) error
	ClearCompleted(ctx context.Context, quizID uint) error

	// История пользователя по категории
	CountCompleted(ctx context.Context, userID uuid.UUID, categoryID uint) (int64, error)
	// AnswerStats возвращает правильные/всего ответы по сложностям на вопросы категории
	// в завершённых викторинах. Сложности без ответов в результат не попадают.
	AnswerStats(ctx context.Context, userID uuid.UUID, categoryID uint) ([]DifficultyStats, error)
}
