package quizgen

import (
	"context"

	"github.com/google/uuid"

	"github.com/bellringer/quiz-api/internal/domain/entity"
)

// HistoryStore отдаёт историю пользователя по категории
type HistoryStore interface {
	CountCompleted(ctx context.Context, userID uuid.UUID, categoryID uint) (int64, error)
	LoadAccuracy(ctx context.Context, userID uuid.UUID, categoryID uint) (Accuracy, error)
}

// CategoryStore раскрывает категорию в набор ID для выборки
type CategoryStore interface {
	GetParentAndChildrenIDs(ctx context.Context, id uint) ([]uint, error)
}

// QuestionStore — банк вопросов, только чтение
type QuestionStore interface {
	CountInCategories(ctx context.Context, categoryIDs []uint) (int64, error)
	DrawRandom(ctx context.Context, categoryIDs []uint, difficulty *entity.Difficulty, excludeIDs []uint, limit int) ([]entity.Question, error)
}

// QuizStore создаёт викторины и привязывает к ним вопросы
type QuizStore interface {
	Create(ctx context.Context, quiz *entity.Quiz) error
	GetByID(ctx context.Context, id uint) (*entity.Quiz, error)
	AttachQuestions(ctx context.Context, quizID uint, questionIDs []uint) error
}

// AttemptStore открывает попытки
type AttemptStore interface {
	Create(ctx context.Context, attempt *entity.Attempt) error
}

// Transactor задаёт границу транзакции для шагов, изменяющих данные
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Dependencies содержит зависимости генератора
type Dependencies struct {
	History    HistoryStore
	Categories CategoryStore
	Questions  QuestionStore
	Quizzes    QuizStore
	Attempts   AttemptStore
	// Tx опционален: без него шаги выполняются без общей транзакции
	Tx Transactor
}
