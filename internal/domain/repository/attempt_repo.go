package repository

import (
	"context"
	"time"

	"github.com/bellringer/quiz-api/internal/domain/entity"
)

// TextAnswerGrade — оценка свободного ответа от внешнего сервиса проверки
type TextAnswerGrade struct {
	Score     *float64
	IsCorrect *bool
	Feedback  string
}

// AttemptRepository определяет методы для работы с попытками прохождения
type AttemptRepository interface {
	Create(ctx context.Context, attempt *entity.Attempt) error
	GetByID(ctx context.Context, id uint) (*entity.Attempt, error)
	// GetWithAnswers возвращает попытку с выбранными вариантами и текстовыми ответами
	GetWithAnswers(ctx context.Context, id uint) (*entity.Attempt, error)
	ListByQuiz(ctx context.Context, quizID uint) ([]entity.Attempt, error)
	// ReplaceSelectedChoices заменяет выбор пользователя по одному вопросу
	ReplaceSelectedChoices(ctx context.Context, attemptID, questionID uint, choiceIDs []uint) error
	// UpsertTextAnswer сохраняет текстовый ответ, сбрасывая прежнюю оценку
	UpsertTextAnswer(ctx context.Context, answer *entity.AttemptTextAnswer) error
	// GradeTextAnswer записывает оценку существующего ответа, ErrNotFound если ответа нет
	GradeTextAnswer(ctx context.Context, attemptID, questionID uint, grade TextAnswerGrade) (*entity.AttemptTextAnswer, error)
	// ListUngradedTextAnswers возвращает ответы без оценки, старые первыми.
	// attemptID == nil означает все попытки.
	ListUngradedTextAnswers(ctx context.Context, attemptID *uint, limit int) ([]entity.AttemptTextAnswer, error)
	Complete(ctx context.Context, attemptID uint, at time.Time) error
}
