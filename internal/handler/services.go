package handler

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/bellringer/quiz-api/internal/domain/entity"
	"github.com/bellringer/quiz-api/internal/domain/repository"
	"github.com/bellringer/quiz-api/internal/service"
	"github.com/bellringer/quiz-api/internal/service/quizgen"
)

// Сервисы, которые используют обработчики. Реализуются пакетом service.

// QuestionService — банк вопросов и генерация
type QuestionService interface {
	CreateQuestion(ctx context.Context, in service.QuestionInput) (*entity.Question, error)
	GetQuestion(ctx context.Context, id uint) (*entity.Question, error)
	Stock(ctx context.Context, categoryID uint) (map[entity.Difficulty]int64, error)
	GenerateQuiz(ctx context.Context, req quizgen.Request) (*quizgen.Result, error)
	PreviewQuota(ctx context.Context, req quizgen.Request) (quizgen.Mode, quizgen.Quota, error)
	ImportXLSX(ctx context.Context, r io.Reader) (*service.ImportReport, error)
	ExportXLSX(ctx context.Context, categoryID uint, w io.Writer) error
}

// CategoryService — дерево категорий
type CategoryService interface {
	CreateCategory(ctx context.Context, area, name string, parentID *uint) (*entity.Category, error)
	GetCategory(ctx context.Context, id uint) (*entity.Category, error)
	ListRoots(ctx context.Context) ([]entity.Category, error)
	ListChildren(ctx context.Context, parentID uint) ([]entity.Category, error)
}

// QuizService — викторины пользователя и история
type QuizService interface {
	CreateQuiz(ctx context.Context, userID uuid.UUID, categoryID uint) (*entity.Quiz, error)
	GetQuiz(ctx context.Context, userID uuid.UUID, quizID uint) (*entity.Quiz, error)
	ListUserQuizzes(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Quiz, error)
	AttachQuestions(ctx context.Context, userID uuid.UUID, quizID uint, questionIDs []uint) error
	CompleteQuiz(ctx context.Context, userID uuid.UUID, quizID uint) error
	ReopenQuiz(ctx context.Context, userID uuid.UUID, quizID uint) error
	History(ctx context.Context, userID uuid.UUID, categoryID uint) (*service.QuizHistory, error)
}

// AttemptService — попытки и ответы
type AttemptService interface {
	StartAttempt(ctx context.Context, userID uuid.UUID, quizID uint) (*entity.Attempt, error)
	GetAttempt(ctx context.Context, userID uuid.UUID, attemptID uint) (*entity.Attempt, error)
	ListAttempts(ctx context.Context, userID uuid.UUID, quizID uint) ([]entity.Attempt, error)
	SubmitChoices(ctx context.Context, userID uuid.UUID, attemptID, questionID uint, choiceIDs []uint) error
	SubmitText(ctx context.Context, userID uuid.UUID, attemptID, questionID uint, text string) error
	CompleteAttempt(ctx context.Context, userID uuid.UUID, attemptID uint) error
	GradeTextAnswer(ctx context.Context, attemptID, questionID uint, grade repository.TextAnswerGrade) (*entity.AttemptTextAnswer, error)
	ListUngradedTextAnswers(ctx context.Context, attemptID *uint, limit int) ([]entity.AttemptTextAnswer, error)
}

// UserService — профиль текущего пользователя
type UserService interface {
	Me(ctx context.Context, p service.UserProfile) (*entity.User, error)
	UpdateDisplayName(ctx context.Context, userID uuid.UUID, name string) (*entity.User, error)
}

var (
	_ QuestionService = (*service.QuestionService)(nil)
	_ CategoryService = (*service.CategoryService)(nil)
	_ QuizService     = (*service.QuizService)(nil)
	_ AttemptService  = (*service.AttemptService)(nil)
	_ UserService     = (*service.UserService)(nil)
)
