package handler

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/bellringer/quiz-api/internal/domain/entity"
	"github.com/bellringer/quiz-api/internal/domain/repository"
	"github.com/bellringer/quiz-api/internal/service"
	"github.com/bellringer/quiz-api/internal/service/quizgen"
	"github.com/bellringer/quiz-api/pkg/auth"
)

// ============================================================================
// MockQuestionService
// ============================================================================

type MockQuestionService struct {
	mock.Mock
}

func (m *MockQuestionService) CreateQuestion(ctx context.Context, in service.QuestionInput) (*entity.Question, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionService) GetQuestion(ctx context.Context, id uint) (*entity.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionService) Stock(ctx context.Context, categoryID uint) (map[entity.Difficulty]int64, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[entity.Difficulty]int64), args.Error(1)
}

func (m *MockQuestionService) GenerateQuiz(ctx context.Context, req quizgen.Request) (*quizgen.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quizgen.Result), args.Error(1)
}

func (m *MockQuestionService) PreviewQuota(ctx context.Context, req quizgen.Request) (quizgen.Mode, quizgen.Quota, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(quizgen.Mode), args.Get(1).(quizgen.Quota), args.Error(2)
}

func (m *MockQuestionService) ImportXLSX(ctx context.Context, r io.Reader) (*service.ImportReport, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ImportReport), args.Error(1)
}

func (m *MockQuestionService) ExportXLSX(ctx context.Context, categoryID uint, w io.Writer) error {
	args := m.Called(ctx, categoryID, w)
	return args.Error(0)
}

// ============================================================================
// MockCategoryService
// ============================================================================

type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) CreateCategory(ctx context.Context, area, name string, parentID *uint) (*entity.Category, error) {
	args := m.Called(ctx, area, name, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCategoryService) GetCategory(ctx context.Context, id uint) (*entity.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCategoryService) ListRoots(ctx context.Context) ([]entity.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]entity.Category), args.Error(1)
}

func (m *MockCategoryService) ListChildren(ctx context.Context, parentID uint) ([]entity.Category, error) {
	args := m.Called(ctx, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Category), args.Error(1)
}

// ============================================================================
// MockQuizService
// ============================================================================

type MockQuizService struct {
	mock.Mock
}

func (m *MockQuizService) CreateQuiz(ctx context.Context, userID uuid.UUID, categoryID uint) (*entity.Quiz, error) {
	args := m.Called(ctx, userID, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Quiz), args.Error(1)
}

func (m *MockQuizService) GetQuiz(ctx context.Context, userID uuid.UUID, quizID uint) (*entity.Quiz, error) {
	args := m.Called(ctx, userID, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Quiz), args.Error(1)
}

func (m *MockQuizService) ListUserQuizzes(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Quiz, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]entity.Quiz), args.Error(1)
}

func (m *MockQuizService) AttachQuestions(ctx context.Context, userID uuid.UUID, quizID uint, questionIDs []uint) error {
	return m.Called(ctx, userID, quizID, questionIDs).Error(0)
}

func (m *MockQuizService) CompleteQuiz(ctx context.Context, userID uuid.UUID, quizID uint) error {
	return m.Called(ctx, userID, quizID).Error(0)
}

func (m *MockQuizService) ReopenQuiz(ctx context.Context, userID uuid.UUID, quizID uint) error {
	return m.Called(ctx, userID, quizID).Error(0)
}

func (m *MockQuizService) History(ctx context.Context, userID uuid.UUID, categoryID uint) (*service.QuizHistory, error) {
	args := m.Called(ctx, userID, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.QuizHistory), args.Error(1)
}

// ============================================================================
// MockAttemptService
// ============================================================================

type MockAttemptService struct {
	mock.Mock
}

func (m *MockAttemptService) StartAttempt(ctx context.Context, userID uuid.UUID, quizID uint) (*entity.Attempt, error) {
	args := m.Called(ctx, userID, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Attempt), args.Error(1)
}

func (m *MockAttemptService) GetAttempt(ctx context.Context, userID uuid.UUID, attemptID uint) (*entity.Attempt, error) {
	args := m.Called(ctx, userID, attemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Attempt), args.Error(1)
}

func (m *MockAttemptService) ListAttempts(ctx context.Context, userID uuid.UUID, quizID uint) ([]entity.Attempt, error) {
	args := m.Called(ctx, userID, quizID)
	return args.Get(0).([]entity.Attempt), args.Error(1)
}

func (m *MockAttemptService) SubmitChoices(ctx context.Context, userID uuid.UUID, attemptID, questionID uint, choiceIDs []uint) error {
	return m.Called(ctx, userID, attemptID, questionID, choiceIDs).Error(0)
}

func (m *MockAttemptService) SubmitText(ctx context.Context, userID uuid.UUID, attemptID, questionID uint, text string) error {
	return m.Called(ctx, userID, attemptID, questionID, text).Error(0)
}

func (m *MockAttemptService) CompleteAttempt(ctx context.Context, userID uuid.UUID, attemptID uint) error {
	return m.Called(ctx, userID, attemptID).Error(0)
}

func (m *MockAttemptService) GradeTextAnswer(ctx context.Context, attemptID, questionID uint, grade repository.TextAnswerGrade) (*entity.AttemptTextAnswer, error) {
	args := m.Called(ctx, attemptID, questionID, grade)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AttemptTextAnswer), args.Error(1)
}

func (m *MockAttemptService) ListUngradedTextAnswers(ctx context.Context, attemptID *uint, limit int) ([]entity.AttemptTextAnswer, error) {
	args := m.Called(ctx, attemptID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.AttemptTextAnswer), args.Error(1)
}

// ============================================================================
// MockUserService
// ============================================================================

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Me(ctx context.Context, p service.UserProfile) (*entity.User, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserService) UpdateDisplayName(ctx context.Context, userID uuid.UUID, name string) (*entity.User, error) {
	args := m.Called(ctx, userID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

// ============================================================================
// Токены
// ============================================================================

// stubTokens выдаёт личность по заранее известной строке токена
type stubTokens map[string]*auth.Identity

func (s stubTokens) ParseToken(token string) (*auth.Identity, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return nil, auth.ErrInvalidToken
}

var (
	_ QuestionService = (*MockQuestionService)(nil)
	_ CategoryService = (*MockCategoryService)(nil)
	_ QuizService     = (*MockQuizService)(nil)
	_ AttemptService  = (*MockAttemptService)(nil)
	_ UserService     = (*MockUserService)(nil)
)
