package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/bellringer/quiz-api/internal/domain/entity"
	"github.com/bellringer/quiz-api/internal/domain/repository"
	"github.com/bellringer/quiz-api/internal/service/quizgen"
)

// ============================================================================
// Моки репозиториев
// ============================================================================

// MockQuestionRepository реализует repository.QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, question *entity.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) CreateBatch(ctx context.Context, questions []entity.Question) error {
	args := m.Called(ctx, questions)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id uint) (*entity.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetWithChoices(ctx context.Context, id uint) (*entity.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetByIDsWithChoices(ctx context.Context, ids []uint) ([]entity.Question, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) ListByCategories(ctx context.Context, categoryIDs []uint, limit int) ([]entity.Question, error) {
	args := m.Called(ctx, categoryIDs, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) CountInCategories(ctx context.Context, categoryIDs []uint) (int64, error) {
	args := m.Called(ctx, categoryIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuestionRepository) CountByDifficulty(ctx context.Context, categoryIDs []uint) (map[entity.Difficulty]int64, error) {
	args := m.Called(ctx, categoryIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[entity.Difficulty]int64), args.Error(1)
}

func (m *MockQuestionRepository) DrawRandom(ctx context.Context, categoryIDs []uint, difficulty *entity.Difficulty, excludeIDs []uint, limit int) ([]entity.Question, error) {
	args := m.Called(ctx, categoryIDs, difficulty, excludeIDs, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

// MockCategoryRepository реализует repository.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *entity.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id uint) (*entity.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCategoryRepository) ListRoots(ctx context.Context) ([]entity.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Category), args.Error(1)
}

func (m *MockCategoryRepository) ListChildren(ctx context.Context, parentID uint) ([]entity.Category, error) {
	args := m.Called(ctx, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Category), args.Error(1)
}

func (m *MockCategoryRepository) ExistsByParentAndName(ctx context.Context, parentID *uint, name string) (bool, error) {
	args := m.Called(ctx, parentID, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockCategoryRepository) GetParentAndChildrenIDs(ctx context.Context, id uint) ([]uint, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

// MockQuizRepository реализует repository.QuizRepository
type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) Create(ctx context.Context, quiz *entity.Quiz) error {
	args := m.Called(ctx, quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) GetByID(ctx context.Context, id uint) (*entity.Quiz, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Quiz), args.Error(1)
}

func (m *MockQuizRepository) GetWithQuestions(ctx context.Context, id uint) (*entity.Quiz, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Quiz), args.Error(1)
}

func (m *MockQuizRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Quiz, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Quiz), args.Error(1)
}

func (m *MockQuizRepository) AttachQuestions(ctx context.Context, quizID uint, questionIDs []uint) error {
	args := m.Called(ctx, quizID, questionIDs)
	return args.Error(0)
}

func (m *MockQuizRepository) QuestionIDs(ctx context.Context, quizID uint) ([]uint, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockQuizRepository) QuestionCategoryIDs(ctx context.Context, quizID uint) ([]uint, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockQuizRepository) MarkCompleted(ctx context.Context, quizID uint, at time.Time) error {
	args := m.Called(ctx, quizID, at)
	return args.Error(0)
}

func (m *MockQuizRepository) ClearCompleted(ctx context.Context, quizID uint) error {
	args := m.Called(ctx, quizID)
	return args.Error(0)
}

func (m *MockQuizRepository) CountCompleted(ctx context.Context, userID uuid.UUID, categoryID uint) (int64, error) {
	args := m.Called(ctx, userID, categoryID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuizRepository) AnswerStats(ctx context.Context, userID uuid.UUID, categoryID uint) ([]repository.DifficultyStats, error) {
	args := m.Called(ctx, userID, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.DifficultyStats), args.Error(1)
}

// MockAttemptRepository реализует repository.AttemptRepository
type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) Create(ctx context.Context, attempt *entity.Attempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetByID(ctx context.Context, id uint) (*entity.Attempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) GetWithAnswers(ctx context.Context, id uint) (*entity.Attempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) ListByQuiz(ctx context.Context, quizID uint) ([]entity.Attempt, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) ReplaceSelectedChoices(ctx context.Context, attemptID, questionID uint, choiceIDs []uint) error {
	args := m.Called(ctx, attemptID, questionID, choiceIDs)
	return args.Error(0)
}

func (m *MockAttemptRepository) UpsertTextAnswer(ctx context.Context, answer *entity.AttemptTextAnswer) error {
	args := m.Called(ctx, answer)
	return args.Error(0)
}

func (m *MockAttemptRepository) GradeTextAnswer(ctx context.Context, attemptID, questionID uint, grade repository.TextAnswerGrade) (*entity.AttemptTextAnswer, error) {
	args := m.Called(ctx, attemptID, questionID, grade)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AttemptTextAnswer), args.Error(1)
}

func (m *MockAttemptRepository) ListUngradedTextAnswers(ctx context.Context, attemptID *uint, limit int) ([]entity.AttemptTextAnswer, error) {
	args := m.Called(ctx, attemptID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.AttemptTextAnswer), args.Error(1)
}

func (m *MockAttemptRepository) Complete(ctx context.Context, attemptID uint, at time.Time) error {
	args := m.Called(ctx, attemptID, at)
	return args.Error(0)
}

// MockCacheRepository реализует repository.CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) GetJSON(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

// MockUserRepository реализует repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) FirstOrCreate(ctx context.Context, user *entity.User) (*entity.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	args := m.Called(ctx, id, updates)
	return args.Error(0)
}

// ============================================================================
// Моки сервисных зависимостей
// ============================================================================

// MockQuizGenerator реализует QuizGenerator
type MockQuizGenerator struct {
	mock.Mock
}

func (m *MockQuizGenerator) Generate(ctx context.Context, req quizgen.Request) (*quizgen.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quizgen.Result), args.Error(1)
}

func (m *MockQuizGenerator) ComputeQuota(ctx context.Context, req quizgen.Request) (quizgen.Mode, quizgen.Quota, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(quizgen.Mode), args.Get(1).(quizgen.Quota), args.Error(2)
}

// MockGenerationMetrics реализует GenerationMetrics
type MockGenerationMetrics struct {
	mock.Mock
}

func (m *MockGenerationMetrics) ObserveGeneration(mode string, perDifficulty map[string]int, requested, returned int) {
	m.Called(mode, perDifficulty, requested, returned)
}

func (m *MockGenerationMetrics) ObserveGenerationError(reason string) {
	m.Called(reason)
}

// MockQuizCompleter реализует QuizCompleter
type MockQuizCompleter struct {
	mock.Mock
}

func (m *MockQuizCompleter) CompleteQuiz(ctx context.Context, userID uuid.UUID, quizID uint) error {
	args := m.Called(ctx, userID, quizID)
	return args.Error(0)
}

// MockAccuracyInvalidator реализует AccuracyInvalidator
type MockAccuracyInvalidator struct {
	mock.Mock
}

func (m *MockAccuracyInvalidator) InvalidateAccuracy(ctx context.Context, userID uuid.UUID, categoryIDs ...uint) {
	m.Called(ctx, userID, categoryIDs)
}

// Проверки соответствия интерфейсам
var (
	_ repository.QuestionRepository = (*MockQuestionRepository)(nil)
	_ repository.CategoryRepository = (*MockCategoryRepository)(nil)
	_ repository.QuizRepository     = (*MockQuizRepository)(nil)
	_ repository.AttemptRepository  = (*MockAttemptRepository)(nil)
	_ repository.CacheRepository    = (*MockCacheRepository)(nil)
	_ repository.UserRepository     = (*MockUserRepository)(nil)
	_ QuizGenerator                 = (*MockQuizGenerator)(nil)
	_ GenerationMetrics             = (*MockGenerationMetrics)(nil)
	_ QuizCompleter                 = (*MockQuizCompleter)(nil)
	_ AccuracyInvalidator           = (*QuizService)(nil)
	_ quizgen.HistoryStore          = (*QuizService)(nil)
)

func uintPtr(v uint) *uint { return &v }
