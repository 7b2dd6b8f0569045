package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bellringer/quiz-api/internal/domain/entity"
	"github.com/bellringer/quiz-api/internal/domain/repository"
	apperrors "github.com/bellringer/quiz-api/internal/pkg/errors"
	"github.com/bellringer/quiz-api/internal/service/quizgen"
)

type attemptFixture struct {
	attemptRepo  *MockAttemptRepository
	quizRepo     *MockQuizRepository
	questionRepo *MockQuestionRepository
	completer    *MockQuizCompleter
	accuracy     *MockAccuracyInvalidator
	svc          *AttemptService
	userID       uuid.UUID
	now          time.Time
}

func newAttemptFixture() *attemptFixture {
	f := &attemptFixture{
		attemptRepo:  new(MockAttemptRepository),
		quizRepo:     new(MockQuizRepository),
		questionRepo: new(MockQuestionRepository),
		completer:    new(MockQuizCompleter),
		accuracy:     new(MockAccuracyInvalidator),
		userID:       uuid.New(),
		now:          time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewAttemptService(f.attemptRepo, f.quizRepo, f.questionRepo, f.completer, f.accuracy, nil)
	f.svc.now = func() time.Time { return f.now }
	return f
}

// openAttempt настраивает открытую попытку #5 по викторине #10 с вопросами 100..102
func (f *attemptFixture) openAttempt(ctx context.Context) {
	f.attemptRepo.On("GetByID", ctx, uint(5)).Return(&entity.Attempt{ID: 5, QuizID: 10}, nil)
	f.quizRepo.On("GetByID", ctx, uint(10)).Return(&entity.Quiz{ID: 10, UserID: f.userID}, nil)
	f.quizRepo.On("QuestionIDs", ctx, uint(10)).Return([]uint{100, 101, 102}, nil)
}

func uniqueChoiceQuestion() *entity.Question {
	return &entity.Question{
		ID:   100,
		Type: entity.QuestionTypeUniqueChoice,
		Choices: []entity.Choice{
			{ID: 1, QuestionID: 100, IsCorrect: true},
			{ID: 2, QuestionID: 100},
			{ID: 3, QuestionID: 100},
		},
	}
}

// ============================================================================
// SubmitChoices
// ============================================================================

func TestAttemptService_SubmitChoices_Success(t *testing.T) {
	// Arrange
	f := newAttemptFixture()
	ctx := context.Background()
	f.openAttempt(ctx)
	f.questionRepo.On("GetWithChoices", ctx, uint(100)).Return(uniqueChoiceQuestion(), nil)
	f.attemptRepo.On("ReplaceSelectedChoices", ctx, uint(5), uint(100), []uint{2}).Return(nil)

	// Act
	err := f.svc.SubmitChoices(ctx, f.userID, 5, 100, []uint{2, 2})

	// Assert
	require.NoError(t, err)
	f.attemptRepo.AssertExpectations(t)
}

func TestAttemptService_SubmitChoices_Rejections(t *testing.T) {
	multi := &entity.Question{
		ID:   101,
		Type: entity.QuestionTypeMultipleChoice,
		Choices: []entity.Choice{
			{ID: 7, QuestionID: 101, IsCorrect: true},
			{ID: 8, QuestionID: 101, IsCorrect: true},
		},
	}
	text := &entity.Question{ID: 102, Type: entity.QuestionTypeShortAnswer}

	tests := []struct {
		name       string
		questionID uint
		question   *entity.Question
		choiceIDs  []uint
		wantErr    error
	}{
		{"вопрос не из викторины", 999, nil, []uint{1}, ErrQuestionNotInQuiz},
		{"чужой вариант", 100, uniqueChoiceQuestion(), []uint{8}, ErrChoiceNotInQuestion},
		{"несколько вариантов для UNIQUE_CHOICE", 100, uniqueChoiceQuestion(), []uint{1, 2}, apperrors.ErrValidation},
		{"пустой выбор", 101, multi, nil, apperrors.ErrValidation},
		{"выбор для SHORT_ANSWER", 102, text, []uint{1}, ErrWrongQuestionType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAttemptFixture()
			ctx := context.Background()
			f.openAttempt(ctx)
			if tt.question != nil {
				f.questionRepo.On("GetWithChoices", ctx, tt.questionID).Return(tt.question, nil)
			}

			err := f.svc.SubmitChoices(ctx, f.userID, 5, tt.questionID, tt.choiceIDs)

			assert.ErrorIs(t, err, tt.wantErr)
			f.attemptRepo.AssertNotCalled(t, "ReplaceSelectedChoices", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAttemptService_SubmitChoices_MultipleAllowed(t *testing.T) {
	f := newAttemptFixture()
	ctx := context.Background()
	f.openAttempt(ctx)
	f.questionRepo.On("GetWithChoices", ctx, uint(101)).Return(&entity.Question{
		ID:      101,
		Type:    entity.QuestionTypeMultipleChoice,
		Choices: []entity.Choice{{ID: 7, IsCorrect: true}, {ID: 8}},
	}, nil)
	f.attemptRepo.On("ReplaceSelectedChoices", ctx, uint(5), uint(101), []uint{7, 8}).Return(nil)

	err := f.svc.SubmitChoices(ctx, f.userID, 5, 101, []uint{7, 8})

	require.NoError(t, err)
}

func TestAttemptService_SubmitChoices_CompletedAttempt(t *testing.T) {
	f := newAttemptFixture()
	ctx := context.Background()
	done := f.now
	f.attemptRepo.On("GetByID", ctx, uint(5)).Return(&entity.Attempt{ID: 5, QuizID: 10, CompletedAt: &done}, nil)
	f.quizRepo.On("GetByID", ctx, uint(10)).Return(&entity.Quiz{ID: 10, UserID: f.userID}, nil)

	err := f.svc.SubmitChoices(ctx, f.userID, 5, 100, []uint{1})

	assert.ErrorIs(t, err, repository.ErrAttemptCompleted)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestAttemptService_SubmitChoices_Forbidden(t *testing.T) {
	f := newAttemptFixture()
	ctx := context.Background()
	f.attemptRepo.On("GetByID", ctx, uint(5)).Return(&entity.Attempt{ID: 5, QuizID: 10}, nil)
	f.quizRepo.On("GetByID", ctx, uint(10)).Return(&entity.Quiz{ID: 10, UserID: uuid.New()}, nil)

	err := f.svc.SubmitChoices(ctx, f.userID, 5, 100, []uint{1})

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

// ============================================================================
// SubmitText
// ============================================================================

func TestAttemptService_SubmitText(t *testing.T) {
	// Arrange
	f := newAttemptFixture()
	ctx := context.Background()
	f.openAttempt(ctx)
	f.questionRepo.On("GetWithChoices", ctx, uint(102)).
		Return(&entity.Question{ID: 102, Type: entity.QuestionTypeShortAnswer}, nil)
	f.attemptRepo.On("UpsertTextAnswer", ctx, mock.MatchedBy(func(a *entity.AttemptTextAnswer) bool {
		return a.AttemptID == 5 && a.QuestionID == 102 && a.AnswerText == "goroutine" && a.AnsweredAt.Equal(f.now)
	})).Return(nil)

	// Act
	err := f.svc.SubmitText(ctx, f.userID, 5, 102, "  goroutine  ")

	// Assert
	require.NoError(t, err)
	f.attemptRepo.AssertExpectations(t)
}

func TestAttemptService_SubmitText_Validation(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"пустой ответ", "   "},
		{"слишком длинный ответ", strings.Repeat("я", maxTextAnswerLen+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAttemptFixture()

			err := f.svc.SubmitText(context.Background(), f.userID, 5, 102, tt.text)

			assert.ErrorIs(t, err, apperrors.ErrValidation)
			f.attemptRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
		})
	}
}

func TestAttemptService_SubmitText_ChoiceQuestion(t *testing.T) {
	f := newAttemptFixture()
	ctx := context.Background()
	f.openAttempt(ctx)
	f.questionRepo.On("GetWithChoices", ctx, uint(100)).Return(uniqueChoiceQuestion(), nil)

	err := f.svc.SubmitText(ctx, f.userID, 5, 100, "answer")

	assert.ErrorIs(t, err, ErrWrongQuestionType)
}

// ============================================================================
// Start / Complete
// ============================================================================

func TestAttemptService_StartAttempt(t *testing.T) {
	f := newAttemptFixture()
	ctx := context.Background()
	f.quizRepo.On("GetByID", ctx, uint(10)).Return(&entity.Quiz{ID: 10, UserID: f.userID}, nil)
	f.attemptRepo.On("Create", ctx, mock.MatchedBy(func(a *entity.Attempt) bool { return a.QuizID == 10 })).
		Run(func(args mock.Arguments) { args.Get(1).(*entity.Attempt).ID = 77 }).
		Return(nil)

	attempt, err := f.svc.StartAttempt(ctx, f.userID, 10)

	require.NoError(t, err)
	assert.Equal(t, uint(77), attempt.ID)
}

func TestAttemptService_CompleteAttempt_CompletesQuiz(t *testing.T) {
	// Arrange
	f := newAttemptFixture()
	ctx := context.Background()
	f.attemptRepo.On("GetByID", ctx, uint(5)).Return(&entity.Attempt{ID: 5, QuizID: 10}, nil)
	f.quizRepo.On("GetByID", ctx, uint(10)).Return(&entity.Quiz{ID: 10, UserID: f.userID}, nil)
	f.attemptRepo.On("Complete", ctx, uint(5), f.now).Return(nil)
	f.completer.On("CompleteQuiz", ctx, f.userID, uint(10)).Return(nil)

	// Act
	err := f.svc.CompleteAttempt(ctx, f.userID, 5)

	// Assert
	require.NoError(t, err)
	f.attemptRepo.AssertExpectations(t)
	f.completer.AssertExpectations(t)
}

func TestAttemptService_CompleteAttempt_AlreadyCompleted(t *testing.T) {
	f := newAttemptFixture()
	ctx := context.Background()
	f.attemptRepo.On("GetByID", ctx, uint(5)).Return(&entity.Attempt{ID: 5, QuizID: 10}, nil)
	f.quizRepo.On("GetByID", ctx, uint(10)).Return(&entity.Quiz{ID: 10, UserID: f.userID}, nil)
	f.attemptRepo.On("Complete", ctx, uint(5), f.now).Return(repository.ErrAttemptCompleted)

	err := f.svc.CompleteAttempt(ctx, f.userID, 5)

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	f.completer.AssertNotCalled(t, "CompleteQuiz", mock.Anything, mock.Anything, mock.Anything)
}

// ============================================================================
// Оценка свободных ответов
// ============================================================================

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool { return &v }

func TestAttemptService_GradeTextAnswer(t *testing.T) {
	// Arrange
	f := newAttemptFixture()
	ctx := context.Background()
	owner := uuid.New()
	grade := repository.TextAnswerGrade{Score: floatPtr(80), IsCorrect: boolPtr(true), Feedback: "ok"}
	graded := &entity.AttemptTextAnswer{AttemptID: 5, QuestionID: 102, Score: grade.Score, IsCorrect: grade.IsCorrect, Feedback: "ok"}
	f.attemptRepo.On("GetByID", ctx, uint(5)).Return(&entity.Attempt{ID: 5, QuizID: 10, CompletedAt: &f.now}, nil)
	f.quizRepo.On("GetByID", ctx, uint(10)).Return(&entity.Quiz{ID: 10, UserID: owner, CategoryID: 1}, nil)
	f.questionRepo.On("GetByID", ctx, uint(102)).Return(&entity.Question{ID: 102, CategoryID: 4}, nil)
	f.attemptRepo.On("GradeTextAnswer", ctx, uint(5), uint(102), repository.TextAnswerGrade{
		Score: grade.Score, IsCorrect: grade.IsCorrect, Feedback: "ok",
	}).Return(graded, nil)
	f.accuracy.On("InvalidateAccuracy", ctx, owner, []uint{4}).Return()

	// Act
	grade.Feedback = "  ok  "
	answer, err := f.svc.GradeTextAnswer(ctx, 5, 102, grade)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, graded, answer)
	f.attemptRepo.AssertExpectations(t)
	f.accuracy.AssertExpectations(t)
}

func TestAttemptService_GradeTextAnswer_Validation(t *testing.T) {
	tests := []struct {
		name  string
		grade repository.TextAnswerGrade
	}{
		{"нет ни балла, ни отметки", repository.TextAnswerGrade{Feedback: "?"}},
		{"отрицательный балл", repository.TextAnswerGrade{Score: floatPtr(-1)}},
		{"балл больше максимума", repository.TextAnswerGrade{Score: floatPtr(maxTextAnswerScore + 1)}},
		{"слишком длинный отзыв", repository.TextAnswerGrade{IsCorrect: boolPtr(false), Feedback: strings.Repeat("я", maxFeedbackLen+1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAttemptFixture()

			_, err := f.svc.GradeTextAnswer(context.Background(), 5, 102, tt.grade)

			assert.ErrorIs(t, err, apperrors.ErrValidation)
			f.attemptRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
		})
	}
}

func TestAttemptService_GradeTextAnswer_NoAnswer(t *testing.T) {
	f := newAttemptFixture()
	ctx := context.Background()
	f.attemptRepo.On("GetByID", ctx, uint(5)).Return(&entity.Attempt{ID: 5, QuizID: 10}, nil)
	f.quizRepo.On("GetByID", ctx, uint(10)).Return(&entity.Quiz{ID: 10, UserID: f.userID}, nil)
	f.questionRepo.On("GetByID", ctx, uint(102)).Return(&entity.Question{ID: 102, CategoryID: 4}, nil)
	f.attemptRepo.On("GradeTextAnswer", ctx, uint(5), uint(102), mock.Anything).Return(nil, apperrors.ErrNotFound)

	_, err := f.svc.GradeTextAnswer(ctx, 5, 102, repository.TextAnswerGrade{IsCorrect: boolPtr(true)})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	f.accuracy.AssertNotCalled(t, "InvalidateAccuracy", mock.Anything, mock.Anything, mock.Anything)
}

// Проверенный ответ должен попасть в точность при следующем чтении, а не через TTL кеша
func TestAttemptService_GradeTextAnswer_RefreshesAccuracy(t *testing.T) {
	// Arrange
	ctx := context.Background()
	owner := uuid.New()
	attemptRepo := new(MockAttemptRepository)
	quizRepo := new(MockQuizRepository)
	questionRepo := new(MockQuestionRepository)
	cacheRepo := new(MockCacheRepository)
	quizService := NewQuizService(quizRepo, questionRepo, nil, cacheRepo, time.Minute, nil)
	svc := NewAttemptService(attemptRepo, quizRepo, questionRepo, quizService, quizService, nil)

	key := accuracyKey(owner, 4)
	cached := quizgen.Accuracy{Easy: 1, Medium: 1, Hard: 1}
	cacheRepo.On("GetJSON", ctx, key, mock.AnythingOfType("*quizgen.Accuracy")).
		Run(func(args mock.Arguments) { *args.Get(2).(*quizgen.Accuracy) = cached }).
		Return(nil).Once()
	cacheRepo.On("Delete", ctx, []string{key}).Return(nil).Once()
	cacheRepo.On("GetJSON", ctx, key, mock.Anything).Return(apperrors.ErrNotFound).Once()
	cacheRepo.On("SetJSON", ctx, key, mock.Anything, time.Minute).Return(nil)

	attemptRepo.On("GetByID", ctx, uint(5)).Return(&entity.Attempt{ID: 5, QuizID: 10}, nil)
	quizRepo.On("GetByID", ctx, uint(10)).Return(&entity.Quiz{ID: 10, UserID: owner, CategoryID: 1}, nil)
	questionRepo.On("GetByID", ctx, uint(102)).Return(&entity.Question{ID: 102, CategoryID: 4, Difficulty: entity.DifficultyHard}, nil)
	attemptRepo.On("GradeTextAnswer", ctx, uint(5), uint(102), mock.Anything).
		Return(&entity.AttemptTextAnswer{AttemptID: 5, QuestionID: 102, IsCorrect: boolPtr(false)}, nil)
	quizRepo.On("AnswerStats", ctx, owner, uint(4)).Return([]repository.DifficultyStats{
		{Difficulty: entity.DifficultyHard, Correct: 0, Total: 1},
	}, nil)

	before, err := quizService.LoadAccuracy(ctx, owner, 4)
	require.NoError(t, err)

	// Act
	_, err = svc.GradeTextAnswer(ctx, 5, 102, repository.TextAnswerGrade{IsCorrect: boolPtr(false)})
	require.NoError(t, err)
	after, err := quizService.LoadAccuracy(ctx, owner, 4)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1.0, before.Hard)
	assert.Equal(t, 0.0, after.Hard, "неверный ответ снижает точность по сложным вопросам")
	cacheRepo.AssertExpectations(t)
}

func TestAttemptService_ListUngradedTextAnswers_ClampsLimit(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{"по умолчанию", 0, defaultListLimit},
		{"больше максимума", 1000, maxListLimit},
		{"в пределах", 7, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAttemptFixture()
			ctx := context.Background()
			attemptID := uintPtr(5)
			f.attemptRepo.On("ListUngradedTextAnswers", ctx, attemptID, tt.wantLimit).
				Return([]entity.AttemptTextAnswer{{AttemptID: 5, QuestionID: 102}}, nil)

			answers, err := f.svc.ListUngradedTextAnswers(ctx, attemptID, tt.limit)

			require.NoError(t, err)
			assert.Len(t, answers, 1)
			f.attemptRepo.AssertExpectations(t)
		})
	}
}
