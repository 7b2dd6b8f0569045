package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bellringer/quiz-api/internal/domain/entity"
	"github.com/bellringer/quiz-api/internal/domain/repository"
	apperrors "github.com/bellringer/quiz-api/internal/pkg/errors"
)

const (
	maxTextAnswerLen   = 2000
	maxFeedbackLen     = 2000
	maxTextAnswerScore = 100
)

// QuizCompleter отмечает викторину завершённой (реализуется QuizService)
type QuizCompleter interface {
	CompleteQuiz(ctx context.Context, userID uuid.UUID, quizID uint) error
}

// AccuracyInvalidator сбрасывает кешированную точность (реализуется QuizService)
type AccuracyInvalidator interface {
	InvalidateAccuracy(ctx context.Context, userID uuid.UUID, categoryIDs ...uint)
}

// AttemptService управляет попытками прохождения и ответами
type AttemptService struct {
	attemptRepo  repository.AttemptRepository
	quizRepo     repository.QuizRepository
	questionRepo repository.QuestionRepository
	completer    QuizCompleter
	accuracy     AccuracyInvalidator
	now          func() time.Time
	logger       *zap.Logger
}

// NewAttemptService создает новый сервис попыток
func NewAttemptService(
	attemptRepo repository.AttemptRepository,
	quizRepo repository.QuizRepository,
	questionRepo repository.QuestionRepository,
	completer QuizCompleter,
	accuracy AccuracyInvalidator,
	logger *zap.Logger,
) *AttemptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttemptService{
		attemptRepo:  attemptRepo,
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		completer:    completer,
		accuracy:     accuracy,
		now:          time.Now,
		logger:       logger.Named("attempt"),
	}
}

// StartAttempt открывает новую попытку по викторине пользователя
func (s *AttemptService) StartAttempt(ctx context.Context, userID uuid.UUID, quizID uint) (*entity.Attempt, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.UserID != userID {
		return nil, ErrNotQuizOwner
	}

	attempt := &entity.Attempt{QuizID: quizID}
	if err := s.attemptRepo.Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}
	return attempt, nil
}

// GetAttempt возвращает попытку вместе с ответами
func (s *AttemptService) GetAttempt(ctx context.Context, userID uuid.UUID, attemptID uint) (*entity.Attempt, error) {
	attempt, err := s.attemptRepo.GetWithAnswers(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownerQuiz(ctx, userID, attempt.QuizID); err != nil {
		return nil, err
	}
	return attempt, nil
}

// ListAttempts возвращает попытки по викторине пользователя
func (s *AttemptService) ListAttempts(ctx context.Context, userID uuid.UUID, quizID uint) ([]entity.Attempt, error) {
	if _, err := s.ownerQuiz(ctx, userID, quizID); err != nil {
		return nil, err
	}
	return s.attemptRepo.ListByQuiz(ctx, quizID)
}

// SubmitChoices сохраняет выбранные варианты по вопросу, заменяя прежний выбор
func (s *AttemptService) SubmitChoices(ctx context.Context, userID uuid.UUID, attemptID, questionID uint, choiceIDs []uint) error {
	question, err := s.answerableQuestion(ctx, userID, attemptID, questionID)
	if err != nil {
		return err
	}
	if !question.Type.HasChoices() {
		return fmt.Errorf("%w: question #%d expects a text answer", ErrWrongQuestionType, questionID)
	}

	choiceIDs = uniqueIDs(choiceIDs)
	if len(choiceIDs) == 0 {
		return fmt.Errorf("%w: choice_ids must not be empty", apperrors.ErrValidation)
	}
	if question.Type != entity.QuestionTypeMultipleChoice && len(choiceIDs) > 1 {
		return fmt.Errorf("%w: question #%d accepts a single choice", apperrors.ErrValidation, questionID)
	}
	for _, id := range choiceIDs {
		if !question.HasChoice(id) {
			return fmt.Errorf("%w: choice #%d", ErrChoiceNotInQuestion, id)
		}
	}

	if err := s.attemptRepo.ReplaceSelectedChoices(ctx, attemptID, questionID, choiceIDs); err != nil {
		return fmt.Errorf("failed to save choices: %w", err)
	}
	return nil
}

// SubmitText сохраняет свободный ответ. Оценка выставляется позже через GradeTextAnswer.
func (s *AttemptService) SubmitText(ctx context.Context, userID uuid.UUID, attemptID, questionID uint, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("%w: answer_text is required", apperrors.ErrValidation)
	}
	if utf8.RuneCountInString(text) > maxTextAnswerLen {
		return fmt.Errorf("%w: answer_text is longer than %d characters", apperrors.ErrValidation, maxTextAnswerLen)
	}

	question, err := s.answerableQuestion(ctx, userID, attemptID, questionID)
	if err != nil {
		return err
	}
	if question.Type != entity.QuestionTypeShortAnswer {
		return fmt.Errorf("%w: question #%d expects choices", ErrWrongQuestionType, questionID)
	}

	answer := &entity.AttemptTextAnswer{
		AttemptID:  attemptID,
		QuestionID: questionID,
		AnswerText: text,
		AnsweredAt: s.now(),
	}
	if err := s.attemptRepo.UpsertTextAnswer(ctx, answer); err != nil {
		return fmt.Errorf("failed to save text answer: %w", err)
	}
	return nil
}

// CompleteAttempt завершает попытку и вместе с ней викторину
func (s *AttemptService) CompleteAttempt(ctx context.Context, userID uuid.UUID, attemptID uint) error {
	attempt, err := s.attemptRepo.GetByID(ctx, attemptID)
	if err != nil {
		return err
	}
	if _, err := s.ownerQuiz(ctx, userID, attempt.QuizID); err != nil {
		return err
	}
	if err := s.attemptRepo.Complete(ctx, attemptID, s.now()); err != nil {
		return err
	}
	if err := s.completer.CompleteQuiz(ctx, userID, attempt.QuizID); err != nil {
		return fmt.Errorf("attempt #%d completed but quiz was not: %w", attemptID, err)
	}

	s.logger.Info("Attempt completed",
		zap.Uint("attempt_id", attemptID),
		zap.Uint("quiz_id", attempt.QuizID),
		zap.Stringer("user_id", userID))
	return nil
}

// GradeTextAnswer записывает оценку проверяющего и сбрасывает
// кеш точности владельца по категории вопроса
func (s *AttemptService) GradeTextAnswer(ctx context.Context, attemptID, questionID uint, grade repository.TextAnswerGrade) (*entity.AttemptTextAnswer, error) {
	grade.Feedback = strings.TrimSpace(grade.Feedback)
	if err := validateGrade(grade); err != nil {
		return nil, err
	}

	attempt, err := s.attemptRepo.GetByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	quiz, err := s.quizRepo.GetByID(ctx, attempt.QuizID)
	if err != nil {
		return nil, err
	}
	question, err := s.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}

	answer, err := s.attemptRepo.GradeTextAnswer(ctx, attemptID, questionID, grade)
	if err != nil {
		return nil, err
	}
	if s.accuracy != nil {
		s.accuracy.InvalidateAccuracy(ctx, quiz.UserID, question.CategoryID)
	}

	s.logger.Info("Text answer graded",
		zap.Uint("attempt_id", attemptID),
		zap.Uint("question_id", questionID),
		zap.Boolp("is_correct", grade.IsCorrect))
	return answer, nil
}

// ListUngradedTextAnswers возвращает ответы, ожидающие проверки
func (s *AttemptService) ListUngradedTextAnswers(ctx context.Context, attemptID *uint, limit int) ([]entity.AttemptTextAnswer, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.attemptRepo.ListUngradedTextAnswers(ctx, attemptID, limit)
}

func validateGrade(grade repository.TextAnswerGrade) error {
	if grade.Score == nil && grade.IsCorrect == nil {
		return fmt.Errorf("%w: score or is_correct is required", apperrors.ErrValidation)
	}
	if grade.Score != nil && (*grade.Score < 0 || *grade.Score > maxTextAnswerScore) {
		return fmt.Errorf("%w: score must be between 0 and %d", apperrors.ErrValidation, maxTextAnswerScore)
	}
	if utf8.RuneCountInString(grade.Feedback) > maxFeedbackLen {
		return fmt.Errorf("%w: feedback is longer than %d characters", apperrors.ErrValidation, maxFeedbackLen)
	}
	return nil
}

func (s *AttemptService) ownerQuiz(ctx context.Context, userID uuid.UUID, quizID uint) (*entity.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.UserID != userID {
		return nil, ErrNotQuizOwner
	}
	return quiz, nil
}

// answerableQuestion проверяет, что попытка открыта и принадлежит пользователю,
// а вопрос входит в её викторину
func (s *AttemptService) answerableQuestion(ctx context.Context, userID uuid.UUID, attemptID, questionID uint) (*entity.Question, error) {
	attempt, err := s.attemptRepo.GetByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownerQuiz(ctx, userID, attempt.QuizID); err != nil {
		return nil, err
	}
	if attempt.IsCompleted() {
		return nil, fmt.Errorf("attempt #%d: %w", attemptID, repository.ErrAttemptCompleted)
	}

	ids, err := s.quizRepo.QuestionIDs(ctx, attempt.QuizID)
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz questions: %w", err)
	}
	if !slices.Contains(ids, questionID) {
		return nil, fmt.Errorf("%w: question #%d", ErrQuestionNotInQuiz, questionID)
	}

	return s.questionRepo.GetWithChoices(ctx, questionID)
}
