package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/bellringer/quiz-api/internal/domain/entity"
	"github.com/bellringer/quiz-api/internal/domain/repository"
	apperrors "github.com/bellringer/quiz-api/internal/pkg/errors"
	"github.com/bellringer/quiz-api/internal/service/quizgen"
)

const (
	maxQuestionTextLen = 2000
	maxChoiceTextLen   = 500
	maxChoices         = 10
)

// QuizGenerator — движок генерации викторин
type QuizGenerator interface {
	Generate(ctx context.Context, req quizgen.Request) (*quizgen.Result, error)
	ComputeQuota(ctx context.Context, req quizgen.Request) (quizgen.Mode, quizgen.Quota, error)
}

// GenerationMetrics учитывает исходы генерации
type GenerationMetrics interface {
	ObserveGeneration(mode string, perDifficulty map[string]int, requested, returned int)
	ObserveGenerationError(reason string)
}

// ChoiceInput — вариант ответа во входных данных
type ChoiceInput struct {
	Text      string
	IsCorrect bool
}

// QuestionInput — данные для создания вопроса
type QuestionInput struct {
	CategoryID uint
	Type       string
	Difficulty string
	Text       string
	Choices    []ChoiceInput
}

// QuestionService предоставляет методы для работы с банком вопросов и генерации викторин
type QuestionService struct {
	questionRepo repository.QuestionRepository
	categoryRepo repository.CategoryRepository
	generator    QuizGenerator
	resolver     *quizgen.Resolver
	metrics      GenerationMetrics
	logger       *zap.Logger
}

// NewQuestionService создает новый сервис вопросов. metrics может быть nil.
func NewQuestionService(
	questionRepo repository.QuestionRepository,
	categoryRepo repository.CategoryRepository,
	generator QuizGenerator,
	metrics GenerationMetrics,
	logger *zap.Logger,
) *QuestionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuestionService{
		questionRepo: questionRepo,
		categoryRepo: categoryRepo,
		generator:    generator,
		resolver:     quizgen.NewResolver(categoryRepo),
		metrics:      metrics,
		logger:       logger.Named("question"),
	}
}

// CreateQuestion проверяет и сохраняет вопрос вместе с вариантами
func (s *QuestionService) CreateQuestion(ctx context.Context, in QuestionInput) (*entity.Question, error) {
	question, err := buildQuestion(in)
	if err != nil {
		return nil, err
	}
	if _, err := s.categoryRepo.GetByID(ctx, in.CategoryID); err != nil {
		return nil, fmt.Errorf("failed to get category %d: %w", in.CategoryID, err)
	}
	if err := s.questionRepo.Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}
	return question, nil
}

// GetQuestion возвращает вопрос с вариантами ответа
func (s *QuestionService) GetQuestion(ctx context.Context, id uint) (*entity.Question, error) {
	return s.questionRepo.GetWithChoices(ctx, id)
}

// Stock возвращает запас вопросов по сложностям для категории вместе с её потомками
func (s *QuestionService) Stock(ctx context.Context, categoryID uint) (map[entity.Difficulty]int64, error) {
	ids, err := s.resolver.ResolveSelectionIDs(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return s.questionRepo.CountByDifficulty(ctx, ids)
}

// GenerateQuiz собирает викторину и учитывает результат в метриках
func (s *QuestionService) GenerateQuiz(ctx context.Context, req quizgen.Request) (*quizgen.Result, error) {
	result, err := s.generator.Generate(ctx, req)
	if err != nil {
		reason := generationErrorReason(err)
		if s.metrics != nil {
			s.metrics.ObserveGenerationError(reason)
		}
		if reason == "internal" {
			s.logger.Error("Quiz generation failed",
				zap.Stringer("user_id", req.UserID),
				zap.Uint("category_id", req.CategoryID),
				zap.Error(err))
		}
		return nil, err
	}

	if s.metrics != nil {
		perDifficulty := make(map[string]int, len(entity.Difficulties))
		for _, q := range result.Questions {
			perDifficulty[string(q.Difficulty)]++
		}
		s.metrics.ObserveGeneration(string(result.Mode), perDifficulty, req.Total, len(result.Questions))
	}
	return result, nil
}

// PreviewQuota рассчитывает режим и квоту без выборки вопросов
func (s *QuestionService) PreviewQuota(ctx context.Context, req quizgen.Request) (quizgen.Mode, quizgen.Quota, error) {
	return s.generator.ComputeQuota(ctx, req)
}

func generationErrorReason(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return "validation"
	case errors.Is(err, apperrors.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, apperrors.ErrShortSample):
		return "short_sample"
	case errors.Is(err, apperrors.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperrors.ErrForbidden):
		return "forbidden"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}
	return "internal"
}

// buildQuestion проверяет входные данные и строит сущность вопроса
func buildQuestion(in QuestionInput) (*entity.Question, error) {
	if in.CategoryID == 0 {
		return nil, fmt.Errorf("%w: category_id is required", apperrors.ErrValidation)
	}
	qType, err := entity.ParseQuestionType(in.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	difficulty, err := entity.ParseDifficulty(in.Difficulty)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	text := strings.TrimSpace(in.Text)
	if text == "" || utf8.RuneCountInString(text) > maxQuestionTextLen {
		return nil, fmt.Errorf("%w: question text must be 1..%d characters", apperrors.ErrValidation, maxQuestionTextLen)
	}

	question := &entity.Question{
		Type:       qType,
		Difficulty: difficulty,
		Text:       text,
		CategoryID: in.CategoryID,
	}

	if !qType.HasChoices() {
		if len(in.Choices) > 0 {
			return nil, fmt.Errorf("%w: %s question must not have choices", apperrors.ErrValidation, qType)
		}
		return question, nil
	}

	if len(in.Choices) < 2 || len(in.Choices) > maxChoices {
		return nil, fmt.Errorf("%w: %s question needs 2..%d choices", apperrors.ErrValidation, qType, maxChoices)
	}
	if qType == entity.QuestionTypeTrueFalse && len(in.Choices) != 2 {
		return nil, fmt.Errorf("%w: TRUE_FALSE question needs exactly 2 choices", apperrors.ErrValidation)
	}

	correct := 0
	question.Choices = make([]entity.Choice, 0, len(in.Choices))
	for i, c := range in.Choices {
		choiceText := strings.TrimSpace(c.Text)
		if choiceText == "" || utf8.RuneCountInString(choiceText) > maxChoiceTextLen {
			return nil, fmt.Errorf("%w: choice #%d text must be 1..%d characters", apperrors.ErrValidation, i+1, maxChoiceTextLen)
		}
		if c.IsCorrect {
			correct++
		}
		question.Choices = append(question.Choices, entity.Choice{Text: choiceText, IsCorrect: c.IsCorrect})
	}

	switch {
	case correct == 0:
		return nil, fmt.Errorf("%w: at least one choice must be correct", apperrors.ErrValidation)
	case correct > 1 && qType != entity.QuestionTypeMultipleChoice:
		return nil, fmt.Errorf("%w: %s question must have exactly one correct choice", apperrors.ErrValidation, qType)
	}
	return question, nil
}
