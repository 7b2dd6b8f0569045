package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bellringer/quiz-api/internal/domain/entity"
	"github.com/bellringer/quiz-api/internal/domain/repository"
	apperrors "github.com/bellringer/quiz-api/internal/pkg/errors"
	"github.com/bellringer/quiz-api/internal/service/quizgen"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// QuizHistory — сводка истории пользователя по категории
type QuizHistory struct {
	CategoryID uint             `json:"category_id"`
	Completed  int64            `json:"completed"`
	Accuracy   quizgen.Accuracy `json:"accuracy"`
}

// QuizService предоставляет методы для работы с викторинами и историей пользователя.
// Реализует quizgen.HistoryStore.
type QuizService struct {
	quizRepo     repository.QuizRepository
	questionRepo repository.QuestionRepository
	categoryRepo repository.CategoryRepository
	cacheRepo    repository.CacheRepository
	historyTTL   time.Duration
	now          func() time.Time
	logger       *zap.Logger
}

// NewQuizService создает новый сервис викторин. cacheRepo может быть nil,
// тогда история всегда читается из базы.
func NewQuizService(
	quizRepo repository.QuizRepository,
	questionRepo repository.QuestionRepository,
	categoryRepo repository.CategoryRepository,
	cacheRepo repository.CacheRepository,
	historyTTL time.Duration,
	logger *zap.Logger,
) *QuizService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuizService{
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		categoryRepo: categoryRepo,
		cacheRepo:    cacheRepo,
		historyTTL:   historyTTL,
		now:          time.Now,
		logger:       logger.Named("quiz"),
	}
}

func completedKey(userID uuid.UUID, categoryID uint) string {
	return fmt.Sprintf("history:completed:%s:%d", userID, categoryID)
}

func accuracyKey(userID uuid.UUID, categoryID uint) string {
	return fmt.Sprintf("history:accuracy:%s:%d", userID, categoryID)
}

// CountCompleted возвращает число завершённых викторин пользователя в категории
func (s *QuizService) CountCompleted(ctx context.Context, userID uuid.UUID, categoryID uint) (int64, error) {
	key := completedKey(userID, categoryID)
	if s.cacheRepo != nil {
		cached, err := s.cacheRepo.Get(ctx, key)
		if err == nil {
			if n, perr := strconv.ParseInt(cached, 10, 64); perr == nil {
				return n, nil
			}
			s.logger.Warn("Corrupted history cache entry", zap.String("key", key))
		} else {
			s.logCacheMiss(key, err)
		}
	}

	n, err := s.quizRepo.CountCompleted(ctx, userID, categoryID)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed quizzes: %w", err)
	}

	if s.cacheRepo != nil {
		if err := s.cacheRepo.Set(ctx, key, strconv.FormatInt(n, 10), s.historyTTL); err != nil {
			s.logger.Warn("Failed to cache completed count", zap.String("key", key), zap.Error(err))
		}
	}
	return n, nil
}

// LoadAccuracy возвращает долю правильных ответов по уровням сложности.
// Уровень без ответов получает quizgen.DefaultAccuracy.
func (s *QuizService) LoadAccuracy(ctx context.Context, userID uuid.UUID, categoryID uint) (quizgen.Accuracy, error) {
	key := accuracyKey(userID, categoryID)
	if s.cacheRepo != nil {
		var cached quizgen.Accuracy
		err := s.cacheRepo.GetJSON(ctx, key, &cached)
		if err == nil {
			return cached, nil
		}
		s.logCacheMiss(key, err)
	}

	stats, err := s.quizRepo.AnswerStats(ctx, userID, categoryID)
	if err != nil {
		return quizgen.Accuracy{}, fmt.Errorf("failed to load answer stats: %w", err)
	}
	acc := accuracyFromStats(stats)

	if s.cacheRepo != nil {
		if err := s.cacheRepo.SetJSON(ctx, key, acc, s.historyTTL); err != nil {
			s.logger.Warn("Failed to cache accuracy", zap.String("key", key), zap.Error(err))
		}
	}
	return acc, nil
}

func accuracyFromStats(stats []repository.DifficultyStats) quizgen.Accuracy {
	acc := quizgen.Accuracy{
		Easy:   quizgen.DefaultAccuracy,
		Medium: quizgen.DefaultAccuracy,
		Hard:   quizgen.DefaultAccuracy,
	}
	for _, st := range stats {
		if st.Total <= 0 {
			continue
		}
		ratio := float64(st.Correct) / float64(st.Total)
		switch st.Difficulty {
		case entity.DifficultyEasy:
			acc.Easy = ratio
		case entity.DifficultyMedium:
			acc.Medium = ratio
		case entity.DifficultyHard:
			acc.Hard = ratio
		}
	}
	return acc
}

func (s *QuizService) logCacheMiss(key string, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		return
	}
	s.logger.Warn("History cache unavailable, falling back to database", zap.String("key", key), zap.Error(err))
}

// invalidateHistory сбрасывает счётчик завершённых викторин в категории викторины
// и точность по всем категориям её вопросов
func (s *QuizService) invalidateHistory(ctx context.Context, quiz *entity.Quiz) {
	if s.cacheRepo == nil {
		return
	}
	categoryIDs := []uint{quiz.CategoryID}
	questionCategories, err := s.quizRepo.QuestionCategoryIDs(ctx, quiz.ID)
	if err != nil {
		s.logger.Warn("Failed to load question categories for cache invalidation",
			zap.Uint("quiz_id", quiz.ID), zap.Error(err))
	}
	categoryIDs = append(categoryIDs, questionCategories...)

	keys := []string{completedKey(quiz.UserID, quiz.CategoryID)}
	for _, id := range uniqueIDs(categoryIDs) {
		keys = append(keys, accuracyKey(quiz.UserID, id))
	}
	if err := s.cacheRepo.Delete(ctx, keys...); err != nil {
		s.logger.Warn("Failed to invalidate history cache", zap.Uint("quiz_id", quiz.ID), zap.Error(err))
	}
}

// InvalidateAccuracy сбрасывает кеш точности пользователя по категориям
func (s *QuizService) InvalidateAccuracy(ctx context.Context, userID uuid.UUID, categoryIDs ...uint) {
	if s.cacheRepo == nil || len(categoryIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(categoryIDs))
	for _, id := range uniqueIDs(categoryIDs) {
		keys = append(keys, accuracyKey(userID, id))
	}
	if err := s.cacheRepo.Delete(ctx, keys...); err != nil {
		s.logger.Warn("Failed to invalidate accuracy cache", zap.Stringer("user_id", userID), zap.Error(err))
	}
}

// History возвращает сводку истории пользователя по категории
func (s *QuizService) History(ctx context.Context, userID uuid.UUID, categoryID uint) (*QuizHistory, error) {
	if _, err := s.categoryRepo.GetByID(ctx, categoryID); err != nil {
		return nil, err
	}
	completed, err := s.CountCompleted(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}
	acc, err := s.LoadAccuracy(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}
	return &QuizHistory{CategoryID: categoryID, Completed: completed, Accuracy: acc}, nil
}

// ownedQuiz загружает викторину и проверяет владельца
func (s *QuizService) ownedQuiz(ctx context.Context, userID uuid.UUID, quizID uint) (*entity.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.UserID != userID {
		return nil, ErrNotQuizOwner
	}
	return quiz, nil
}

// CreateQuiz создает пустую викторину пользователя в категории
func (s *QuizService) CreateQuiz(ctx context.Context, userID uuid.UUID, categoryID uint) (*entity.Quiz, error) {
	if categoryID == 0 {
		return nil, fmt.Errorf("%w: category_id is required", apperrors.ErrValidation)
	}
	if _, err := s.categoryRepo.GetByID(ctx, categoryID); err != nil {
		return nil, fmt.Errorf("failed to get category %d: %w", categoryID, err)
	}

	quiz := &entity.Quiz{UserID: userID, CategoryID: categoryID}
	if err := s.quizRepo.Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}
	return quiz, nil
}

// GetQuiz возвращает викторину пользователя с вопросами
func (s *QuizService) GetQuiz(ctx context.Context, userID uuid.UUID, quizID uint) (*entity.Quiz, error) {
	if _, err := s.ownedQuiz(ctx, userID, quizID); err != nil {
		return nil, err
	}
	return s.quizRepo.GetWithQuestions(ctx, quizID)
}

// ListUserQuizzes возвращает викторины пользователя постранично
func (s *QuizService) ListUserQuizzes(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Quiz, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.quizRepo.ListByUser(ctx, userID, limit, offset)
}

// AttachQuestions привязывает существующие вопросы к викторине пользователя
func (s *QuizService) AttachQuestions(ctx context.Context, userID uuid.UUID, quizID uint, questionIDs []uint) error {
	if len(questionIDs) == 0 {
		return fmt.Errorf("%w: question_ids must not be empty", apperrors.ErrValidation)
	}
	if _, err := s.ownedQuiz(ctx, userID, quizID); err != nil {
		return err
	}

	unique := uniqueIDs(questionIDs)
	found, err := s.questionRepo.GetByIDsWithChoices(ctx, unique)
	if err != nil {
		return fmt.Errorf("failed to load questions: %w", err)
	}
	if len(found) != len(unique) {
		return fmt.Errorf("%w: %d of %d questions do not exist", apperrors.ErrNotFound, len(unique)-len(found), len(unique))
	}

	if err := s.quizRepo.AttachQuestions(ctx, quizID, unique); err != nil {
		return fmt.Errorf("failed to attach questions to quiz %d: %w", quizID, err)
	}
	return nil
}

// CompleteQuiz отмечает викторину завершённой и сбрасывает кеш истории
func (s *QuizService) CompleteQuiz(ctx context.Context, userID uuid.UUID, quizID uint) error {
	quiz, err := s.ownedQuiz(ctx, userID, quizID)
	if err != nil {
		return err
	}
	if err := s.quizRepo.MarkCompleted(ctx, quizID, s.now()); err != nil {
		return fmt.Errorf("failed to complete quiz %d: %w", quizID, err)
	}
	s.invalidateHistory(ctx, quiz)
	return nil
}

// ReopenQuiz снимает отметку о завершении
func (s *QuizService) ReopenQuiz(ctx context.Context, userID uuid.UUID, quizID uint) error {
	quiz, err := s.ownedQuiz(ctx, userID, quizID)
	if err != nil {
		return err
	}
	if err := s.quizRepo.ClearCompleted(ctx, quizID); err != nil {
		return fmt.Errorf("failed to reopen quiz %d: %w", quizID, err)
	}
	s.invalidateHistory(ctx, quiz)
	return nil
}

// uniqueIDs убирает повторы, сохраняя порядок
func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
