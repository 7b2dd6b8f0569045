package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bellringer/quiz-api/internal/domain/entity"
	"github.com/bellringer/quiz-api/internal/domain/repository"
	apperrors "github.com/bellringer/quiz-api/internal/pkg/errors"
)

// QuizRepo реализует repository.QuizRepository
type QuizRepo struct {
	db *gorm.DB
}

// NewQuizRepo создает новый репозиторий викторин
func NewQuizRepo(db *gorm.DB) *QuizRepo {
	return &QuizRepo{db: db}
}

// Create создает новую викторину
func (r *QuizRepo) Create(ctx context.Context, quiz *entity.Quiz) error {
	err := conn(ctx, r.db).Omit("Questions").Create(quiz).Error
	if isForeignKeyViolation(err) {
		return fmt.Errorf("category #%d: %w", quiz.CategoryID, apperrors.ErrNotFound)
	}
	return err
}

// GetByID возвращает викторину по ID
func (r *QuizRepo) GetByID(ctx context.Context, id uint) (*entity.Quiz, error) {
	var quiz entity.Quiz
	if err := conn(ctx, r.db).First(&quiz, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &quiz, nil
}

// GetWithQuestions возвращает викторину с вопросами и их вариантами ответа
func (r *QuizRepo) GetWithQuestions(ctx context.Context, id uint) (*entity.Quiz, error) {
	var quiz entity.Quiz
	err := conn(ctx, r.db).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("questions.id") }).
		Preload("Questions.Choices", func(db *gorm.DB) *gorm.DB { return db.Order("choices.id") }).
		First(&quiz, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &quiz, nil
}

// ListByUser возвращает викторины пользователя, новые первыми
func (r *QuizRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Quiz, error) {
	var quizzes []entity.Quiz
	err := conn(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&quizzes).Error
	return quizzes, err
}

// AttachQuestions привязывает вопросы к викторине через INSERT ... ON CONFLICT DO NOTHING
func (r *QuizRepo) AttachQuestions(ctx context.Context, quizID uint, questionIDs []uint) error {
	if len(questionIDs) == 0 {
		return nil
	}
	links := make([]entity.QuizQuestion, 0, len(questionIDs))
	for _, id := range questionIDs {
		links = append(links, entity.QuizQuestion{QuizID: quizID, QuestionID: id})
	}
	err := conn(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&links).Error
	if isForeignKeyViolation(err) {
		return fmt.Errorf("attach questions to quiz #%d: %w", quizID, apperrors.ErrNotFound)
	}
	return err
}

// QuestionIDs возвращает ID вопросов викторины
func (r *QuizRepo) QuestionIDs(ctx context.Context, quizID uint) ([]uint, error) {
	var ids []uint
	err := conn(ctx, r.db).Model(&entity.QuizQuestion{}).
		Where("quiz_id = ?", quizID).
		Order("question_id").
		Pluck("question_id", &ids).Error
	return ids, err
}

// QuestionCategoryIDs возвращает категории вопросов викторины без повторов
func (r *QuizRepo) QuestionCategoryIDs(ctx context.Context, quizID uint) ([]uint, error) {
	var ids []uint
	err := conn(ctx, r.db).Table("quiz_questions qq").
		Joins("JOIN questions q ON q.id = qq.question_id").
		Where("qq.quiz_id = ?", quizID).
		Distinct().
		Order("q.category_id").
		Pluck("q.category_id", &ids).Error
	return ids, err
}

// MarkCompleted проставляет время завершения викторины
func (r *QuizRepo) MarkCompleted(ctx context.Context, quizID uint, at time.Time) error {
	return r.setCompletedAt(ctx, quizID, &at)
}

// ClearCompleted снимает отметку о завершении
func (r *QuizRepo) ClearCompleted(ctx context.Context, quizID uint) error {
	return r.setCompletedAt(ctx, quizID, nil)
}

func (r *QuizRepo) setCompletedAt(ctx context.Context, quizID uint, at *time.Time) error {
	result := conn(ctx, r.db).Model(&entity.Quiz{}).
		Where("id = ?", quizID).
		Update("completed_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("quiz #%d: %w", quizID, apperrors.ErrNotFound)
	}
	return nil
}

// CountCompleted возвращает число завершённых викторин пользователя в категории
func (r *QuizRepo) CountCompleted(ctx context.Context, userID uuid.UUID, categoryID uint) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&entity.Quiz{}).
		Where("user_id = ? AND category_id = ? AND completed_at IS NOT NULL", userID, categoryID).
		Count(&count).Error
	return count, err
}

// answerStatsSQL считает ответы на вопросы категории в завершённых викторинах
// пользователя: выбранные варианты и проверенные текстовые ответы
// (is_correct IS NOT NULL). Категория берётся у вопроса, а не у викторины,
// поэтому викторина по родителю пополняет статистику дочерних категорий.
const answerStatsSQL = `
WITH answer_results AS (
	SELECT qu.difficulty,
	       CASE WHEN c.is_correct THEN 1 ELSE 0 END AS answered_correctly
	  FROM quizzes qz
	  JOIN attempts a ON a.quiz_id = qz.id
	  JOIN attempt_selected_choices ac ON ac.attempt_id = a.id
	  JOIN questions qu ON qu.id = ac.question_id
	  JOIN choices c ON c.id = ac.choice_id
	 WHERE qz.user_id = @user_id
	   AND qu.category_id = @category_id
	   AND qz.completed_at IS NOT NULL

	UNION ALL

	SELECT qu.difficulty,
	       CASE WHEN ata.is_correct THEN 1 ELSE 0 END AS answered_correctly
	  FROM quizzes qz
	  JOIN attempts a ON a.quiz_id = qz.id
	  JOIN attempt_text_answers ata ON ata.attempt_id = a.id
	  JOIN questions qu ON qu.id = ata.question_id
	 WHERE qz.user_id = @user_id
	   AND qu.category_id = @category_id
	   AND qz.completed_at IS NOT NULL
	   AND ata.is_correct IS NOT NULL
)
SELECT difficulty,
       SUM(answered_correctly) AS correct,
       COUNT(*) AS total
  FROM answer_results
 WHERE difficulty IS NOT NULL
 GROUP BY difficulty`

// AnswerStats возвращает статистику ответов по сложностям
func (r *QuizRepo) AnswerStats(ctx context.Context, userID uuid.UUID, categoryID uint) ([]repository.DifficultyStats, error) {
	var rows []repository.DifficultyStats
	err := conn(ctx, r.db).Raw(answerStatsSQL, map[string]interface{}{
		"user_id":     userID,
		"category_id": categoryID,
	}).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("answer stats for user %s in category #%d: %w", userID, categoryID, err)
	}
	return rows, nil
}
