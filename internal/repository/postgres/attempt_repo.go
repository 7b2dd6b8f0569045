package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bellringer/quiz-api/internal/domain/entity"
	"github.com/bellringer/quiz-api/internal/domain/repository"
	apperrors "github.com/bellringer/quiz-api/internal/pkg/errors"
)

// AttemptRepo реализует repository.AttemptRepository
type AttemptRepo struct {
	db *gorm.DB
}

// NewAttemptRepo создает новый репозиторий попыток
func NewAttemptRepo(db *gorm.DB) *AttemptRepo {
	return &AttemptRepo{db: db}
}

// Create открывает новую попытку
func (r *AttemptRepo) Create(ctx context.Context, attempt *entity.Attempt) error {
	err := conn(ctx, r.db).Create(attempt).Error
	if isForeignKeyViolation(err) {
		return fmt.Errorf("quiz #%d: %w", attempt.QuizID, apperrors.ErrNotFound)
	}
	return err
}

// GetByID возвращает попытку по ID
func (r *AttemptRepo) GetByID(ctx context.Context, id uint) (*entity.Attempt, error) {
	var attempt entity.Attempt
	if err := conn(ctx, r.db).First(&attempt, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &attempt, nil
}

// GetWithAnswers возвращает попытку с ответами
func (r *AttemptRepo) GetWithAnswers(ctx context.Context, id uint) (*entity.Attempt, error) {
	var attempt entity.Attempt
	err := conn(ctx, r.db).
		Preload("SelectedChoices", func(db *gorm.DB) *gorm.DB { return db.Order("question_id, choice_id") }).
		Preload("TextAnswers", func(db *gorm.DB) *gorm.DB { return db.Order("question_id") }).
		First(&attempt, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &attempt, nil
}

// ListByQuiz возвращает попытки викторины в порядке начала
func (r *AttemptRepo) ListByQuiz(ctx context.Context, quizID uint) ([]entity.Attempt, error) {
	var attempts []entity.Attempt
	err := conn(ctx, r.db).Where("quiz_id = ?", quizID).Order("started_at, id").Find(&attempts).Error
	return attempts, err
}

// ReplaceSelectedChoices заменяет выбранные варианты по вопросу в одной транзакции
func (r *AttemptRepo) ReplaceSelectedChoices(ctx context.Context, attemptID, questionID uint, choiceIDs []uint) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := r.lockOpen(tx, attemptID); err != nil {
			return err
		}
		if err := tx.Where("attempt_id = ? AND question_id = ?", attemptID, questionID).
			Delete(&entity.AttemptSelectedChoice{}).Error; err != nil {
			return err
		}
		if len(choiceIDs) == 0 {
			return nil
		}
		now := time.Now()
		rows := make([]entity.AttemptSelectedChoice, 0, len(choiceIDs))
		for _, id := range choiceIDs {
			rows = append(rows, entity.AttemptSelectedChoice{
				AttemptID:  attemptID,
				QuestionID: questionID,
				ChoiceID:   id,
				SelectedAt: now,
			})
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	})
}

// UpsertTextAnswer сохраняет текстовый ответ; повторный ответ сбрасывает оценку
func (r *AttemptRepo) UpsertTextAnswer(ctx context.Context, answer *entity.AttemptTextAnswer) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := r.lockOpen(tx, answer.AttemptID); err != nil {
			return err
		}
		answer.Score = nil
		answer.IsCorrect = nil
		answer.Feedback = ""
		if answer.AnsweredAt.IsZero() {
			answer.AnsweredAt = time.Now()
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"answer_text", "score", "is_correct", "feedback", "answered_at"}),
		}).Create(answer).Error
	})
}

// GradeTextAnswer выставляет оценку ответу. Попытка может быть уже завершена.
func (r *AttemptRepo) GradeTextAnswer(ctx context.Context, attemptID, questionID uint, grade repository.TextAnswerGrade) (*entity.AttemptTextAnswer, error) {
	var answer entity.AttemptTextAnswer
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entity.AttemptTextAnswer{}).
			Where("attempt_id = ? AND question_id = ?", attemptID, questionID).
			Updates(map[string]interface{}{
				"score":      grade.Score,
				"is_correct": grade.IsCorrect,
				"feedback":   grade.Feedback,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("text answer of attempt #%d to question #%d: %w", attemptID, questionID, apperrors.ErrNotFound)
		}
		return tx.Where("attempt_id = ? AND question_id = ?", attemptID, questionID).First(&answer).Error
	})
	if err != nil {
		return nil, notFound(err)
	}
	return &answer, nil
}

// ListUngradedTextAnswers возвращает ответы, у которых нет ни балла, ни отметки верности
func (r *AttemptRepo) ListUngradedTextAnswers(ctx context.Context, attemptID *uint, limit int) ([]entity.AttemptTextAnswer, error) {
	query := conn(ctx, r.db).Where("score IS NULL AND is_correct IS NULL")
	if attemptID != nil {
		query = query.Where("attempt_id = ?", *attemptID)
	}
	var answers []entity.AttemptTextAnswer
	err := query.Order("answered_at, attempt_id, question_id").Limit(limit).Find(&answers).Error
	return answers, err
}

// Complete завершает попытку. Повторное завершение → ErrAttemptCompleted.
func (r *AttemptRepo) Complete(ctx context.Context, attemptID uint, at time.Time) error {
	result := conn(ctx, r.db).Model(&entity.Attempt{}).
		Where("id = ? AND completed_at IS NULL", attemptID).
		Update("completed_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, attemptID); err != nil {
			return err
		}
		return fmt.Errorf("attempt #%d: %w", attemptID, repository.ErrAttemptCompleted)
	}
	return nil
}

// lockOpen блокирует строку попытки и проверяет, что она не завершена
func (r *AttemptRepo) lockOpen(tx *gorm.DB, attemptID uint) error {
	var attempt entity.Attempt
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&attempt, attemptID).Error
	if err != nil {
		return notFound(err)
	}
	if attempt.IsCompleted() {
		return fmt.Errorf("attempt #%d: %w", attemptID, repository.ErrAttemptCompleted)
	}
	return nil
}
