package entity

import (
	"time"

	"github.com/google/uuid"
)

// Quiz объединяет пользователя, категорию и набор привязанных вопросов
type Quiz struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_quizzes_user;index:idx_quizzes_user_cat_completed,priority:1" json:"user_id"`
	CategoryID  uint       `gorm:"not null;index:idx_quizzes_category;index:idx_quizzes_user_cat_completed,priority:2" json:"category_id"`
	Category    *Category  `gorm:"foreignKey:CategoryID" json:"-"`
	Questions   []Question `gorm:"many2many:quiz_questions;joinForeignKey:QuizID;joinReferences:QuestionID" json:"questions,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `gorm:"index:idx_quizzes_user_cat_completed,priority:3" json:"completed_at,omitempty"`
}

// TableName определяет имя таблицы для GORM
func (Quiz) TableName() string {
	return "quizzes"
}

// IsCompleted проверяет, завершена ли викторина
func (q *Quiz) IsCompleted() bool {
	return q.CompletedAt != nil
}

// QuizQuestion — связь викторины с вопросом. Пара (quiz_id, question_id) уникальна.
type QuizQuestion struct {
	QuizID     uint `gorm:"primaryKey" json:"quiz_id"`
	QuestionID uint `gorm:"primaryKey;index" json:"question_id"`
}

// TableName определяет имя таблицы для GORM
func (QuizQuestion) TableName() string {
	return "quiz_questions"
}
