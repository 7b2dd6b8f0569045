package entity

import (
	"time"
)

// Attempt — один проход пользователя по вопросам викторины
type Attempt struct {
	ID              uint                    `gorm:"primaryKey" json:"id"`
	QuizID          uint                    `gorm:"not null;index:idx_attempts_quiz" json:"quiz_id"`
	StartedAt       time.Time               `gorm:"not null;index:idx_attempts_started;autoCreateTime" json:"started_at"`
	CompletedAt     *time.Time              `gorm:"index:idx_attempts_completed" json:"completed_at,omitempty"`
	SelectedChoices []AttemptSelectedChoice `gorm:"foreignKey:AttemptID" json:"selected_choices,omitempty"`
	TextAnswers     []AttemptTextAnswer     `gorm:"foreignKey:AttemptID" json:"text_answers,omitempty"`
}

// TableName определяет имя таблицы для GORM
func (Attempt) TableName() string {
	return "attempts"
}

// IsCompleted проверяет, завершена ли попытка
func (a *Attempt) IsCompleted() bool {
	return a.CompletedAt != nil
}

// AttemptSelectedChoice — выбранный в попытке вариант ответа
type AttemptSelectedChoice struct {
	AttemptID  uint      `gorm:"primaryKey" json:"attempt_id"`
	QuestionID uint      `gorm:"primaryKey" json:"question_id"`
	ChoiceID   uint      `gorm:"primaryKey" json:"choice_id"`
	SelectedAt time.Time `gorm:"not null;autoCreateTime" json:"selected_at"`
}

// TableName определяет имя таблицы для GORM
func (AttemptSelectedChoice) TableName() string {
	return "attempt_selected_choices"
}

// AttemptTextAnswer — свободный ответ. Оценка (Score/IsCorrect/Feedback) выставляется
// проверяющим через GradeTextAnswer, до этого поля пустые.
type AttemptTextAnswer struct {
	AttemptID  uint      `gorm:"primaryKey" json:"attempt_id"`
	QuestionID uint      `gorm:"primaryKey" json:"question_id"`
	AnswerText string    `gorm:"type:text;not null" json:"answer_text"`
	Score      *float64  `json:"score,omitempty"`
	IsCorrect  *bool     `json:"is_correct,omitempty"`
	Feedback   string    `gorm:"type:text;not null;default:''" json:"feedback,omitempty"`
	AnsweredAt time.Time `gorm:"not null;autoCreateTime" json:"answered_at"`
}

// TableName определяет имя таблицы для GORM
func (AttemptTextAnswer) TableName() string {
	return "attempt_text_answers"
}
