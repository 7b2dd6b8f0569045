package entity

import (
	"fmt"
	"strings"
	"time"
)

// Difficulty — уровень сложности вопроса
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// Difficulties перечисляет уровни в порядке обхода при генерации: лёгкие → средние → сложные
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// ParseDifficulty разбирает сложность без учёта регистра
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToUpper(strings.TrimSpace(s)))
	if !d.IsValid() {
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
	return d, nil
}

// IsValid проверяет, что сложность входит в допустимый набор
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// QuestionType — формат вопроса
type QuestionType string

const (
	QuestionTypeUniqueChoice   QuestionType = "UNIQUE_CHOICE"
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTypeTrueFalse      QuestionType = "TRUE_FALSE"
	QuestionTypeShortAnswer    QuestionType = "SHORT_ANSWER"
)

// ParseQuestionType разбирает тип вопроса без учёта регистра
func ParseQuestionType(s string) (QuestionType, error) {
	t := QuestionType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case QuestionTypeUniqueChoice, QuestionTypeMultipleChoice, QuestionTypeTrueFalse, QuestionTypeShortAnswer:
		return t, nil
	}
	return "", fmt.Errorf("unknown question type %q", s)
}

// HasChoices возвращает true для типов, которые отвечаются выбором варианта
func (t QuestionType) HasChoices() bool {
	return t != QuestionTypeShortAnswer
}

// Question представляет вопрос из банка вопросов.
// Сложность и категория неизменны после создания.
type Question struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	Type       QuestionType `gorm:"size:50;not null;index:idx_questions_type" json:"type"`
	Difficulty Difficulty   `gorm:"size:50;not null;index:idx_questions_difficulty" json:"difficulty"`
	Text       string       `gorm:"column:question;type:text;not null" json:"question"`
	CategoryID uint         `gorm:"not null;index:idx_questions_category" json:"category_id"`
	Choices    []Choice     `gorm:"foreignKey:QuestionID" json:"choices,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// CorrectChoiceIDs возвращает ID правильных вариантов (требует загруженных Choices)
func (q *Question) CorrectChoiceIDs() []uint {
	ids := make([]uint, 0, 1)
	for _, c := range q.Choices {
		if c.IsCorrect {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// HasChoice проверяет, принадлежит ли вариант вопросу
func (q *Question) HasChoice(choiceID uint) bool {
	for _, c := range q.Choices {
		if c.ID == choiceID {
			return true
		}
	}
	return false
}

// Choice — вариант ответа на вопрос
type Choice struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	QuestionID uint      `gorm:"not null;index" json:"question_id"`
	Text       string    `gorm:"column:choice_text;type:text;not null" json:"choice_text"`
	IsCorrect  bool      `gorm:"not null;default:false" json:"-"` // Скрыто от клиента
	CreatedAt  time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Choice) TableName() string {
	return "choices"
}
