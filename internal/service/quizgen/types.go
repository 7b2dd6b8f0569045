package quizgen

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bellringer/quiz-api/internal/domain/entity"
)

// Mode — режим генерации
type Mode string

const (
	// ModeRandom — базовые пропорции со случайным шумом
	ModeRandom Mode = "RANDOM"
	// ModeAdaptive — пропорции смещаются к уровням, где пользователь ошибается чаще
	ModeAdaptive Mode = "ADAPTIVE"
)

// ParseMode разбирает режим без учёта регистра
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case ModeRandom, ModeAdaptive:
		return m, nil
	}
	return "", fmt.Errorf("unknown generation mode %q", s)
}

// Quota — количество вопросов каждого уровня; сумма всегда равна запрошенному total
type Quota struct {
	Easy   int `json:"easy"`
	Medium int `json:"medium"`
	Hard   int `json:"hard"`
}

// Sum возвращает общее количество вопросов
func (q Quota) Sum() int {
	return q.Easy + q.Medium + q.Hard
}

// For возвращает квоту для уровня сложности
func (q Quota) For(d entity.Difficulty) int {
	switch d {
	case entity.DifficultyEasy:
		return q.Easy
	case entity.DifficultyMedium:
		return q.Medium
	case entity.DifficultyHard:
		return q.Hard
	}
	return 0
}

// Weights — неотрицательные веса уровней сложности
type Weights struct {
	Easy   float64 `mapstructure:"easy" json:"easy"`
	Medium float64 `mapstructure:"medium" json:"medium"`
	Hard   float64 `mapstructure:"hard" json:"hard"`
}

// Sum возвращает сумму весов
func (w Weights) Sum() float64 {
	return w.Easy + w.Medium + w.Hard
}

// Accuracy — доля правильных ответов по уровням, каждое значение в [0,1].
// Для уровня без истории используется DefaultAccuracy.
type Accuracy struct {
	Easy   float64 `json:"easy"`
	Medium float64 `json:"medium"`
	Hard   float64 `json:"hard"`
}

// DefaultAccuracy — значение точности при отсутствии ответов
const DefaultAccuracy = 0.5

// Request — запрос на генерацию викторины
type Request struct {
	UserID     uuid.UUID
	QuizID     *uint // nil — создать новую викторину
	CategoryID uint
	Total      int
	// ModeOverride, если задан, отменяет автоматический выбор режима
	ModeOverride *Mode
	// DifficultyFilter принимается и проверяется, но на выборку не влияет
	DifficultyFilter *entity.Difficulty
}

// Result — результат генерации
type Result struct {
	QuizID    uint
	AttemptID uint
	Mode      Mode
	Quota     Quota
	Questions []entity.Question
}
