package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/bellringer/quiz-api/internal/domain/entity"
	"github.com/bellringer/quiz-api/internal/handler/helper"
	"github.com/bellringer/quiz-api/internal/service/quizgen"
)

// QuestionResponse представляет вопрос в формате для ответа клиенту
type QuestionResponse struct {
	ID         uint                  `json:"id"`
	CategoryID uint                  `json:"category_id"`
	Type       string                `json:"type"`
	Difficulty string                `json:"difficulty"`
	Text       string                `json:"question"`
	Choices    []helper.ChoiceOption `json:"choices,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
}

// QuizResponse представляет викторину в формате для ответа клиенту
type QuizResponse struct {
	ID            uint               `json:"id"`
	UserID        uuid.UUID          `json:"user_id"`
	CategoryID    uint               `json:"category_id"`
	QuestionCount int                `json:"question_count"`
	Questions     []QuestionResponse `json:"questions,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	CompletedAt   *time.Time         `json:"completed_at,omitempty"`
}

// QuotaResponse — распределение вопросов по сложностям
type QuotaResponse struct {
	Easy   int `json:"easy"`
	Medium int `json:"medium"`
	Hard   int `json:"hard"`
	Sum    int `json:"sum"`
}

// QuotaPreviewResponse — ответ на предпросмотр квоты
type QuotaPreviewResponse struct {
	Mode  string        `json:"mode"`
	Quota QuotaResponse `json:"quota"`
}

// GenerateQuizResponse — результат генерации. Вопросы отдаются без вариантов ответа.
type GenerateQuizResponse struct {
	QuizID    uint               `json:"quiz_id"`
	AttemptID uint               `json:"attempt_id"`
	Mode      string             `json:"mode"`
	Quota     QuotaResponse      `json:"quota"`
	Requested int                `json:"requested"`
	Questions []QuestionResponse `json:"questions"`
}

// NewQuestionResponse создает DTO для вопроса.
// withChoices добавляет варианты, withCorrect раскрывает правильные.
func NewQuestionResponse(q *entity.Question, withChoices, withCorrect bool) QuestionResponse {
	resp := QuestionResponse{
		ID:         q.ID,
		CategoryID: q.CategoryID,
		Type:       string(q.Type),
		Difficulty: string(q.Difficulty),
		Text:       q.Text,
		CreatedAt:  q.CreatedAt,
	}
	if withChoices && q.Type.HasChoices() {
		resp.Choices = helper.ConvertChoices(q.Choices, withCorrect)
	}
	return resp
}

// NewQuizResponse создает DTO для викторины
func NewQuizResponse(quiz *entity.Quiz, includeQuestions bool) *QuizResponse {
	if quiz == nil {
		return nil
	}

	resp := &QuizResponse{
		ID:            quiz.ID,
		UserID:        quiz.UserID,
		CategoryID:    quiz.CategoryID,
		QuestionCount: len(quiz.Questions),
		CreatedAt:     quiz.CreatedAt,
		CompletedAt:   quiz.CompletedAt,
	}
	if includeQuestions {
		resp.Questions = make([]QuestionResponse, len(quiz.Questions))
		for i := range quiz.Questions {
			// Правильные ответы не раскрываются даже после завершения
			resp.Questions[i] = NewQuestionResponse(&quiz.Questions[i], true, false)
		}
	}
	return resp
}

// NewListQuizResponse создает слайс DTO для списка викторин
func NewListQuizResponse(quizzes []entity.Quiz) []*QuizResponse {
	list := make([]*QuizResponse, len(quizzes))
	for i := range quizzes {
		list[i] = NewQuizResponse(&quizzes[i], false)
	}
	return list
}

// NewQuotaResponse создает DTO квоты
func NewQuotaResponse(q quizgen.Quota) QuotaResponse {
	return QuotaResponse{Easy: q.Easy, Medium: q.Medium, Hard: q.Hard, Sum: q.Sum()}
}

// NewGenerateQuizResponse создает DTO результата генерации
func NewGenerateQuizResponse(res *quizgen.Result, requested int) *GenerateQuizResponse {
	questions := make([]QuestionResponse, len(res.Questions))
	for i := range res.Questions {
		questions[i] = NewQuestionResponse(&res.Questions[i], false, false)
	}
	return &GenerateQuizResponse{
		QuizID:    res.QuizID,
		AttemptID: res.AttemptID,
		Mode:      string(res.Mode),
		Quota:     NewQuotaResponse(res.Quota),
		Requested: requested,
		Questions: questions,
	}
}
