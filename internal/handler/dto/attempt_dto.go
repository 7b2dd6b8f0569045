package dto

import (
	"time"

	"github.com/bellringer/quiz-api/internal/domain/entity"
)

// TextAnswerResponse — свободный ответ и его оценка, если она уже выставлена
type TextAnswerResponse struct {
	AttemptID  uint      `json:"attempt_id"`
	QuestionID uint      `json:"question_id"`
	AnswerText string    `json:"answer_text"`
	Score      *float64  `json:"score,omitempty"`
	IsCorrect  *bool     `json:"is_correct,omitempty"`
	Feedback   string    `json:"feedback,omitempty"`
	AnsweredAt time.Time `json:"answered_at"`
}

// AttemptResponse — попытка с ответами
type AttemptResponse struct {
	ID              uint                 `json:"id"`
	QuizID          uint                 `json:"quiz_id"`
	StartedAt       time.Time            `json:"started_at"`
	CompletedAt     *time.Time           `json:"completed_at,omitempty"`
	SelectedChoices map[uint][]uint      `json:"selected_choices,omitempty"` // question_id → choice_ids
	TextAnswers     []TextAnswerResponse `json:"text_answers,omitempty"`
}

// NewAttemptResponse создает DTO попытки
func NewAttemptResponse(a *entity.Attempt) *AttemptResponse {
	if a == nil {
		return nil
	}
	resp := &AttemptResponse{
		ID:          a.ID,
		QuizID:      a.QuizID,
		StartedAt:   a.StartedAt,
		CompletedAt: a.CompletedAt,
	}
	if len(a.SelectedChoices) > 0 {
		resp.SelectedChoices = make(map[uint][]uint)
		for _, sc := range a.SelectedChoices {
			resp.SelectedChoices[sc.QuestionID] = append(resp.SelectedChoices[sc.QuestionID], sc.ChoiceID)
		}
	}
	for i := range a.TextAnswers {
		resp.TextAnswers = append(resp.TextAnswers, NewTextAnswerResponse(&a.TextAnswers[i]))
	}
	return resp
}

// NewTextAnswerResponse создает DTO свободного ответа
func NewTextAnswerResponse(ta *entity.AttemptTextAnswer) TextAnswerResponse {
	return TextAnswerResponse{
		AttemptID:  ta.AttemptID,
		QuestionID: ta.QuestionID,
		AnswerText: ta.AnswerText,
		Score:      ta.Score,
		IsCorrect:  ta.IsCorrect,
		Feedback:   ta.Feedback,
		AnsweredAt: ta.AnsweredAt,
	}
}

// NewListTextAnswerResponse создает слайс DTO свободных ответов
func NewListTextAnswerResponse(answers []entity.AttemptTextAnswer) []TextAnswerResponse {
	list := make([]TextAnswerResponse, len(answers))
	for i := range answers {
		list[i] = NewTextAnswerResponse(&answers[i])
	}
	return list
}

// NewListAttemptResponse создает слайс DTO попыток без ответов
func NewListAttemptResponse(attempts []entity.Attempt) []*AttemptResponse {
	list := make([]*AttemptResponse, len(attempts))
	for i := range attempts {
		list[i] = &AttemptResponse{
			ID:          attempts[i].ID,
			QuizID:      attempts[i].QuizID,
			StartedAt:   attempts[i].StartedAt,
			CompletedAt: attempts[i].CompletedAt,
		}
	}
	return list
}
