package helper

import (
	"github.com/bellringer/quiz-api/internal/domain/entity"
)

// ChoiceOption представляет вариант ответа для фронтенда
type ChoiceOption struct {
	ID        uint   `json:"id"`
	Text      string `json:"text"`
	IsCorrect *bool  `json:"is_correct,omitempty"` // Только для администраторов
}

// ConvertChoices преобразует варианты ответа в DTO.
// withCorrect раскрывает правильные ответы; клиентам викторины они не отдаются.
func ConvertChoices(choices []entity.Choice, withCorrect bool) []ChoiceOption {
	converted := make([]ChoiceOption, len(choices))
	for i, c := range choices {
		converted[i] = ChoiceOption{ID: c.ID, Text: c.Text}
		if withCorrect {
			correct := c.IsCorrect
			converted[i].IsCorrect = &correct
		}
	}
	return converted
}
