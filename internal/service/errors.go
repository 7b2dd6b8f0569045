package service

import (
	"errors"
	"fmt"

	apperrors "github.com/bellringer/quiz-api/internal/pkg/errors"
)

// Ошибки сервисов, обёрнутые в общие категории apperrors
var (
	ErrQuestionNotInQuiz   = fmt.Errorf("question does not belong to the quiz: %w", apperrors.ErrValidation)
	ErrChoiceNotInQuestion = fmt.Errorf("choice does not belong to the question: %w", apperrors.ErrValidation)
	ErrWrongQuestionType   = fmt.Errorf("answer format does not match question type: %w", apperrors.ErrValidation)
	ErrNotQuizOwner        = fmt.Errorf("quiz belongs to another user: %w", apperrors.ErrForbidden)
)

func isNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}
