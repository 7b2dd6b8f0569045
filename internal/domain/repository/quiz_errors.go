package repository

import (
	"fmt"

	apperrors "github.com/bellringer/quiz-api/internal/pkg/errors"
)

var (
	// ErrAttemptCompleted означает, что попытка уже завершена и не принимает ответы.
	ErrAttemptCompleted = fmt.Errorf("attempt is already completed: %w", apperrors.ErrConflict)
	// ErrDuplicateCategory означает, что у родителя уже есть категория с таким именем.
	ErrDuplicateCategory = fmt.Errorf("category with this name already exists under the parent: %w", apperrors.ErrConflict)
)
