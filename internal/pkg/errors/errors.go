package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок авторизации (неверный токен, нет прав).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда у пользователя недостаточно прав для действия.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния (дубликат категории, повторное завершение и т.п.).
	ErrConflict = errors.New("resource state conflict")
)

// Ошибки генерации вопросов
var (
	// ErrInsufficientStock — в выбранных категориях меньше вопросов, чем запрошено.
	// Оборачивается с указанием "have X, need Y".
	ErrInsufficientStock = errors.New("not enough questions in these categories")

	// ErrShortSample — выборка оказалась короче запрошенной несмотря на пройденную проверку запаса
	// (например, вопросы удалили параллельно). Возвращается только при strict-политике.
	ErrShortSample = errors.New("sampled fewer questions than requested")
)

// IsClientError сообщает, вызвана ли ошибка некорректным вводом клиента.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrInsufficientStock)
}
