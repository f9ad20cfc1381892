package errors

import "errors"

// Общие ошибки приложения. Сервисы оборачивают их через fmt.Errorf("...: %w", ...),
// обработчики сопоставляют с HTTP-кодами через errors.Is.
var (
	// ErrNotFound используется, когда запись не найдена или не принадлежит вызывающему.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок аутентификации (нет токена, неверный пароль).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда у пользователя недостаточно прав для действия.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для нарушений бизнес-правил входных данных (422).
	ErrValidation = errors.New("validation failed")

	// ErrBadRequest используется для запросов, неприменимых к текущему состоянию ресурса (400).
	ErrBadRequest = errors.New("bad request")

	// ErrConflict используется для конфликтов состояния: терминальный статус, дубликат,
	// ссылка из активных зависимых записей.
	ErrConflict = errors.New("resource state conflict")

	// ErrInternal оборачивает неклассифицированные ошибки, прервавшие транзакцию.
	ErrInternal = errors.New("internal error")
)
