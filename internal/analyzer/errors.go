package analyzer

import "errors"

// Ошибки классификации. Наружу не возвращаются: любая из них
// переключает анализатор на эвристику.
var (
	// ErrNoClient — клиент модели не настроен.
	ErrNoClient = errors.New("llm client is not configured")

	// ErrPromptRender — не удалось собрать запрос.
	ErrPromptRender = errors.New("prompt render failed")

	// ErrMalformedOutput — ответ модели не является JSON-объектом.
	ErrMalformedOutput = errors.New("malformed classifier output")

	// ErrMissingField — в ответе нет обязательного поля.
	ErrMissingField = errors.New("classifier output is missing a required field")

	// ErrUnknownIntent — модель вернула неизвестный intent.
	ErrUnknownIntent = errors.New("classifier returned unknown intent")
)
