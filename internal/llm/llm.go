package llm

import (
	"context"
	"errors"
)

// ErrEmptyResponse — сервис вернул пустой ответ.
var ErrEmptyResponse = errors.New("llm returned empty response")

// Request — запрос к генеративной модели.
type Request struct {
	// System — системная инструкция (формат ответа).
	System string

	// Prompt — пользовательская часть запроса.
	Prompt string

	// Temperature — температура сэмплирования.
	Temperature float64

	// MaxTokens — ограничение длины ответа. 0 — без ограничения.
	MaxTokens int
}

// Response — сырой текст ответа модели.
type Response struct {
	Content string
	Model   string
}

// Client — единый интерфейс вызова генеративной модели.
//
// Реализации должны быть безопасны для одновременного использования:
// один клиент разделяется всеми запросами и узлами.
type Client interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}
