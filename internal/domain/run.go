package domain

import (
	"time"

	"github.com/google/uuid"
)

// RequestRecord — сохранённая история обработки одного запроса.
//
// Создаётся после того, как pipeline дошёл до DONE:
// - API сохраняет запись синхронно после ответа
// - Worker сохраняет запись перед публикацией в assist.completed
type RequestRecord struct {
	// ID — уникальный идентификатор запроса.
	ID uuid.UUID `json:"id"`

	// StudentID — идентификатор студента.
	StudentID string `json:"student_id"`

	// Text — исходный текст запроса (без блока документа).
	Text string `json:"text"`

	// Topic — тема, определённая анализатором.
	Topic string `json:"topic"`

	// Intent — намерение, определённое анализатором.
	Intent Intent `json:"intent"`

	// Policy — выбранная политика роутинга.
	Policy string `json:"policy"`

	// Response — итоговый ответ.
	Response *Response `json:"response,omitempty"`

	// Errors — ошибки узлов (диагностика).
	Errors []ErrorInfo `json:"errors,omitempty"`

	// StartedAt — время приёма запроса.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt — время завершения обработки.
	FinishedAt time.Time `json:"finished_at"`

	// CreatedAt — время сохранения записи.
	CreatedAt time.Time `json:"created_at"`
}

// Duration возвращает продолжительность обработки.
func (r *RequestRecord) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Degraded возвращает true, если хотя бы один узел отработал на fallback'е.
func (r *RequestRecord) Degraded() bool {
	return len(r.Errors) > 0
}

// PerformanceEntry — одна прошлая оценка студента.
type PerformanceEntry struct {
	Subject string    `json:"subject"`
	Score   float64   `json:"score"`
	TakenAt time.Time `json:"taken_at,omitempty"`
}
