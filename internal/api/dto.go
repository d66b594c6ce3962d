package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Mentor/internal/domain"
)

// AssistRequest — тело POST /api/v1/assist.
type AssistRequest struct {
	Text      string `json:"text"`
	StudentID string `json:"student_id,omitempty"`
	Document  string `json:"document,omitempty"`
}

// ToDomain конвертирует AssistRequest в domain.Request.
func (r AssistRequest) ToDomain() domain.Request {
	return domain.NewRequest(r.Text, r.StudentID, r.Document)
}

// AcceptedResponse — ответ на асинхронный запрос.
type AcceptedResponse struct {
	RequestID uuid.UUID `json:"request_id"`
	Status    string    `json:"status"`
}

// RequestSummary — элемент списка истории.
type RequestSummary struct {
	ID         uuid.UUID     `json:"id"`
	StudentID  string        `json:"student_id"`
	Topic      string        `json:"topic"`
	Intent     domain.Intent `json:"intent"`
	Policy     string        `json:"policy"`
	Degraded   bool          `json:"degraded"`
	DurationMS int64         `json:"duration_ms"`
	CreatedAt  time.Time     `json:"created_at"`
}

// SummaryFromDomain конвертирует domain.RequestRecord в RequestSummary.
func SummaryFromDomain(r *domain.RequestRecord) RequestSummary {
	return RequestSummary{
		ID:         r.ID,
		StudentID:  r.StudentID,
		Topic:      r.Topic,
		Intent:     r.Intent,
		Policy:     r.Policy,
		Degraded:   r.Degraded(),
		DurationMS: r.Duration().Milliseconds(),
		CreatedAt:  r.CreatedAt,
	}
}

// RequestDetail — полная запись истории.
type RequestDetail struct {
	RequestSummary
	Text       string             `json:"text"`
	Response   *domain.Response   `json:"response,omitempty"`
	Errors     []domain.ErrorInfo `json:"errors,omitempty"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
}

// DetailFromDomain конвертирует domain.RequestRecord в RequestDetail.
func DetailFromDomain(r *domain.RequestRecord) RequestDetail {
	return RequestDetail{
		RequestSummary: SummaryFromDomain(r),
		Text:           r.Text,
		Response:       r.Response,
		Errors:         r.Errors,
		StartedAt:      r.StartedAt,
		FinishedAt:     r.FinishedAt,
	}
}

// PerformanceRequest — тело POST /api/v1/students/{id}/performance.
type PerformanceRequest struct {
	Subject string     `json:"subject"`
	Score   float64    `json:"score"`
	TakenAt *time.Time `json:"taken_at,omitempty"`
}

// QuizEvaluateRequest — тело POST /api/v1/quiz/evaluate.
//
// Quiz — раздел assessment из ответа assist или исходный квиз.
type QuizEvaluateRequest struct {
	StudentID string                  `json:"student_id,omitempty"`
	Quiz      domain.AssessmentResult `json:"quiz"`
	Answers   []string                `json:"answers"`
}

// QuizEvaluateResponse — результат проверки квиза.
type QuizEvaluateResponse struct {
	domain.QuizEvaluation

	// Recorded — оценка сохранена в истории успеваемости студента.
	Recorded bool `json:"recorded"`
}
