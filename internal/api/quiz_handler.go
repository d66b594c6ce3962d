package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/shaiso/Mentor/internal/agents"
	"github.com/shaiso/Mentor/internal/domain"
	"github.com/shaiso/Mentor/internal/telemetry"
)

// quizSubject — предмет оценки, если у квиза нет темы.
const quizSubject = "general"

// EvaluateQuiz обрабатывает POST /api/v1/quiz/evaluate.
//
// Если указан student_id и хранилище настроено, процент правильных
// ответов записывается в историю успеваемости.
func (h *Handler) EvaluateQuiz(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req QuizEvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if len(req.Quiz.Questions) == 0 {
		BadRequest(w, "quiz has no questions")
		return
	}

	eval := agents.EvaluateQuiz(&req.Quiz, req.Answers)
	resp := QuizEvaluateResponse{QuizEvaluation: eval}

	studentID := strings.TrimSpace(req.StudentID)
	if studentID != "" && h.performance != nil {
		subject := strings.TrimSpace(req.Quiz.Topic)
		if subject == "" {
			subject = quizSubject
		}
		entry := domain.PerformanceEntry{Subject: subject, Score: eval.Score, TakenAt: time.Now().UTC()}

		if err := h.performance.Record(r.Context(), studentID, entry); err != nil {
			telemetry.FromContextOr(r.Context(), h.logger).Warn("record quiz score failed", "student_id", studentID, "error", err)
		} else {
			resp.Recorded = true
		}
	}

	Success(w, resp)
}
