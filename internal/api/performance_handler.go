package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/shaiso/Mentor/internal/domain"
)

// RecordPerformance обрабатывает POST /api/v1/students/{id}/performance.
//
// Оценки используются personalization и motivation при следующих запросах.
func (h *Handler) RecordPerformance(w http.ResponseWriter, r *http.Request) {
	if h.performance == nil {
		Unavailable(w, "performance storage is not configured")
		return
	}

	studentID := strings.TrimSpace(r.PathValue("id"))
	if studentID == "" {
		BadRequest(w, "student ID is required")
		return
	}

	var req PerformanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid JSON: "+err.Error())
		return
	}

	if strings.TrimSpace(req.Subject) == "" {
		BadRequest(w, "subject is required")
		return
	}
	if req.Score < 0 || req.Score > 100 {
		BadRequest(w, "score must be between 0 and 100")
		return
	}

	entry := domain.PerformanceEntry{
		Subject: strings.TrimSpace(req.Subject),
		Score:   req.Score,
		TakenAt: time.Now().UTC(),
	}
	if req.TakenAt != nil {
		entry.TakenAt = req.TakenAt.UTC()
	}

	if err := h.performance.Record(r.Context(), studentID, entry); HandleError(w, h.logger, err, "") {
		return
	}

	Created(w, entry)
}
