package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/shaiso/Mentor/internal/mq"
	"github.com/shaiso/Mentor/internal/repo"
	"github.com/shaiso/Mentor/internal/telemetry"
)

// maxBodyBytes ограничивает размер тела запроса (текст + документ).
const maxBodyBytes = 4 << 20

// Assist обрабатывает POST /api/v1/assist.
//
// По умолчанию запрос обрабатывается синхронно и в ответе лежит Response.
// С ?async=true запрос ставится в очередь assist.pending, ответ 202.
func (h *Handler) Assist(w http.ResponseWriter, r *http.Request) {
	var body AssistRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		BadRequest(w, "invalid JSON: "+err.Error())
		return
	}

	req := body.ToDomain()
	if err := req.Validate(); err != nil {
		HandleError(w, h.logger, err, "")
		return
	}

	id, ok := RequestIDFrom(r.Context())
	if !ok {
		id = uuid.New()
	}

	if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async {
		h.enqueue(w, r, id, body)
		return
	}

	if h.pipeline == nil {
		Unavailable(w, "pipeline is not configured")
		return
	}

	record, err := h.pipeline.Run(r.Context(), id, req)
	if HandleError(w, h.logger, err, "") {
		return
	}
	Success(w, record.Response)
}

func (h *Handler) enqueue(w http.ResponseWriter, r *http.Request, id uuid.UUID, body AssistRequest) {
	if h.publisher == nil {
		Unavailable(w, "async processing is not configured")
		return
	}

	err := h.publisher.PublishAssistPending(r.Context(), mq.AssistPendingPayload{
		RequestID: id,
		Text:      body.Text,
		StudentID: body.StudentID,
		Document:  body.Document,
	})
	if err != nil {
		telemetry.FromContextOr(r.Context(), h.logger).Error("failed to enqueue request", "error", err)
		Unavailable(w, "failed to enqueue request")
		return
	}

	JSON(w, http.StatusAccepted, DataResponse{Data: AcceptedResponse{RequestID: id, Status: "queued"}})
}

// ListRequests обрабатывает GET /api/v1/requests.
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	if h.requests == nil {
		Unavailable(w, "request history is not configured")
		return
	}

	filter := repo.RequestFilter{
		StudentID: r.URL.Query().Get("student_id"),
		Limit:     repo.DefaultListLimit,
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > 100 {
			BadRequest(w, "limit must be between 1 and 100")
			return
		}
		filter.Limit = limit
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			BadRequest(w, "offset must be a non-negative integer")
			return
		}
		filter.Offset = offset
	}

	records, err := h.requests.List(r.Context(), filter)
	if HandleError(w, h.logger, err, "") {
		return
	}

	result := make([]RequestSummary, len(records))
	for i := range records {
		result[i] = SummaryFromDomain(&records[i])
	}

	List(w, result, len(result))
}

// GetRequest обрабатывает GET /api/v1/requests/{id}.
func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	if h.requests == nil {
		Unavailable(w, "request history is not configured")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid request ID")
		return
	}

	record, err := h.requests.GetByID(r.Context(), id)
	if HandleError(w, h.logger, err, "request not found") {
		return
	}

	Success(w, DetailFromDomain(record))
}
