package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Mentor/internal/domain"
	"github.com/shaiso/Mentor/internal/mq"
	"github.com/shaiso/Mentor/internal/orchestrator"
	"github.com/shaiso/Mentor/internal/repo"
)

// --- Fakes ---

type memoryStore struct {
	mu      sync.Mutex
	records []domain.RequestRecord
	filter  repo.RequestFilter
}

func (s *memoryStore) Save(_ context.Context, rec *domain.RequestRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, *rec)
	return nil
}

func (s *memoryStore) GetByID(_ context.Context, id uuid.UUID) (*domain.RequestRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id {
			rec := s.records[i]
			return &rec, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *memoryStore) List(_ context.Context, filter repo.RequestFilter) ([]domain.RequestRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = filter
	var out []domain.RequestRecord
	for _, rec := range s.records {
		if filter.StudentID == "" || rec.StudentID == filter.StudentID {
			out = append(out, rec)
		}
	}
	return out, nil
}

type fakePerformance struct {
	entries map[string][]domain.PerformanceEntry
	err     error
}

func (p *fakePerformance) Record(_ context.Context, studentID string, entry domain.PerformanceEntry) error {
	if p.err != nil {
		return p.err
	}
	if p.entries == nil {
		p.entries = make(map[string][]domain.PerformanceEntry)
	}
	p.entries[studentID] = append(p.entries[studentID], entry)
	return nil
}

type fakePublisher struct {
	payloads []mq.AssistPendingPayload
	err      error
}

func (p *fakePublisher) PublishAssistPending(_ context.Context, payload mq.AssistPendingPayload) error {
	if p.err != nil {
		return p.err
	}
	p.payloads = append(p.payloads, payload)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, store *memoryStore, pub Publisher) *httptest.Server {
	t.Helper()

	pipeline := orchestrator.NewPipeline(orchestrator.Config{
		Records: store,
		Logger:  discardLogger(),
	})
	h := NewHandler(Config{
		Pipeline:  pipeline,
		Requests:  store,
		Publisher: pub,
		Logger:    discardLogger(),
	})

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func decodeData(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if err := json.Unmarshal(envelope.Data, v); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func decodeError(t *testing.T, resp *http.Response) ErrorDetail {
	t.Helper()
	defer resp.Body.Close()

	var body ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	return body.Error
}

func postAssist(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	return resp
}

// --- Assist Tests ---

func TestAssist_Sync(t *testing.T) {
	store := &memoryStore{}
	srv := newTestServer(t, store, nil)

	resp := postAssist(t, srv.URL+"/api/v1/assist",
		`{"text":"Help me prepare for my Machine Learning exam","student_id":"student_1"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get(HeaderRequestID) == "" {
		t.Error("X-Request-ID header missing")
	}

	var got map[string]json.RawMessage
	decodeData(t, resp, &got)
	for _, key := range domain.ResponseKeys() {
		if _, ok := got[key]; !ok {
			t.Errorf("response key %q missing", key)
		}
	}

	if len(store.records) != 1 {
		t.Fatalf("expected record stored, got %d", len(store.records))
	}
	if store.records[0].Topic != "machine learning exam" {
		t.Errorf("unexpected topic %q", store.records[0].Topic)
	}
}

func TestAssist_RequestIDHeader(t *testing.T) {
	store := &memoryStore{}
	srv := newTestServer(t, store, nil)
	id := uuid.New()

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/assist",
		strings.NewReader(`{"text":"Quiz me on graphs"}`))
	req.Header.Set(HeaderRequestID, id.String())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	resp.Body.Close()

	if resp.Header.Get(HeaderRequestID) != id.String() {
		t.Errorf("expected echoed request id, got %q", resp.Header.Get(HeaderRequestID))
	}
	if len(store.records) != 1 || store.records[0].ID != id {
		t.Errorf("record should be stored under %s", id)
	}
}

func TestAssist_BadInput(t *testing.T) {
	srv := newTestServer(t, &memoryStore{}, nil)

	tests := []struct {
		name string
		body string
		code ErrorCode
	}{
		{"invalid json", `{"text":`, ErrCodeBadRequest},
		{"empty text", `{"text":"   "}`, ErrCodeValidation},
		{"too long", `{"text":"` + strings.Repeat("a", domain.MaxTextLength+1) + `"}`, ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postAssist(t, srv.URL+"/api/v1/assist", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", resp.StatusCode)
			}
			if got := decodeError(t, resp); got.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, got.Code)
			}
		})
	}
}

func TestAssist_Async(t *testing.T) {
	pub := &fakePublisher{}
	srv := newTestServer(t, &memoryStore{}, pub)

	resp := postAssist(t, srv.URL+"/api/v1/assist?async=true",
		`{"text":"Find me books about algorithms","student_id":"student_2","document":"chapter 1"}`)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}

	var accepted AcceptedResponse
	decodeData(t, resp, &accepted)

	if len(pub.payloads) != 1 {
		t.Fatalf("expected 1 queued payload, got %d", len(pub.payloads))
	}
	p := pub.payloads[0]
	if p.RequestID != accepted.RequestID || p.StudentID != "student_2" || p.Document != "chapter 1" {
		t.Errorf("unexpected payload: %+v", p)
	}
}

func TestAssist_AsyncUnavailable(t *testing.T) {
	tests := []struct {
		name string
		pub  Publisher
	}{
		{"no publisher", nil},
		{"publish error", &fakePublisher{err: errors.New("channel closed")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &memoryStore{}, tt.pub)

			resp := postAssist(t, srv.URL+"/api/v1/assist?async=true", `{"text":"Help me study"}`)
			resp.Body.Close()
			if resp.StatusCode != http.StatusServiceUnavailable {
				t.Errorf("expected 503, got %d", resp.StatusCode)
			}
		})
	}
}

// --- History Tests ---

func TestGetRequest(t *testing.T) {
	id := uuid.New()
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	store := &memoryStore{records: []domain.RequestRecord{{
		ID:         id,
		StudentID:  "student_1",
		Text:       "Help me learn Go",
		Topic:      "go",
		StartedAt:  now,
		FinishedAt: now.Add(1500 * time.Millisecond),
		Errors:     []domain.ErrorInfo{{Node: domain.NodeMotivation, Kind: domain.ErrorKindFailure}},
	}}}
	srv := newTestServer(t, store, nil)

	resp, err := http.Get(srv.URL + "/api/v1/requests/" + id.String())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var detail RequestDetail
	decodeData(t, resp, &detail)

	if detail.ID != id || detail.Text != "Help me learn Go" {
		t.Errorf("unexpected detail: %+v", detail)
	}
	if !detail.Degraded || detail.DurationMS != 1500 {
		t.Errorf("expected degraded 1500ms, got degraded=%v duration=%d", detail.Degraded, detail.DurationMS)
	}
}

func TestGetRequest_Errors(t *testing.T) {
	srv := newTestServer(t, &memoryStore{}, nil)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"invalid id", "/api/v1/requests/not-a-uuid", http.StatusBadRequest},
		{"not found", "/api/v1/requests/" + uuid.NewString(), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Errorf("expected %d, got %d", tt.status, resp.StatusCode)
			}
		})
	}
}

func TestListRequests(t *testing.T) {
	store := &memoryStore{records: []domain.RequestRecord{
		{ID: uuid.New(), StudentID: "student_1"},
		{ID: uuid.New(), StudentID: "student_2"},
		{ID: uuid.New(), StudentID: "student_1"},
	}}
	srv := newTestServer(t, store, nil)

	resp, err := http.Get(srv.URL + "/api/v1/requests?student_id=student_1&limit=5&offset=0")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	var items []RequestSummary
	decodeData(t, resp, &items)

	if len(items) != 2 {
		t.Errorf("expected 2 items, got %d", len(items))
	}
	if store.filter.Limit != 5 {
		t.Errorf("expected limit 5, got %d", store.filter.Limit)
	}
}

func TestListRequests_BadParams(t *testing.T) {
	srv := newTestServer(t, &memoryStore{}, nil)

	for _, query := range []string{"limit=0", "limit=abc", "limit=1000", "offset=-1"} {
		resp, err := http.Get(srv.URL + "/api/v1/requests?" + query)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", query, resp.StatusCode)
		}
	}
}

// --- Middleware Tests ---

func TestRecovery(t *testing.T) {
	h := Chain(Recovery(discardLogger()))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &memoryStore{}, nil)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(string(body), "ok") {
		t.Errorf("unexpected healthz: %d %q", resp.StatusCode, body)
	}
}

// --- Performance Tests ---

func TestRecordPerformance(t *testing.T) {
	perf := &fakePerformance{}
	h := NewHandler(Config{Performance: perf, Logger: discardLogger()})
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"ok", `{"subject":"algorithms","score":91}`, http.StatusCreated},
		{"with date", `{"subject":"statistics","score":64,"taken_at":"2025-03-01T10:00:00Z"}`, http.StatusCreated},
		{"no subject", `{"score":50}`, http.StatusBadRequest},
		{"score out of range", `{"subject":"math","score":140}`, http.StatusBadRequest},
		{"invalid json", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/students/student_1/performance", strings.NewReader(tt.body))
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}

	got := perf.entries["student_1"]
	if len(got) != 2 {
		t.Fatalf("expected 2 stored entries, got %d", len(got))
	}
	if got[1].TakenAt.Year() != 2025 || got[0].TakenAt.IsZero() {
		t.Errorf("unexpected taken_at: %v, %v", got[0].TakenAt, got[1].TakenAt)
	}
}

func TestRecordPerformance_NotConfigured(t *testing.T) {
	h := NewHandler(Config{Logger: discardLogger()})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/students/s/performance", strings.NewReader(`{}`))
	req.SetPathValue("id", "s")
	h.RecordPerformance(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

// --- Quiz Tests ---

func quizBody(t *testing.T, studentID string, answers []string) string {
	t.Helper()

	body, err := json.Marshal(QuizEvaluateRequest{
		StudentID: studentID,
		Quiz: domain.AssessmentResult{
			Topic:      "machine learning",
			Difficulty: "intermediate",
			Questions: []domain.Question{
				{ID: "q_1", Type: "multiple_choice", CorrectAnswer: "gradient descent"},
				{ID: "q_2", Type: "true_false", CorrectAnswer: "true"},
				{ID: "q_3", Type: "fill_blank", CorrectAnswer: "solve computational problems"},
				{ID: "q_4", Type: "true_false", CorrectAnswer: "true"},
			},
		},
		Answers: answers,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(body)
}

func TestEvaluateQuiz(t *testing.T) {
	perf := &fakePerformance{}
	h := NewHandler(Config{Performance: perf, Logger: discardLogger()})
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	body := quizBody(t, "student_1", []string{"Gradient Descent", "true", "computational problems", "false"})
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/quiz/evaluate", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var got QuizEvaluateResponse
	decodeData(t, rec.Result(), &got)

	if got.Score != 75 || got.CorrectAnswers != 3 || got.TotalQuestions != 4 {
		t.Errorf("unexpected evaluation: %+v", got.QuizEvaluation)
	}
	if got.PerformanceLevel != "good" {
		t.Errorf("expected good, got %s", got.PerformanceLevel)
	}
	if !got.Recorded {
		t.Error("score should be recorded")
	}

	entries := perf.entries["student_1"]
	if len(entries) != 1 || entries[0].Subject != "machine learning" || entries[0].Score != 75 {
		t.Errorf("unexpected stored entries: %+v", entries)
	}
}

func TestEvaluateQuiz_NotRecorded(t *testing.T) {
	tests := []struct {
		name      string
		perf      *fakePerformance
		studentID string
	}{
		{"no student", &fakePerformance{}, ""},
		{"storage error", &fakePerformance{err: errors.New("db down")}, "student_1"},
		{"no storage", nil, "student_1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Logger: discardLogger()}
			if tt.perf != nil {
				cfg.Performance = tt.perf
			}
			mux := http.NewServeMux()
			NewHandler(cfg).RegisterRoutes(mux)

			rec := httptest.NewRecorder()
			body := quizBody(t, tt.studentID, []string{"gradient descent"})
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/quiz/evaluate", strings.NewReader(body)))

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			var got QuizEvaluateResponse
			decodeData(t, rec.Result(), &got)
			if got.Recorded {
				t.Error("score should not be recorded")
			}
			if got.CorrectAnswers != 1 {
				t.Errorf("expected 1 correct answer, got %d", got.CorrectAnswers)
			}
		})
	}
}

func TestEvaluateQuiz_BadInput(t *testing.T) {
	mux := http.NewServeMux()
	NewHandler(Config{Logger: discardLogger()}).RegisterRoutes(mux)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"no questions", `{"quiz":{"topic":"x","questions":[]},"answers":["a"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/quiz/evaluate", strings.NewReader(tt.body)))

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}
