package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// AssistResponse — ответ ассистента. Содержит только поля, которые
// выводит таблица; Raw хранит тело целиком для --json.
type AssistResponse struct {
	Greeting  string `json:"greeting"`
	StudyPlan struct {
		Topic      string `json:"topic"`
		Duration   string `json:"duration"`
		Difficulty string `json:"difficulty"`
		Sessions   []struct {
			ID       string `json:"session_id"`
			Date     string `json:"date"`
			Time     string `json:"time"`
			Duration string `json:"duration"`
		} `json:"sessions"`
	} `json:"study_plan"`
	LearningResources struct {
		Resources []struct {
			Title    string `json:"title"`
			Platform string `json:"platform"`
			URL      string `json:"url"`
		} `json:"resources"`
	} `json:"learning_resources"`
	Assessment struct {
		AvailableQuiz bool   `json:"available_quiz"`
		QuestionCount int    `json:"question_count"`
		EstimatedTime string `json:"estimated_time"`
	} `json:"assessment"`
	MotivationalSupport struct {
		PrimaryMessage string `json:"primary_message"`
	} `json:"motivational_support"`
	Metadata struct {
		RequestID string `json:"request_id"`
		Intent    string `json:"intent"`
		Policy    string `json:"policy"`
		Errors    []struct {
			Node    string `json:"node"`
			Kind    string `json:"kind"`
			Message string `json:"message"`
		} `json:"errors"`
	} `json:"metadata"`

	Raw json.RawMessage `json:"-"`
}

// AcceptedResponse — ответ на асинхронный запрос.
type AcceptedResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
}

// RequestSummary — запись истории из списка.
type RequestSummary struct {
	ID         string `json:"id"`
	StudentID  string `json:"student_id"`
	Topic      string `json:"topic"`
	Intent     string `json:"intent"`
	Policy     string `json:"policy"`
	Degraded   bool   `json:"degraded"`
	DurationMS int64  `json:"duration_ms"`
	CreatedAt  string `json:"created_at"`
}

// RequestDetail — полная запись истории.
type RequestDetail struct {
	RequestSummary
	Text       string          `json:"text"`
	Response   json.RawMessage `json:"response,omitempty"`
	Errors     json.RawMessage `json:"errors,omitempty"`
	StartedAt  string          `json:"started_at"`
	FinishedAt string          `json:"finished_at"`
}

// QuizEvaluation — результат проверки квиза.
type QuizEvaluation struct {
	Topic            string   `json:"topic"`
	Score            float64  `json:"score"`
	CorrectAnswers   int      `json:"correct_answers"`
	TotalQuestions   int      `json:"total_questions"`
	PerformanceLevel string   `json:"performance_level"`
	Feedback         string   `json:"feedback"`
	Recommendations  []string `json:"recommendations"`
	DetailedFeedback []struct {
		QuestionID    string `json:"question_id"`
		Correct       bool   `json:"correct"`
		StudentAnswer string `json:"student_answer"`
		CorrectAnswer string `json:"correct_answer"`
	} `json:"detailed_feedback"`
	Recorded bool `json:"recorded"`
}

// --- Request types ---

// AssistRequest — запрос к ассистенту.
type AssistRequest struct {
	Text      string `json:"text"`
	StudentID string `json:"student_id,omitempty"`
	Document  string `json:"document,omitempty"`
}

// QuizEvaluateRequest — ответы на квиз.
type QuizEvaluateRequest struct {
	StudentID string          `json:"student_id,omitempty"`
	Quiz      json.RawMessage `json:"quiz"`
	Answers   []string        `json:"answers"`
}

// ListRequestsOpts — параметры фильтрации истории.
type ListRequestsOpts struct {
	StudentID string
	Limit     int
	Offset    int
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для Mentor API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			// анализ + обработчики укладываются в ~30s, плюс запас
			Timeout: 60 * time.Second,
		},
	}
}

// --- Assist ---

// Assist отправляет запрос и ждёт готовый ответ.
func (c *Client) Assist(req AssistRequest) (*AssistResponse, error) {
	var raw json.RawMessage
	if err := c.post("/api/v1/assist", req, &raw); err != nil {
		return nil, err
	}

	var resp AssistResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	resp.Raw = raw
	return &resp, nil
}

// AssistAsync ставит запрос в очередь.
func (c *Client) AssistAsync(req AssistRequest) (*AcceptedResponse, error) {
	var accepted AcceptedResponse
	err := c.post("/api/v1/assist?async=true", req, &accepted)
	return &accepted, err
}

// --- Quiz ---

// EvaluateQuiz отправляет ответы на проверку.
func (c *Client) EvaluateQuiz(req QuizEvaluateRequest) (*QuizEvaluation, error) {
	var eval QuizEvaluation
	if err := c.post("/api/v1/quiz/evaluate", req, &eval); err != nil {
		return nil, err
	}
	return &eval, nil
}

// --- Requests ---

// ListRequests возвращает историю запросов.
func (c *Client) ListRequests(opts ListRequestsOpts) ([]RequestSummary, error) {
	params := url.Values{}
	if opts.StudentID != "" {
		params.Set("student_id", opts.StudentID)
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		params.Set("offset", strconv.Itoa(opts.Offset))
	}

	var requests []RequestSummary
	err := c.list("/api/v1/requests", params, &requests)
	return requests, err
}

// GetRequest возвращает запись истории по ID.
func (c *Client) GetRequest(id string) (*RequestDetail, error) {
	var detail RequestDetail
	err := c.get("/api/v1/requests/"+url.PathEscape(id), &detail)
	return &detail, err
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
