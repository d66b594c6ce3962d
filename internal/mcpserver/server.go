package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/shaiso/Mentor/internal/agents"
	"github.com/shaiso/Mentor/internal/domain"
	"github.com/shaiso/Mentor/internal/engine"
)

const (
	serverName    = "mentor"
	serverVersion = "1.0.0"

	// GraphURI — ресурс с описанием графа обработчиков.
	GraphURI = "mentor://graph"

	maxQuestions = 10
)

// Pipeline — обработка запроса ассистентом.
type Pipeline interface {
	Process(ctx context.Context, req domain.Request) (domain.Response, error)
}

// PerformanceStore — запись оценок студента.
type PerformanceStore interface {
	Record(ctx context.Context, studentID string, entry domain.PerformanceEntry) error
}

// Config — зависимости MCP-сервера.
type Config struct {
	Pipeline Pipeline

	// Performance опционален: без него оценки квиза не сохраняются.
	Performance PerformanceStore

	Logger *slog.Logger
}

// Server публикует ассистента как набор MCP-инструментов.
type Server struct {
	pipeline    Pipeline
	performance PerformanceStore
	logger      *slog.Logger
	mcpServer   *server.MCPServer
}

// --- Tool arguments ---

// AssistArgs — аргументы инструмента assist.
type AssistArgs struct {
	Text      string `json:"text"`
	StudentID string `json:"student_id,omitempty"`
	Document  string `json:"document,omitempty"`
}

// QuizArgs — аргументы инструмента generate_quiz.
type QuizArgs struct {
	Topic         string `json:"topic"`
	Difficulty    string `json:"difficulty,omitempty"`
	QuestionCount int    `json:"question_count,omitempty"`
}

// EvaluateArgs — аргументы инструмента evaluate_quiz.
type EvaluateArgs struct {
	StudentID string                  `json:"student_id,omitempty"`
	Quiz      domain.AssessmentResult `json:"quiz"`
	Answers   []string                `json:"answers"`
}

// EvaluationResult — результат evaluate_quiz.
type EvaluationResult struct {
	domain.QuizEvaluation
	Recorded bool `json:"recorded"`
}

// NewServer создаёт MCP-сервер и регистрирует инструменты и ресурсы.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		pipeline:    cfg.Pipeline,
		performance: cfg.Performance,
		logger:      logger,
		mcpServer:   server.NewMCPServer(serverName, serverVersion),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio обслуживает клиента через stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// SSEHandler возвращает HTTP-обработчик для транспорта SSE.
func (s *Server) SSEHandler(baseURL string) http.Handler {
	sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sse.SSEHandler())
	mux.Handle("/message", sse.MessageHandler())
	return mux
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("assist",
		mcp.WithDescription("Analyze a study request and return a study plan, resources, wellness insights, a quiz and motivation."),
		mcp.WithString("text", mcp.Required(), mcp.Description("The student's request")),
		mcp.WithString("student_id", mcp.Description("Student ID (optional)")),
		mcp.WithString("document", mcp.Description("Attached document text (optional)")),
		mcp.WithOutputSchema[domain.Response](),
	), mcp.NewStructuredToolHandler(s.assist))

	s.mcpServer.AddTool(mcp.NewTool("generate_quiz",
		mcp.WithDescription("Generate a quiz for assessing understanding of a topic."),
		mcp.WithString("topic", mcp.Required(), mcp.Description("Topic for the quiz")),
		mcp.WithString("difficulty", mcp.Description("beginner, intermediate or advanced"),
			mcp.Enum(agents.DifficultyBeginner, agents.DifficultyIntermediate, agents.DifficultyAdvanced)),
		mcp.WithNumber("question_count", mcp.Description("Number of questions, 1 to 10")),
		mcp.WithOutputSchema[domain.AssessmentResult](),
	), mcp.NewStructuredToolHandler(s.generateQuiz))

	s.mcpServer.AddTool(mcp.NewTool("evaluate_quiz",
		mcp.WithDescription("Check answers to a quiz and record the score for the student."),
		mcp.WithObject("quiz", mcp.Required(), mcp.Description("Quiz returned by generate_quiz or assist")),
		mcp.WithArray("answers", mcp.Required(), mcp.Description("Answers in question order"), mcp.WithStringItems()),
		mcp.WithString("student_id", mcp.Description("Student ID to record the score for (optional)")),
		mcp.WithOutputSchema[EvaluationResult](),
	), mcp.NewStructuredToolHandler(s.evaluateQuiz))
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "Handler graph",
		mcp.WithResourceDescription("Handler nodes, their dependencies, timeouts and routing policies"),
		mcp.WithMIMEType("application/json"),
	), s.readGraph)
}

func (s *Server) assist(ctx context.Context, _ mcp.CallToolRequest, args AssistArgs) (domain.Response, error) {
	if s.pipeline == nil {
		return domain.Response{}, errors.New("assistant is not configured")
	}
	resp, err := s.pipeline.Process(ctx, domain.NewRequest(args.Text, args.StudentID, args.Document))
	if err != nil {
		return domain.Response{}, err
	}
	s.logger.Info("mcp assist completed", "request_id", resp.Metadata.RequestID, "policy", resp.Metadata.Policy)
	return resp, nil
}

func (s *Server) generateQuiz(_ context.Context, _ mcp.CallToolRequest, args QuizArgs) (*domain.AssessmentResult, error) {
	topic := strings.TrimSpace(args.Topic)
	if topic == "" {
		return nil, errors.New("topic is required")
	}

	difficulty := args.Difficulty
	if difficulty == "" {
		difficulty = agents.EstimateDifficulty(topic)
	}
	count := args.QuestionCount
	switch {
	case count <= 0:
		count = agents.DefaultQuestionCount
	case count > maxQuestions:
		count = maxQuestions
	}

	return agents.BuildQuiz(topic, &domain.LearningResult{Topic: topic, Difficulty: difficulty}, count), nil
}

func (s *Server) evaluateQuiz(ctx context.Context, _ mcp.CallToolRequest, args EvaluateArgs) (EvaluationResult, error) {
	if len(args.Quiz.Questions) == 0 {
		return EvaluationResult{}, errors.New("quiz has no questions")
	}

	result := EvaluationResult{QuizEvaluation: agents.EvaluateQuiz(&args.Quiz, args.Answers)}

	studentID := strings.TrimSpace(args.StudentID)
	if studentID == "" || s.performance == nil {
		return result, nil
	}

	subject := strings.TrimSpace(args.Quiz.Topic)
	if subject == "" {
		subject = "general"
	}
	entry := domain.PerformanceEntry{Subject: subject, Score: result.Score, TakenAt: time.Now().UTC()}
	if err := s.performance.Record(ctx, studentID, entry); err != nil {
		s.logger.Warn("record quiz score failed", "student_id", studentID, "error", err)
		return result, nil
	}
	result.Recorded = true
	return result, nil
}

// GraphNode — узел графа в ресурсе mentor://graph.
type GraphNode struct {
	ID        domain.NodeID   `json:"id"`
	DependsOn []domain.NodeID `json:"depends_on"`
	Advises   []domain.NodeID `json:"advises"`
	TimeoutMS int64           `json:"timeout_ms"`
}

// GraphView — содержимое ресурса mentor://graph.
type GraphView struct {
	Nodes    []GraphNode                `json:"nodes"`
	Policies map[string][]domain.NodeID `json:"policies"`
}

// Graph описывает граф обработчиков и политики маршрутизации.
func Graph() GraphView {
	defs := engine.StudyNodes()
	view := GraphView{
		Nodes:    make([]GraphNode, 0, len(defs)),
		Policies: make(map[string][]domain.NodeID),
	}
	for _, def := range defs {
		view.Nodes = append(view.Nodes, GraphNode{
			ID:        def.ID,
			DependsOn: nonNil(def.DependsOn),
			Advises:   nonNil(def.Advises),
			TimeoutMS: def.Timeout.Milliseconds(),
		})
	}
	for _, p := range engine.Policies() {
		view.Policies[string(p)] = p.Nodes()
	}
	return view
}

func (s *Server) readGraph(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(Graph())
	if err != nil {
		return nil, fmt.Errorf("marshal graph: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      GraphURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func nonNil(ids []domain.NodeID) []domain.NodeID {
	if ids == nil {
		return []domain.NodeID{}
	}
	return ids
}
