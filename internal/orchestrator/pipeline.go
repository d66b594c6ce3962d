package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/shaiso/Mentor/internal/aggregate"
	"github.com/shaiso/Mentor/internal/analyzer"
	"github.com/shaiso/Mentor/internal/domain"
	"github.com/shaiso/Mentor/internal/engine"
	"github.com/shaiso/Mentor/internal/telemetry"
)

// Analyzer — классификатор текста запроса.
type Analyzer interface {
	Analyze(ctx context.Context, text, document string) domain.Analysis
}

// RecordStore — хранилище истории запросов.
type RecordStore interface {
	Save(ctx context.Context, record *domain.RequestRecord) error
}

// Config — конфигурация Pipeline.
type Config struct {
	// Analyzer — классификатор (default: только эвристика).
	Analyzer Analyzer

	// Executor — исполнитель подграфа (default: обработчики по умолчанию).
	Executor *Executor

	// Graph — граф обработчиков (default: engine.StudyGraph()).
	Graph *engine.DAG

	// Records — хранилище истории (опционально).
	Records RecordStore

	// Logger
	Logger *slog.Logger
}

// Pipeline — единственная точка входа обработки запроса.
//
// Проводит запрос через START → ANALYZED → ROUTED → EXECUTING →
// AGGREGATED → DONE. Разделяется между запросами: состояние каждого
// запроса живёт в своём ExecutionState.
type Pipeline struct {
	analyzer Analyzer
	executor *Executor
	graph    *engine.DAG
	records  RecordStore
	logger   *slog.Logger
}

// NewPipeline создаёт Pipeline.
func NewPipeline(cfg Config) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	a := cfg.Analyzer
	if a == nil {
		a = analyzer.New(analyzer.Config{Logger: logger})
	}

	exec := cfg.Executor
	if exec == nil {
		exec = NewExecutor(ExecutorConfig{Logger: logger})
	}

	graph := cfg.Graph
	if graph == nil {
		graph = engine.StudyGraph()
	}

	return &Pipeline{
		analyzer: a,
		executor: exec,
		graph:    graph,
		records:  cfg.Records,
		logger:   logger,
	}
}

// ProcessRequest обрабатывает текст запроса студента.
//
// Ошибка возможна только при невалидном запросе: ошибки анализа и
// обработчиков деградируют до fallback'ов внутри ответа.
func (p *Pipeline) ProcessRequest(ctx context.Context, text, studentID string) (domain.Response, error) {
	return p.Process(ctx, domain.NewRequest(text, studentID, ""))
}

// Process обрабатывает запрос с приложенным документом.
func (p *Pipeline) Process(ctx context.Context, req domain.Request) (domain.Response, error) {
	record, err := p.Run(ctx, uuid.New(), req)
	if err != nil {
		return domain.Response{}, err
	}
	return *record.Response, nil
}

// Run обрабатывает запрос с заданным идентификатором и возвращает
// запись истории с ответом.
func (p *Pipeline) Run(ctx context.Context, id uuid.UUID, req domain.Request) (record *domain.RequestRecord, err error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.StudentID == "" {
		req.StudentID = domain.DefaultStudentID
	}

	started := time.Now()
	logger := telemetry.WithStudentID(telemetry.WithRequestID(p.logger, id.String()), req.StudentID)
	ctx = telemetry.WithLogger(ctx, logger)

	ctx, span := telemetry.StartSpan(ctx, "pipeline.Run",
		attribute.String("request_id", id.String()),
		attribute.String("student_id", req.StudentID),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	m := &machine{state: domain.StateStart}

	analysis := p.analyzer.Analyze(ctx, req.Text, req.Document)
	if err := m.advance(domain.StateAnalyzed); err != nil {
		return nil, err
	}

	policy := engine.SelectPolicy(analysis)
	sub, err := engine.RouteWith(p.graph, policy)
	if err != nil {
		return nil, fmt.Errorf("route: %w", err)
	}
	if err := m.advance(domain.StateRouted); err != nil {
		return nil, err
	}
	logger.Debug("request routed",
		"topic", analysis.Topic,
		"intent", analysis.Intent,
		"policy", policy,
		"analysis_source", analysis.Source,
	)

	state := NewExecutionState(id.String(), req, analysis, sub)
	if err := m.advance(domain.StateExecuting); err != nil {
		return nil, err
	}
	p.executor.Run(ctx, state)

	if !state.IsComplete() {
		logger.Error("execution state incomplete before aggregation")
	}
	if err := m.advance(domain.StateAggregated); err != nil {
		return nil, err
	}

	resp := aggregate.Build(state.Snapshot())
	if err := m.advance(domain.StateDone); err != nil {
		return nil, err
	}

	finished := time.Now()
	text := analysis.Text
	if text == "" {
		text = req.Text
	}
	record = &domain.RequestRecord{
		ID:         id,
		StudentID:  req.StudentID,
		Text:       text,
		Topic:      analysis.Topic,
		Intent:     analysis.Intent,
		Policy:     string(policy),
		Response:   &resp,
		Errors:     resp.Metadata.Errors,
		StartedAt:  started,
		FinishedAt: finished,
	}

	telemetry.ObserveRequest(string(policy), finished.Sub(started))
	logger.Info("request processed",
		"policy", policy,
		"topic", analysis.Topic,
		"errors", len(record.Errors),
		"duration_ms", record.Duration().Milliseconds(),
	)

	if p.records != nil {
		if err := p.records.Save(ctx, record); err != nil {
			logger.Error("save request record failed", "error", err)
		}
	}
	return record, nil
}

// machine — конечный автомат обработки запроса. Только вперёд.
type machine struct {
	state domain.PipelineState
}

func (m *machine) advance(to domain.PipelineState) error {
	if !m.state.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, m.state, to)
	}
	m.state = to
	return nil
}
