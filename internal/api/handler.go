package api

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shaiso/Mentor/internal/domain"
	"github.com/shaiso/Mentor/internal/mq"
	"github.com/shaiso/Mentor/internal/repo"
)

// Pipeline — синхронная обработка запроса.
type Pipeline interface {
	Run(ctx context.Context, id uuid.UUID, req domain.Request) (*domain.RequestRecord, error)
}

// RequestStore — чтение истории запросов.
type RequestStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RequestRecord, error)
	List(ctx context.Context, filter repo.RequestFilter) ([]domain.RequestRecord, error)
}

// PerformanceStore — запись оценок студента.
type PerformanceStore interface {
	Record(ctx context.Context, studentID string, entry domain.PerformanceEntry) error
}

// Publisher — постановка запроса в очередь для асинхронной обработки.
type Publisher interface {
	PublishAssistPending(ctx context.Context, payload mq.AssistPendingPayload) error
}

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	pipeline    Pipeline
	requests    RequestStore
	performance PerformanceStore
	publisher   Publisher
	logger      *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Pipeline    Pipeline
	Requests    RequestStore
	Performance PerformanceStore
	Publisher   Publisher // nil — асинхронный режим недоступен
	Logger      *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		pipeline:    cfg.Pipeline,
		requests:    cfg.Requests,
		performance: cfg.Performance,
		publisher:   cfg.Publisher,
		logger:      logger,
	}
}
