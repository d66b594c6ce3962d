package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/shaiso/Mentor/internal/domain"
	"github.com/shaiso/Mentor/internal/mq"
)

// Default configuration values.
const (
	defaultConcurrency = 4
	defaultPrefetch    = 1
)

// Processor — обработчик запроса (orchestrator.Pipeline).
type Processor interface {
	Run(ctx context.Context, id uuid.UUID, req domain.Request) (*domain.RequestRecord, error)
}

// Publisher — публикация результатов.
type Publisher interface {
	PublishAssistCompleted(ctx context.Context, payload mq.AssistCompletedPayload) error
}

// RecordFinder — поиск уже обработанных запросов.
type RecordFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RequestRecord, error)
}

// Worker обрабатывает асинхронные запросы.
//
// Worker — stateless компонент, который:
//   - Получает запросы из очереди assist.pending
//   - Прогоняет их через pipeline (запись в историю делает pipeline)
//   - Публикует ответ в assist.completed
//
// Повторная доставка уже обработанного запроса не запускает pipeline
// заново: ответ берётся из истории. Workers масштабируются
// горизонтально.
type Worker struct {
	pipeline  Processor
	publisher Publisher
	records   RecordFinder
	conn      *mq.Connection

	concurrency int
	prefetch    int

	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	stopped    bool
	stoppedMu  sync.RWMutex
}

// Config — конфигурация Worker.
type Config struct {
	// Pipeline — обработчик запросов.
	Pipeline Processor

	// Publisher — публикация assist.completed (опционально).
	Publisher Publisher

	// Records — история запросов для идемпотентности (опционально).
	Records RecordFinder

	// Conn — соединение с RabbitMQ.
	Conn *mq.Connection

	// Concurrency — количество параллельных consumer'ов (default: 4).
	Concurrency int

	// Prefetch — сообщений в полёте на consumer (default: 1).
	Prefetch int

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Worker.
func New(cfg Config) *Worker {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = defaultPrefetch
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Worker{
		pipeline:    cfg.Pipeline,
		publisher:   cfg.Publisher,
		records:     cfg.Records,
		conn:        cfg.Conn,
		concurrency: concurrency,
		prefetch:    prefetch,
		logger:      logger,
	}
}

// Start запускает consumer'ы assist.pending.
func (w *Worker) Start(ctx context.Context) error {
	if w.pipeline == nil {
		return ErrNoPipeline
	}
	if w.IsStopped() {
		return ErrWorkerStopped
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel

	w.logger.Info("starting worker",
		"concurrency", w.concurrency,
		"prefetch", w.prefetch,
	)

	for i := 0; i < w.concurrency; i++ {
		consumer := mq.NewConsumer(w.conn, w.logger.With("consumer", i), mq.ConsumerConfig{
			Queue:    mq.QueueAssistPending,
			Handler:  w.handleAssistPending,
			Prefetch: w.prefetch,
		})

		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				w.logger.Error("assist consumer error", "error", err)
			}
		}()
	}

	w.logger.Info("worker started")
	return nil
}

// Stop останавливает Worker и ждёт завершения текущих запросов.
func (w *Worker) Stop() {
	w.stoppedMu.Lock()
	w.stopped = true
	w.stoppedMu.Unlock()

	w.logger.Info("stopping worker...")

	if w.cancelFunc != nil {
		w.cancelFunc()
	}
	w.wg.Wait()

	w.logger.Info("worker stopped")
}

// IsStopped проверяет, остановлен ли Worker.
func (w *Worker) IsStopped() bool {
	w.stoppedMu.RLock()
	defer w.stoppedMu.RUnlock()
	return w.stopped
}
