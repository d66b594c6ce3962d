package agents

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/shaiso/Mentor/internal/domain"
	"github.com/shaiso/Mentor/internal/llm"
)

// Registry — реестр обработчиков узлов.
//
// Потокобезопасен.
type Registry struct {
	mu       sync.RWMutex
	handlers map[domain.NodeID]Handler
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[domain.NodeID]Handler),
	}
}

// Config — зависимости стандартных обработчиков.
type Config struct {
	// LLM — клиент модели для learning (опционально).
	LLM llm.Client

	// Performance — источник прошлых результатов (default: DefaultPerformance).
	Performance PerformanceSource

	// Signals — источник сигналов самочувствия (default: DefaultSignals).
	Signals SignalSource

	// ScheduleCron — cron-выражение слотов сессий (опционально).
	ScheduleCron string

	// QuestionCount — количество вопросов квиза (default: 3).
	QuestionCount int

	// Clock — источник времени (default: time.Now).
	Clock func() time.Time

	Logger *slog.Logger
}

// DefaultRegistry создаёт реестр со всеми шестью обработчиками.
func DefaultRegistry(cfg Config) *Registry {
	r := NewRegistry()

	r.Register(NewLearning(LearningConfig{Client: cfg.LLM, Logger: cfg.Logger}))
	r.Register(NewWellness(WellnessConfig{Signals: cfg.Signals, Clock: cfg.Clock}))
	r.Register(NewAssessment(AssessmentConfig{QuestionCount: cfg.QuestionCount}))
	r.Register(NewSchedule(ScheduleConfig{Cron: cfg.ScheduleCron, Clock: cfg.Clock}))
	r.Register(NewPersonalization(PersonalizationConfig{Performance: cfg.Performance}))
	r.Register(NewMotivation(MotivationConfig{Performance: cfg.Performance}))

	return r
}

// Register регистрирует обработчик.
// Если обработчик узла уже есть, он будет перезаписан.
func (r *Registry) Register(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[h.Node()] = h
}

// Get возвращает обработчик узла.
// Возвращает ErrHandlerNotFound, если обработчика нет.
func (r *Registry) Get(node domain.NodeID) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, exists := r.handlers[node]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrHandlerNotFound, node)
	}
	return h, nil
}

// Has проверяет, зарегистрирован ли обработчик узла.
func (r *Registry) Has(node domain.NodeID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.handlers[node]
	return exists
}

// Nodes возвращает отсортированный список узлов с обработчиками.
func (r *Registry) Nodes() []domain.NodeID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	nodes := make([]domain.NodeID, 0, len(r.handlers))
	for n := range r.handlers {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })
	return nodes
}

// Count возвращает количество обработчиков.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}

// Unregister удаляет обработчик узла.
func (r *Registry) Unregister(node domain.NodeID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, node)
}
