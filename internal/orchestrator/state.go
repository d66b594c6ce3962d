package orchestrator

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shaiso/Mentor/internal/aggregate"
	"github.com/shaiso/Mentor/internal/domain"
	"github.com/shaiso/Mentor/internal/engine"
)

// ExecutionState — состояние выполнения одного запроса в памяти.
//
// Создаётся pipeline'ом после роутинга и живёт до сборки ответа.
//
// Содержит:
//   - Неизменяемые входы (Request, Analysis, подграф)
//   - Итоговые результаты узлов (успешные или fallback)
//   - Ошибки узлов и записи о выполнении
//
// Каждый узел пишет только через свой Writer и ровно один раз.
// Закрытие done-канала узла публикует его результат ожидающим.
type ExecutionState struct {
	// RequestID — идентификатор запроса.
	RequestID string

	// Request — исходный запрос.
	Request domain.Request

	// Analysis — результат классификации.
	Analysis domain.Analysis

	// Sub — активный подграф.
	Sub *engine.Subgraph

	// results — итоговые результаты (nodeID → Result).
	results map[domain.NodeID]domain.Result

	// errors — ошибки узлов в порядке записи.
	errors []domain.ErrorInfo

	// runs — записи о выполнении (nodeID → NodeRun).
	runs map[domain.NodeID]*domain.NodeRun

	// done — закрывается после записи результата узла.
	done map[domain.NodeID]chan struct{}

	// mu — мьютекс для потокобезопасного доступа.
	mu sync.RWMutex
}

// NewExecutionState создаёт состояние для всех исполняемых узлов подграфа.
func NewExecutionState(requestID string, req domain.Request, analysis domain.Analysis, sub *engine.Subgraph) *ExecutionState {
	nodes := sub.Graph.GetExecutableNodes()

	s := &ExecutionState{
		RequestID: requestID,
		Request:   req,
		Analysis:  analysis,
		Sub:       sub,
		results:   make(map[domain.NodeID]domain.Result, len(nodes)),
		runs:      make(map[domain.NodeID]*domain.NodeRun, len(nodes)),
		done:      make(map[domain.NodeID]chan struct{}, len(nodes)),
	}
	for _, node := range nodes {
		s.runs[node.ID] = &domain.NodeRun{Node: node.ID, Status: domain.NodeStatusQueued}
		s.done[node.ID] = make(chan struct{})
	}
	return s
}

// Writer возвращает handle записи для узла.
func (s *ExecutionState) Writer(node domain.NodeID) *Writer {
	return &Writer{state: s, node: node}
}

// Done возвращает канал, закрываемый после записи результата узла.
// Для неизвестного узла возвращает уже закрытый канал.
func (s *ExecutionState) Done(node domain.NodeID) <-chan struct{} {
	if ch, ok := s.done[node]; ok {
		return ch
	}
	closed := make(chan struct{})
	close(closed)
	return closed
}

// Result возвращает итоговый результат узла.
// Реализует agents.Deps без ограничения видимости.
func (s *ExecutionState) Result(node domain.NodeID) (domain.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.results[node]
	return r, ok
}

// Succeeded проверяет, что узел завершился собственным результатом.
func (s *ExecutionState) Succeeded(node domain.NodeID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[node]
	return ok && run.Status == domain.NodeStatusSucceeded
}

// Results возвращает копию итоговых результатов.
func (s *ExecutionState) Results() map[domain.NodeID]domain.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[domain.NodeID]domain.Result, len(s.results))
	for id, r := range s.results {
		out[id] = r
	}
	return out
}

// Errors возвращает ошибки узлов, отсортированные по узлу.
func (s *ExecutionState) Errors() []domain.ErrorInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ErrorInfo, len(s.errors))
	copy(out, s.errors)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Node < out[j].Node })
	return out
}

// NodeRuns возвращает записи о выполнении в топологическом порядке.
func (s *ExecutionState) NodeRuns() []domain.NodeRun {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.NodeRun, 0, len(s.runs))
	for _, node := range s.Sub.Graph.GetExecutableNodes() {
		if run, ok := s.runs[node.ID]; ok {
			out = append(out, *run)
		}
	}
	return out
}

// IsComplete проверяет, что у каждого исполняемого узла есть результат.
func (s *ExecutionState) IsComplete() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, node := range s.Sub.Graph.GetExecutableNodes() {
		if _, ok := s.results[node.ID]; !ok {
			return false
		}
	}
	return true
}

// Stats возвращает статистику выполнения.
func (s *ExecutionState) Stats() ExecutionStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := ExecutionStats{TotalNodes: len(s.runs)}
	for _, run := range s.runs {
		switch run.Status {
		case domain.NodeStatusSucceeded:
			stats.SucceededNodes++
		case domain.NodeStatusFailed:
			stats.FailedNodes++
		case domain.NodeStatusSkipped:
			stats.SkippedNodes++
		}
	}
	return stats
}

// ExecutionStats — статистика выполнения запроса.
type ExecutionStats struct {
	TotalNodes     int
	SucceededNodes int
	FailedNodes    int
	SkippedNodes   int
}

// Snapshot возвращает копию состояния для сборки ответа.
func (s *ExecutionState) Snapshot() aggregate.Snapshot {
	return aggregate.Snapshot{
		RequestID:   s.RequestID,
		Request:     s.Request,
		Analysis:    s.Analysis,
		Policy:      string(s.Sub.Policy),
		ActiveNodes: s.Sub.ActiveNodes(),
		Results:     s.Results(),
		Errors:      s.Errors(),
		Runs:        s.NodeRuns(),
	}
}

// Writer — handle записи результата одного узла.
//
// Пишет только свой ключ. Повторная запись возвращает ErrAlreadyWritten.
type Writer struct {
	state *ExecutionState
	node  domain.NodeID
}

// Node возвращает узел, которому принадлежит handle.
func (w *Writer) Node() domain.NodeID {
	return w.node
}

// Start помечает узел как выполняющийся.
func (w *Writer) Start() {
	w.state.mu.Lock()
	defer w.state.mu.Unlock()

	if run, ok := w.state.runs[w.node]; ok && run.Status == domain.NodeStatusQueued {
		run.MarkRunning()
	}
}

// Succeed записывает собственный результат узла.
func (w *Writer) Succeed(r domain.Result) error {
	return w.commit(r, nil, domain.NodeStatusSucceeded)
}

// Fail записывает fallback и ошибку узла.
func (w *Writer) Fail(fallback domain.Result, info domain.ErrorInfo) error {
	info.Node = w.node
	return w.commit(fallback, &info, domain.NodeStatusFailed)
}

// Skip записывает fallback неактивного узла. Ошибка не фиксируется.
func (w *Writer) Skip(fallback domain.Result) error {
	return w.commit(fallback, nil, domain.NodeStatusSkipped)
}

func (w *Writer) commit(r domain.Result, info *domain.ErrorInfo, status domain.NodeStatus) error {
	if domain.IsMissing(r) {
		return fmt.Errorf("%w: %s", ErrInvalidResult, w.node)
	}
	if r.Node() != w.node {
		return fmt.Errorf("%w: %s written by %s", ErrForeignResult, r.Node(), w.node)
	}

	s := w.state
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.results[w.node]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyWritten, w.node)
	}
	s.results[w.node] = r

	run, ok := s.runs[w.node]
	if !ok {
		run = &domain.NodeRun{Node: w.node}
		s.runs[w.node] = run
	}
	switch status {
	case domain.NodeStatusSucceeded:
		run.MarkSucceeded()
	case domain.NodeStatusFailed:
		run.MarkFailed(info.Message)
		s.errors = append(s.errors, *info)
	case domain.NodeStatusSkipped:
		run.MarkSkipped()
	}

	if ch, ok := s.done[w.node]; ok {
		close(ch)
	}
	return nil
}
