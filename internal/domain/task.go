package domain

import "time"

// NodeRun — запись о выполнении одного узла в рамках запроса.
//
// Создаётся executor'ом для каждого узла графа (в том числе неактивного)
// и попадает в метаданные ответа и в историю запросов.
type NodeRun struct {
	// Node — узел графа.
	Node NodeID `json:"node"`

	// Status — текущий статус узла.
	Status NodeStatus `json:"status"`

	// UsedFallback — true, если в состоянии лежит fallback-результат.
	UsedFallback bool `json:"used_fallback"`

	// StartedAt — время начала выполнения обработчика.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt — время завершения.
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// Error — текст ошибки при неудаче.
	Error string `json:"error,omitempty"`
}

// Duration возвращает продолжительность выполнения.
func (n *NodeRun) Duration() time.Duration {
	if n.StartedAt == nil || n.FinishedAt == nil {
		return 0
	}
	return n.FinishedAt.Sub(*n.StartedAt)
}

// IsFinished возвращает true, если узел завершён.
func (n *NodeRun) IsFinished() bool {
	return n.Status.IsTerminal()
}

// MarkRunning переводит узел в статус RUNNING.
func (n *NodeRun) MarkRunning() {
	now := time.Now()
	n.Status = NodeStatusRunning
	n.StartedAt = &now
}

// MarkSucceeded переводит узел в статус SUCCEEDED.
func (n *NodeRun) MarkSucceeded() {
	now := time.Now()
	n.Status = NodeStatusSucceeded
	n.FinishedAt = &now
}

// MarkFailed переводит узел в статус FAILED с ошибкой.
func (n *NodeRun) MarkFailed(err string) {
	now := time.Now()
	n.Status = NodeStatusFailed
	n.FinishedAt = &now
	n.Error = err
	n.UsedFallback = true
}

// MarkSkipped помечает неактивный узел.
func (n *NodeRun) MarkSkipped() {
	n.Status = NodeStatusSkipped
	n.UsedFallback = true
}
