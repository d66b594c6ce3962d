package domain

// PipelineState — состояние обработки одного запроса.
//
// Жизненный цикл (только вперёд, без повторов):
//
//	START → ANALYZED → ROUTED → EXECUTING → AGGREGATED → DONE
type PipelineState string

const (
	// StateStart — запрос принят и прошёл валидацию.
	StateStart PipelineState = "START"

	// StateAnalyzed — текст классифицирован (LLM или эвристика).
	StateAnalyzed PipelineState = "ANALYZED"

	// StateRouted — выбрана политика и активный подграф.
	StateRouted PipelineState = "ROUTED"

	// StateExecuting — узлы подграфа выполняются.
	StateExecuting PipelineState = "EXECUTING"

	// StateAggregated — у каждого активного узла есть итоговый результат.
	StateAggregated PipelineState = "AGGREGATED"

	// StateDone — ответ собран.
	StateDone PipelineState = "DONE"
)

var nextState = map[PipelineState]PipelineState{
	StateStart:      StateAnalyzed,
	StateAnalyzed:   StateRouted,
	StateRouted:     StateExecuting,
	StateExecuting:  StateAggregated,
	StateAggregated: StateDone,
}

// CanTransition возвращает true, если переход s → to допустим.
func (s PipelineState) CanTransition(to PipelineState) bool {
	next, ok := nextState[s]
	return ok && next == to
}

// IsTerminal возвращает true для DONE.
func (s PipelineState) IsTerminal() bool {
	return s == StateDone
}

// NodeStatus — статус выполнения узла графа.
//
// Жизненный цикл:
//
//	QUEUED → RUNNING → SUCCEEDED
//	                 ↘ FAILED (подставлен fallback)
//	(или) SKIPPED — узел не активен в выбранной политике
type NodeStatus string

const (
	// NodeStatusQueued — узел ждёт своих зависимостей.
	NodeStatusQueued NodeStatus = "QUEUED"

	// NodeStatusRunning — обработчик узла выполняется.
	NodeStatusRunning NodeStatus = "RUNNING"

	// NodeStatusSucceeded — обработчик вернул результат.
	NodeStatusSucceeded NodeStatus = "SUCCEEDED"

	// NodeStatusFailed — ошибка, таймаут или паника; результат заменён fallback'ом.
	NodeStatusFailed NodeStatus = "FAILED"

	// NodeStatusSkipped — узел не выбран роутером.
	NodeStatusSkipped NodeStatus = "SKIPPED"
)

// IsTerminal возвращает true, если статус финальный.
func (s NodeStatus) IsTerminal() bool {
	switch s {
	case NodeStatusSucceeded, NodeStatusFailed, NodeStatusSkipped:
		return true
	default:
		return false
	}
}
