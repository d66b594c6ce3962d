package domain

// NodeID — идентификатор узла графа обработчиков.
type NodeID string

const (
	NodePersonalization NodeID = "personalization"
	NodeLearning        NodeID = "learning"
	NodeWellness        NodeID = "wellness"
	NodeAssessment      NodeID = "assessment"
	NodeSchedule        NodeID = "schedule"
	NodeMotivation      NodeID = "motivation"

	// NodeAggregate — терминальный узел, не имеет обработчика.
	NodeAggregate NodeID = "aggregate"
)

// HandlerNodes возвращает все узлы с обработчиками в стабильном порядке.
func HandlerNodes() []NodeID {
	return []NodeID{
		NodePersonalization,
		NodeLearning,
		NodeWellness,
		NodeAssessment,
		NodeSchedule,
		NodeMotivation,
	}
}

// String возвращает строковое представление NodeID.
func (n NodeID) String() string {
	return string(n)
}

// ErrorKind — класс ошибки узла.
type ErrorKind string

const (
	// ErrorKindTimeout — обработчик не уложился в потолок времени.
	ErrorKindTimeout ErrorKind = "timeout"

	// ErrorKindFailure — обработчик вернул ошибку.
	ErrorKindFailure ErrorKind = "failure"

	// ErrorKindPanic — обработчик запаниковал.
	ErrorKindPanic ErrorKind = "panic"

	// ErrorKindInvalid — обработчик вернул результат чужого типа или nil.
	ErrorKindInvalid ErrorKind = "invalid_result"
)

// ErrorInfo — диагностическая запись об ошибке узла.
//
// Ошибки узлов никогда не пробрасываются наружу: они попадают
// только в metadata.errors ответа.
type ErrorInfo struct {
	Node    NodeID    `json:"node"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}
