package engine

import (
	"errors"

	"github.com/shaiso/Mentor/internal/domain"
)

// Ошибки построения графа.
var (
	// ErrEmptyGraph — граф не содержит узлов.
	ErrEmptyGraph = errors.New("graph has no nodes")

	// ErrEmptyNodeID — узел не имеет ID.
	ErrEmptyNodeID = errors.New("node has empty ID")

	// ErrDuplicateNodeID — несколько узлов с одинаковым ID.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrMissingDependency — узел ссылается на несуществующий узел.
	ErrMissingDependency = errors.New("node depends on unknown node")

	// ErrCyclicDependency — обнаружен цикл в зависимостях.
	ErrCyclicDependency = errors.New("cyclic dependency detected")

	// ErrSelfDependency — узел зависит от самого себя.
	ErrSelfDependency = errors.New("node depends on itself")

	// ErrInvalidAdvisory — совещательное ребро ведёт в join-узел.
	ErrInvalidAdvisory = errors.New("invalid advisory edge")
)

// Ошибки роутинга.
var (
	// ErrUnknownPolicy — неизвестное имя политики.
	ErrUnknownPolicy = errors.New("unknown routing policy")
)

// ValidationError — ошибка валидации графа с контекстом.
type ValidationError struct {
	NodeID  domain.NodeID // узел, где произошла ошибка
	Field   string        // поле, вызвавшее ошибку
	Message string        // описание ошибки
	Err     error         // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	if e.NodeID != "" {
		return "node " + string(e.NodeID) + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError создаёт новую ошибку валидации.
func NewValidationError(nodeID domain.NodeID, field, message string, err error) *ValidationError {
	return &ValidationError{
		NodeID:  nodeID,
		Field:   field,
		Message: message,
		Err:     err,
	}
}
