package agents

import (
	"context"
	"errors"

	"github.com/shaiso/Mentor/internal/domain"
)

// Ошибки обработчиков.
var (
	// ErrHandlerNotFound — обработчик узла не зарегистрирован.
	ErrHandlerNotFound = errors.New("handler not found")

	// ErrMalformedSuggestion — модель вернула неразбираемый список.
	ErrMalformedSuggestion = errors.New("malformed suggestion output")
)

// Handler — обработчик одного узла графа.
//
// Invoke обязан уважать ctx: по истечении потолка времени узла
// результат всё равно будет заменён fallback'ом.
type Handler interface {
	// Node возвращает узел, который обслуживает обработчик.
	Node() domain.NodeID

	// Invoke выполняет обработчик.
	Invoke(ctx context.Context, in *Input) (domain.Result, error)
}

// Deps — read-only доступ к результатам предшественников.
type Deps interface {
	// Result возвращает финальный результат узла (успешный или fallback).
	// false, если узел ещё не завершён или не является предшественником.
	Result(id domain.NodeID) (domain.Result, bool)
}

// Input — входные данные обработчика.
type Input struct {
	Analysis domain.Analysis
	Request  domain.Request
	Deps     Deps
}

// Topic возвращает тему запроса.
func (in *Input) Topic() string {
	return in.Analysis.Topic
}

// StudentID возвращает идентификатор студента.
func (in *Input) StudentID() string {
	if in.Request.StudentID == "" {
		return domain.DefaultStudentID
	}
	return in.Request.StudentID
}

// depOf достаёт результат предшественника нужного типа.
func depOf[T domain.Result](in *Input, id domain.NodeID) (T, bool) {
	var zero T
	if in == nil || in.Deps == nil {
		return zero, false
	}
	r, ok := in.Deps.Result(id)
	if !ok || domain.IsMissing(r) {
		return zero, false
	}
	typed, ok := r.(T)
	return typed, ok
}

// learningOf возвращает результат learning или его fallback.
func learningOf(in *Input) *domain.LearningResult {
	if r, ok := depOf[*domain.LearningResult](in, domain.NodeLearning); ok {
		return r
	}
	return domain.FallbackLearning(in.Topic())
}

// wellnessOf возвращает результат wellness или его fallback.
func wellnessOf(in *Input) *domain.WellnessResult {
	if r, ok := depOf[*domain.WellnessResult](in, domain.NodeWellness); ok {
		return r
	}
	return domain.FallbackWellness(in.Topic())
}

// personalizationOf возвращает совещательный результат, если он есть.
func personalizationOf(in *Input) (*domain.PersonalizationResult, bool) {
	return depOf[*domain.PersonalizationResult](in, domain.NodePersonalization)
}

// MapDeps — Deps поверх обычной map. Удобно в тестах и при ручном вызове.
type MapDeps map[domain.NodeID]domain.Result

// Result реализует Deps.
func (m MapDeps) Result(id domain.NodeID) (domain.Result, bool) {
	r, ok := m[id]
	return r, ok
}
