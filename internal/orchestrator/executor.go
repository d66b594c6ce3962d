package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/shaiso/Mentor/internal/agents"
	"github.com/shaiso/Mentor/internal/domain"
	"github.com/shaiso/Mentor/internal/engine"
	"github.com/shaiso/Mentor/internal/telemetry"
)

// DefaultAdvisoryWait — сколько узел ждёт совещательный контекст.
const DefaultAdvisoryWait = 2 * time.Second

// ExecutorConfig — конфигурация Executor.
type ExecutorConfig struct {
	// Registry — обработчики узлов.
	Registry *agents.Registry

	// TimeoutScale — множитель потолков времени (default: 1).
	// Нужен только тестам.
	TimeoutScale float64

	// AdvisoryWait — предел ожидания совещательного предшественника
	// (default: DefaultAdvisoryWait).
	AdvisoryWait time.Duration

	// Logger
	Logger *slog.Logger
}

// Executor выполняет активный подграф.
//
// Каждый активный узел получает свою горутину. Узел стартует после
// записи результатов всех структурных предшественников. Ошибки узлов
// не выходят за пределы Executor: вместо них пишется fallback.
type Executor struct {
	registry     *agents.Registry
	scale        float64
	advisoryWait time.Duration
	logger       *slog.Logger
}

// NewExecutor создаёт Executor.
func NewExecutor(cfg ExecutorConfig) *Executor {
	registry := cfg.Registry
	if registry == nil {
		registry = agents.DefaultRegistry(agents.Config{Logger: cfg.Logger})
	}

	scale := cfg.TimeoutScale
	if scale <= 0 {
		scale = 1
	}

	wait := cfg.AdvisoryWait
	if wait <= 0 {
		wait = DefaultAdvisoryWait
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{
		registry:     registry,
		scale:        scale,
		advisoryWait: wait,
		logger:       logger,
	}
}

// Execute создаёт состояние и выполняет подграф.
func (e *Executor) Execute(ctx context.Context, sub *engine.Subgraph, analysis domain.Analysis, req domain.Request) *ExecutionState {
	state := NewExecutionState(uuid.NewString(), req, analysis, sub)
	e.Run(ctx, state)
	return state
}

// Run выполняет подграф над готовым состоянием.
//
// Возвращается только после записи результата каждого исполняемого узла.
func (e *Executor) Run(ctx context.Context, state *ExecutionState) {
	logger := telemetry.FromContextOr(ctx, e.logger)
	topic := state.Analysis.Topic

	// Неактивные узлы получают fallback до старта горутин:
	// их ожидающие не должны блокироваться.
	for _, id := range state.Sub.InactiveNodes() {
		if err := state.Writer(id).Skip(domain.FallbackFor(id, topic)); err != nil {
			logger.Error("skip node failed", "node", id, "error", err)
			continue
		}
		telemetry.ObserveNode(string(id), telemetry.OutcomeSkipped, 0)
	}

	var g errgroup.Group
	for _, id := range state.Sub.ActiveNodes() {
		node := state.Sub.Graph.GetNode(id)
		g.Go(func() error {
			e.runNode(ctx, state, node)
			return nil
		})
	}
	_ = g.Wait()

	stats := state.Stats()
	logger.Debug("subgraph executed",
		"policy", state.Sub.Policy,
		"succeeded", stats.SucceededNodes,
		"failed", stats.FailedNodes,
		"skipped", stats.SkippedNodes,
	)
}

// runNode дожидается предшественников, вызывает обработчик и пишет результат.
func (e *Executor) runNode(ctx context.Context, state *ExecutionState, node *engine.Node) {
	logger := telemetry.WithNode(telemetry.FromContextOr(ctx, e.logger), string(node.ID))
	w := state.Writer(node.ID)

	visible := make(map[domain.NodeID]bool, len(node.DependsOn)+len(node.AdvisedBy))
	for _, dep := range node.DependsOn {
		<-state.Done(dep.ID)
		visible[dep.ID] = true
	}
	for _, adv := range e.awaitAdvisors(ctx, state, node) {
		visible[adv] = true
	}

	ceiling := e.ceiling(node)
	nctx, cancel := context.WithTimeout(ctx, ceiling)
	defer cancel()

	nctx, span := telemetry.StartSpan(nctx, "node."+string(node.ID),
		attribute.String("node", string(node.ID)),
		attribute.String("request_id", state.RequestID),
	)

	in := &agents.Input{
		Analysis: state.Analysis,
		Request:  state.Request,
		Deps:     scopedDeps{state: state, visible: visible},
	}

	w.Start()
	started := time.Now()
	result, err := e.invoke(nctx, node.ID, in)
	if err == nil {
		err = checkResult(node.ID, result)
	}
	elapsed := time.Since(started)
	telemetry.EndSpan(span, err)

	if err == nil {
		if werr := w.Succeed(result); werr != nil {
			logger.Error("commit result failed", "error", werr)
		}
		telemetry.ObserveNode(string(node.ID), telemetry.OutcomeSuccess, elapsed)
		logger.Debug("node succeeded", "duration_ms", elapsed.Milliseconds())
		return
	}

	kind := classify(err)
	info := domain.ErrorInfo{Node: node.ID, Kind: kind, Message: err.Error()}
	if werr := w.Fail(domain.FallbackFor(node.ID, state.Analysis.Topic), info); werr != nil {
		logger.Error("commit fallback failed", "error", werr)
	}

	telemetry.ObserveNode(string(node.ID), telemetry.OutcomeFallback, elapsed)
	telemetry.IncNodeFallback(string(node.ID), string(kind))
	logger.Warn("node fallback",
		"kind", kind,
		"error", err,
		"duration_ms", elapsed.Milliseconds(),
	)
}

// awaitAdvisors ждёт активных совещательных предшественников не дольше
// advisoryWait. Возвращает тех, кто успел завершиться успешно.
func (e *Executor) awaitAdvisors(ctx context.Context, state *ExecutionState, node *engine.Node) []domain.NodeID {
	if len(node.AdvisedBy) == 0 {
		return nil
	}

	wctx, cancel := context.WithTimeout(ctx, e.advisoryWait)
	defer cancel()

	var ready []domain.NodeID
	for _, adv := range node.AdvisedBy {
		if !state.Sub.IsActive(adv.ID) {
			continue
		}
		select {
		case <-state.Done(adv.ID):
			if state.Succeeded(adv.ID) {
				ready = append(ready, adv.ID)
			}
		case <-wctx.Done():
			telemetry.FromContextOr(ctx, e.logger).Debug("advisory context not ready",
				"node", node.ID,
				"advisor", adv.ID,
			)
		}
	}
	return ready
}

// invoke вызывает обработчик в отдельной горутине.
// Паника перехватывается, по истечении ctx результат не ждём.
func (e *Executor) invoke(ctx context.Context, id domain.NodeID, in *agents.Input) (domain.Result, error) {
	handler, err := e.registry.Get(id)
	if err != nil {
		return nil, err
	}

	type outcome struct {
		result domain.Result
		err    error
	}
	ch := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{err: fmt.Errorf("%w: %v", ErrHandlerPanic, r)}
			}
		}()
		r, err := handler.Invoke(ctx, in)
		ch <- outcome{result: r, err: err}
	}()

	select {
	case out := <-ch:
		return out.result, out.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrNodeTimeout
		}
		return nil, ctx.Err()
	}
}

func (e *Executor) ceiling(node *engine.Node) time.Duration {
	timeout := node.Def.Timeout
	if timeout <= 0 {
		timeout = engine.NodeTimeout(node.ID)
	}
	return time.Duration(float64(timeout) * e.scale)
}

// checkResult отсекает пустые и чужие результаты.
func checkResult(id domain.NodeID, r domain.Result) error {
	if domain.IsMissing(r) {
		return ErrInvalidResult
	}
	if r.Node() != id {
		return fmt.Errorf("%w: got %s", ErrForeignResult, r.Node())
	}
	return nil
}

// classify переводит ошибку вызова в класс ErrorInfo.
func classify(err error) domain.ErrorKind {
	switch {
	case errors.Is(err, ErrNodeTimeout), errors.Is(err, context.DeadlineExceeded):
		return domain.ErrorKindTimeout
	case errors.Is(err, ErrHandlerPanic):
		return domain.ErrorKindPanic
	case errors.Is(err, ErrInvalidResult), errors.Is(err, ErrForeignResult):
		return domain.ErrorKindInvalid
	default:
		return domain.ErrorKindFailure
	}
}

// scopedDeps ограничивает обработчику видимость результатов
// его предшественниками.
type scopedDeps struct {
	state   *ExecutionState
	visible map[domain.NodeID]bool
}

// Result реализует agents.Deps.
func (d scopedDeps) Result(id domain.NodeID) (domain.Result, bool) {
	if !d.visible[id] {
		return nil, false
	}
	return d.state.Result(id)
}
