package orchestrator

import "errors"

// Ошибки оркестратора.
var (
	// ErrIllegalTransition — недопустимый переход конечного автомата.
	// Означает ошибку в коде pipeline, а не во входных данных.
	ErrIllegalTransition = errors.New("illegal pipeline transition")

	// ErrAlreadyWritten — результат узла уже записан.
	ErrAlreadyWritten = errors.New("node result already written")

	// ErrForeignResult — результат относится к другому узлу.
	ErrForeignResult = errors.New("result belongs to another node")

	// ErrHandlerPanic — обработчик запаниковал.
	ErrHandlerPanic = errors.New("handler panicked")

	// ErrInvalidResult — обработчик вернул nil без ошибки.
	ErrInvalidResult = errors.New("handler returned no result")

	// ErrNodeTimeout — обработчик не уложился в потолок времени.
	ErrNodeTimeout = errors.New("node timed out")
)
