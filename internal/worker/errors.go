package worker

import "errors"

// Ошибки воркера.
var (
	// ErrNoPipeline — воркер создан без pipeline.
	ErrNoPipeline = errors.New("worker has no pipeline")

	// ErrWorkerStopped — воркер остановлен.
	ErrWorkerStopped = errors.New("worker stopped")

	// ErrRequestIDConflict — request_id уже занят другим запросом.
	ErrRequestIDConflict = errors.New("request id already used by another request")
)
