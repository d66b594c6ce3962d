// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go        — Handler с DI (pipeline, история, publisher, logger)
//   - routes.go         — регистрация маршрутов, /healthz и /metrics
//   - middleware.go     — middleware (recovery, request id, logging)
//   - response.go       — унифицированные JSON-ответы и обработка ошибок
//   - dto.go            — Data Transfer Objects (request/response)
//   - assist_handler.go — обработчики для /assist и /requests
//   - performance_handler.go — запись оценок студента
//   - quiz_handler.go   — проверка ответов на квиз
package api
