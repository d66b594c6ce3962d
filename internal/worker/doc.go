// Package worker обрабатывает асинхронные запросы из RabbitMQ.
//
// Поток сообщения:
//
//	assist.pending → Worker.Process → orchestrator.Pipeline.Run → assist.completed
//
// Ошибки:
//   - неразбираемый payload — сразу в DLQ (mq.ErrPermanent)
//   - невалидный запрос — ack и публикация ответа с полем error
//   - ошибка публикации — nack и один повтор
//
// Идемпотентность обеспечивается историей запросов: если запись с тем же
// request_id уже есть, ответ публикуется повторно без обработки.
package worker
