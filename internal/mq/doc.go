// Package mq — транспорт асинхронных запросов через RabbitMQ.
//
// Структура:
//   - connection.go — соединение с переподключением
//   - topology.go   — exchanges, queues, bindings
//   - publisher.go  — публикация assist.pending / assist.completed
//   - consumer.go   — потребление с ack/nack и DLQ
//
// Exchanges:
//   - mentor.requests — запросы и результаты
//   - mentor.dlq      — dead letter queue
package mq
