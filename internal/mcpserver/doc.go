// Package mcpserver публикует ассистента по Model Context Protocol.
//
// Инструменты:
//   - assist        — полный проход pipeline (анализ, граф, агрегация)
//   - generate_quiz — квиз по теме без вызова pipeline
//   - evaluate_quiz — проверка ответов, запись оценки студента
//
// Ресурс mentor://graph описывает узлы графа, их зависимости,
// таймауты и политики маршрутизации.
//
// Транспорты: stdio (ServeStdio) и SSE (SSEHandler).
package mcpserver
