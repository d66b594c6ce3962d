// Package llm описывает клиент генеративной модели.
//
// Анализатор запросов и узел подбора материалов получают Client через
// конструктор. Реализация по HTTP (chat completions) лежит в подпакете openai.
package llm
