// Package agents содержит обработчики узлов графа.
//
// Каждый обработчик реализует интерфейс Handler:
//
//	type Handler interface {
//	    Node() domain.NodeID
//	    Invoke(ctx context.Context, in *Input) (domain.Result, error)
//	}
//
// Input содержит результат анализа, исходный запрос и read-only
// доступ к результатам предшественников (Deps). Структурные
// предшественники к моменту вызова всегда завершены: их результат
// либо успешный, либо fallback. Совещательный результат
// personalization может отсутствовать.
//
// Обработчики детерминированы: «случайный» выбор фраз и профилей
// выводится из хэша темы и id студента. Внешние данные приходят
// через интерфейсы, внедряемые в конструктор:
//   - llm.Client — подбор статей и разбор документа (learning)
//   - SignalSource — сигналы самочувствия (wellness)
//   - PerformanceSource — прошлые оценки (personalization, motivation)
//
// Ошибка Invoke не прерывает запрос: исполнитель подставит fallback.
//
// # Файлы пакета
//
//   - handler.go         — Handler, Input, Deps
//   - registry.go        — Registry и DefaultRegistry
//   - learning.go        — подбор материалов
//   - wellness.go        — оценка самочувствия
//   - assessment.go      — генерация квиза
//   - evaluate.go        — проверка ответов на квиз
//   - schedule.go        — сессии и события календаря
//   - personalization.go — профиль и адаптивный план
//   - motivation.go      — поддерживающие сообщения
package agents
