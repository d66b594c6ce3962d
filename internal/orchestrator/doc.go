// Package orchestrator проводит запрос студента через анализ, роутинг,
// параллельное выполнение обработчиков и сборку ответа.
//
// Pipeline — точка входа (ProcessRequest). Executor выполняет активный
// подграф: горутина на узел, ожидание предшественников через done-каналы,
// потолок времени на узел, fallback вместо ошибки. ExecutionState хранит
// результаты; каждый узел пишет свой ключ через Writer ровно один раз.
package orchestrator
