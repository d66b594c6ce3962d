// Package engine описывает граф обработчиков и роутинг.
//
// Включает:
//   - dag.go    — построение и обход DAG (алгоритм Кана, готовые узлы, волны)
//   - graph.go  — фиксированный граф обработчиков и потолки времени узлов
//   - router.go — политики и выбор активного подграфа
//
// Граф строится один раз при старте процесса. Роутинг никогда не меняет
// рёбра: он только отмечает, какие узлы активны для конкретного запроса.
package engine
